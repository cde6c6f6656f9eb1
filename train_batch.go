package gosom

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/gosom/distance"
)

// trainBatch runs the Kinouchi batch update: per epoch, every sample votes
// for its BMU, the neighborhood kernel spreads each vote over the grid, and
// node weights are replaced by the kernel-weighted mean of the inputs.
// Nodes that accumulate no votes keep their previous weights.
//
// Chunks are processed in parallel, but their partial sums are merged in
// fixed chunk order so the reduction is deterministic for a fixed seed.
func (s *SOM) trainBatch(ctx context.Context, o *TrainOptions, sched schedule) (int, error) {
	n, dim := s.data.Dims()
	m := s.lattice.Len()

	chunkSize := o.BatchSize
	if chunkSize <= 0 {
		chunkSize = autoChunkSize(n)
	}

	type span struct{ start, end int }
	var chunks []span
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		chunks = append(chunks, span{start: start, end: end})
	}

	// Per-chunk partial accumulators, reused across epochs.
	partNum := make([][]float64, len(chunks))
	partDen := make([][]float64, len(chunks))
	for i := range chunks {
		partNum[i] = make([]float64, m*dim)
		partDen[i] = make([]float64, m)
	}

	num := make([]float64, m*dim)
	den := make([]float64, m)
	newWeights := make([]float64, m*dim)

	weights := s.lattice.Weights()
	raw := s.lattice.RawWeights()
	stopper := &earlyStopper{tolerance: o.Tolerance, patience: o.Patience}
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)

	for epoch := 0; epoch < sched.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return epoch, err
		}
		epochStart := time.Now()
		sigma := sched.sigma(epoch)

		// Amortized across all chunks of the epoch on the euclidean path.
		var weightNorms []float64
		if s.metric == distance.Euclidean {
			weightNorms = distance.SquaredRowNorms(weights)
		}

		// bmudiff score: mean per-sample BMU distance of the last chunk.
		var lastChunkScore float64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))

		for ci := range chunks {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				rows := s.data.Slice(chunks[ci].start, chunks[ci].end, 0, dim).(*mat.Dense)

				var (
					d   *mat.Dense
					err error
				)
				if weightNorms != nil {
					d = distance.MatrixEuclidean(rows, weights, weightNorms)
				} else {
					d, err = distance.Matrix(s.metric, rows, weights)
					if err != nil {
						return err
					}
				}
				bmus := distance.ArgminRows(d)

				pn, pd := partNum[ci], partDen[ci]
				clear(pn)
				clear(pd)

				kernel := make([]float64, m)
				for r, b := range bmus {
					winner := s.lattice.Node(b)
					if err := o.Kernel.Grid(kernel, s.plane.Width, s.plane.Height, winner.X, winner.Y, sigma); err != nil {
						return err
					}

					x := rows.RawRowView(r)
					for i := 0; i < m; i++ {
						k := kernel[i]
						if k == 0 {
							continue
						}
						pd[i] += k
						base := i * dim
						for j := 0; j < dim; j++ {
							pn[base+j] += k * x[j]
						}
					}
				}

				if o.Convergence == BMUDiff && ci == len(chunks)-1 {
					mins := distance.MinRows(d)
					var sum float64
					for _, v := range mins {
						sum += v
					}
					lastChunkScore = sum / float64(len(mins))
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return epoch, err
		}

		clear(num)
		clear(den)
		for ci := range chunks {
			pn, pd := partNum[ci], partDen[ci]
			for i := range num {
				num[i] += pn[i]
			}
			for i := range den {
				den[i] += pd[i]
			}
		}

		for i := 0; i < m; i++ {
			base := i * dim
			if den[i] == 0 {
				// No votes this epoch; keep the previous weights.
				copy(newWeights[base:base+dim], raw[base:base+dim])
				continue
			}
			inv := 1 / den[i]
			for j := 0; j < dim; j++ {
				newWeights[base+j] = num[base+j] * inv
			}
		}

		// Convergence is scored against the pre-epoch weights, strictly
		// before the in-place replacement.
		stop := false
		if o.Convergence != ConvergenceNone {
			score := lastChunkScore
			if o.Convergence == MapDiff {
				score = s.mapDiff(newWeights)
			}
			s.convergence = append(s.convergence, score)
			stop = stopper.observe(score)
		}

		copy(raw, newWeights)

		s.metrics.RecordEpoch(epoch, time.Since(epochStart))
		if limiter.Allow() {
			s.logger.WithEpoch(epoch).Debug("batch training progress", "sigma", sigma)
		}

		if stop {
			s.logger.Info("early stopping",
				"epoch", epoch, "method", string(o.Convergence), "patience", o.Patience)
			return epoch + 1, nil
		}
	}
	return sched.epochs, nil
}

// mapDiff is the mean distance between the candidate weight rows and the
// current node weights under the configured metric.
func (s *SOM) mapDiff(newWeights []float64) float64 {
	pairwise, _ := distance.Provider(s.metric)

	m := s.lattice.Len()
	dim := s.lattice.Dim()
	var sum float64
	for i := 0; i < m; i++ {
		sum += pairwise(newWeights[i*dim:(i+1)*dim], s.lattice.Node(i).Weights)
	}
	return sum / float64(m)
}

func autoChunkSize(n int) int {
	p := runtime.GOMAXPROCS(0)
	if p <= 1 {
		return n
	}
	return (n + p - 1) / p
}
