package gosom

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/gosom/distance"
	"github.com/hupe1980/gosom/neighborhood"
)

// trainOnline draws one sample per epoch from a pre-shuffled queue (without
// replacement until the queue drains, then reshuffled) and nudges every
// node toward it, scaled by the decayed learning rate and the Gaussian of
// the node's lattice distance to the BMU.
func (s *SOM) trainOnline(ctx context.Context, o *TrainOptions, sched schedule) (int, error) {
	n, dim := s.data.Dims()
	weights := s.lattice.Weights()
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)

	var queue []int
	for epoch := 0; epoch < sched.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return epoch, err
		}
		epochStart := time.Now()

		sigma := sched.sigma(epoch)
		lr := sched.learningRate(epoch)

		if len(queue) == 0 {
			queue = s.rng.Perm(n)
		}
		idx := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		x := s.data.RawRowView(idx)
		d, err := distance.Matrix(s.metric, mat.NewDense(1, dim, x), weights)
		if err != nil {
			return epoch, err
		}
		bmu := s.lattice.Node(distance.ArgminRows(d)[0])

		for i := 0; i < s.lattice.Len(); i++ {
			node := s.lattice.Node(i)
			h := lr * neighborhood.GaussianScalar(s.plane.Distance(node.Position, bmu.Position), sigma)
			w := node.Weights
			for j := range w {
				w[j] += h * (x[j] - w[j])
			}
		}

		s.metrics.RecordEpoch(epoch, time.Since(epochStart))
		if limiter.Allow() {
			s.logger.WithEpoch(epoch).Debug("online training progress",
				"sigma", sigma, "learning_rate", lr)
		}
	}
	return sched.epochs, nil
}
