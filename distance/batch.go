package distance

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SquaredRowNorms returns the squared L2 norm of every row of m. For the
// lattice weight matrix this is computed once per epoch and fed to
// MatrixEuclidean, amortizing the dominant term of the expansion
// ||u-v||^2 = ||u||^2 + ||v||^2 - 2*u.v across all batches.
func SquaredRowNorms(m mat.Matrix) []float64 {
	r, c := m.Dims()
	norms := make([]float64, r)
	for i := 0; i < r; i++ {
		var sum float64
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			sum += v * v
		}
		norms[i] = sum
	}
	return norms
}

// Matrix computes the full batch-by-weights distance matrix under the given
// metric: entry (i, j) is the distance between batch row i and weights row j.
// batch is NxD and weights MxD; the result is NxM.
func Matrix(m Metric, batch, weights *mat.Dense) (*mat.Dense, error) {
	switch m {
	case Euclidean:
		return MatrixEuclidean(batch, weights, SquaredRowNorms(weights)), nil
	case Manhattan:
		return matrixManhattan(batch, weights), nil
	case Cosine:
		return matrixCosine(batch, weights), nil
	default:
		return nil, &ErrUnknownMetric{Name: string(m)}
	}
}

// MatrixEuclidean computes the Euclidean distance matrix through a single
// matrix product, avoiding per-pair difference vectors. weightNorms must be
// SquaredRowNorms(weights); callers computing several batches against the
// same weights supply it once.
func MatrixEuclidean(batch, weights *mat.Dense, weightNorms []float64) *mat.Dense {
	n, _ := batch.Dims()
	m, _ := weights.Dims()

	dst := mat.NewDense(n, m, nil)
	dst.Mul(batch, weights.T())

	batchNorms := SquaredRowNorms(batch)
	for i := 0; i < n; i++ {
		row := dst.RawRowView(i)
		for j := 0; j < m; j++ {
			// Numerical cancellation can push the expansion slightly
			// below zero for near-identical vectors.
			d2 := batchNorms[i] + weightNorms[j] - 2*row[j]
			if d2 < 0 {
				d2 = 0
			}
			row[j] = math.Sqrt(d2)
		}
	}
	return dst
}

func matrixManhattan(batch, weights *mat.Dense) *mat.Dense {
	n, d := batch.Dims()
	m, _ := weights.Dims()

	dst := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		u := batch.RawRowView(i)
		row := dst.RawRowView(i)
		for j := 0; j < m; j++ {
			v := weights.RawRowView(j)
			var sum float64
			for k := 0; k < d; k++ {
				sum += math.Abs(u[k] - v[k])
			}
			row[j] = sum
		}
	}
	return dst
}

// matrixCosine computes 1 - X̂*Ŵᵀ over row-normalized copies. Zero-norm rows
// keep a zero normalized row, which lands every such pair exactly on the
// CosineZeroDistance sentinel.
func matrixCosine(batch, weights *mat.Dense) *mat.Dense {
	nb := normalizedRows(batch)
	nw := normalizedRows(weights)

	n, _ := nb.Dims()
	m, _ := nw.Dims()

	dst := mat.NewDense(n, m, nil)
	dst.Mul(nb, nw.T())
	for i := 0; i < n; i++ {
		row := dst.RawRowView(i)
		for j := range row {
			row[j] = 1 - row[j]
		}
	}
	return dst
}

func normalizedRows(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		src := m.RawRowView(i)
		dstRow := out.RawRowView(i)
		var norm float64
		for _, v := range src {
			norm += v * v
		}
		if norm == 0 {
			continue
		}
		inv := 1 / math.Sqrt(norm)
		for j, v := range src {
			dstRow[j] = v * inv
		}
	}
	return out
}

// ArgminRows returns, for every row of d, the column index of the smallest
// entry. Ties break toward the lower index (stable argmin), which keeps BMU
// selection deterministic across runs.
func ArgminRows(d *mat.Dense) []int {
	n, m := d.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		row := d.RawRowView(i)
		best := 0
		for j := 1; j < m; j++ {
			if row[j] < row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out
}

// MinRows returns the per-row minimum of d.
func MinRows(d *mat.Dense) []float64 {
	n, _ := d.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := d.RawRowView(i)
		min := row[0]
		for _, v := range row[1:] {
			if v < min {
				min = v
			}
		}
		out[i] = min
	}
	return out
}
