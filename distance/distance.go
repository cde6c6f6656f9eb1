// Package distance provides the vector distance metrics used for BMU search
// and map convergence scoring, in pairwise and batched form.
//
// The batched form is the training hot path: it produces the full
// query-by-node distance matrix in a single pass so that BMU search never
// degenerates into a per-node scan.
package distance

import (
	"fmt"
	"math"
)

// ErrUnknownMetric indicates an unrecognized metric name.
type ErrUnknownMetric struct {
	Name string
}

func (e *ErrUnknownMetric) Error() string {
	return fmt.Sprintf("unknown metric: %q", e.Name)
}

// Metric selects the vector distance used for BMU search and node
// difference computation.
type Metric string

const (
	Euclidean Metric = "euclidean"
	Manhattan Metric = "manhattan"
	Cosine    Metric = "cosine"
)

// Parse validates a metric name.
func Parse(name string) (Metric, error) {
	switch m := Metric(name); m {
	case Euclidean, Manhattan, Cosine:
		return m, nil
	default:
		return "", &ErrUnknownMetric{Name: name}
	}
}

// Func is a pairwise distance function. Vectors must be the same length
// (caller's responsibility).
type Func func(u, v []float64) float64

// Provider returns the pairwise distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case Euclidean:
		return EuclideanDistance, nil
	case Manhattan:
		return ManhattanDistance, nil
	case Cosine:
		return CosineDistance, nil
	default:
		return nil, &ErrUnknownMetric{Name: string(m)}
	}
}

// EuclideanDistance returns the L2 distance between u and v.
func EuclideanDistance(u, v []float64) float64 {
	var sum float64
	for i := range u {
		d := u[i] - v[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// ManhattanDistance returns the L1 distance between u and v.
func ManhattanDistance(u, v []float64) float64 {
	var sum float64
	for i := range u {
		sum += math.Abs(u[i] - v[i])
	}
	return sum
}

// CosineZeroDistance is the sentinel returned when either vector has zero
// norm, for which cosine distance is undefined. It equals the distance
// between orthogonal vectors, keeping degenerate inputs finite instead of
// aborting a training run.
const CosineZeroDistance = 1.0

// CosineDistance returns 1 minus the cosine similarity of u and v.
// Zero-norm inputs yield CosineZeroDistance.
func CosineDistance(u, v []float64) float64 {
	var dot, nu, nv float64
	for i := range u {
		dot += u[i] * v[i]
		nu += u[i] * u[i]
		nv += v[i] * v[i]
	}
	if nu == 0 || nv == 0 {
		return CosineZeroDistance
	}
	return 1 - dot/math.Sqrt(nu*nv)
}
