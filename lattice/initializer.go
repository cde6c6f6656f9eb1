package lattice

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/gosom/topology"
)

// DataBounds computes the per-feature minimum and maximum over an NxD
// dataset, the sampling box for RandomInit.
func DataBounds(data *mat.Dense) (min, max []float64) {
	n, d := data.Dims()
	min = make([]float64, d)
	max = make([]float64, d)
	if n == 0 {
		return min, max
	}

	copy(min, data.RawRowView(0))
	copy(max, data.RawRowView(0))
	for i := 1; i < n; i++ {
		row := data.RawRowView(i)
		for j, v := range row {
			if v < min[j] {
				min[j] = v
			}
			if v > max[j] {
				max[j] = v
			}
		}
	}
	return min, max
}

// RandomInit samples every node weight uniformly within the per-feature
// [min, max] box. The random source is threaded explicitly so runs are
// reproducible from a caller-owned seed.
func RandomInit(min, max []float64, rng *rand.Rand) Initializer {
	return func(x, y int, _ *topology.Plane, dst []float64) error {
		if len(min) != len(dst) || len(max) != len(dst) {
			return &ErrDimensionMismatch{Expected: len(dst), Actual: len(min)}
		}
		for i := range dst {
			dst[i] = min[i] + rng.Float64()*(max[i]-min[i])
		}
		return nil
	}
}

// SeedVectorInit places node weights on the plane spanned by two seed
// vectors, linearly indexed by grid position:
//
//	w(x,y) = (x - width/2)*2/width * v0 + (y - height/2)*2/height * v1
//
// The vectors typically come from an external PCA, but any pair works; the
// resulting layout is deterministic and data-independent once they are fixed.
func SeedVectorInit(v0, v1 []float64) Initializer {
	return func(x, y int, plane *topology.Plane, dst []float64) error {
		if len(v0) != len(dst) {
			return &ErrDimensionMismatch{Expected: len(dst), Actual: len(v0)}
		}
		if len(v1) != len(dst) {
			return &ErrDimensionMismatch{Expected: len(dst), Actual: len(v1)}
		}
		cx := (float64(x) - float64(plane.Width)/2) * 2 / float64(plane.Width)
		cy := (float64(y) - float64(plane.Height)/2) * 2 / float64(plane.Height)
		for i := range dst {
			dst[i] = cx*v0[i] + cy*v1[i]
		}
		return nil
	}
}

// WeightsInit restores node weights from a flat array in x*height+y row
// order, as produced by a snapshot load.
func WeightsInit(flat []float64) Initializer {
	return func(x, y int, plane *topology.Plane, dst []float64) error {
		i := x*plane.Height + y
		lo := i * len(dst)
		hi := lo + len(dst)
		if hi > len(flat) {
			return fmt.Errorf("weight array too short: need %d values, have %d", hi, len(flat))
		}
		copy(dst, flat[lo:hi])
		return nil
	}
}
