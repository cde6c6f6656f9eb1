// Package neighborhood implements the kernels that scale how strongly each
// lattice node is pulled toward an input, as a function of grid-index
// distance from the winning node.
//
// Batch training evaluates a kernel over the whole grid once per winner;
// online training uses the scalar Gaussian of the lattice geometric distance.
package neighborhood

import (
	"fmt"
	"math"
)

// ErrUnknownKernel indicates an unrecognized kernel name.
type ErrUnknownKernel struct {
	Name string
}

func (e *ErrUnknownKernel) Error() string {
	return fmt.Sprintf("unknown neighborhood kernel: %q", e.Name)
}

// Kernel selects the neighborhood function for batch training.
type Kernel string

const (
	// Gaussian is a separable Gaussian bump centered on the winner.
	Gaussian Kernel = "gaussian"
	// Bubble is 1 inside a box of half-width sigma around the winner in
	// both axes and 0 outside.
	Bubble Kernel = "bubble"
	// MexicanHat is the Ricker wavelet: excitatory near the winner with a
	// negative inhibitory surround. Batch accumulation sums its values
	// unclamped, so the negative lobe must be preserved.
	MexicanHat Kernel = "mexican_hat"
)

// Parse validates a kernel name.
func Parse(name string) (Kernel, error) {
	switch k := Kernel(name); k {
	case Gaussian, Bubble, MexicanHat:
		return k, nil
	default:
		return "", &ErrUnknownKernel{Name: name}
	}
}

// Grid evaluates the kernel centered on the winner grid index (wx, wy) over
// a width-by-height grid with the given sigma, writing one value per node
// into dst in x*height+y order. len(dst) must be width*height.
func (k Kernel) Grid(dst []float64, width, height, wx, wy int, sigma float64) error {
	if len(dst) != width*height {
		return fmt.Errorf("kernel grid size mismatch: len(dst)=%d, want %d", len(dst), width*height)
	}

	switch k {
	case Gaussian:
		gaussianGrid(dst, width, height, wx, wy, sigma)
	case Bubble:
		bubbleGrid(dst, width, height, wx, wy, sigma)
	case MexicanHat:
		mexicanHatGrid(dst, width, height, wx, wy, sigma)
	default:
		return &ErrUnknownKernel{Name: string(k)}
	}
	return nil
}

func gaussianGrid(dst []float64, width, height, wx, wy int, sigma float64) {
	s2 := 2 * sigma * sigma
	for x := 0; x < width; x++ {
		dx := float64(x - wx)
		gx := math.Exp(-dx * dx / s2)
		for y := 0; y < height; y++ {
			dy := float64(y - wy)
			dst[x*height+y] = gx * math.Exp(-dy*dy/s2)
		}
	}
}

func bubbleGrid(dst []float64, width, height, wx, wy int, sigma float64) {
	for x := 0; x < width; x++ {
		inX := math.Abs(float64(x-wx)) < sigma
		for y := 0; y < height; y++ {
			if inX && math.Abs(float64(y-wy)) < sigma {
				dst[x*height+y] = 1
			} else {
				dst[x*height+y] = 0
			}
		}
	}
}

func mexicanHatGrid(dst []float64, width, height, wx, wy int, sigma float64) {
	s2 := sigma * sigma
	for x := 0; x < width; x++ {
		dx := float64(x - wx)
		for y := 0; y < height; y++ {
			dy := float64(y - wy)
			d2 := dx*dx + dy*dy
			dst[x*height+y] = (1 - d2/s2) * math.Exp(-d2/(2*s2))
		}
	}
}

// GaussianScalar is the scalar Gaussian of a lattice distance, used by the
// online update rule.
func GaussianScalar(d, sigma float64) float64 {
	return math.Exp(-d * d / (2 * sigma * sigma))
}
