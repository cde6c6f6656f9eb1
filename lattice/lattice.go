// Package lattice owns the node grid of a self-organizing map: the flat
// node collection, its weight matrix, and the pluggable weight initializers.
//
// Nodes are stored in x*height+y order (column-major over width, row-major
// within a column). Every node's weight vector is a view into one flat
// backing array, so the lattice doubles as an MxD weight matrix without
// copying; training mutates node weights and the matrix view observes them.
package lattice

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/gosom/distance"
	"github.com/hupe1980/gosom/topology"
)

var (
	// ErrMissingInitializer is returned when a lattice is constructed
	// without a weight source.
	ErrMissingInitializer = errors.New("no weight initialization source: dataset bounds, seed vectors, or a snapshot is required")

	// ErrInvalidDimension is returned for a non-positive feature dimension.
	ErrInvalidDimension = errors.New("feature dimension must be positive")
)

// ErrDimensionMismatch indicates that a vector length disagrees with the
// lattice feature dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Node is a single lattice unit. Position is assigned once at creation from
// the grid index via the topology's coordinate transform and never changes;
// Weights is mutated every training epoch.
type Node struct {
	X, Y     int
	Position topology.Position
	Weights  []float64
}

// Lattice is the full node grid.
type Lattice struct {
	plane *topology.Plane
	dim   int

	// weights backs every node's weight vector, len width*height*dim.
	weights []float64
	nodes   []Node
}

// Initializer supplies the initial weight vector for the node at grid index
// (x, y), writing dim values into dst.
type Initializer func(x, y int, plane *topology.Plane, dst []float64) error

// New constructs a lattice on the given plane with dim features per node,
// filling every node's weights from init.
func New(plane *topology.Plane, dim int, init Initializer) (*Lattice, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	if init == nil {
		return nil, ErrMissingInitializer
	}

	l := &Lattice{
		plane:   plane,
		dim:     dim,
		weights: make([]float64, plane.Width*plane.Height*dim),
		nodes:   make([]Node, plane.Width*plane.Height),
	}

	for x := 0; x < plane.Width; x++ {
		for y := 0; y < plane.Height; y++ {
			i := l.Index(x, y)
			w := l.weights[i*dim : (i+1)*dim]
			if err := init(x, y, plane, w); err != nil {
				return nil, fmt.Errorf("init node (%d,%d): %w", x, y, err)
			}
			l.nodes[i] = Node{
				X:        x,
				Y:        y,
				Position: plane.Coord(x, y),
				Weights:  w,
			}
		}
	}
	return l, nil
}

// Index flattens a grid index.
func (l *Lattice) Index(x, y int) int {
	return x*l.plane.Height + y
}

// Len returns the node count.
func (l *Lattice) Len() int { return len(l.nodes) }

// Dim returns the feature dimension shared by all nodes.
func (l *Lattice) Dim() int { return l.dim }

// Plane returns the lattice plane.
func (l *Lattice) Plane() *topology.Plane { return l.plane }

// Node returns the node at flattened index i.
func (l *Lattice) Node(i int) *Node { return &l.nodes[i] }

// At returns the node at grid index (x, y).
func (l *Lattice) At(x, y int) *Node { return &l.nodes[l.Index(x, y)] }

// Weights returns the MxD weight matrix as a no-copy view over the node
// weights. Mutating the lattice invalidates previously observed values.
func (l *Lattice) Weights() *mat.Dense {
	return mat.NewDense(len(l.nodes), l.dim, l.weights)
}

// CloneWeights returns a snapshot copy of the weight matrix.
func (l *Lattice) CloneWeights() *mat.Dense {
	cloned := make([]float64, len(l.weights))
	copy(cloned, l.weights)
	return mat.NewDense(len(l.nodes), l.dim, cloned)
}

// RawWeights exposes the flat backing array in x*height+y row order, the
// exact layout serialized by the persistence package.
func (l *Lattice) RawWeights() []float64 { return l.weights }

// NeighborDifferences returns, per node, the summed weight distance to all
// directly adjacent nodes under the given metric. This is the value surface
// behind a U-matrix style difference map.
func (l *Lattice) NeighborDifferences(m distance.Metric) ([]float64, error) {
	pairwise, err := distance.Provider(m)
	if err != nil {
		return nil, err
	}

	diffs := make([]float64, len(l.nodes))
	for i := range l.nodes {
		a := &l.nodes[i]
		for j := range l.nodes {
			if i == j {
				continue
			}
			b := &l.nodes[j]
			if l.plane.Adjacent(a.Position, b.Position) {
				diffs[i] += pairwise(a.Weights, b.Weights)
			}
		}
	}
	return diffs, nil
}
