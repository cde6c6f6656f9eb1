// Package topology models the 2D lattice geometry of a self-organizing map:
// the mapping from grid indices to plane coordinates and the distance between
// lattice positions, with optional periodic (toroidal) boundary conditions on
// hexagonal grids.
package topology

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrPeriodicRectangular is returned when periodic boundary conditions
	// are requested on a rectangular grid. Wraparound distance folding is
	// only defined for hexagonal grids.
	ErrPeriodicRectangular = errors.New("periodic boundary conditions require a hexagonal topology")

	// ErrInvalidGridSize is returned when a plane is constructed with a
	// non-positive width or height.
	ErrInvalidGridSize = errors.New("grid width and height must be positive")
)

// ErrUnknownTopology indicates an unrecognized topology name.
type ErrUnknownTopology struct {
	Name string
}

func (e *ErrUnknownTopology) Error() string {
	return fmt.Sprintf("unknown topology: %q", e.Name)
}

// Topology selects the lattice arrangement.
type Topology string

const (
	// Hexagonal arranges nodes on a hex grid: odd rows are shifted by half
	// a unit horizontally and rows are compressed vertically by sqrt(3)/2.
	Hexagonal Topology = "hexagonal"
	// Rectangular arranges nodes on a plain square grid.
	Rectangular Topology = "rectangular"
)

// ParseTopology validates a topology name.
func ParseTopology(name string) (Topology, error) {
	switch t := Topology(name); t {
	case Hexagonal, Rectangular:
		return t, nil
	default:
		return "", &ErrUnknownTopology{Name: name}
	}
}

// Position is a fixed 2D plane coordinate of a lattice node.
type Position struct {
	X float64
	Y float64
}

// hexYScale is the vertical spacing of hexagonal rows with unit node spacing.
var hexYScale = math.Sqrt(3) / 2

// Coord maps a grid index (x, y) to its plane coordinate.
func (t Topology) Coord(x, y int) Position {
	if t == Hexagonal {
		return Position{
			X: float64(x) + 0.5*float64(y%2),
			Y: float64(y) * hexYScale,
		}
	}
	return Position{X: float64(x), Y: float64(y)}
}

// Plane is a fixed-size lattice plane. It is immutable after construction
// and safe for concurrent use.
type Plane struct {
	Topology Topology
	Width    int
	Height   int
	Periodic bool

	// vPeriod is the effective vertical wraparound period of the hex grid,
	// accounting for row compression.
	vPeriod float64
	// parityOffset compensates the half-unit shift of odd rows when the
	// grid wraps vertically with an odd height.
	parityOffset float64
}

// NewPlane constructs a lattice plane. Periodic boundary conditions are
// rejected on rectangular grids rather than silently ignored.
func NewPlane(t Topology, width, height int, periodic bool) (*Plane, error) {
	if _, err := ParseTopology(string(t)); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGridSize, width, height)
	}
	if periodic && t != Hexagonal {
		return nil, ErrPeriodicRectangular
	}

	p := &Plane{
		Topology: t,
		Width:    width,
		Height:   height,
		Periodic: periodic,
	}
	if periodic {
		p.vPeriod = float64(height) * 2 / math.Sqrt(3) * 3 / 4
		if height%2 != 0 {
			p.parityOffset = 0.5
		}
	}
	return p, nil
}

// Coord maps a grid index to its plane coordinate under the plane's topology.
func (p *Plane) Coord(x, y int) Position {
	return p.Topology.Coord(x, y)
}

// Distance returns the distance between two lattice positions. Without
// periodic boundaries this is the plain Euclidean distance. With them, b is
// folded through the 9 candidate wraparound translations (identity,
// horizontal, vertical and the four diagonals) and the minimum distance
// is returned, realizing toroidal adjacency on the hex grid.
func (p *Plane) Distance(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y

	if !p.Periodic {
		return math.Hypot(dx, dy)
	}

	w := float64(p.Width)
	min := math.Hypot(dx, dy)
	for _, c := range [...][2]float64{
		{dx + w, dy},
		{dx - w, dy},
		{dx + p.parityOffset, dy + p.vPeriod},
		{dx - p.parityOffset, dy - p.vPeriod},
		{dx + w + p.parityOffset, dy + p.vPeriod},
		{dx - w + p.parityOffset, dy + p.vPeriod},
		{dx + w - p.parityOffset, dy - p.vPeriod},
		{dx - w - p.parityOffset, dy - p.vPeriod},
	} {
		if d := math.Hypot(c[0], c[1]); d < min {
			min = d
		}
	}
	return min
}

// AdjacencyCutoff is the distance below which two lattice positions count as
// neighbors. Nodes are constructed with unit spacing, so direct neighbors sit
// at distance 1; the slack only absorbs floating-point error from the hex
// coordinate transform.
const AdjacencyCutoff = 1.001

// Adjacent reports whether two lattice positions are direct neighbors.
func (p *Plane) Adjacent(a, b Position) bool {
	d := p.Distance(a, b)
	return d > 0 && d <= AdjacencyCutoff
}
