package gosom

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/gosom/blobstore"
	"github.com/hupe1980/gosom/distance"
	"github.com/hupe1980/gosom/lattice"
	"github.com/hupe1980/gosom/persistence"
	"github.com/hupe1980/gosom/topology"
)

// SOM is a self-organizing map: a width-by-height lattice of nodes whose
// weight vectors are trained to embed the attached dataset.
//
// A SOM is not safe for concurrent mutation; callers must serialize Train
// calls and must not query a map while it is training.
type SOM struct {
	plane   *topology.Plane
	lattice *lattice.Lattice
	metric  distance.Metric

	// data is the attached training dataset (NxD), nil when the map was
	// loaded without one.
	data *mat.Dense

	rng     *rand.Rand
	logger  *Logger
	metrics MetricsCollector

	// convergence is the per-epoch score trace of the most recent training
	// run with early stopping enabled; empty otherwise.
	convergence []float64
}

func defaultOptions() *options {
	return &options{
		topology: topology.Hexagonal,
		metric:   distance.Euclidean,
		logger:   NoopLogger(),
		metrics:  NoopMetricsCollector{},
	}
}

// New constructs a map with the given grid size over the dataset (N samples
// of D features each). By default the lattice is hexagonal, non-periodic,
// uses the euclidean metric, and node weights are sampled uniformly within
// the per-feature data bounds.
func New(width, height int, data [][]float64, opts ...Option) (*SOM, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if _, err := distance.Parse(string(o.metric)); err != nil {
		return nil, err
	}

	plane, err := topology.NewPlane(o.topology, width, height, o.periodic)
	if err != nil {
		return nil, err
	}

	dataset, err := denseFromRows(data)
	if err != nil {
		return nil, err
	}
	_, dim := dataset.Dims()

	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	init := o.initializer
	if init == nil {
		min, max := lattice.DataBounds(dataset)
		init = lattice.RandomInit(min, max, rng)
	}

	lat, err := lattice.New(plane, dim, init)
	if err != nil {
		return nil, err
	}

	return &SOM{
		plane:   plane,
		lattice: lat,
		metric:  o.metric,
		data:    dataset,
		rng:     rng,
		logger:  o.logger.WithGrid(width, height),
		metrics: o.metrics,
	}, nil
}

// Load restores a map from a snapshot file. Height, width and the periodic
// flag come from the file header and supersede any constructor arguments;
// only the topology (default hexagonal) and ambient options are taken from
// opts. data may be nil for query-only use, but then Train is unavailable.
func Load(path string, data [][]float64, opts ...Option) (*SOM, error) {
	snap, err := persistence.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fromSnapshot(snap, data, opts...)
}

// LoadFrom restores a map from a snapshot blob.
func LoadFrom(ctx context.Context, store blobstore.BlobStore, name string, data [][]float64, opts ...Option) (*SOM, error) {
	raw, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	snap, err := persistence.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return fromSnapshot(snap, data, opts...)
}

func fromSnapshot(snap *persistence.Snapshot, data [][]float64, opts ...Option) (*SOM, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if _, err := distance.Parse(string(o.metric)); err != nil {
		return nil, err
	}

	plane, err := topology.NewPlane(o.topology, snap.Width, snap.Height, snap.Periodic)
	if err != nil {
		return nil, err
	}

	var dataset *mat.Dense
	if data != nil {
		dataset, err = denseFromRows(data)
		if err != nil {
			return nil, err
		}
		if _, dim := dataset.Dims(); dim != snap.Dim {
			return nil, &ErrDimensionMismatch{Expected: snap.Dim, Actual: dim}
		}
	}

	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	lat, err := lattice.New(plane, snap.Dim, lattice.WeightsInit(snap.Weights))
	if err != nil {
		return nil, err
	}

	return &SOM{
		plane:   plane,
		lattice: lat,
		metric:  o.metric,
		data:    dataset,
		rng:     rng,
		logger:  o.logger.WithGrid(snap.Width, snap.Height),
		metrics: o.metrics,
	}, nil
}

// Snapshot captures the current lattice geometry and weights.
func (s *SOM) Snapshot() *persistence.Snapshot {
	weights := make([]float64, len(s.lattice.RawWeights()))
	copy(weights, s.lattice.RawWeights())

	return &persistence.Snapshot{
		Height:   s.plane.Height,
		Width:    s.plane.Width,
		Periodic: s.plane.Periodic,
		Dim:      s.lattice.Dim(),
		Weights:  weights,
	}
}

// Save writes the map snapshot to a file.
func (s *SOM) Save(path string, compression persistence.CompressionType) error {
	return persistence.WriteFile(path, s.Snapshot(), compression)
}

// SaveTo writes the map snapshot to a blob store.
func (s *SOM) SaveTo(ctx context.Context, store blobstore.BlobStore, name string, compression persistence.CompressionType) error {
	data, err := persistence.Encode(s.Snapshot(), compression)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	return nil
}

// Width returns the grid width.
func (s *SOM) Width() int { return s.plane.Width }

// Height returns the grid height.
func (s *SOM) Height() int { return s.plane.Height }

// Dim returns the feature dimensionality of the node weights.
func (s *SOM) Dim() int { return s.lattice.Dim() }

// Metric returns the configured distance metric.
func (s *SOM) Metric() distance.Metric { return s.metric }

// Periodic reports whether the lattice has periodic boundary conditions.
func (s *SOM) Periodic() bool { return s.plane.Periodic }

// Lattice exposes the node grid for read access.
func (s *SOM) Lattice() *lattice.Lattice { return s.lattice }

// Convergence returns a copy of the per-epoch convergence trace from the
// most recent training run with early stopping enabled.
func (s *SOM) Convergence() []float64 {
	out := make([]float64, len(s.convergence))
	copy(out, s.convergence)
	return out
}

// NeighborDifferences returns the per-node summed weight distance to
// directly adjacent nodes under the configured metric.
func (s *SOM) NeighborDifferences() ([]float64, error) {
	return s.lattice.NeighborDifferences(s.metric)
}

// denseFromRows converts a non-empty slice of equally sized rows into a
// dense matrix.
func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, lattice.ErrInvalidDimension
	}

	flat := make([]float64, 0, len(rows)*dim)
	for _, row := range rows {
		if len(row) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(row)}
		}
		flat = append(flat, row...)
	}
	return mat.NewDense(len(rows), dim, flat), nil
}
