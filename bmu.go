package gosom

import (
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/gosom/distance"
	"github.com/hupe1980/gosom/lattice"
	"github.com/hupe1980/gosom/topology"
)

// BMU returns the grid position of the best matching unit for a single
// query vector: the node whose weights are closest under the configured
// metric, with ties broken toward the lower flattened node index.
func (s *SOM) BMU(query []float64) (topology.Position, error) {
	positions, err := s.Project([][]float64{query})
	if err != nil {
		return topology.Position{}, err
	}
	return positions[0], nil
}

// Project maps every query vector to the grid position of its BMU. The
// distances to all nodes are computed as one batched matrix operation.
func (s *SOM) Project(queries [][]float64) (positions []topology.Position, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordProject(len(queries), time.Since(start), err)
	}()

	batch, err := s.queryBatch(queries)
	if err != nil {
		return nil, err
	}

	indices, err := s.bmuIndices(batch)
	if err != nil {
		return nil, err
	}

	positions = make([]topology.Position, len(indices))
	for i, idx := range indices {
		positions[i] = s.lattice.Node(idx).Position
	}
	return positions, nil
}

// Occupancy returns the set of flattened node indices that are the BMU of
// at least one query vector. The bitmap is the hand-off to external
// clustering of mapped data: it marks which lattice units actually receive
// data under the current weights.
func (s *SOM) Occupancy(queries [][]float64) (*roaring.Bitmap, error) {
	batch, err := s.queryBatch(queries)
	if err != nil {
		return nil, err
	}

	indices, err := s.bmuIndices(batch)
	if err != nil {
		return nil, err
	}

	occupied := roaring.New()
	for _, idx := range indices {
		occupied.Add(uint32(idx))
	}
	return occupied, nil
}

// QuantizationError returns the mean distance between every query vector
// and its BMU weights, a standard goodness-of-fit measure for a trained map.
func (s *SOM) QuantizationError(queries [][]float64) (float64, error) {
	batch, err := s.queryBatch(queries)
	if err != nil {
		return 0, err
	}

	d, err := distance.Matrix(s.metric, batch, s.lattice.Weights())
	if err != nil {
		return 0, err
	}

	mins := distance.MinRows(d)
	var sum float64
	for _, v := range mins {
		sum += v
	}
	return sum / float64(len(mins)), nil
}

func (s *SOM) queryBatch(queries [][]float64) (*mat.Dense, error) {
	if len(queries) == 0 {
		return nil, ErrEmptyDataset
	}
	dim := s.lattice.Dim()
	flat := make([]float64, 0, len(queries)*dim)
	for _, q := range queries {
		if len(q) != dim {
			return nil, &lattice.ErrDimensionMismatch{Expected: dim, Actual: len(q)}
		}
		flat = append(flat, q...)
	}
	return mat.NewDense(len(queries), dim, flat), nil
}

func (s *SOM) bmuIndices(batch *mat.Dense) ([]int, error) {
	d, err := distance.Matrix(s.metric, batch, s.lattice.Weights())
	if err != nil {
		return nil, err
	}
	return distance.ArgminRows(d), nil
}
