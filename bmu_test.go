package gosom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gosom/lattice"
	"github.com/hupe1980/gosom/topology"
)

// fixedSOM builds a 2x1 rectangular map with node 0 at weights [0,0] and
// node 1 at weights [5,5].
func fixedSOM(t *testing.T) *SOM {
	t.Helper()
	som, err := New(2, 1, [][]float64{{0, 0}, {5, 5}},
		WithTopology(topology.Rectangular),
		WithInitializer(lattice.WeightsInit([]float64{0, 0, 5, 5})),
	)
	require.NoError(t, err)
	return som
}

func TestBMU(t *testing.T) {
	som := fixedSOM(t)

	pos, err := som.BMU([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, topology.Position{X: 0, Y: 0}, pos, "query near origin maps to node 0")

	pos, err = som.BMU([]float64{4, 6})
	require.NoError(t, err)
	assert.Equal(t, topology.Position{X: 1, Y: 0}, pos)
}

func TestBMUDimensionMismatch(t *testing.T) {
	som := fixedSOM(t)

	_, err := som.BMU([]float64{1, 2, 3})
	var mismatch *ErrDimensionMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Expected)
	assert.Equal(t, 3, mismatch.Actual)
}

func TestBMUStableTieBreak(t *testing.T) {
	// Both nodes share identical weights: every query ties, and the lower
	// flattened index must win.
	som, err := New(2, 1, [][]float64{{1, 1}},
		WithTopology(topology.Rectangular),
		WithInitializer(lattice.WeightsInit([]float64{3, 3, 3, 3})),
	)
	require.NoError(t, err)

	pos, err := som.BMU([]float64{2, 2})
	require.NoError(t, err)
	assert.Equal(t, topology.Position{X: 0, Y: 0}, pos)
}

func TestProject(t *testing.T) {
	som := fixedSOM(t)

	positions, err := som.Project([][]float64{{0, 1}, {5, 4}, {-1, -1}})
	require.NoError(t, err)
	require.Len(t, positions, 3)
	assert.Equal(t, topology.Position{X: 0, Y: 0}, positions[0])
	assert.Equal(t, topology.Position{X: 1, Y: 0}, positions[1])
	assert.Equal(t, topology.Position{X: 0, Y: 0}, positions[2])

	t.Run("Empty", func(t *testing.T) {
		_, err := som.Project(nil)
		require.ErrorIs(t, err, ErrEmptyDataset)
	})
}

func TestOccupancy(t *testing.T) {
	som := fixedSOM(t)

	occupied, err := som.Occupancy([][]float64{{0, 0}, {0, 1}, {1, 0}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), occupied.GetCardinality())
	assert.True(t, occupied.Contains(0))

	occupied, err = som.Occupancy([][]float64{{0, 0}, {5, 5}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), occupied.GetCardinality())
	assert.True(t, occupied.Contains(1))
}

func TestQuantizationError(t *testing.T) {
	som := fixedSOM(t)

	// Exact hits on both nodes.
	qe, err := som.QuantizationError([][]float64{{0, 0}, {5, 5}})
	require.NoError(t, err)
	assert.InDelta(t, 0, qe, 1e-12)

	qe, err = som.QuantizationError([][]float64{{3, 4}})
	require.NoError(t, err)
	assert.InDelta(t, 2.2360679, qe, 1e-6, "sqrt((5-3)^2+(5-4)^2)")
}

func TestProjectRecordsMetrics(t *testing.T) {
	collector := &BasicMetricsCollector{}
	som, err := New(2, 1, [][]float64{{0, 0}, {5, 5}},
		WithTopology(topology.Rectangular),
		WithInitializer(lattice.WeightsInit([]float64{0, 0, 5, 5})),
		WithMetricsCollector(collector),
	)
	require.NoError(t, err)

	_, err = som.Project([][]float64{{1, 1}, {2, 2}})
	require.NoError(t, err)

	_, err = som.Project([][]float64{{1, 1, 1}})
	require.Error(t, err)

	assert.Equal(t, int64(2), collector.ProjectCount.Load())
	assert.Equal(t, int64(1), collector.ProjectErrors.Load())
}
