package gosom

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gosom/blobstore"
	"github.com/hupe1980/gosom/distance"
	"github.com/hupe1980/gosom/lattice"
	"github.com/hupe1980/gosom/persistence"
	"github.com/hupe1980/gosom/topology"
)

func testData() [][]float64 {
	return [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 1},
	}
}

func newTestSOM(t *testing.T, opts ...Option) *SOM {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewSource(7)))}, opts...)
	som, err := New(4, 3, testData(), opts...)
	require.NoError(t, err)
	return som
}

func TestNew(t *testing.T) {
	som := newTestSOM(t)

	assert.Equal(t, 4, som.Width())
	assert.Equal(t, 3, som.Height())
	assert.Equal(t, 3, som.Dim())
	assert.Equal(t, distance.Euclidean, som.Metric())
	assert.False(t, som.Periodic())
	assert.Equal(t, 12, som.Lattice().Len())
	assert.Empty(t, som.Convergence())
}

func TestNewValidation(t *testing.T) {
	data := testData()

	t.Run("EmptyDataset", func(t *testing.T) {
		_, err := New(4, 3, nil)
		require.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("RaggedDataset", func(t *testing.T) {
		_, err := New(4, 3, [][]float64{{1, 2}, {1}})
		var mismatch *ErrDimensionMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 2, mismatch.Expected)
		assert.Equal(t, 1, mismatch.Actual)
	})

	t.Run("UnknownMetric", func(t *testing.T) {
		_, err := New(4, 3, data, WithMetric(distance.Metric("hamming")))
		var unknown *distance.ErrUnknownMetric
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("UnknownTopology", func(t *testing.T) {
		_, err := New(4, 3, data, WithTopology(topology.Topology("spherical")))
		var unknown *topology.ErrUnknownTopology
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("PeriodicRectangular", func(t *testing.T) {
		_, err := New(4, 3, data, WithTopology(topology.Rectangular), WithPeriodic(true))
		require.ErrorIs(t, err, topology.ErrPeriodicRectangular)
	})

	t.Run("InvalidGrid", func(t *testing.T) {
		_, err := New(0, 3, data)
		require.ErrorIs(t, err, topology.ErrInvalidGridSize)
	})
}

func TestRandomInitWithinDataBounds(t *testing.T) {
	som := newTestSOM(t)

	for i := 0; i < som.Lattice().Len(); i++ {
		for _, w := range som.Lattice().Node(i).Weights {
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
		}
	}
}

func TestSeedVectorOption(t *testing.T) {
	som := newTestSOM(t, WithTopology(topology.Rectangular), WithInitializer(
		lattice.SeedVectorInit([]float64{1, 0, 0}, []float64{0, 1, 0}),
	))

	// Deterministic, data-independent layout.
	n := som.Lattice().At(0, 0)
	assert.InDelta(t, -1, n.Weights[0], 1e-12)
	assert.InDelta(t, -1, n.Weights[1], 1e-12)
	assert.InDelta(t, 0, n.Weights[2], 1e-12)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	som := newTestSOM(t, WithPeriodic(true))
	require.NoError(t, som.Train(context.Background(), func(o *TrainOptions) {
		o.Epochs = 10
	}))

	path := filepath.Join(t.TempDir(), "trained.som")
	require.NoError(t, som.Save(path, persistence.CompressionZSTD))

	loaded, err := Load(path, testData())
	require.NoError(t, err)

	assert.Equal(t, som.Width(), loaded.Width())
	assert.Equal(t, som.Height(), loaded.Height())
	assert.Equal(t, som.Periodic(), loaded.Periodic())
	assert.Equal(t, som.Dim(), loaded.Dim())
	assert.Equal(t, som.Lattice().RawWeights(), loaded.Lattice().RawWeights(),
		"weights survive bit-for-bit")
}

func TestLoadGeometrySupersedesOptions(t *testing.T) {
	som := newTestSOM(t)

	path := filepath.Join(t.TempDir(), "map.som")
	require.NoError(t, som.Save(path, persistence.CompressionNone))

	// Width/height/periodic come from the snapshot header, not from the
	// caller; only topology and ambient options apply.
	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Width())
	assert.Equal(t, 3, loaded.Height())
	assert.False(t, loaded.Periodic())

	t.Run("TrainWithoutData", func(t *testing.T) {
		err := loaded.Train(context.Background())
		require.ErrorIs(t, err, ErrMissingTrainingData)
	})

	t.Run("MismatchedData", func(t *testing.T) {
		_, err := Load(path, [][]float64{{1, 2}})
		var mismatch *ErrDimensionMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 3, mismatch.Expected)
	})
}

func TestSaveToLoadFromBlobStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	som := newTestSOM(t)
	require.NoError(t, som.SaveTo(ctx, store, "maps/test.som", persistence.CompressionLZ4))

	loaded, err := LoadFrom(ctx, store, "maps/test.som", testData())
	require.NoError(t, err)
	assert.Equal(t, som.Lattice().RawWeights(), loaded.Lattice().RawWeights())

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFrom(ctx, store, "maps/missing.som", nil)
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}

func TestNeighborDifferences(t *testing.T) {
	som := newTestSOM(t)

	diffs, err := som.NeighborDifferences()
	require.NoError(t, err)
	assert.Len(t, diffs, som.Lattice().Len())
	for _, d := range diffs {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}
