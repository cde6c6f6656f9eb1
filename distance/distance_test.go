package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Metric
		wantErr bool
	}{
		{"Euclidean", "euclidean", Euclidean, false},
		{"Manhattan", "manhattan", Manhattan, false},
		{"Cosine", "cosine", Cosine, false},
		{"Unknown", "chebyshev", "", true},
		{"Empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				var unknown *ErrUnknownMetric
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, tt.input, unknown.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		u, v     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, math.Sqrt(27)},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, math.Sqrt(8)},
		{"Zero", []float64{0, 0}, []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EuclideanDistance(tt.u, tt.v), 1e-12)
		})
	}
}

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		name     string
		u, v     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 9},
		{"Identical", []float64{1, 2}, []float64{1, 2}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ManhattanDistance(tt.u, tt.v), 1e-12)
		})
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		u, v     []float64
		expected float64
	}{
		{"Parallel", []float64{1, 2, 3}, []float64{2, 4, 6}, 0},
		{"Orthogonal", []float64{1, 0}, []float64{0, 1}, 1},
		{"Opposite", []float64{1, 0}, []float64{-1, 0}, 2},
		{"ZeroLeft", []float64{0, 0}, []float64{1, 2}, CosineZeroDistance},
		{"ZeroRight", []float64{1, 2}, []float64{0, 0}, CosineZeroDistance},
		{"ZeroBoth", []float64{0, 0}, []float64{0, 0}, CosineZeroDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineDistance(tt.u, tt.v), 1e-12)
		})
	}
}

func TestMatrixAgreesWithPairwise(t *testing.T) {
	batch := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 1,
		-2, 5,
	})
	weights := mat.NewDense(4, 2, []float64{
		0, 0,
		5, 5,
		1, 1,
		-3, 4,
	})

	for _, metric := range []Metric{Euclidean, Manhattan, Cosine} {
		t.Run(string(metric), func(t *testing.T) {
			pairwise, err := Provider(metric)
			require.NoError(t, err)

			got, err := Matrix(metric, batch, weights)
			require.NoError(t, err)

			n, m := got.Dims()
			require.Equal(t, 3, n)
			require.Equal(t, 4, m)

			for i := 0; i < n; i++ {
				for j := 0; j < m; j++ {
					want := pairwise(batch.RawRowView(i), weights.RawRowView(j))
					assert.InDelta(t, want, got.At(i, j), 1e-9, "entry (%d,%d)", i, j)
				}
			}
		})
	}
}

func TestMatrixUnknownMetric(t *testing.T) {
	_, err := Matrix(Metric("hamming"), mat.NewDense(1, 1, nil), mat.NewDense(1, 1, nil))
	var unknown *ErrUnknownMetric
	require.ErrorAs(t, err, &unknown)
}

func TestMatrixEuclideanPrecomputedNorms(t *testing.T) {
	batch := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		0, 0, 0,
	})
	weights := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	norms := SquaredRowNorms(weights)
	assert.InDelta(t, 14, norms[0], 1e-12)
	assert.InDelta(t, 77, norms[1], 1e-12)

	got := MatrixEuclidean(batch, weights, norms)
	assert.InDelta(t, 0, got.At(0, 0), 1e-9)
	assert.InDelta(t, math.Sqrt(27), got.At(0, 1), 1e-9)
	assert.InDelta(t, math.Sqrt(14), got.At(1, 0), 1e-9)
}

func TestArgminRowsStable(t *testing.T) {
	// Two identical minima in a row: the lower column index wins.
	d := mat.NewDense(3, 3, []float64{
		3, 1, 1,
		2, 2, 2,
		5, 4, 0,
	})

	assert.Equal(t, []int{1, 0, 2}, ArgminRows(d))
}

func TestMinRows(t *testing.T) {
	d := mat.NewDense(2, 3, []float64{
		3, 1, 2,
		0.5, 4, 9,
	})

	got := MinRows(d)
	assert.InDelta(t, 1, got[0], 1e-12)
	assert.InDelta(t, 0.5, got[1], 1e-12)
}
