package vectormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 2},
			b:    []float32{-1, -2},
			want: -1.0,
		},
		{
			name: "dimension mismatch returns zero",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2},
			want: 0.0,
		},
		{
			name: "zero vector returns zero",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineSimilaritySelf(t *testing.T) {
	vectors := [][]float32{
		{0.5},
		{1, 2, 3, 4},
		{-3.5, 2.25, 0.125},
	}

	for _, v := range vectors {
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	}
}

func TestSquaredEuclideanDistance(t *testing.T) {
	got, err := SquaredEuclideanDistance([]float32{1, 2}, []float32{4, 6})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got, 1e-9)

	got, err = SquaredEuclideanDistance([]float32{1, 1}, []float32{1, 1})
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestSquaredEuclideanDistanceMismatch(t *testing.T) {
	_, err := SquaredEuclideanDistance([]float32{1, 2}, []float32{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name     string
		vector   []float32
		expected int
		want     bool
	}{
		{"matching dimension", []float32{1, 2, 3}, 3, true},
		{"wrong dimension", []float32{1, 2, 3}, 4, false},
		{"no constraint", []float32{1, 2, 3}, 0, true},
		{"negative means no constraint", []float32{1, 2}, -1, true},
		{"empty vector with constraint", []float32{}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateDimensions(tt.vector, tt.expected))
		})
	}
}

func TestValidateVector(t *testing.T) {
	require.NoError(t, ValidateVector([]float32{1, -2, 0.5}))
	require.NoError(t, ValidateVector(nil))

	nan := float32(math.NaN())
	err := ValidateVector([]float32{1, nan, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")

	inf := float32(math.Inf(1))
	require.Error(t, ValidateVector([]float32{inf}))
	require.Error(t, ValidateVector([]float32{float32(math.Inf(-1))}))
}

func TestPadOrTruncate(t *testing.T) {
	assert.Equal(t, []float32{1, 2, 0}, PadOrTruncate([]float32{1, 2}, 3))
	assert.Equal(t, []float32{1, 2}, PadOrTruncate([]float32{1, 2, 3}, 2))

	exact := []float32{1, 2, 3}
	got := PadOrTruncate(exact, 3)
	assert.Equal(t, exact, got)

	assert.Empty(t, PadOrTruncate([]float32{1}, 0))
	assert.Equal(t, []float32{0, 0}, PadOrTruncate(nil, 2))
}
