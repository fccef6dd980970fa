// Package vectormath provides similarity, distance, and validation helpers
// for embedding vectors.
//
// Dimension-mismatch policy is asymmetric: CosineSimilarity treats
// mismatched vectors as maximally dissimilar and returns 0, while
// SquaredEuclideanDistance surfaces the mismatch as an error. Similarity
// feeds ranking, where a zero score simply sinks the candidate; distance
// feeds computations where silently comparing incompatible vectors would
// corrupt results.
package vectormath

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned by distance computations on vectors of
// unequal length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// CosineSimilarity computes the cosine similarity between two vectors.
// Mismatched dimensions and zero-norm vectors yield 0, not an error.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SquaredEuclideanDistance computes the sum of squared differences between
// two vectors of equal length.
func SquaredEuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return sum, nil
}

// ValidateDimensions reports whether the vector matches the expected
// dimension. An expectedDim <= 0 means no constraint.
func ValidateDimensions(vector []float32, expectedDim int) bool {
	if expectedDim <= 0 {
		return true
	}
	return len(vector) == expectedDim
}

// ValidateVector checks every component for non-finite values. A single
// NaN or infinite component invalidates the whole vector.
func ValidateVector(vector []float32) error {
	for i, v := range vector {
		f := float64(v)
		if math.IsNaN(f) {
			return fmt.Errorf("non-finite component at index %d: NaN", i)
		}
		if math.IsInf(f, 0) {
			return fmt.Errorf("non-finite component at index %d: %v", i, f)
		}
	}
	return nil
}

// PadOrTruncate adjusts a vector to exactly dim components, padding with
// trailing zeros or truncating trailing elements. Exact-length input is
// returned unchanged.
func PadOrTruncate(vector []float32, dim int) []float32 {
	if dim < 0 {
		dim = 0
	}
	if len(vector) == dim {
		return vector
	}

	result := make([]float32, dim)
	copy(result, vector)
	return result
}
