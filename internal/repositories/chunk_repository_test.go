package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	testCases := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{name: "Identical vectors", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, expected: 1},
		{name: "Opposite vectors", a: []float32{1, 0}, b: []float32{-1, 0}, expected: -1},
		{name: "Orthogonal vectors", a: []float32{1, 0}, b: []float32{0, 1}, expected: 0},
		{name: "Scaled vectors keep similarity", a: []float32{1, 1}, b: []float32{5, 5}, expected: 1},
		{name: "Zero vector", a: []float32{0, 0}, b: []float32{1, 1}, expected: 0},
		{name: "Mismatched lengths", a: []float32{1, 2}, b: []float32{1}, expected: 0},
		{name: "Empty vectors", a: nil, b: nil, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, CosineSimilarity(tc.a, tc.b), 1e-6)
		})
	}
}

func TestCosineSimilarityOrdersByRelevance(t *testing.T) {
	query := []float32{1, 0, 0}
	near := []float32{0.9, 0.1, 0}
	far := []float32{0.1, 0.9, 0.3}

	assert.Greater(t, CosineSimilarity(query, near), CosineSimilarity(query, far))
}
