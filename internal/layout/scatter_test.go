package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScatter_Deterministic(t *testing.T) {
	assert.Equal(t, Scatter(42, 6, 30), Scatter(42, 6, 30))
	assert.NotEqual(t, Scatter(42, 6, 1000), Scatter(43, 6, 1000))
}

func TestScatter_DistinctAndInRange(t *testing.T) {
	positions := Scatter(7, 10, 10)
	assert.Len(t, positions, 10)

	seen := make(map[int]bool)
	for _, p := range positions {
		assert.GreaterOrEqual(t, p, 0)
		assert.Less(t, p, 10)
		assert.False(t, seen[p], "position %d repeated", p)
		seen[p] = true
	}
}

func TestScatter_Empty(t *testing.T) {
	assert.Nil(t, Scatter(1, 0, 10))
	assert.Nil(t, Scatter(1, 3, 0))
}
