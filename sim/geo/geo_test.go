package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageArea_Contains(t *testing.T) {
	a, err := NewCoverageArea(Coordinate{0, 0}, 5)
	require.NoError(t, err)
	assert.True(t, a.Contains(Coordinate{4, 0}))
	assert.True(t, a.Contains(Coordinate{3, 4}), "boundary is inside")
	assert.False(t, a.Contains(Coordinate{3.01, 4}))
}

func TestCoverageArea_ZeroRadius(t *testing.T) {
	a, err := NewCoverageArea(Coordinate{1, 1}, 0)
	require.NoError(t, err)
	assert.True(t, a.Contains(Coordinate{1, 1}))
	assert.False(t, a.Contains(Coordinate{1, 1.0001}))
}

func TestNewCoverageArea_NegativeRadius(t *testing.T) {
	_, err := NewCoverageArea(Coordinate{}, -1)
	assert.Error(t, err)
}

func TestCoordinate_AddAndDistance(t *testing.T) {
	c := Coordinate{1, 2}.Add(2, 2)
	assert.Equal(t, Coordinate{3, 4}, c)
	assert.Equal(t, 5.0, c.Distance(Coordinate{}))
	assert.Equal(t, "(3.00, 4.00)", c.String())
}

func TestRect_Contains(t *testing.T) {
	r := Rect{MinX: 0, MaxX: 10, MinY: -5, MaxY: 5}
	assert.True(t, r.Contains(Coordinate{10, -5}))
	assert.False(t, r.Contains(Coordinate{10.1, 0}))
}
