package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResample_CountAndEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		count  int
	}{
		{
			name: "straight line",
			points: []Point{
				{T: 0, X: 0, Y: 0},
				{T: 100, X: 100, Y: 0},
			},
			count: 8,
		},
		{
			name: "L shape",
			points: []Point{
				{T: 0, X: 0, Y: 0},
				{T: 50, X: 100, Y: 0},
				{T: 100, X: 100, Y: 100},
			},
			count: 5,
		},
		{
			name: "jagged path",
			points: []Point{
				{T: 0, X: 10, Y: 10},
				{T: 20, X: 30, Y: 5},
				{T: 45, X: 60, Y: 40},
				{T: 70, X: 58, Y: 90},
				{T: 110, X: 120, Y: 95},
			},
			count: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resample(tt.points, tt.count)
			require.Len(t, out, tt.count)

			first, last := tt.points[0], tt.points[len(tt.points)-1]
			assert.Equal(t, first.X, out[0].X)
			assert.Equal(t, first.Y, out[0].Y)
			assert.Equal(t, first.T, out[0].T)
			assert.Equal(t, last.X, out[tt.count-1].X)
			assert.Equal(t, last.Y, out[tt.count-1].Y)
			assert.Equal(t, last.T, out[tt.count-1].T)
		})
	}
}

func TestResample_UniformPathIsIdempotent(t *testing.T) {
	// Five points evenly spaced along x: resampling to the same count
	// returns the input (exact here, the arc lengths divide evenly).
	points := []Point{
		{T: 0, X: 0, Y: 0},
		{T: 25, X: 10, Y: 0},
		{T: 50, X: 20, Y: 0},
		{T: 75, X: 30, Y: 0},
		{T: 100, X: 40, Y: 0},
	}

	out := Resample(points, len(points))
	require.Len(t, out, len(points))
	for i := range points {
		assert.InDelta(t, points[i].X, out[i].X, 1, "x at %d", i)
		assert.InDelta(t, points[i].Y, out[i].Y, 1, "y at %d", i)
		assert.InDelta(t, points[i].T, out[i].T, 1, "t at %d", i)
	}
}

func TestResample_ShortInputUnchanged(t *testing.T) {
	assert.Empty(t, Resample(nil, 8))

	single := []Point{{T: 5, X: 3, Y: 4}}
	assert.Equal(t, single, Resample(single, 8))
}

func TestResample_ZeroLengthPathCollapses(t *testing.T) {
	points := []Point{
		{T: 0, X: 50, Y: 50},
		{T: 30, X: 50, Y: 50},
		{T: 60, X: 50, Y: 50},
	}

	out := Resample(points, 4)
	require.Len(t, out, 4)
	for _, p := range out {
		assert.Equal(t, points[0], p)
	}
}

func TestResample_InterpolatesWithinSegments(t *testing.T) {
	// Two equal-length segments, three output points: the midpoint must
	// land on the interior input point.
	points := []Point{
		{T: 0, X: 0, Y: 0},
		{T: 40, X: 60, Y: 0},
		{T: 80, X: 60, Y: 60},
	}

	out := Resample(points, 3)
	require.Len(t, out, 3)
	assert.Equal(t, Point{T: 40, X: 60, Y: 0}, out[1])
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(0, 0, 3, 4))
	assert.Equal(t, 0.0, Distance(7, 7, 7, 7))
}
