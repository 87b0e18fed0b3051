// Package geom provides the pointer-path geometry used by drag
// reconstruction: arc-length resampling of recorded cursor trails down
// to a fixed number of control points.
package geom

import "math"

// DefaultDragPoints is the number of control points a drag is resampled
// to when no override is configured.
const DefaultDragPoints = 8

// Point is a single sample on a pointer path. T is milliseconds relative
// to the start of the gesture.
type Point struct {
	T int64 `json:"time" yaml:"time"`
	X int   `json:"x" yaml:"x"`
	Y int   `json:"y" yaml:"y"`
}

// Distance returns the Euclidean distance between two positions.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// Resample converts a variable-length pointer path into count points
// spaced evenly by cumulative arc length. The first and last output
// points coincide with the input endpoints; interior points linearly
// interpolate t, x and y within the bounding input segment and floor
// each value to an integer. Paths of length 0 or 1 are returned
// unchanged. A path with zero total length collapses every output onto
// the first point.
func Resample(points []Point, count int) []Point {
	if len(points) <= 1 || count <= 0 {
		return points
	}

	// Cumulative arc length table, indexed by input position.
	lengths := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		step := Distance(float64(prev.X), float64(prev.Y), float64(cur.X), float64(cur.Y))
		lengths[i] = lengths[i-1] + step
	}
	total := lengths[len(lengths)-1]

	out := make([]Point, 0, count)
	seg := 1
	for i := 0; i < count; i++ {
		target := total * float64(i) / float64(count-1)

		// Advance to the segment containing the target length. The
		// table is monotonic, so the cursor never moves backwards.
		for seg < len(lengths)-1 && lengths[seg] < target {
			seg++
		}

		a, b := points[seg-1], points[seg]
		span := lengths[seg] - lengths[seg-1]
		frac := 0.0
		if span > 0 {
			frac = (target - lengths[seg-1]) / span
		}

		out = append(out, Point{
			T: int64(math.Floor(lerp(float64(a.T), float64(b.T), frac))),
			X: int(math.Floor(lerp(float64(a.X), float64(b.X), frac))),
			Y: int(math.Floor(lerp(float64(a.Y), float64(b.Y), frac))),
		})
	}
	return out
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
