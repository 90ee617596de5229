package trackview

import (
	"math"
	"time"
)

// Projector maps a point onto the 2D plane the reducer measures distances in
type Projector func(p Point) (x, y float64)

// GeographicProjector projects a point onto the longitude/latitude plane
func GeographicProjector(p Point) (x, y float64) {
	return p.Lon, p.Lat
}

// ElevationProjector returns a projector onto the time/elevation plane:
// x is seconds since start (0 when the point has no timestamp), y is the
// elevation with 0 substituted when absent. The substitution applies to the
// projection only, never to the stored points.
func ElevationProjector(start time.Time) Projector {
	return func(p Point) (x, y float64) {
		if p.HasTime() && !start.IsZero() {
			x = p.Time.Sub(start).Seconds()
		}
		return x, p.elevationOrZero()
	}
}

// Reduce simplifies a point list with the Douglas-Peucker algorithm over the
// projected coordinates and returns the surviving points. The result is a
// subsequence of the input: the first and last points are always retained and
// no point is ever moved or synthesized.
//
// tolerance is a dial in [0, 1]; values outside are clamped and NaN behaves
// like 0. 0 returns the input unchanged, 1 collapses every run to its
// endpoints. The distance threshold is tolerance times the diagonal of the
// projected bounding box of the whole input, computed once per call so the
// threshold is fixed through the recursion and point counts shrink
// monotonically as tolerance grows. A NaN projected coordinate poisons the
// threshold and collapses its run to the endpoints.
func Reduce(points []Point, tolerance float64, project Projector) []Point {
	tolerance = clampTolerance(tolerance)
	if tolerance == 0 || len(points) <= 2 {
		return points
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range points {
		x, y := project(p)
		xs[i], ys[i] = x, y
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	epsilon := tolerance * math.Hypot(maxX-minX, maxY-minY)

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	douglasPeucker(xs, ys, 0, len(points)-1, epsilon, keep)

	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	out := make([]Point, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

// douglasPeucker marks the points between first and last that survive
// simplification. It finds the interior point farthest from the chord between
// the endpoints; if that distance is within epsilon the whole run collapses
// onto the chord, otherwise the farthest point is kept and both halves are
// subdivided recursively. The pivot is shared by both halves so it is marked
// exactly once.
func douglasPeucker(xs, ys []float64, first, last int, epsilon float64, keep []bool) {
	if last-first < 2 {
		return
	}

	maxDist := 0.0
	maxIdx := first
	for i := first + 1; i < last; i++ {
		d := perpendicularDistance(xs[i], ys[i], xs[first], ys[first], xs[last], ys[last])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	// Collapse unless an interior point is strictly farther than epsilon.
	// NaN distances and a NaN epsilon compare false, so they land here too
	// instead of recursing on the same run again.
	if !(maxDist > epsilon) {
		return
	}

	keep[maxIdx] = true
	douglasPeucker(xs, ys, first, maxIdx, epsilon, keep)
	douglasPeucker(xs, ys, maxIdx, last, epsilon, keep)
}
