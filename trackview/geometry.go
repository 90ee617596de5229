package trackview

import (
	"math"
	"time"

	"golang.org/x/exp/constraints"
)

// haversineDistance calculates the great-circle distance between two points
// in meters using the Haversine formula
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000 // meters

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// perpendicularDistance returns the distance from (px, py) to the line
// through (x1, y1) and (x2, y2). When the line endpoints coincide it falls
// back to the plain distance from the first endpoint.
func perpendicularDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	if dx == 0 && dy == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	return math.Abs(dx*(y1-py)-dy*(x1-px)) / math.Hypot(dx, dy)
}

// Bounds is a geographic bounding box in decimal degrees
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// EmptyBounds returns a degenerate bounding box that extends to cover the
// first coordinate added to it
func EmptyBounds() Bounds {
	return Bounds{
		MinLat: 1e30,
		MinLon: 1e30,
		MaxLat: -1e30,
		MaxLon: -1e30,
	}
}

// Valid reports whether the bounds cover at least one coordinate
func (b Bounds) Valid() bool {
	return b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon
}

// Extend grows the bounds to include the given coordinate
func (b *Bounds) Extend(lat, lon float64) {
	b.MinLat = math.Min(b.MinLat, lat)
	b.MinLon = math.Min(b.MinLon, lon)
	b.MaxLat = math.Max(b.MaxLat, lat)
	b.MaxLon = math.Max(b.MaxLon, lon)
}

// Union returns the smallest bounds covering both b and o
func (b Bounds) Union(o Bounds) Bounds {
	if !o.Valid() {
		return b
	}
	if !b.Valid() {
		return o
	}
	b.Extend(o.MinLat, o.MinLon)
	b.Extend(o.MaxLat, o.MaxLon)
	return b
}

// Contains reports whether the coordinate lies inside the bounds
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Center returns the midpoint of the bounds per axis
func (b Bounds) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// clamp limits x to the range [low, high]
func clamp[T constraints.Ordered](x, low, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// clampTolerance limits a tolerance dial to [0, 1]; NaN is treated as 0
func clampTolerance(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return clamp(t, 0.0, 1.0)
}

// clampTime limits t to the range [start, end]
func clampTime(t, start, end time.Time) time.Time {
	if t.Before(start) {
		return start
	}
	if t.After(end) {
		return end
	}
	return t
}
