package trackview

import (
	"sort"
	"time"
)

// Point represents a single recorded GPS position
type Point struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Elevation *float64  `json:"elevation,omitempty"` // meters, nil when the source had no elevation
	Time      time.Time `json:"time,omitempty"`      // zero when the source had no timestamp
}

// HasElevation reports whether the point carries elevation data
func (p Point) HasElevation() bool {
	return p.Elevation != nil
}

// HasTime reports whether the point carries a timestamp
func (p Point) HasTime() bool {
	return !p.Time.IsZero()
}

// elevationOrZero returns the elevation, substituting 0 when absent
func (p Point) elevationOrZero() float64 {
	if p.Elevation == nil {
		return 0
	}
	return *p.Elevation
}

// Segment is an ordered run of points within a track
type Segment struct {
	Points []Point `json:"points"`
}

// Track is an ordered sequence of segments recorded over time
type Track struct {
	Name     string    `json:"name,omitempty"`
	Segments []Segment `json:"segments"`
}

// NumPoints returns the total number of points across all segments
func (t *Track) NumPoints() int {
	n := 0
	for _, s := range t.Segments {
		n += len(s.Points)
	}
	return n
}

// StartTime returns the timestamp of the first point of the first
// non-empty segment, or the zero time when the track has no points
func (t *Track) StartTime() time.Time {
	for _, s := range t.Segments {
		if len(s.Points) > 0 {
			return s.Points[0].Time
		}
	}
	return time.Time{}
}

// EndTime returns the timestamp of the last point of the last
// non-empty segment, or the zero time when the track has no points
func (t *Track) EndTime() time.Time {
	for i := len(t.Segments) - 1; i >= 0; i-- {
		pts := t.Segments[i].Points
		if len(pts) > 0 {
			return pts[len(pts)-1].Time
		}
	}
	return time.Time{}
}

// PointAt returns the recorded point closest in time to ts. Points are
// expected in chronological order, as written by GPS recorders. The second
// return value is false when the track is empty.
func (t *Track) PointAt(ts time.Time) (Point, bool) {
	segs := make([][]Point, len(t.Segments))
	for i, s := range t.Segments {
		segs[i] = s.Points
	}
	return nearestInTime(segs, ts)
}

// nearestInTime picks the point whose timestamp is closest to ts, searching
// each segment with a binary search over its chronological point order.
// Points without timestamps are skipped; if no point has a timestamp the
// first point is returned.
func nearestInTime(segments [][]Point, ts time.Time) (Point, bool) {
	var best Point
	var bestDelta time.Duration
	found := false
	timed := false

	for _, pts := range segments {
		if len(pts) == 0 {
			continue
		}
		if !found {
			best = pts[0]
			found = true
		}
		idx := sort.Search(len(pts), func(i int) bool {
			return !pts[i].Time.Before(ts)
		})
		for _, cand := range neighborIndexes(idx, len(pts)) {
			p := pts[cand]
			if !p.HasTime() {
				continue
			}
			delta := ts.Sub(p.Time)
			if delta < 0 {
				delta = -delta
			}
			if !timed || delta < bestDelta {
				best = p
				bestDelta = delta
				timed = true
			}
		}
	}
	return best, found
}

// neighborIndexes returns the valid indexes adjacent to a sort.Search result
func neighborIndexes(idx, n int) []int {
	out := make([]int, 0, 2)
	if idx-1 >= 0 && idx-1 < n {
		out = append(out, idx-1)
	}
	if idx >= 0 && idx < n {
		out = append(out, idx)
	}
	return out
}

// Route is a single planned point list without timestamps
type Route struct {
	Name   string  `json:"name,omitempty"`
	Points []Point `json:"points"`
}

// Waypoint is a named standalone point of interest
type Waypoint struct {
	Point
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Document bundles the contents of one GPX file: recorded tracks, planned
// routes and named waypoints
type Document struct {
	Name      string     `json:"name,omitempty"`
	Creator   string     `json:"creator,omitempty"`
	Tracks    []Track    `json:"tracks"`
	Routes    []Route    `json:"routes"`
	Waypoints []Waypoint `json:"waypoints"`
}

// NumTrackPoints returns the total number of track points in the document
func (d *Document) NumTrackPoints() int {
	n := 0
	for i := range d.Tracks {
		n += d.Tracks[i].NumPoints()
	}
	return n
}

// NumRoutePoints returns the total number of route points in the document
func (d *Document) NumRoutePoints() int {
	n := 0
	for _, r := range d.Routes {
		n += len(r.Points)
	}
	return n
}

// Empty reports whether the document holds no points at all
func (d *Document) Empty() bool {
	return d.NumTrackPoints() == 0 && d.NumRoutePoints() == 0 && len(d.Waypoints) == 0
}
