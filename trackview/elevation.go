package trackview

import (
	"sync"
	"time"
)

// ProfilePoint is one vertex of a normalized elevation polyline. X runs left
// to right across the time span of the data, Y runs top to bottom so higher
// elevations draw toward the top. Both are fractions in [0, 1].
type ProfilePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ElevationView owns the state behind an elevation profile: the source
// segments, the tolerance dial, the reduced segments derived from them, the
// elevation range of the vertical axis and a time cursor. Every mutation
// recomputes the derived state before it returns, so queries between
// mutations are always consistent. The view starts Empty and becomes
// populated by SetPoints or SetTrack.
type ElevationView struct {
	mu         sync.RWMutex
	config     Config
	segments   [][]Point
	reduced    [][]Point
	tolerance  float64
	cursor     time.Time
	start      time.Time
	end        time.Time
	rng        float64
	low        float64
	numPoints  int
	numReduced int
	cache      *reduceCache
	onChange   func()
}

// NewElevationView creates an empty elevation view with the given
// configuration
func NewElevationView(config Config) (*ElevationView, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ElevationView{
		config:    config,
		tolerance: clampTolerance(config.Tolerance),
		cache:     newReduceCache(config.CacheSize),
	}, nil
}

// SetPoints replaces the source with a single flat point list. A nil or
// empty list empties the view.
func (v *ElevationView) SetPoints(points []Point) {
	v.mu.Lock()
	if len(points) == 0 {
		v.setSourceLocked(nil)
	} else {
		v.setSourceLocked([][]Point{points})
	}
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// SetTrack replaces the source with the segments of a track. A nil track or
// one without points empties the view.
func (v *ElevationView) SetTrack(t *Track) {
	v.mu.Lock()
	if t == nil || t.NumPoints() == 0 {
		v.setSourceLocked(nil)
	} else {
		segments := make([][]Point, 0, len(t.Segments))
		for _, s := range t.Segments {
			if len(s.Points) > 0 {
				segments = append(segments, s.Points)
			}
		}
		v.setSourceLocked(segments)
	}
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// setSourceLocked installs new source segments (all non-empty, or nil for an
// empty view), resets the time span and cursor and recomputes. Cached
// reductions belong to the previous source and are dropped.
func (v *ElevationView) setSourceLocked(segments [][]Point) {
	v.segments = segments
	v.cache.purge()

	v.start, v.end = time.Time{}, time.Time{}
	if len(segments) > 0 {
		first := segments[0]
		last := segments[len(segments)-1]
		v.start = first[0].Time
		v.end = last[len(last)-1].Time
		if !v.start.IsZero() && v.end.Before(v.start) {
			v.end = v.start
		}
	}
	v.cursor = v.start
	v.recomputeLocked()
}

// SetTolerance moves the reduction dial. Values outside [0, 1] are clamped
// and NaN is treated as 0; the reduced state is recomputed only when the
// clamped value changes.
func (v *ElevationView) SetTolerance(tolerance float64) {
	v.mu.Lock()
	clamped := clampTolerance(tolerance)
	if clamped == v.tolerance {
		v.mu.Unlock()
		return
	}
	v.tolerance = clamped
	v.recomputeLocked()
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// SetTime moves the time cursor, clamped into [StartTime, EndTime]. A no-op
// while the view is empty.
func (v *ElevationView) SetTime(t time.Time) {
	v.mu.Lock()
	if v.numPoints == 0 {
		v.mu.Unlock()
		return
	}
	v.cursor = clampTime(t, v.start, v.end)
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// OnChange registers a callback invoked synchronously after each mutation.
// Pass nil to remove it.
func (v *ElevationView) OnChange(fn func()) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// recomputeLocked rebuilds all derived state from the source segments: the
// reduced segments at the current tolerance, the floored elevation range and
// the re-clamped cursor
func (v *ElevationView) recomputeLocked() {
	v.numPoints = 0
	for _, seg := range v.segments {
		v.numPoints += len(seg)
	}
	if v.numPoints == 0 {
		v.segments = nil
		v.reduced = nil
		v.numReduced = 0
		v.rng, v.low = 0, 0
		v.start, v.end = time.Time{}, time.Time{}
		v.cursor = time.Time{}
		return
	}

	project := ElevationProjector(v.start)
	v.reduced = make([][]Point, len(v.segments))
	v.numReduced = 0
	for i, seg := range v.segments {
		r := v.cache.reduceSegment(i, seg, v.tolerance, project)
		v.reduced[i] = r
		v.numReduced += len(r)
	}

	rng, low, _ := elevationRangeSegments(v.segments)
	v.rng, v.low = ApplyRangeFloor(rng, low, v.config.MinElevationRange)

	v.cursor = clampTime(v.cursor, v.start, v.end)
}

// Empty reports whether the view has no source points
func (v *ElevationView) Empty() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.numPoints == 0
}

// NumPoints returns the number of source points
func (v *ElevationView) NumPoints() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.numPoints
}

// NumReducedPoints returns the number of points surviving reduction at the
// current tolerance
func (v *ElevationView) NumReducedPoints() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.numReduced
}

// Tolerance returns the current clamped tolerance
func (v *ElevationView) Tolerance() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tolerance
}

// TimeCursor returns the current cursor position
func (v *ElevationView) TimeCursor() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cursor
}

// StartTime returns the timestamp of the first source point, or the zero
// time while the view is empty or untimed
func (v *ElevationView) StartTime() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.start
}

// EndTime returns the timestamp of the last source point, or the zero time
// while the view is empty or untimed
func (v *ElevationView) EndTime() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.end
}

// Range returns the vertical axis of the profile: the elevation span after
// the configured floor is applied, and the low and high values it covers
func (v *ElevationView) Range() (rng, low, high float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.rng, v.low, v.low + v.rng
}

// Profile returns one normalized polyline per source segment, built from the
// reduced points. X is the fraction of the time span when the span is
// usable; a point without a timestamp holds the x of the preceding point so
// the polyline never runs backwards. With missing or flat timestamps overall,
// points fall back to even spacing by index. Y places the elevation inside
// [low, low+range] with the axis inverted for screen coordinates; a zero
// range draws a centered flat line.
func (v *ElevationView) Profile() [][]ProfilePoint {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.numReduced == 0 {
		return nil
	}

	spanUsable := !v.start.IsZero() && v.end.After(v.start)
	duration := v.end.Sub(v.start).Seconds()

	out := make([][]ProfilePoint, 0, len(v.reduced))
	idx := 0
	lastX := 0.0
	for _, seg := range v.reduced {
		line := make([]ProfilePoint, 0, len(seg))
		for _, p := range seg {
			var x float64
			if spanUsable {
				if p.HasTime() {
					x = clamp(p.Time.Sub(v.start).Seconds()/duration, 0.0, 1.0)
				} else {
					x = lastX
				}
				lastX = x
			} else if v.numReduced > 1 {
				x = float64(idx) / float64(v.numReduced-1)
			}
			y := 0.5
			if v.rng > 0 {
				y = clamp(1-(p.elevationOrZero()-v.low)/v.rng, 0.0, 1.0)
			}
			line = append(line, ProfilePoint{X: x, Y: y})
			idx++
		}
		out = append(out, line)
	}
	return out
}

// CursorFraction returns the cursor position as a fraction of the time span,
// 0 when the view is empty or the span is unusable
func (v *ElevationView) CursorFraction() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.numPoints == 0 || v.start.IsZero() || !v.end.After(v.start) {
		return 0
	}
	return clamp(v.cursor.Sub(v.start).Seconds()/v.end.Sub(v.start).Seconds(), 0.0, 1.0)
}

// CursorPoint returns the source point closest in time to the cursor. The
// second return value is false while the view is empty.
func (v *ElevationView) CursorPoint() (Point, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.numPoints == 0 {
		return Point{}, false
	}
	return nearestInTime(v.segments, v.cursor)
}
