package trackview

import "sync"

// MapView owns the state behind a track map: the composite source (tracks,
// routes, waypoints), a visibility flag per category, the shared tolerance
// dial, the reduced track segments, and the bounding box and viewport framing
// the visible data. Only track segments are ever reduced; routes and
// waypoints are drawn as-is. Every mutation recomputes the derived state
// before it returns.
type MapView struct {
	mu            sync.RWMutex
	config        Config
	tracks        []Track
	routes        []Route
	waypoints     []Waypoint
	showTracks    bool
	showRoutes    bool
	showWaypoints bool
	tolerance     float64
	reduced       [][]Point
	bounds        Bounds
	centerLat     float64
	centerLon     float64
	radiusMeters  float64
	numPoints     int
	numReduced    int
	cache         *reduceCache
	onChange      func()
}

// NewMapView creates an empty map view with the given configuration. The
// empty view already frames the configured home location.
func NewMapView(config Config) (*MapView, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	v := &MapView{
		config:        config,
		showTracks:    config.ShowTracks,
		showRoutes:    config.ShowRoutes,
		showWaypoints: config.ShowWaypoints,
		tolerance:     clampTolerance(config.Tolerance),
		cache:         newReduceCache(config.CacheSize),
	}
	v.recomputeLocked()
	return v, nil
}

// SetTracks replaces the track category of the source
func (v *MapView) SetTracks(tracks []Track) {
	v.mu.Lock()
	v.tracks = tracks
	v.cache.purge()
	v.recomputeLocked()
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// SetRoutes replaces the route category of the source
func (v *MapView) SetRoutes(routes []Route) {
	v.mu.Lock()
	v.routes = routes
	v.recomputeLocked()
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// SetWaypoints replaces the waypoint category of the source
func (v *MapView) SetWaypoints(waypoints []Waypoint) {
	v.mu.Lock()
	v.waypoints = waypoints
	v.recomputeLocked()
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// SetDocument replaces all three source categories from a parsed GPX
// document. A nil document clears the view.
func (v *MapView) SetDocument(doc *Document) {
	v.mu.Lock()
	if doc == nil {
		v.tracks, v.routes, v.waypoints = nil, nil, nil
	} else {
		v.tracks = doc.Tracks
		v.routes = doc.Routes
		v.waypoints = doc.Waypoints
	}
	v.cache.purge()
	v.recomputeLocked()
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Clear removes all source data; the view falls back to framing the home
// location
func (v *MapView) Clear() {
	v.SetDocument(nil)
}

// SetShowTracks toggles the track layer
func (v *MapView) SetShowTracks(show bool) {
	v.setVisibility(&v.showTracks, show)
}

// SetShowRoutes toggles the route layer
func (v *MapView) SetShowRoutes(show bool) {
	v.setVisibility(&v.showRoutes, show)
}

// SetShowWaypoints toggles the waypoint layer
func (v *MapView) SetShowWaypoints(show bool) {
	v.setVisibility(&v.showWaypoints, show)
}

func (v *MapView) setVisibility(flag *bool, show bool) {
	v.mu.Lock()
	if *flag == show {
		v.mu.Unlock()
		return
	}
	*flag = show
	v.recomputeLocked()
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// SetTolerance moves the shared reduction dial for all track segments.
// Values outside [0, 1] are clamped and NaN is treated as 0; the reduced
// state is recomputed only when the clamped value changes.
func (v *MapView) SetTolerance(tolerance float64) {
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

// OnChange registers a callback invoked synchronously after each mutation.
// Pass nil to remove it.
func (v *MapView) OnChange(fn func()) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// recomputeLocked rebuilds all derived state: reduced track segments at the
// current tolerance, the bounding box over the visible categories, and the
// viewport framing it. Reduction ignores visibility so toggling the track
// layer back on never recomputes; the box and viewport cover visible data
// only and fall back to the home box when nothing is visible.
func (v *MapView) recomputeLocked() {
	v.numPoints = 0
	v.numReduced = 0
	v.reduced = nil

	segIdx := 0
	for ti := range v.tracks {
		for _, s := range v.tracks[ti].Segments {
			if len(s.Points) == 0 {
				segIdx++
				continue
			}
			v.numPoints += len(s.Points)
			r := v.cache.reduceSegment(segIdx, s.Points, v.tolerance, GeographicProjector)
			v.reduced = append(v.reduced, r)
			v.numReduced += len(r)
			segIdx++
		}
	}

	b := EmptyBounds()
	if v.showTracks {
		for ti := range v.tracks {
			for _, s := range v.tracks[ti].Segments {
				for _, p := range s.Points {
					b.Extend(p.Lat, p.Lon)
				}
			}
		}
	}
	if v.showRoutes {
		for _, r := range v.routes {
			for _, p := range r.Points {
				b.Extend(p.Lat, p.Lon)
			}
		}
	}
	if v.showWaypoints {
		for _, w := range v.waypoints {
			b.Extend(w.Lat, w.Lon)
		}
	}
	if !b.Valid() {
		b = fallbackBounds(v.config)
	}
	v.bounds = b
	v.centerLat, v.centerLon, v.radiusMeters = FitViewport(b, v.config)
}

// NumTrackPoints returns the total number of track points across all
// segments of all tracks
func (v *MapView) NumTrackPoints() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.numPoints
}

// NumReducedTrackPoints returns the total number of track points surviving
// reduction at the current tolerance
func (v *MapView) NumReducedTrackPoints() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.numReduced
}

// Tolerance returns the current clamped tolerance
func (v *MapView) Tolerance() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tolerance
}

// ShowTracks reports whether the track layer is visible
func (v *MapView) ShowTracks() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.showTracks
}

// ShowRoutes reports whether the route layer is visible
func (v *MapView) ShowRoutes() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.showRoutes
}

// ShowWaypoints reports whether the waypoint layer is visible
func (v *MapView) ShowWaypoints() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.showWaypoints
}

// Bounds returns the bounding box over the visible categories, or the home
// box when nothing is visible
func (v *MapView) Bounds() Bounds {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bounds
}

// Viewport returns the camera framing the visible data: center coordinate
// and radius in meters
func (v *MapView) Viewport() (centerLat, centerLon, radiusMeters float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.centerLat, v.centerLon, v.radiusMeters
}

// TrackPolylines returns the reduced points of each track segment, one
// polyline per segment, or nil while the track layer is hidden
func (v *MapView) TrackPolylines() [][]Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.showTracks {
		return nil
	}
	return v.reduced
}

// RoutePolylines returns the points of each route, never reduced, or nil
// while the route layer is hidden
func (v *MapView) RoutePolylines() [][]Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.showRoutes || len(v.routes) == 0 {
		return nil
	}
	out := make([][]Point, 0, len(v.routes))
	for _, r := range v.routes {
		out = append(out, r.Points)
	}
	return out
}

// VisibleWaypoints returns the waypoints, or nil while the waypoint layer is
// hidden
func (v *MapView) VisibleWaypoints() []Waypoint {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.showWaypoints {
		return nil
	}
	return v.waypoints
}
