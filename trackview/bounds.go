package trackview

// ElevationRange aggregates the elevation extremes of a point list. Only
// points that carry elevation data participate; when none do, all three
// results are 0. A single elevation yields a range of 0 with low == high.
func ElevationRange(points []Point) (rng, low, high float64) {
	return elevationRangeSegments([][]Point{points})
}

// elevationRangeSegments is ElevationRange across several segments
func elevationRangeSegments(segments [][]Point) (rng, low, high float64) {
	found := false
	for _, points := range segments {
		for _, p := range points {
			if !p.HasElevation() {
				continue
			}
			e := *p.Elevation
			if !found {
				low, high = e, e
				found = true
				continue
			}
			if e < low {
				low = e
			}
			if e > high {
				high = e
			}
		}
	}
	if !found {
		return 0, 0, 0
	}
	return high - low, low, high
}

// ApplyRangeFloor substitutes floor for ranges smaller than it, shifting low
// down by half the deficit so the original band stays centered in the new one
func ApplyRangeFloor(rng, low, floor float64) (float64, float64) {
	if floor > 0 && rng < floor {
		low -= (floor - rng) / 2
		rng = floor
	}
	return rng, low
}

// boundsOfPoints accumulates the geographic bounding box of a point list
func boundsOfPoints(points []Point) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b.Extend(p.Lat, p.Lon)
	}
	return b
}

// fallbackBounds returns the configured home box used when nothing is visible
func fallbackBounds(cfg Config) Bounds {
	half := cfg.HomeSpan / 2
	return Bounds{
		MinLat: cfg.HomeLatitude - half,
		MinLon: cfg.HomeLongitude - half,
		MaxLat: cfg.HomeLatitude + half,
		MaxLon: cfg.HomeLongitude + half,
	}
}

// FitViewport derives a map camera from a bounding box: the center is the
// per-axis midpoint, the radius is half the great-circle distance between the
// min and max corners scaled by FrameScale so the box sits inside the frame
// with a margin. The radius never drops below MinFrameRadius; invalid bounds
// fall back to the configured home center.
func FitViewport(b Bounds, cfg Config) (centerLat, centerLon, radiusMeters float64) {
	if !b.Valid() {
		return cfg.HomeLatitude, cfg.HomeLongitude, cfg.MinFrameRadius
	}
	centerLat, centerLon = b.Center()
	diagonal := haversineDistance(b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
	radiusMeters = diagonal / 2 * cfg.FrameScale
	if radiusMeters < cfg.MinFrameRadius {
		radiusMeters = cfg.MinFrameRadius
	}
	return centerLat, centerLon, radiusMeters
}
