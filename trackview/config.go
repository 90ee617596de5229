package trackview

// Config holds all configuration options for the track display views
type Config struct {
	Tolerance         float64 // initial reduction tolerance (0.0-1.0, clamped)
	MinElevationRange float64 // smallest elevation axis span in meters
	HomeLatitude      float64 // map center when nothing is visible
	HomeLongitude     float64
	HomeSpan          float64 // fallback bounding box span in degrees
	FrameScale        float64 // viewport radius multiplier over the half-diagonal
	MinFrameRadius    float64 // smallest viewport radius in meters
	ShowTracks        bool    // initial track layer visibility
	ShowRoutes        bool    // initial route layer visibility
	ShowWaypoints     bool    // initial waypoint layer visibility
	CacheSize         int     // reduction memo entries per view (0 disables)
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Tolerance:         0.0,
		MinElevationRange: 10.0,
		HomeLatitude:      37.7749, // San Francisco
		HomeLongitude:     -122.4194,
		HomeSpan:          0.02,
		FrameScale:        1.5,
		MinFrameRadius:    250.0,
		ShowTracks:        true,
		ShowRoutes:        true,
		ShowWaypoints:     true,
		CacheSize:         32,
	}
}

// Validate checks if the configuration is valid and returns an error if not.
// Tolerance is never rejected: out-of-range values are clamped on use.
func (c *Config) Validate() error {
	if c.HomeLatitude < -90.0 || c.HomeLatitude > 90.0 {
		return ErrInvalidLatitude
	}
	if c.HomeLongitude < -180.0 || c.HomeLongitude > 180.0 {
		return ErrInvalidLongitude
	}
	if c.HomeSpan <= 0.0 {
		return ErrInvalidHomeSpan
	}
	if c.MinElevationRange < 0.0 {
		return ErrInvalidElevationFloor
	}
	if c.FrameScale <= 0.0 {
		return ErrInvalidFrameScale
	}
	if c.MinFrameRadius < 0.0 {
		return ErrInvalidFrameRadius
	}
	if c.CacheSize < 0 {
		return ErrInvalidCacheSize
	}
	return nil
}
