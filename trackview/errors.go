package trackview

import "errors"

// Common errors returned by the track display views
var (
	ErrInvalidLatitude       = errors.New("home latitude must be between -90 and 90 degrees")
	ErrInvalidLongitude      = errors.New("home longitude must be between -180 and 180 degrees")
	ErrInvalidHomeSpan       = errors.New("home span must be positive")
	ErrInvalidElevationFloor = errors.New("minimum elevation range must be non-negative")
	ErrInvalidFrameScale     = errors.New("frame scale must be positive")
	ErrInvalidFrameRadius    = errors.New("minimum frame radius must be non-negative")
	ErrInvalidCacheSize      = errors.New("cache size must be non-negative")
	ErrEmptyDocument         = errors.New("gpx document contains no points")
)
