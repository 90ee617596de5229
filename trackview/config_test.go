package trackview

import (
	"errors"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		expErr error
	}{
		{"Latitude too low", func(c *Config) { c.HomeLatitude = -91 }, ErrInvalidLatitude},
		{"Latitude too high", func(c *Config) { c.HomeLatitude = 91 }, ErrInvalidLatitude},
		{"Longitude too low", func(c *Config) { c.HomeLongitude = -181 }, ErrInvalidLongitude},
		{"Longitude too high", func(c *Config) { c.HomeLongitude = 181 }, ErrInvalidLongitude},
		{"Zero home span", func(c *Config) { c.HomeSpan = 0 }, ErrInvalidHomeSpan},
		{"Negative elevation floor", func(c *Config) { c.MinElevationRange = -1 }, ErrInvalidElevationFloor},
		{"Zero frame scale", func(c *Config) { c.FrameScale = 0 }, ErrInvalidFrameScale},
		{"Negative frame radius", func(c *Config) { c.MinFrameRadius = -1 }, ErrInvalidFrameRadius},
		{"Negative cache size", func(c *Config) { c.CacheSize = -1 }, ErrInvalidCacheSize},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.modify(&config)
			if err := config.Validate(); !errors.Is(err, tc.expErr) {
				t.Errorf("Expected %v, got %v", tc.expErr, err)
			}
		})
	}
}

func TestConfigToleranceNotRejected(t *testing.T) {
	config := DefaultConfig()
	config.Tolerance = 12.5

	if err := config.Validate(); err != nil {
		t.Errorf("Expected out-of-range tolerance to pass validation, got %v", err)
	}

	view, err := NewElevationView(config)
	if err != nil {
		t.Fatalf("Failed to create view: %v", err)
	}
	if view.Tolerance() != 1 {
		t.Errorf("Expected tolerance clamped to 1 on use, got %f", view.Tolerance())
	}
}
