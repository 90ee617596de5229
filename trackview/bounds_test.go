package trackview

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestElevationRange(t *testing.T) {
	testCases := []struct {
		name    string
		points  []Point
		expRng  float64
		expLow  float64
		expHigh float64
	}{
		{"Empty input", nil, 0, 0, 0},
		{
			"No elevations",
			[]Point{{Lat: 47, Lon: 11}, {Lat: 47.1, Lon: 11.1}},
			0, 0, 0,
		},
		{
			"Single elevation",
			[]Point{{Lat: 47, Lon: 11, Elevation: floatPtr(1234.5)}},
			0, 1234.5, 1234.5,
		},
		{
			"Mixed with missing",
			[]Point{
				{Lat: 47, Lon: 11, Elevation: floatPtr(120)},
				{Lat: 47, Lon: 11},
				{Lat: 47, Lon: 11, Elevation: floatPtr(80)},
				{Lat: 47, Lon: 11, Elevation: floatPtr(150)},
			},
			70, 80, 150,
		},
		{
			"Below sea level",
			[]Point{
				{Lat: 31.5, Lon: 35.5, Elevation: floatPtr(-410)},
				{Lat: 31.6, Lon: 35.5, Elevation: floatPtr(-390)},
			},
			20, -410, -390,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rng, low, high := ElevationRange(tc.points)
			if rng != tc.expRng || low != tc.expLow || high != tc.expHigh {
				t.Errorf("Expected (%.1f, %.1f, %.1f), got (%.1f, %.1f, %.1f)",
					tc.expRng, tc.expLow, tc.expHigh, rng, low, high)
			}
		})
	}
}

func TestApplyRangeFloor(t *testing.T) {
	testCases := []struct {
		name   string
		rng    float64
		low    float64
		floor  float64
		expRng float64
		expLow float64
	}{
		{"Below floor", 4, 100, 10, 10, 97},
		{"Above floor", 25, 100, 10, 25, 100},
		{"Exactly at floor", 10, 100, 10, 10, 100},
		{"Zero floor disables", 0, 100, 0, 0, 100},
		{"Zero range floored", 0, 50, 20, 20, 40},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rng, low := ApplyRangeFloor(tc.rng, tc.low, tc.floor)
			if rng != tc.expRng || low != tc.expLow {
				t.Errorf("Expected (%.1f, %.1f), got (%.1f, %.1f)", tc.expRng, tc.expLow, rng, low)
			}
		})
	}
}

func TestApplyRangeFloorKeepsBandCentered(t *testing.T) {
	origRng, origLow := 4.0, 100.0
	rng, low := ApplyRangeFloor(origRng, origLow, 10)

	origMid := origLow + origRng/2
	newMid := low + rng/2
	if math.Abs(origMid-newMid) > 1e-9 {
		t.Errorf("Expected the original band midpoint %.2f preserved, got %.2f", origMid, newMid)
	}
}

func TestBoundsOfPointsContainment(t *testing.T) {
	points := []Point{
		{Lat: 47.26, Lon: 11.39},
		{Lat: 47.28, Lon: 11.42},
		{Lat: 47.21, Lon: 11.47},
		{Lat: 47.30, Lon: 11.35},
	}

	b := boundsOfPoints(points)
	if !b.Valid() {
		t.Fatal("Expected valid bounds")
	}
	for i, p := range points {
		if !b.Contains(p.Lat, p.Lon) {
			t.Errorf("Point %d (%f, %f) outside computed bounds %+v", i, p.Lat, p.Lon, b)
		}
	}
	if b.MinLat != 47.21 || b.MaxLat != 47.30 || b.MinLon != 11.35 || b.MaxLon != 11.47 {
		t.Errorf("Expected exact extremes, got %+v", b)
	}
}

func TestFallbackBounds(t *testing.T) {
	cfg := DefaultConfig()
	b := fallbackBounds(cfg)

	lat, lon := b.Center()
	if math.Abs(lat-cfg.HomeLatitude) > 1e-9 || math.Abs(lon-cfg.HomeLongitude) > 1e-9 {
		t.Errorf("Expected fallback centered on home, got (%f, %f)", lat, lon)
	}
	if math.Abs((b.MaxLat-b.MinLat)-cfg.HomeSpan) > 1e-9 {
		t.Errorf("Expected latitude span %.3f, got %.3f", cfg.HomeSpan, b.MaxLat-b.MinLat)
	}
	if math.Abs((b.MaxLon-b.MinLon)-cfg.HomeSpan) > 1e-9 {
		t.Errorf("Expected longitude span %.3f, got %.3f", cfg.HomeSpan, b.MaxLon-b.MinLon)
	}
}

func TestFitViewport(t *testing.T) {
	cfg := DefaultConfig()

	b := EmptyBounds()
	b.Extend(47.0, 11.0)
	b.Extend(47.2, 11.3)

	lat, lon, radius := FitViewport(b, cfg)
	if math.Abs(lat-47.1) > 1e-9 || math.Abs(lon-11.15) > 1e-9 {
		t.Errorf("Expected center (47.1, 11.15), got (%f, %f)", lat, lon)
	}

	expected := haversineDistance(47.0, 11.0, 47.2, 11.3) / 2 * cfg.FrameScale
	if math.Abs(radius-expected) > 0.001 {
		t.Errorf("Expected radius %.1f m, got %.1f m", expected, radius)
	}
}

func TestFitViewportMinimumRadius(t *testing.T) {
	cfg := DefaultConfig()

	b := EmptyBounds()
	b.Extend(47.0, 11.0)

	lat, lon, radius := FitViewport(b, cfg)
	if lat != 47.0 || lon != 11.0 {
		t.Errorf("Expected center at the single coordinate, got (%f, %f)", lat, lon)
	}
	if radius != cfg.MinFrameRadius {
		t.Errorf("Expected minimum radius %.1f m for a degenerate box, got %.1f m", cfg.MinFrameRadius, radius)
	}
}

func TestFitViewportInvalidBounds(t *testing.T) {
	cfg := DefaultConfig()

	lat, lon, radius := FitViewport(EmptyBounds(), cfg)
	if lat != cfg.HomeLatitude || lon != cfg.HomeLongitude {
		t.Errorf("Expected home center, got (%f, %f)", lat, lon)
	}
	if radius != cfg.MinFrameRadius {
		t.Errorf("Expected minimum radius, got %.1f m", radius)
	}
}
