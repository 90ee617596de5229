package trackview

import (
	"testing"
	"time"
)

func TestPointHasElevation(t *testing.T) {
	p := geoPoint(47, 11)
	if p.HasElevation() {
		t.Error("Expected no elevation on a bare point")
	}
	if p.elevationOrZero() != 0 {
		t.Errorf("Expected 0 substituted for missing elevation, got %f", p.elevationOrZero())
	}

	p.Elevation = floatPtr(574)
	if !p.HasElevation() || p.elevationOrZero() != 574 {
		t.Errorf("Expected elevation 574, got %f", p.elevationOrZero())
	}
}

func TestPointHasTime(t *testing.T) {
	p := geoPoint(47, 11)
	if p.HasTime() {
		t.Error("Expected no timestamp on a bare point")
	}

	p.Time = testStart
	if !p.HasTime() {
		t.Error("Expected a timestamp after setting one")
	}
}

func TestTrackNumPoints(t *testing.T) {
	track := &Track{Segments: []Segment{
		{Points: []Point{elePoint(0, 100), elePoint(10, 105)}},
		{Points: nil},
		{Points: []Point{elePoint(20, 110)}},
	}}

	if track.NumPoints() != 3 {
		t.Errorf("Expected 3 points, got %d", track.NumPoints())
	}

	empty := &Track{}
	if empty.NumPoints() != 0 {
		t.Errorf("Expected 0 points for an empty track, got %d", empty.NumPoints())
	}
}

func TestTrackStartEndTime(t *testing.T) {
	track := &Track{Segments: []Segment{
		{Points: nil},
		{Points: []Point{elePoint(0, 100), elePoint(10, 105)}},
		{Points: []Point{elePoint(20, 110), elePoint(30, 104)}},
		{Points: nil},
	}}

	if !track.StartTime().Equal(testStart) {
		t.Errorf("Expected start %v, got %v", testStart, track.StartTime())
	}
	if !track.EndTime().Equal(testStart.Add(30 * time.Second)) {
		t.Errorf("Expected end 30s after start, got %v", track.EndTime())
	}

	empty := &Track{Segments: []Segment{{Points: nil}}}
	if !empty.StartTime().IsZero() || !empty.EndTime().IsZero() {
		t.Error("Expected zero times for a track without points")
	}
}

func TestTrackPointAt(t *testing.T) {
	track := &Track{Segments: []Segment{
		{Points: []Point{elePoint(0, 100), elePoint(10, 105), elePoint(20, 110)}},
		{Points: []Point{elePoint(30, 104), elePoint(40, 100)}},
	}}

	testCases := []struct {
		name   string
		ts     time.Time
		expEle float64
	}{
		{"Before start", testStart.Add(-time.Hour), 100},
		{"Exact match", testStart.Add(10 * time.Second), 105},
		{"Between points", testStart.Add(29 * time.Second), 104},
		{"Between segments", testStart.Add(24 * time.Second), 110},
		{"After end", testStart.Add(time.Hour), 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := track.PointAt(tc.ts)
			if !ok {
				t.Fatal("Expected a point")
			}
			if p.elevationOrZero() != tc.expEle {
				t.Errorf("Expected elevation %f, got %f", tc.expEle, p.elevationOrZero())
			}
		})
	}
}

func TestTrackPointAtEmpty(t *testing.T) {
	track := &Track{}
	if _, ok := track.PointAt(testStart); ok {
		t.Error("Expected no point for an empty track")
	}
}

func TestTrackPointAtUntimed(t *testing.T) {
	track := &Track{Segments: []Segment{
		{Points: []Point{geoPoint(47.1, 11.1), geoPoint(47.2, 11.2)}},
	}}

	p, ok := track.PointAt(testStart)
	if !ok {
		t.Fatal("Expected a point")
	}
	if p.Lat != 47.1 {
		t.Errorf("Expected the first point for untimed data, got lat %f", p.Lat)
	}
}

func TestDocumentCounts(t *testing.T) {
	doc := sampleDocument()

	if doc.NumTrackPoints() != 5 {
		t.Errorf("Expected 5 track points, got %d", doc.NumTrackPoints())
	}
	if doc.NumRoutePoints() != 2 {
		t.Errorf("Expected 2 route points, got %d", doc.NumRoutePoints())
	}
	if doc.Empty() {
		t.Error("Expected a populated document")
	}
}

func TestDocumentEmpty(t *testing.T) {
	testCases := []struct {
		name     string
		doc      Document
		expEmpty bool
	}{
		{"Zero value", Document{}, true},
		{"Track without points", Document{Tracks: []Track{{Name: "Bare"}}}, true},
		{"Route without points", Document{Routes: []Route{{Name: "Bare"}}}, true},
		{"Single waypoint", Document{Waypoints: []Waypoint{{Point: geoPoint(47, 11)}}}, false},
		{"Single route point", Document{Routes: []Route{{Points: []Point{geoPoint(47, 11)}}}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.doc.Empty(); got != tc.expEmpty {
				t.Errorf("Expected Empty() == %v, got %v", tc.expEmpty, got)
			}
		})
	}
}
