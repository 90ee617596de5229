package trackview

import (
	"fmt"
	"os"

	"github.com/tkrajina/gpxgo/gpx"
)

// gpxCreator is written into GPX files produced without an original creator
const gpxCreator = "go-trackview"

// ParseGPXFile reads a GPX file into a Document
func ParseGPXFile(path string) (*Document, error) {
	g, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}
	return fromGPX(g)
}

// ParseGPX reads raw GPX data into a Document
func ParseGPX(data []byte) (*Document, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}
	return fromGPX(g)
}

// EncodeGPX renders a Document as GPX 1.1 XML
func EncodeGPX(doc *Document) ([]byte, error) {
	data, err := toGPX(doc).ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("encode gpx: %w", err)
	}
	return data, nil
}

// WriteGPXFile writes a Document to a GPX 1.1 file
func WriteGPXFile(path string, doc *Document) error {
	data, err := EncodeGPX(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write gpx: %w", err)
	}
	return nil
}

// ReducedDocument returns a copy of doc whose track segments are reduced at
// the given tolerance over the geographic plane. Routes and waypoints are
// carried over unchanged; they are never reduced.
func ReducedDocument(doc *Document, tolerance float64) *Document {
	out := &Document{
		Name:      doc.Name,
		Creator:   doc.Creator,
		Routes:    doc.Routes,
		Waypoints: doc.Waypoints,
	}
	for _, t := range doc.Tracks {
		track := Track{Name: t.Name}
		for _, s := range t.Segments {
			track.Segments = append(track.Segments, Segment{
				Points: Reduce(s.Points, tolerance, GeographicProjector),
			})
		}
		out.Tracks = append(out.Tracks, track)
	}
	return out
}

// fromGPX converts a parsed GPX document into the display data model.
// Documents without a single point are rejected with ErrEmptyDocument.
func fromGPX(g *gpx.GPX) (*Document, error) {
	doc := &Document{Name: g.Name, Creator: g.Creator}

	for _, t := range g.Tracks {
		track := Track{Name: t.Name}
		for _, s := range t.Segments {
			track.Segments = append(track.Segments, Segment{Points: fromGPXPoints(s.Points)})
		}
		doc.Tracks = append(doc.Tracks, track)
	}
	for _, r := range g.Routes {
		doc.Routes = append(doc.Routes, Route{Name: r.Name, Points: fromGPXPoints(r.Points)})
	}
	for _, w := range g.Waypoints {
		doc.Waypoints = append(doc.Waypoints, Waypoint{
			Point:       fromGPXPoint(w),
			Name:        w.Name,
			Description: w.Description,
		})
	}

	if doc.Empty() {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}

func fromGPXPoint(p gpx.GPXPoint) Point {
	out := Point{
		Lat:  p.Latitude,
		Lon:  p.Longitude,
		Time: p.Timestamp,
	}
	if p.Elevation.NotNull() {
		e := p.Elevation.Value()
		out.Elevation = &e
	}
	return out
}

func fromGPXPoints(points []gpx.GPXPoint) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		out = append(out, fromGPXPoint(p))
	}
	return out
}

func toGPX(doc *Document) *gpx.GPX {
	g := &gpx.GPX{
		Version: "1.1",
		Creator: doc.Creator,
		Name:    doc.Name,
	}
	if g.Creator == "" {
		g.Creator = gpxCreator
	}

	for _, t := range doc.Tracks {
		track := gpx.GPXTrack{Name: t.Name}
		for _, s := range t.Segments {
			track.Segments = append(track.Segments, gpx.GPXTrackSegment{Points: toGPXPoints(s.Points)})
		}
		g.Tracks = append(g.Tracks, track)
	}
	for _, r := range doc.Routes {
		g.Routes = append(g.Routes, gpx.GPXRoute{Name: r.Name, Points: toGPXPoints(r.Points)})
	}
	for _, w := range doc.Waypoints {
		p := toGPXPoint(w.Point)
		p.Name = w.Name
		p.Description = w.Description
		g.Waypoints = append(g.Waypoints, p)
	}
	return g
}

func toGPXPoint(p Point) gpx.GPXPoint {
	out := gpx.GPXPoint{Timestamp: p.Time}
	out.Latitude = p.Lat
	out.Longitude = p.Lon
	if p.Elevation != nil {
		out.Elevation = *gpx.NewNullableFloat64(*p.Elevation)
	}
	return out
}

func toGPXPoints(points []Point) []gpx.GPXPoint {
	out := make([]gpx.GPXPoint, 0, len(points))
	for _, p := range points {
		out = append(out, toGPXPoint(p))
	}
	return out
}
