package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gpstools/go-trackview/trackview"
	"github.com/schollz/progressbar/v3"
)

// Version information - populated at build time via ldflags
var (
	Version   = "dev"     // Will be set to git tag if available, otherwise "dev"
	Commit    = "unknown" // Will be set to git commit hash
	BuildDate = "unknown" // Will be set to build timestamp
)

func main() {
	config := trackview.DefaultConfig()
	var showVersion bool
	var outFile string
	var batchGlob string
	var cursorAt string
	var quiet bool

	// Define command line flags
	flag.BoolVar(&showVersion, "version", false, "Show version information and exit")
	flag.Float64Var(&config.Tolerance, "tolerance", 0.0, "Reduction tolerance (0.0=keep every point, 1.0=endpoints only)")
	flag.Float64Var(&config.MinElevationRange, "min-range", 10.0, "Smallest elevation axis span in meters")
	flag.Float64Var(&config.FrameScale, "frame-scale", 1.5, "Viewport radius multiplier over the bounding box half-diagonal")
	flag.Float64Var(&config.MinFrameRadius, "min-radius", 250.0, "Smallest viewport radius in meters")
	flag.Float64Var(&config.HomeLatitude, "home-lat", 37.7749, "Latitude framed when nothing is visible (decimal degrees)")
	flag.Float64Var(&config.HomeLongitude, "home-lon", -122.4194, "Longitude framed when nothing is visible (decimal degrees)")
	flag.BoolVar(&config.ShowTracks, "tracks", true, "Include the track layer in the bounding box")
	flag.BoolVar(&config.ShowRoutes, "routes", true, "Include the route layer in the bounding box")
	flag.BoolVar(&config.ShowWaypoints, "waypoints", true, "Include the waypoint layer in the bounding box")
	flag.StringVar(&outFile, "out", "", "Write the reduced document to this GPX file")
	flag.StringVar(&batchGlob, "batch", "", "Reduce every GPX file matching this glob pattern instead of summarizing")
	flag.StringVar(&cursorAt, "at", "", "Report the track point nearest this RFC3339 timestamp")
	flag.BoolVar(&quiet, "quiet", false, "Suppress the summary (only errors are printed)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file.gpx>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nGPX Track Display Tool\n")
		fmt.Fprintf(os.Stderr, "Summarizes, reduces and frames GPX tracks, routes and waypoints for display.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	// Handle version flag
	if showVersion {
		if Version != "dev" {
			fmt.Printf("v%s\n", Version)
		} else {
			fmt.Printf("%s\n", Commit)
		}
		os.Exit(0)
	}

	// Validate input parameters
	if config.Tolerance < 0.0 || config.Tolerance > 1.0 {
		log.Fatal("Tolerance must be between 0.0 and 1.0")
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Batch mode reduces every matching file and exits
	if batchGlob != "" {
		if err := reduceBatch(batchGlob, config.Tolerance, quiet); err != nil {
			log.Fatalf("Batch reduction failed: %v", err)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	doc, err := trackview.ParseGPXFile(path)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}

	mapView, err := trackview.NewMapView(config)
	if err != nil {
		log.Fatalf("Failed to create map view: %v", err)
	}
	mapView.SetDocument(doc)

	elevationView, err := trackview.NewElevationView(config)
	if err != nil {
		log.Fatalf("Failed to create elevation view: %v", err)
	}
	if len(doc.Tracks) > 0 {
		elevationView.SetTrack(&doc.Tracks[0])
	}

	if cursorAt != "" {
		ts, err := time.Parse(time.RFC3339, cursorAt)
		if err != nil {
			log.Fatalf("Failed to parse -at timestamp: %v", err)
		}
		elevationView.SetTime(ts)
	}

	if !quiet {
		name := doc.Name
		if name == "" {
			name = filepath.Base(path)
		}
		fmt.Printf("Document: %s\n", name)
		if doc.Creator != "" {
			fmt.Printf("Creator: %s\n", doc.Creator)
		}
		fmt.Printf("Tracks: %d (%d points)\n", len(doc.Tracks), doc.NumTrackPoints())
		fmt.Printf("Routes: %d (%d points)\n", len(doc.Routes), doc.NumRoutePoints())
		fmt.Printf("Waypoints: %d\n", len(doc.Waypoints))
		fmt.Printf("Reduction: tolerance %.2f keeps %d of %d track points\n",
			mapView.Tolerance(), mapView.NumReducedTrackPoints(), mapView.NumTrackPoints())

		if !elevationView.Empty() {
			rng, low, high := elevationView.Range()
			fmt.Printf("Elevation: %.1fm to %.1fm (axis spans %.1fm)\n", low, high, rng)
			start, end := elevationView.StartTime(), elevationView.EndTime()
			if !start.IsZero() {
				fmt.Printf("Time span: %s to %s (%v)\n",
					start.Format(time.RFC3339), end.Format(time.RFC3339), end.Sub(start))
			}
		}

		b := mapView.Bounds()
		fmt.Printf("Bounds: %.5f,%.5f to %.5f,%.5f\n", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
		lat, lon, radius := mapView.Viewport()
		fmt.Printf("Viewport: center %.5f,%.5f radius %.0fm\n", lat, lon, radius)

		if cursorAt != "" {
			if p, ok := elevationView.CursorPoint(); ok {
				fmt.Printf("Nearest point: %.5f,%.5f", p.Lat, p.Lon)
				if p.HasElevation() {
					fmt.Printf(" at %.1fm", *p.Elevation)
				}
				if p.HasTime() {
					fmt.Printf(" recorded %s", p.Time.Format(time.RFC3339))
				}
				fmt.Printf(" (%.0f%% through the track)\n", elevationView.CursorFraction()*100)
			}
		}
	}

	if outFile != "" {
		reduced := trackview.ReducedDocument(doc, config.Tolerance)
		if err := trackview.WriteGPXFile(outFile, reduced); err != nil {
			log.Fatalf("Failed to write %s: %v", outFile, err)
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "Reduced document written to: %s\n", outFile)
		}
	}
}

// reduceBatch reduces every GPX file matching the glob at the given
// tolerance, writing each result next to its source
func reduceBatch(glob string, tolerance float64, quiet bool) error {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return fmt.Errorf("bad pattern %q: %w", glob, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no files match %q", glob)
	}

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.Default(int64(len(matches)), "Reducing")
	}

	for _, path := range matches {
		doc, err := trackview.ParseGPXFile(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		out := reducedPath(path)
		if err := trackview.WriteGPXFile(out, trackview.ReducedDocument(doc, tolerance)); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	return nil
}

// reducedPath derives the batch output filename: track.gpx becomes
// track_reduced.gpx
func reducedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_reduced" + ext
}
