package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/gpstools/go-trackview/trackview"
	"github.com/twpayne/go-polyline"
)

type ViewerServer struct {
	mu        sync.RWMutex
	document  *trackview.Document
	source    string
	mapView   *trackview.MapView
	elevation *trackview.ElevationView
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	broadcast chan interface{}
	logger    *slog.Logger
}

func NewViewerServer(config trackview.Config, logger *slog.Logger) (*ViewerServer, error) {
	mapView, err := trackview.NewMapView(config)
	if err != nil {
		return nil, err
	}
	elevation, err := trackview.NewElevationView(config)
	if err != nil {
		return nil, err
	}

	ws := &ViewerServer{
		mapView:   mapView,
		elevation: elevation,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan interface{}),
		logger:    logger,
	}

	// Push a fresh snapshot to connected clients after every view mutation
	notify := func() {
		select {
		case ws.broadcast <- ws.statusPayload():
		default:
			// No receiver ready, skip this update
		}
	}
	mapView.OnChange(notify)
	elevation.OnChange(notify)

	return ws, nil
}

// installDocument replaces the loaded document in both views. The elevation
// profile follows the first track of the document.
func (ws *ViewerServer) installDocument(doc *trackview.Document, source string) {
	ws.mu.Lock()
	ws.document = doc
	ws.source = source
	ws.mu.Unlock()

	ws.mapView.SetDocument(doc)
	if doc != nil && len(doc.Tracks) > 0 {
		ws.elevation.SetTrack(&doc.Tracks[0])
	} else {
		ws.elevation.SetTrack(nil)
	}
}

// statusPayload summarizes the loaded document and the current view state
func (ws *ViewerServer) statusPayload() map[string]interface{} {
	ws.mu.RLock()
	doc := ws.document
	source := ws.source
	ws.mu.RUnlock()

	status := map[string]interface{}{
		"loaded":    doc != nil,
		"tolerance": ws.mapView.Tolerance(),
		"layers": map[string]bool{
			"tracks":    ws.mapView.ShowTracks(),
			"routes":    ws.mapView.ShowRoutes(),
			"waypoints": ws.mapView.ShowWaypoints(),
		},
	}
	if doc != nil {
		status["name"] = doc.Name
		status["creator"] = doc.Creator
		status["source"] = source
		status["num_tracks"] = len(doc.Tracks)
		status["num_routes"] = len(doc.Routes)
		status["num_waypoints"] = len(doc.Waypoints)
		status["num_points"] = doc.NumTrackPoints()
		status["num_reduced"] = ws.mapView.NumReducedTrackPoints()
	}

	lat, lon, radius := ws.mapView.Viewport()
	status["viewport"] = map[string]interface{}{
		"lat":           lat,
		"lon":           lon,
		"radius_meters": radius,
	}
	return status
}

func (ws *ViewerServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Error("WebSocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	// Send current status before registering; once the connection is in the
	// clients map the broadcast goroutine may write to it, and the connection
	// supports only one writer at a time
	if err := conn.WriteJSON(map[string]interface{}{
		"type": "status",
		"data": ws.statusPayload(),
	}); err != nil {
		ws.logger.Error("Error sending status", slog.Any("error", err))
		return
	}

	// Register client
	ws.mu.Lock()
	ws.clients[conn] = true
	total := len(ws.clients)
	ws.mu.Unlock()
	ws.logger.Info("Client connected", slog.Int("clients", total))

	// Listen for messages from client
	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			ws.logger.Debug("WebSocket read ended", slog.Any("error", err))
			break
		}
		ws.logger.Debug("Received message", slog.Any("message", msg))
	}

	// Unregister client
	ws.mu.Lock()
	delete(ws.clients, conn)
	total = len(ws.clients)
	ws.mu.Unlock()
	ws.logger.Info("Client disconnected", slog.Int("clients", total))
}

func (ws *ViewerServer) broadcastToClients() {
	for {
		payload := <-ws.broadcast

		message := map[string]interface{}{
			"type": "view",
			"data": payload,
		}

		ws.mu.RLock()
		conns := make([]*websocket.Conn, 0, len(ws.clients))
		for client := range ws.clients {
			conns = append(conns, client)
		}
		ws.mu.RUnlock()

		// Send to all connected clients
		for _, client := range conns {
			if err := client.WriteJSON(message); err != nil {
				ws.logger.Error("WebSocket write error", slog.Any("error", err))
				client.Close()
				ws.mu.Lock()
				delete(ws.clients, client)
				ws.mu.Unlock()
			}
		}
	}
}

func (ws *ViewerServer) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ws.statusPayload())
}

func (ws *ViewerServer) handleLoadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "Request must carry a \"path\" field", http.StatusBadRequest)
		return
	}

	doc, err := trackview.ParseGPXFile(req.Path)
	if err != nil {
		ws.logger.Error("Failed to load document", slog.String("path", req.Path), slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Failed to load document: %v", err), http.StatusBadRequest)
		return
	}

	ws.installDocument(doc, req.Path)
	ws.logger.Info("Document loaded",
		slog.String("path", req.Path),
		slog.Int("points", doc.NumTrackPoints()))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "loaded",
		"points": doc.NumTrackPoints(),
	})
}

func (ws *ViewerServer) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read body: %v", err), http.StatusBadRequest)
		return
	}

	doc, err := trackview.ParseGPX(data)
	if err != nil {
		ws.logger.Error("Failed to parse uploaded document", slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Failed to parse document: %v", err), http.StatusBadRequest)
		return
	}

	ws.installDocument(doc, "upload")
	ws.logger.Info("Document uploaded", slog.Int("points", doc.NumTrackPoints()))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "loaded",
		"points": doc.NumTrackPoints(),
	})
}

// handleUpdateView applies a partial view update: any of tolerance, time,
// fraction and the three layer flags may appear in the request body
func (ws *ViewerServer) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	// Helper functions to safely pull typed fields out of the request
	getFloat := func(key string) (float64, bool) {
		if val, ok := req[key]; ok {
			if f, ok := val.(float64); ok {
				return f, true
			}
		}
		return 0, false
	}
	getBool := func(key string) (bool, bool) {
		if val, ok := req[key]; ok {
			if b, ok := val.(bool); ok {
				return b, true
			}
		}
		return false, false
	}
	getString := func(key string) (string, bool) {
		if val, ok := req[key]; ok {
			if s, ok := val.(string); ok {
				return s, true
			}
		}
		return "", false
	}

	if tolerance, ok := getFloat("tolerance"); ok {
		ws.mapView.SetTolerance(tolerance)
		ws.elevation.SetTolerance(tolerance)
	}
	if ts, ok := getString("time"); ok {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid time: %v", err), http.StatusBadRequest)
			return
		}
		ws.elevation.SetTime(parsed)
	}
	if fraction, ok := getFloat("fraction"); ok {
		start, end := ws.elevation.StartTime(), ws.elevation.EndTime()
		if !start.IsZero() && end.After(start) {
			offset := time.Duration(fraction * float64(end.Sub(start)))
			ws.elevation.SetTime(start.Add(offset))
		}
	}
	if show, ok := getBool("show_tracks"); ok {
		ws.mapView.SetShowTracks(show)
	}
	if show, ok := getBool("show_routes"); ok {
		ws.mapView.SetShowRoutes(show)
	}
	if show, ok := getBool("show_waypoints"); ok {
		ws.mapView.SetShowWaypoints(show)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

func (ws *ViewerServer) handleElevation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rng, low, high := ws.elevation.Range()
	payload := map[string]interface{}{
		"empty":       ws.elevation.Empty(),
		"profile":     ws.elevation.Profile(),
		"cursor":      ws.elevation.CursorFraction(),
		"num_points":  ws.elevation.NumPoints(),
		"num_reduced": ws.elevation.NumReducedPoints(),
		"range": map[string]float64{
			"span": rng,
			"low":  low,
			"high": high,
		},
	}
	if start := ws.elevation.StartTime(); !start.IsZero() {
		payload["start"] = start.Format(time.RFC3339)
		payload["end"] = ws.elevation.EndTime().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (ws *ViewerServer) handleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tracks := make([]string, 0)
	for _, seg := range ws.mapView.TrackPolylines() {
		tracks = append(tracks, encodePolyline(seg))
	}
	routes := make([]string, 0)
	for _, pts := range ws.mapView.RoutePolylines() {
		routes = append(routes, encodePolyline(pts))
	}

	lat, lon, radius := ws.mapView.Viewport()
	payload := map[string]interface{}{
		"tracks":        tracks,
		"routes":        routes,
		"waypoints":     ws.mapView.VisibleWaypoints(),
		"bounds":        ws.mapView.Bounds(),
		"center":        map[string]float64{"lat": lat, "lon": lon},
		"radius_meters": radius,
		"num_points":    ws.mapView.NumTrackPoints(),
		"num_reduced":   ws.mapView.NumReducedTrackPoints(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (ws *ViewerServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ws.mu.RLock()
	doc := ws.document
	ws.mu.RUnlock()
	if doc == nil {
		http.Error(w, "No document loaded", http.StatusNotFound)
		return
	}

	reduced := trackview.ReducedDocument(doc, ws.mapView.Tolerance())
	data, err := trackview.EncodeGPX(reduced)
	if err != nil {
		ws.logger.Error("Failed to encode document", slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Failed to encode document: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="reduced.gpx"`)
	w.Write(data)
}

// encodePolyline renders points in the Google encoded polyline format
func encodePolyline(points []trackview.Point) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	staticDir := flag.String("static", filepath.Join(".", "static"), "Directory of static web assets")
	logFile := flag.String("log", "", "Log file (JSON records with rotation); stderr when empty")
	logLevel := flag.String("level", "info", "Log level (debug, info, warn, error)")
	gpxFile := flag.String("gpx", "", "GPX file to load at startup")
	flag.Parse()

	logger := newLogger(*logFile, *logLevel)

	webServer, err := NewViewerServer(trackview.DefaultConfig(), logger)
	if err != nil {
		log.Fatalf("Failed to create viewer server: %v", err)
	}

	if *gpxFile != "" {
		doc, err := trackview.ParseGPXFile(*gpxFile)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *gpxFile, err)
		}
		webServer.installDocument(doc, *gpxFile)
		logger.Info("Document loaded",
			slog.String("path", *gpxFile),
			slog.Int("points", doc.NumTrackPoints()))
	}

	// Start the broadcast goroutine
	go webServer.broadcastToClients()

	// Create router
	r := mux.NewRouter()

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", webServer.handleGetStatus).Methods("GET")
	api.HandleFunc("/load", webServer.handleLoadDocument).Methods("POST")
	api.HandleFunc("/gpx", webServer.handleUploadDocument).Methods("POST")
	api.HandleFunc("/view", webServer.handleUpdateView).Methods("POST")
	api.HandleFunc("/elevation", webServer.handleElevation).Methods("GET")
	api.HandleFunc("/map", webServer.handleMap).Methods("GET")
	api.HandleFunc("/export", webServer.handleExport).Methods("GET")
	api.HandleFunc("/ws", webServer.handleWebSocket)

	// Handle favicon.ico requests
	r.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Serve static files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(*staticDir)))

	logger.Info("Starting track viewer server", slog.String("addr", *addr))

	server := &http.Server{
		Addr:         *addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Fatal(server.ListenAndServe())
}
