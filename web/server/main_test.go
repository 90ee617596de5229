package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/gpstools/go-trackview/trackview"
)

func createViewerServer(t *testing.T) *ViewerServer {
	t.Helper()
	ws, err := NewViewerServer(trackview.DefaultConfig(), newLogger("", "error"))
	if err != nil {
		t.Fatalf("Failed to create viewer server: %v", err)
	}
	return ws
}

// startTestServer serves the websocket endpoint and returns its ws:// URL
func startTestServer(t *testing.T, ws *ViewerServer) string {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/api/ws", ws.handleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
}

func TestWebSocketInitialStatus(t *testing.T) {
	ws := createViewerServer(t)
	url := startTestServer(t, ws)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	var msg struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read initial message: %v", err)
	}
	if msg.Type != "status" {
		t.Errorf("Expected first message type 'status', got '%s'", msg.Type)
	}
	if loaded, ok := msg.Data["loaded"].(bool); !ok || loaded {
		t.Errorf("Expected loaded=false in the initial status, got %v", msg.Data["loaded"])
	}
}

// Connections must receive their status snapshot before any broadcast write;
// the snapshot is sent before the connection joins the clients map, so a
// mutation storm on the views cannot interleave with it
func TestWebSocketStatusPrecedesBroadcasts(t *testing.T) {
	ws := createViewerServer(t)
	go ws.broadcastToClients()
	url := startTestServer(t, ws)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		next := 0.1
		for {
			select {
			case <-stop:
				return
			default:
			}
			ws.mapView.SetTolerance(next)
			next = 0.3 - next
		}
	}()
	defer func() {
		close(stop)
		<-done
	}()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	var msg struct {
		Type string `json:"type"`
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read initial message: %v", err)
	}
	if msg.Type != "status" {
		t.Errorf("Expected the status snapshot before any broadcast, got '%s'", msg.Type)
	}
}
