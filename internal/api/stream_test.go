package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/steadhold/internal/engine"
)

func TestStreamPushesSnapshots(t *testing.T) {
	s := testServer(t)
	srv := httptest.NewServer(http.HandlerFunc(s.handleStream))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// First frame is the snapshot as of connect.
	var snap engine.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}
	if snap.Day != 1 || snap.Population != 30 {
		t.Errorf("initial snapshot = day %d, population %d", snap.Day, snap.Population)
	}

	// Every mutation after that pushes a fresh frame.
	s.Eng.Step()
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("post-step snapshot: %v", err)
	}
	if snap.Day != 2 {
		t.Errorf("post-step snapshot day = %d, want 2", snap.Day)
	}
}
