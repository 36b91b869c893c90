package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/steadhold/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients come through the CORS layer; the socket itself accepts
	// any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	// A client that cannot keep up with this many pending snapshots is
	// dropped rather than allowed to stall the engine's notify path.
	sendBuffer = 16
)

// handleStream upgrades to a websocket and pushes a snapshot after every
// engine mutation, plus an initial one on connect.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}

	send := make(chan engine.Snapshot, sendBuffer)
	done := make(chan struct{})

	unsubscribe := s.Eng.Subscribe(func(snap engine.Snapshot) {
		select {
		case send <- snap:
		case <-done:
		default:
			// Buffer full: skip this snapshot, the next one supersedes it.
		}
	})
	defer unsubscribe()

	// Reader goroutine: we never expect client frames, but reading drives
	// close and pong handling.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send <- s.Eng.Snapshot()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case snap := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
