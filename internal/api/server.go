// Package api provides the HTTP surface for a running settlement.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (the steward's control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/steadhold/internal/engine"
	"github.com/talgya/steadhold/internal/persistence"
)

// Server serves one settlement run over HTTP.
type Server struct {
	Eng      *engine.Engine
	DB       *persistence.DB // optional; history endpoints 404 without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	actionLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/rates", s.handleRates)
	mux.HandleFunc("/api/v1/site", s.handleSite)
	mux.HandleFunc("/api/v1/journal", s.handleJournal)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/days", s.handleDays)

	// Live snapshot stream.
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Steward endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/labor", s.adminOnly(RateLimitMiddleware(actionLimiter, s.handleLabor)))
	mux.HandleFunc("/api/v1/preset", s.adminOnly(RateLimitMiddleware(actionLimiter, s.handlePreset)))
	mux.HandleFunc("/api/v1/farm", s.adminOnly(RateLimitMiddleware(actionLimiter, s.handleFarm)))
	mux.HandleFunc("/api/v1/policy", s.adminOnly(RateLimitMiddleware(actionLimiter, s.handlePolicy)))
	mux.HandleFunc("/api/v1/choice", s.adminOnly(RateLimitMiddleware(actionLimiter, s.handleChoice)))
	mux.HandleFunc("/api/v1/control", s.adminOnly(s.handleControl))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "steward endpoints disabled (no STEADHOLD_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Eng.Snapshot()
	site := s.Eng.Site()
	status := map[string]any{
		"run_id":     s.Eng.RunID(),
		"seed":       s.Eng.Seed(),
		"day":        snap.Day,
		"status":     snap.Status,
		"population": snap.Population,
		"morale":     snap.Morale,
		"legitimacy": snap.Legitimacy,
		"food":       snap.Food,
		"paused":     s.Eng.Paused(),
		"clock":      s.Eng.ClockRunning(),
		"ended":      snap.Ended,
		"end_reason": snap.EndReason,
		"site": map[string]float64{
			"fertility": site.Fertility,
			"quarry":    site.Quarry,
			"shelter":   site.Shelter,
		},
	}
	writeJSON(w, status)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Snapshot())
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Snapshot().Rates)
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Site())
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	writeJSON(w, s.Eng.Journal(limit))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no run ledger configured", http.StatusNotFound)
		return
	}
	rows, err := s.DB.History(50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no run ledger configured", http.StatusNotFound)
		return
	}
	runID := r.URL.Query().Get("run")
	if runID == "" {
		runID = s.Eng.RunID()
	}
	rows, err := s.DB.Days(runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleLabor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot    string `json:"slot"`
		Workers int    `json:"workers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	var slot engine.LaborSlot
	switch req.Slot {
	case "food":
		slot = engine.SlotFood
	case "material":
		slot = engine.SlotMaterial
	case "tooling":
		slot = engine.SlotTooling
	default:
		http.Error(w, "unknown slot", http.StatusBadRequest)
		return
	}
	s.respondApplied(w, s.Eng.SetLabor(slot, req.Workers))
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	s.respondApplied(w, s.Eng.ApplyPreset(engine.Preset(req.Name)))
}

func (s *Server) handleFarm(w http.ResponseWriter, r *http.Request) {
	s.respondApplied(w, s.Eng.BuildFarm())
}

func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	switch req.Kind {
	case "rationing":
		s.respondApplied(w, s.Eng.DeclareRationing())
	case "feast":
		s.respondApplied(w, s.Eng.DeclareFeast())
	default:
		http.Error(w, "unknown policy", http.StatusBadRequest)
	}
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option int `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	s.respondApplied(w, s.Eng.ResolveEvent(req.Option))
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action     string `json:"action"` // pause, resume, step, reset, interval
		Seed       string `json:"seed"`
		IntervalMS int    `json:"interval_ms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "pause":
		s.Eng.Pause()
	case "resume":
		s.Eng.Resume()
	case "step":
		out := s.Eng.Step()
		writeJSON(w, map[string]any{"applied": true, "day": out.Day, "ended": out.Ended})
		return
	case "reset":
		seed := req.Seed
		if seed == "" {
			seed = s.Eng.Seed()
		}
		s.Eng.Reset(seed)
		if s.DB != nil {
			persistence.Attach(s.DB, s.Eng)
		}
	case "interval":
		if req.IntervalMS < 100 {
			http.Error(w, "interval too short", http.StatusBadRequest)
			return
		}
		s.Eng.SetInterval(time.Duration(req.IntervalMS) * time.Millisecond)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"applied": true})
}

func (s *Server) respondApplied(w http.ResponseWriter, ok bool) {
	writeJSON(w, map[string]any{"applied": ok, "state": s.Eng.Snapshot()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
