package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides HTTP endpoints for diagnostics.
type Server struct {
	stats  StatsSource
	conn   ConnectivitySource
	server *http.Server
}

// NewServer creates a new health server.
func NewServer(stats StatsSource, conn ConnectivitySource, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		stats: stats,
		conn:  conn,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("DELETE /stats", s.handleClearStats)
	mux.HandleFunc("GET /connectivity", s.handleConnectivity)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) online() bool {
	if s.conn == nil {
		return true
	}
	return s.conn.Online()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := Report{Status: StatusHealthy, Online: s.online()}
	code := http.StatusOK
	if !report.Online {
		report.Status = StatusDegraded
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.GetErrorStatistics())
}

func (s *Server) handleClearStats(w http.ResponseWriter, r *http.Request) {
	s.stats.ClearErrorPatterns()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnectivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"online": s.online()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
