// Package server exposes the Solace engine over HTTP.
//
// It serves a JSON API for one-shot analysis, coping tool discovery, and
// backend health, plus a WebSocket chat endpoint for interactive sessions.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havenlabs/solace/internal/backend"
	"github.com/havenlabs/solace/internal/coping"
	"github.com/havenlabs/solace/internal/health"
	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/orchestrator"
)

// Server is the HTTP front end for the orchestration engine.
type Server struct {
	engine     *orchestrator.Engine
	httpServer *http.Server
	startTime  time.Time
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Text    string          `json:"text"`
	Context backend.Context `json:"context"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Uptime    string                   `json:"uptime"`
	Timestamp string                   `json:"timestamp"`
	Backends  map[string]BackendHealth `json:"backends"`
}

// BackendHealth merges breaker state with call metrics for one backend.
type BackendHealth struct {
	State               health.State  `json:"state"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	Attempts            uint64        `json:"attempts"`
	SuccessRate         float64       `json:"success_rate"`
	Calls               int64         `json:"calls"`
	Errors              int64         `json:"errors"`
	AvgLatency          time.Duration `json:"avg_latency"`
}

// ErrorResponse is the body of any non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// New builds a server listening on the given port.
func New(engine *orchestrator.Engine, port int) *Server {
	s := &Server{
		engine:    engine,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/analyze", s.analyzeHandler)
	mux.HandleFunc("/api/v1/health", s.healthHandler)
	mux.HandleFunc("/api/v1/tools", s.toolsHandler)
	mux.HandleFunc("/api/v1/tools/", s.toolHandler)
	mux.HandleFunc("/ws", s.chatHandler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("http server starting")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// analyzeHandler runs one text through the full pipeline.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.engine.Process(r.Context(), req.Text, req.Context)
	if err != nil {
		log.Error().Err(err).Msg("analyze failed")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// healthHandler reports breaker states and backend call metrics.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snapshot := s.engine.Monitor().Snapshot()
	stats := backend.AllStats()

	backends := make(map[string]BackendHealth, len(snapshot))
	status := "healthy"
	for name, st := range snapshot {
		bh := BackendHealth{
			State:               st.State,
			ConsecutiveFailures: st.ConsecutiveFailures,
			Attempts:            st.Attempts,
			SuccessRate:         st.SuccessRate,
		}
		if ms, ok := stats[name]; ok {
			bh.Calls = ms.Calls
			bh.Errors = ms.Errors
			bh.AvgLatency = ms.AvgLatency
		}
		backends[name] = bh
		if st.State == health.StateOpen {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Backends:  backends,
	})
}

// toolsHandler lists the coping tool catalog, optionally filtered.
func (s *Server) toolsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	catalog := s.engine.Catalog()

	if name := r.URL.Query().Get("emotion"); name != "" {
		cat, ok := lexicon.ParseCategory(name)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown emotion %q", name))
			return
		}
		writeJSON(w, http.StatusOK, catalog.Recommend(cat, coping.Options{}))
		return
	}

	var tools []coping.Tool
	switch {
	case r.URL.Query().Get("type") != "":
		tools = catalog.ByType(coping.Type(r.URL.Query().Get("type")))
	case r.URL.Query().Get("max_minutes") != "":
		max, err := strconv.Atoi(r.URL.Query().Get("max_minutes"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_minutes must be an integer")
			return
		}
		tools = catalog.Quick(max)
	default:
		tools = catalog.All()
	}
	writeJSON(w, http.StatusOK, tools)
}

// toolHandler serves /api/v1/tools/{id} and /api/v1/tools/{id}/session.
func (s *Server) toolHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/tools/")
	catalog := s.engine.Catalog()

	if id, ok := strings.CutSuffix(rest, "/session"); ok {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		session, err := catalog.StartSession(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, session)
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	tool, ok := catalog.ByID(rest)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown coping tool %q", rest))
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}
