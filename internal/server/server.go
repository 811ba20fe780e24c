// Package server exposes the assistant over HTTP: session management, the
// streaming chat endpoint (SSE and WebSocket), transcript listing, reasoning
// mode toggles, and the operational endpoints (health, readiness, metrics).
package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nongzhi-ai/nongzhi/internal/chat"
	"github.com/nongzhi-ai/nongzhi/internal/health"
	"github.com/nongzhi-ai/nongzhi/internal/observe"
	"github.com/nongzhi-ai/nongzhi/internal/session"
	"github.com/nongzhi-ai/nongzhi/internal/tool"
)

// Config assembles a Server.
type Config struct {
	// Sessions owns the live conversations.
	Sessions *session.Store

	// Orchestrator runs chat turns.
	Orchestrator *chat.Orchestrator

	// Registry resolves tool display names for transcript listing.
	Registry *tool.Registry

	// Health serves the liveness and readiness probes. Nil means probes
	// without checks.
	Health *health.Handler

	// Metrics receives HTTP instrumentation. Nil means the package-level
	// default instruments.
	Metrics *observe.Metrics
}

// Server is the HTTP front end. All handlers are safe for concurrent use.
type Server struct {
	sessions *session.Store
	orch     *chat.Orchestrator
	registry *tool.Registry
	health   *health.Handler
	metrics  *observe.Metrics
}

// New creates a Server from cfg.
func New(cfg Config) *Server {
	if cfg.Health == nil {
		cfg.Health = health.New()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	return &Server{
		sessions: cfg.Sessions,
		orch:     cfg.Orchestrator,
		registry: cfg.Registry,
		health:   cfg.Health,
		metrics:  cfg.Metrics,
	}
}

// Handler returns the full route table wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/session", s.handleCreateSession)
	mux.HandleFunc("DELETE /api/session/{sid}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/session/{sid}/messages", s.handleMessages)
	mux.HandleFunc("GET /api/session/{sid}/reasoning", s.handleGetReasoning)
	mux.HandleFunc("POST /api/session/{sid}/reasoning", s.handleSetReasoning)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/ws", s.handleChatWS)

	s.health.Register(mux)
	mux.HandleFunc("GET /api/health", s.health.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}

// createSessionResponse is the JSON body returned from session creation.
type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

// handleCreateSession mints a fresh session ID. The session itself is created
// eagerly so its transcript (with the system prompt) exists before the first
// turn.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	s.sessions.GetOrCreate(id)
	s.metrics.ActiveSessions.Add(r.Context(), 1)
	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: id})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	if _, ok := s.sessions.Get(sid); !ok {
		writeError(w, http.StatusNotFound, "会话不存在")
		return
	}
	s.sessions.Delete(sid)
	s.metrics.ActiveSessions.Add(r.Context(), -1)
	w.WriteHeader(http.StatusNoContent)
}

// messagesResponse is the JSON body for transcript listing. It carries the
// reasoning state too, so a reconnecting client restores its toggle without a
// second round trip.
type messagesResponse struct {
	SessionID        string                   `json:"session_id"`
	Messages         []session.VisibleMessage `json:"messages"`
	ReasoningEnabled bool                     `json:"reasoning_enabled"`
	ReasoningEffort  string                   `json:"reasoning_effort"`
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	sess, ok := s.sessions.Get(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "会话不存在")
		return
	}
	enabled, effort := sess.Reasoning()
	writeJSON(w, http.StatusOK, messagesResponse{
		SessionID:        sid,
		Messages:         sess.VisibleHistory(s.registry.DisplayName),
		ReasoningEnabled: enabled,
		ReasoningEffort:  effort,
	})
}

// reasoningState is the JSON shape for both reading and updating the
// reasoning mode of a session.
type reasoningState struct {
	Enabled bool   `json:"enabled"`
	Effort  string `json:"effort,omitempty"`
}

func (s *Server) handleGetReasoning(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("sid"))
	if !ok {
		writeError(w, http.StatusNotFound, "会话不存在")
		return
	}
	enabled, effort := sess.Reasoning()
	writeJSON(w, http.StatusOK, reasoningState{Enabled: enabled, Effort: effort})
}

func (s *Server) handleSetReasoning(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("sid"))
	if !ok {
		writeError(w, http.StatusNotFound, "会话不存在")
		return
	}

	var req reasoningState
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体解析失败")
		return
	}
	if req.Effort != "" {
		if err := sess.SetReasoningEffort(req.Effort); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	sess.SetReasoning(req.Enabled)

	enabled, effort := sess.Reasoning()
	writeJSON(w, http.StatusOK, reasoningState{Enabled: enabled, Effort: effort})
}

// chatRequest is the JSON body both chat transports accept.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (c chatRequest) validate() string {
	if c.SessionID == "" {
		return "session_id 不能为空"
	}
	if c.Message == "" {
		return "message 不能为空"
	}
	return ""
}

// errorResponse is the JSON body for request-level failures.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
