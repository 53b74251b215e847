// Package api exposes the orchestrator over HTTP: turn submission,
// session trace retrieval, and health.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/careergini/orchestrator/pkg/cache"
	"github.com/careergini/orchestrator/pkg/history"
	"github.com/careergini/orchestrator/pkg/workflow"
)

// TurnSubmitter is the engine surface the API depends on.
type TurnSubmitter interface {
	SubmitTurn(ctx context.Context, userID, sessionID, message string) (*workflow.TurnResult, error)
}

// Server is the HTTP front end for the workflow engine.
type Server struct {
	engine    TurnSubmitter
	history   history.Store
	responses *cache.ResponseCache
	logger    *slog.Logger
	router    chi.Router
}

// NewServer wires the routes. historyStore may be nil, in which case
// trace lookups report 404. responses may be nil when caching is
// disabled; profile refresh then has nothing to drop.
func NewServer(engine TurnSubmitter, historyStore history.Store, responses *cache.ResponseCache, logger *slog.Logger) *Server {
	s := &Server{
		engine:    engine,
		history:   historyStore,
		responses: responses,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(3 * time.Minute))

	r.Post("/chat", s.handleChat)
	r.Get("/chat/{sessionID}/trace", s.handleTrace)
	r.Delete("/chat/{sessionID}", s.handleDeleteSession)
	r.Post("/profile/{userID}/refresh", s.handleProfileRefresh)
	r.Get("/healthz", s.handleHealth)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chatResponse is the POST /chat reply.
type chatResponse struct {
	TurnID         string   `json:"turn_id"`
	SessionID      string   `json:"session_id"`
	Response       string   `json:"response"`
	Followups      []string `json:"followups,omitempty"`
	Degraded       bool     `json:"degraded,omitempty"`
	DegradedReason string   `json:"degraded_reason,omitempty"`
	Cached         bool     `json:"cached,omitempty"`
	Cycles         int      `json:"cycles"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := s.engine.SubmitTurn(r.Context(), req.UserID, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidTurn) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if s.logger != nil {
			s.logger.Error("turn failed", slog.String("session_id", req.SessionID), slog.String("error", err.Error()))
		}
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		TurnID:         result.TurnID,
		SessionID:      result.SessionID,
		Response:       result.Response,
		Followups:      result.Followups,
		Degraded:       result.Degraded,
		DegradedReason: result.DegradedReason,
		Cached:         result.Cached,
		Cycles:         result.Cycles,
	})
}

// traceResponse is the GET /chat/{sessionID}/trace reply.
type traceResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []history.Message `json:"messages"`
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "history not enabled")
		return
	}

	messages, err := s.history.Trace(r.Context(), sessionID)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("trace lookup failed", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		}
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(messages) == 0 {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	s.writeJSON(w, http.StatusOK, traceResponse{SessionID: sessionID, Messages: messages})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "history not enabled")
		return
	}
	if err := s.history.DeleteSession(r.Context(), sessionID); err != nil {
		if s.logger != nil {
			s.logger.Error("session delete failed", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		}
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProfileRefresh is called by the profile service when a user's
// profile changes. Cached responses computed from the old snapshot are
// dropped so the next turn reflects the update.
func (s *Server) handleProfileRefresh(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.responses.Invalidate(r.Context(), userID); err != nil {
		if s.logger != nil {
			s.logger.Error("cache invalidation failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && s.logger != nil {
		s.logger.Error("response encode failed", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
