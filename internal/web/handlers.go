// Package web exposes the bot engine over HTTP for front-end connectors.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kuitang/chat-notes/internal/bot"
	"github.com/kuitang/chat-notes/internal/obs"
)

var logger = obs.Pkg("web")

// Handler serves the event endpoint that connectors post inbound chat
// events to. One request carries one event and returns one reply.
type Handler struct {
	engine *bot.Engine
}

// NewHandler creates a handler over an engine.
func NewHandler(engine *bot.Engine) *Handler {
	return &Handler{engine: engine}
}

// Router builds the HTTP routing tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(correlate)

	r.Get("/healthz", h.handleHealth)
	r.Post("/v1/events", h.handleEvent)
	return r
}

// correlate stamps every request with a request id for log correlation.
func correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-ID")
		if id == "" {
			id = obs.NewRequestID()
		}
		ctx := obs.WithCorrelation(req.Context(), obs.Correlation{RequestID: id})
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// eventRequest is the wire form of one inbound chat event.
type eventRequest struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"` // "text", "command" or "action"
	Text   string `json:"text,omitempty"`
	Name   string `json:"name,omitempty"`
	Token  string `json:"token,omitempty"`
}

func (h *Handler) handleEvent(w http.ResponseWriter, req *http.Request) {
	var body eventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, 64<<10))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.UserID = strings.TrimSpace(body.UserID)
	if body.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ev, ok := toEvent(body)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	reply := h.engine.Handle(req.Context(), ev)
	writeJSON(w, http.StatusOK, reply)
}

func toEvent(body eventRequest) (bot.Event, bool) {
	switch body.Type {
	case "text":
		return bot.TextMessage{UserID: body.UserID, Text: body.Text}, true
	case "command":
		return bot.Command{UserID: body.UserID, Name: body.Name}, true
	case "action":
		return bot.ActionPress{UserID: body.UserID, Token: body.Token}, true
	default:
		return nil, false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv *http.Server
}

// NewServer binds the handler's router to addr.
func NewServer(addr string, h *Handler) *Server {
	return &Server{srv: &http.Server{Addr: addr, Handler: h.Router()}}
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	logger.Info("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
