package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/crime-scene/internal/engine"
	"github.com/jwebster45206/crime-scene/pkg/game"
	"github.com/jwebster45206/crime-scene/pkg/story"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionHandler serves the session lifecycle and all game actions.
type SessionHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewSessionHandler(eng *engine.Engine, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		engine: eng,
		logger: logger,
	}
}

// CreateSessionRequest defines the request body for creating a session
type CreateSessionRequest struct {
	Story string `json:"story"` // Required: story directory name
}

// ClaimRequest marks one character as human-controlled
type ClaimRequest struct {
	Character string `json:"character"`
}

// CommandRequest carries one free-form instruction for a character
type CommandRequest struct {
	Actor string `json:"actor"`
	Text  string `json:"text"`
}

// ConversationRequest supplies the awaited human line for a suspended dialog
type ConversationRequest struct {
	Line string `json:"line"`
}

// EndSessionRequest optionally carries closing accusations per character
type EndSessionRequest struct {
	Accusations map[string]string `json:"accusations,omitempty"`
}

// ActionResponse pairs an action result with the updated session view
type ActionResponse struct {
	Result  game.Result   `json:"result"`
	Session *game.Session `json:"session,omitempty"`
}

// ServeHTTP handles HTTP requests for session operations
// Routes:
// POST   /v1/sessions                    - Create session
// GET    /v1/sessions/{id}               - Read session (redacted backstories)
// DELETE /v1/sessions/{id}               - End session, flush event log
// POST   /v1/sessions/{id}/claim         - Claim a character for human control
// POST   /v1/sessions/{id}/command       - Execute a free-form instruction
// POST   /v1/sessions/{id}/conversation  - Supply a human conversation line
// POST   /v1/sessions/{id}/step          - Play one agent-controlled turn
// GET    /v1/sessions/{id}/events        - Read the event log
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	parts := strings.SplitN(path, "/", 2)

	id := parts[0]
	sub := ""
	if len(parts) > 1 {
		sub = parts[1]
	}

	switch {
	case id == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)

	case id != "" && sub == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, id)

	case id != "" && sub == "" && r.Method == http.MethodDelete:
		h.handleEnd(w, r, id)

	case id != "" && sub == "claim" && r.Method == http.MethodPost:
		h.handleClaim(w, r, id)

	case id != "" && sub == "command" && r.Method == http.MethodPost:
		h.handleCommand(w, r, id)

	case id != "" && sub == "conversation" && r.Method == http.MethodPost:
		h.handleConversation(w, r, id)

	case id != "" && sub == "step" && r.Method == http.MethodPost:
		h.handleStep(w, r, id)

	case id != "" && sub == "events" && r.Method == http.MethodGet:
		h.handleEvents(w, r, id)

	default:
		h.logger.Warn("Unsupported session route", "method", r.Method, "path", r.URL.Path)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed for this endpoint")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.Story == "" {
		h.writeError(w, http.StatusBadRequest, "story field is required")
		return
	}

	sess, err := h.engine.CreateSession(r.Context(), req.Story)
	if err != nil {
		if errors.Is(err, story.ErrMalformedStory) {
			h.logger.Warn("Malformed story", "story", req.Story, "error", err)
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create session", "story", req.Story, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, sess.Redacted())
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.engine.GetSession(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.writeJSON(w, sess.Redacted())
}

func (h *SessionHandler) handleEnd(w http.ResponseWriter, r *http.Request, id string) {
	var req EndSessionRequest
	if r.Body != nil {
		// The body is optional; a decode failure just means no accusations.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.engine.EndSession(r.Context(), id, req.Accusations); err != nil {
		h.writeSessionError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleClaim(w http.ResponseWriter, r *http.Request, id string) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Character == "" {
		h.writeError(w, http.StatusBadRequest, "character field is required")
		return
	}

	c, res, err := h.engine.ClaimCharacter(r.Context(), id, req.Character)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}
	if !res.OK() {
		w.WriteHeader(http.StatusBadRequest)
		h.writeJSON(w, ActionResponse{Result: res})
		return
	}

	w.WriteHeader(http.StatusOK)
	h.writeJSON(w, c)
}

func (h *SessionHandler) handleCommand(w http.ResponseWriter, r *http.Request, id string) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Actor == "" || req.Text == "" {
		h.writeError(w, http.StatusBadRequest, "actor and text fields are required")
		return
	}

	sess, res, err := h.engine.HandleCommand(r.Context(), id, req.Actor, req.Text)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.writeJSON(w, ActionResponse{Result: res, Session: sess.Redacted()})
}

func (h *SessionHandler) handleConversation(w http.ResponseWriter, r *http.Request, id string) {
	var req ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Line == "" {
		h.writeError(w, http.StatusBadRequest, "line field is required")
		return
	}

	sess, res, err := h.engine.ContinueConversation(r.Context(), id, req.Line)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.writeJSON(w, ActionResponse{Result: res, Session: sess.Redacted()})
}

func (h *SessionHandler) handleStep(w http.ResponseWriter, r *http.Request, id string) {
	sess, res, err := h.engine.StepAgent(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.writeJSON(w, ActionResponse{Result: res, Session: sess.Redacted()})
}

func (h *SessionHandler) handleEvents(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.engine.GetSession(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.writeJSON(w, sess.Events)
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, engine.ErrNotFound) {
		h.logger.Warn("Session not found", "id", id)
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	h.logger.Error("Session operation failed", "id", id, "error", err)
	h.writeError(w, http.StatusInternalServerError, "Session operation failed")
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	h.writeJSON(w, ErrorResponse{Error: msg})
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
