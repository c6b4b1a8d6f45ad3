// Package rest exposes the chat relay REST API.
package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maisonhq/maison/internal/auth"
	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/platform/httpapi"
	"github.com/maisonhq/maison/internal/services/chat/history"
	"github.com/maisonhq/maison/internal/services/chat/upstream"
)

// Handler serves the chat routes for one cache and assistant.
type Handler struct {
	cache     history.Cache
	assistant upstream.Assistant
	now       func() time.Time
}

// NewHandler creates a chat API handler.
func NewHandler(cache history.Cache, assistant upstream.Assistant) *Handler {
	return &Handler{cache: cache, assistant: assistant, now: time.Now}
}

// Mux returns the route table with bearer auth applied to every route.
func (h *Handler) Mux(authCfg auth.Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat/message", h.postMessage)
	mux.HandleFunc("GET /api/v1/chat/sessions/{id}", h.getSession)
	mux.HandleFunc("DELETE /api/v1/chat/sessions/{id}", h.clearSession)
	return auth.Middleware(authCfg, mux)
}

type messageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// MessageResponse is the wire shape of one relayed chat turn.
type MessageResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeBadRequest, "invalid chat body", err))
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		httpapi.WriteError(w, apperrors.New(apperrors.CodeChatMessageEmpty, "message is required"))
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	transcript, err := h.cache.Get(r.Context(), sessionID)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	reply, err := h.assistant.Reply(r.Context(), sessionID, transcript, message)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	now := h.now().UTC()
	err = h.cache.Put(r.Context(), sessionID,
		history.Message{Role: history.RoleUser, Content: message, CreatedAt: now},
		history.Message{Role: history.RoleAssistant, Content: reply, CreatedAt: now},
	)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, MessageResponse{SessionID: sessionID, Reply: reply})
}

// SessionResponse is the wire shape of a session transcript.
type SessionResponse struct {
	SessionID string            `json:"sessionId"`
	Messages  []history.Message `json:"messages"`
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("id"))
	messages, err := h.cache.Get(r.Context(), sessionID)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, SessionResponse{SessionID: sessionID, Messages: messages})
}

func (h *Handler) clearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("id"))
	if err := h.cache.Clear(r.Context(), sessionID); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
