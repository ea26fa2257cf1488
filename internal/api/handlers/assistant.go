// Package handlers implements the HTTP endpoints. Every handler reads the
// authenticated user id from the request context; the auth middleware has
// already rejected anonymous requests by the time these run.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/andresuchitra/duitku/internal/api/middleware"
	"github.com/andresuchitra/duitku/internal/assistant"
	"github.com/andresuchitra/duitku/internal/auth"
)

// responseSystemError is the canned reply shown to the user when the model
// or the store fails mid-request.
const responseSystemError = "Maaf, terjadi kesalahan saat memproses pesan Anda. Silakan coba lagi."

// AssistantService is the dispatcher surface the handler needs. Tests
// substitute a stub.
type AssistantService interface {
	Dispatch(ctx context.Context, userID, message string, history []assistant.Message) (*assistant.Result, error)
}

// AssistantHandler handles the conversational endpoint.
type AssistantHandler struct {
	dispatcher AssistantService
	log        zerolog.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(dispatcher AssistantService, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		dispatcher: dispatcher,
		log:        log,
	}
}

// HandleMessage handles POST /api/assistant
func (h *AssistantHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string              `json:"message"`
		History []assistant.Message `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), userID, req.Message, req.History)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Assistant dispatch failed")
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error":    "Failed to process message",
			"response": responseSystemError,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// requireUser reads the authenticated user id from the context. The auth
// middleware guarantees it is present; the 401 here is a backstop for
// misrouted handlers.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok || userID == "" {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return "", false
	}
	return userID, true
}
