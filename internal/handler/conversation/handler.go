package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	conversationservice "github.com/mindguard/backend/internal/service/conversation"
	"github.com/mindguard/backend/pkg/utils"
)

// Handler exposes the process-wide conversation over REST.
type Handler struct {
	store *conversationservice.Store
}

// New creates the conversation handler.
func New(store *conversationservice.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the conversation endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversation", h.handleSnapshot)
	r.Post("/conversation/messages", h.handleSubmit)
}

// handleSnapshot returns the render projection. Repeated reads of an
// unchanged conversation produce identical output.
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.Snapshot())
}

// handleSubmit runs one submission cycle and returns the assistant reply.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assistant, err := h.store.Submit(r.Context(), payload.Text)
	switch {
	case errors.Is(err, conversationservice.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, conversationservice.ErrReplyInProgress):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	default:
		utils.RespondJSON(w, http.StatusOK, map[string]any{"reply": assistant})
	}
}
