package predict

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindguard/backend/internal/service/classifier"
	"github.com/mindguard/backend/pkg/utils"
)

// Error bodies are part of the relay contract and must not drift.
const (
	errNotConfigured = "API_BASE_URL is not configured on the server"
	errInvalidText   = "Missing or invalid 'text' field"
	errUpstream      = "Upstream API error"
	errInternal      = "Internal server error"
)

// Handler relays prediction requests to the upstream classifier.
type Handler struct {
	client *classifier.HTTPClient
}

// New creates the relay handler.
func New(client *classifier.HTTPClient) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes mounts the relay endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/predict", h.handlePredict)
}

// handlePredict validates the request shallowly (presence + type only, an
// empty string is forwarded) and issues exactly one upstream call.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !h.client.Configured() {
		utils.RespondError(w, http.StatusInternalServerError, errNotConfigured)
		return
	}

	var payload struct {
		Text any `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, errInvalidText)
		return
	}

	text, ok := payload.Text.(string)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, errInvalidText)
		return
	}

	res, err := h.client.Do(r.Context(), text)
	if err != nil {
		log.Printf("[predict] upstream call failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	if !res.OK() || !json.Valid(res.Body) {
		utils.RespondJSON(w, res.StatusCode, map[string]any{
			"error":   errUpstream,
			"details": upstreamDetails(res.Body),
		})
		return
	}

	utils.RespondRaw(w, http.StatusOK, res.Body)
}

// upstreamDetails embeds the upstream body as-is when it is valid JSON, and
// as a string otherwise.
func upstreamDetails(body []byte) any {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
