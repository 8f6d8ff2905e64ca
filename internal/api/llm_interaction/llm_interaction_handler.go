package llmInteraction

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/session"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type LlmInteractionHandler struct {
	recorder *Recorder
	logger   *slog.Logger
}

func NewLLMHandler(recorder *Recorder, logger *slog.Logger) *LlmInteractionHandler {
	return &LlmInteractionHandler{recorder: recorder, logger: logger}
}

// ListInteractions godoc
// @Summary      List LLM Interactions
// @Description  Most recent model interactions recorded for this session, newest first.
// @Tags         LLM
// @Produce      json
// @Param        limit query integer false "Page Size (1-100)"
// @Success      200 {array}  types.LlmInteraction "Interactions"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /interactions [get]
func (h *LlmInteractionHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		api.ServiceErrorResponse(w, r, types.ErrSessionNotFound)
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	interactions, err := h.recorder.List(r.Context(), sess.ID, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list llm interactions", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to list interactions")
		return
	}
	if interactions == nil {
		interactions = []types.LlmInteraction{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, interactions)
}
