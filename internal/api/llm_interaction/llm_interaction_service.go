package llmInteraction

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// Recorder persists model calls on a best-effort basis. A failed write is
// logged and counted but never returned to the caller.
type Recorder struct {
	repo   LLmInteractionRepository
	logger *slog.Logger
}

func NewRecorder(repo LLmInteractionRepository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, interaction types.LlmInteraction) {
	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}
	if err := r.repo.SaveInteraction(ctx, interaction); err != nil {
		metrics.Get().InteractionLogErrors.Add(ctx, 1)
		r.logger.WarnContext(ctx, "Failed to record llm interaction",
			slog.Any("error", err),
			slog.String("session_id", interaction.SessionID.String()))
	}
}

func (r *Recorder) List(ctx context.Context, sessionID uuid.UUID, limit int) ([]types.LlmInteraction, error) {
	return r.repo.ListBySession(ctx, sessionID, limit)
}
