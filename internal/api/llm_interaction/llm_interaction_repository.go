package llmInteraction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var (
	_ LLmInteractionRepository = (*PostgresLlmInteractionRepo)(nil)
	_ LLmInteractionRepository = NoopRepository{}
)

type LLmInteractionRepository interface {
	SaveInteraction(ctx context.Context, interaction types.LlmInteraction) error
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]types.LlmInteraction, error)
}

// DBTX is satisfied by *pgxpool.Pool and by pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresLlmInteractionRepo struct {
	logger *slog.Logger
	pgpool DBTX
}

func NewPostgresLlmInteractionRepo(pgpool DBTX, logger *slog.Logger) *PostgresLlmInteractionRepo {
	return &PostgresLlmInteractionRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresLlmInteractionRepo) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) error {
	query := `
        INSERT INTO llm_interactions (
            id, session_id, prompt, response_text, tool_name, model_used, latency_ms, created_at
        ) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
    `
	_, err := r.pgpool.Exec(ctx, query,
		interaction.ID, interaction.SessionID, interaction.Prompt, interaction.ResponseText,
		interaction.ToolName, interaction.ModelUsed, interaction.LatencyMs, interaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save llm interaction: %w", err)
	}
	return nil
}

// ListBySession returns the newest interactions of one session first.
func (r *PostgresLlmInteractionRepo) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]types.LlmInteraction, error) {
	query := `
        SELECT id, session_id, prompt, response_text, COALESCE(tool_name, ''), model_used, latency_ms, created_at
        FROM llm_interactions
        WHERE session_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.pgpool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query llm interactions: %w", err)
	}
	defer rows.Close()

	var interactions []types.LlmInteraction
	for rows.Next() {
		var i types.LlmInteraction
		if err := rows.Scan(&i.ID, &i.SessionID, &i.Prompt, &i.ResponseText, &i.ToolName,
			&i.ModelUsed, &i.LatencyMs, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan llm interaction: %w", err)
		}
		interactions = append(interactions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating llm interactions: %w", err)
	}
	return interactions, nil
}

// NoopRepository drops every interaction. Used when postgres is disabled.
type NoopRepository struct{}

func (NoopRepository) SaveInteraction(context.Context, types.LlmInteraction) error { return nil }

func (NoopRepository) ListBySession(context.Context, uuid.UUID, int) ([]types.LlmInteraction, error) {
	return []types.LlmInteraction{}, nil
}
