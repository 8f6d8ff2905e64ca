package llmInteraction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

func setupRepoTest(t *testing.T) (*PostgresLlmInteractionRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresLlmInteractionRepo(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil))), mockPool
}

func TestPostgresLlmInteractionRepo_SaveInteraction(t *testing.T) {
	ctx := context.Background()
	interaction := types.LlmInteraction{
		ID:           uuid.New(),
		SessionID:    uuid.New(),
		Prompt:       "weather in Paris",
		ResponseText: "",
		ToolName:     "get_weather",
		ModelUsed:    "gemini-2.0-flash",
		LatencyMs:    120,
		CreatedAt:    time.Now(),
	}

	t.Run("inserts one row", func(t *testing.T) {
		repo, mockPool := setupRepoTest(t)
		mockPool.ExpectExec("INSERT INTO llm_interactions").
			WithArgs(interaction.ID, interaction.SessionID, interaction.Prompt, interaction.ResponseText,
				interaction.ToolName, interaction.ModelUsed, interaction.LatencyMs, interaction.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.SaveInteraction(ctx, interaction))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("wraps database errors", func(t *testing.T) {
		repo, mockPool := setupRepoTest(t)
		dbErr := errors.New("connection refused")
		mockPool.ExpectExec("INSERT INTO llm_interactions").WillReturnError(dbErr)

		err := repo.SaveInteraction(ctx, interaction)
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresLlmInteractionRepo_ListBySession(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	now := time.Now()

	t.Run("scans rows newest first", func(t *testing.T) {
		repo, mockPool := setupRepoTest(t)
		id1, id2 := uuid.New(), uuid.New()
		rows := pgxmock.NewRows([]string{"id", "session_id", "prompt", "response_text", "tool_name", "model_used", "latency_ms", "created_at"}).
			AddRow(id1, sessionID, "hi", "hello", "", "gemini-2.0-flash", 80, now).
			AddRow(id2, sessionID, "cafes in Porto", "", "search_places", "gemini-2.0-flash", 95, now.Add(-time.Minute))
		mockPool.ExpectQuery("SELECT (.+) FROM llm_interactions").
			WithArgs(sessionID, 20).
			WillReturnRows(rows)

		got, err := repo.ListBySession(ctx, sessionID, 20)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, id1, got[0].ID)
		assert.Equal(t, "search_places", got[1].ToolName)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mockPool := setupRepoTest(t)
		mockPool.ExpectQuery("SELECT (.+) FROM llm_interactions").
			WithArgs(sessionID, 5).
			WillReturnError(errors.New("timeout"))

		_, err := repo.ListBySession(ctx, sessionID, 5)
		assert.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestNoopRepository(t *testing.T) {
	var repo LLmInteractionRepository = NoopRepository{}
	assert.NoError(t, repo.SaveInteraction(context.Background(), types.LlmInteraction{}))
	got, err := repo.ListBySession(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
