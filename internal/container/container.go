package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-travel-assistant/app/db"
	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/assistant"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/chat"
	generativeAI "github.com/FACorreiaa/go-travel-assistant/internal/api/generative_ai"
	llmInteraction "github.com/FACorreiaa/go-travel-assistant/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/places"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/session"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/weather"
)

// Container holds all application dependencies
type Container struct {
	Config                *config.Config
	Logger                *slog.Logger
	Pool                  *pgxpool.Pool
	Sessions              *session.Store
	Pipeline              *assistant.Pipeline
	SessionHandler        *session.Handler
	AssistantHandler      *assistant.Handler
	LLMInteractionHandler *llmInteraction.LlmInteractionHandler
}

// NewContainer builds the Gemini client and, when enabled, the Postgres pool,
// then wires everything else through Build.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.LLM)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", slog.Any("error", err))
		return nil, err
	}

	var pool *pgxpool.Pool
	var repo llmInteraction.LLmInteractionRepository = llmInteraction.NoopRepository{}
	if cfg.Repositories.Postgres.Enabled {
		connectionURL, err := database.ConnectionURL(cfg.Repositories.Postgres)
		if err != nil {
			logger.Error("Failed to generate database config", slog.Any("error", err))
			return nil, err
		}
		if err = database.RunMigrations(connectionURL, logger); err != nil {
			logger.Error("Failed to run database migrations", slog.Any("error", err))
			return nil, err
		}
		pool, err = database.Init(ctx, connectionURL, cfg.Repositories.Postgres, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.Any("error", err))
			return nil, err
		}
		if !database.WaitForDB(ctx, pool, logger) {
			pool.Close()
			return nil, fmt.Errorf("database not ready")
		}
		repo = llmInteraction.NewPostgresLlmInteractionRepo(pool, logger)
	} else {
		logger.Info("Postgres disabled, LLM interactions will not be persisted")
	}

	c, err := Build(cfg, logger, aiClient, repo)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	c.Pool = pool
	return c, nil
}

// Build wires clients, services and handlers around an already constructed
// chat model and interaction repository.
func Build(cfg *config.Config, logger *slog.Logger, model chat.Model, repo llmInteraction.LLmInteractionRepository) (*Container, error) {
	store, err := session.NewStore(cfg.Session, logger)
	if err != nil {
		logger.Error("Failed to initialize session store", slog.Any("error", err))
		return nil, err
	}

	placesClient := places.NewClient(cfg.Places, logger)
	weatherClient := weather.NewClient(cfg.Weather, logger)
	chatRouter := chat.NewRouter(model, logger)

	recorder := llmInteraction.NewRecorder(repo, logger)
	pipeline := assistant.NewPipeline(placesClient, weatherClient, chatRouter, recorder,
		cfg.Pipeline, cfg.Places, logger)

	return &Container{
		Config:                cfg,
		Logger:                logger,
		Sessions:              store,
		Pipeline:              pipeline,
		SessionHandler:        session.NewHandler(store, logger),
		AssistantHandler:      assistant.NewHandler(pipeline, logger),
		LLMInteractionHandler: llmInteraction.NewLLMHandler(recorder, logger),
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
