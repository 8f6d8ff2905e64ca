package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appLogger "github.com/FACorreiaa/go-travel-assistant/app/logger"
	appMiddleware "github.com/FACorreiaa/go-travel-assistant/app/middleware"
	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/assistant"
	llmInteraction "github.com/FACorreiaa/go-travel-assistant/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/session"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// Config contains the handlers and settings the router wires together.
type Config struct {
	SessionHandler        *session.Handler
	AssistantHandler      *assistant.Handler
	LLMInteractionHandler *llmInteraction.LlmInteractionHandler
	SessionMiddleware     func(http.Handler) http.Handler
	Logger                *slog.Logger
	AllowedOrigins        []string
	RateLimit             int
	Timeout               time.Duration
	// ItineraryEnabled mounts the /itinerary group; when false every route in
	// it answers 404.
	ItineraryEnabled bool
}

// stageGate rejects every request with ErrStageDisabled unless enabled.
func stageGate(stage string, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.ServiceErrorResponse(w, r, fmt.Errorf("%s: %w", stage, types.ErrStageDisabled))
		})
	}
}

// SetupRouter builds the full HTTP surface, server-wide middleware included.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewMux()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(appMiddleware.CORS(cfg.AllowedOrigins))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(appMiddleware.RateLimit(cfg.RateLimit))

		r.Post("/sessions", cfg.SessionHandler.CreateSession)

		r.Group(func(r chi.Router) {
			r.Use(cfg.SessionMiddleware)

			r.Delete("/sessions", cfg.SessionHandler.EndSession)

			r.Post("/chat", cfg.AssistantHandler.Chat)
			r.Post("/chat/stream", cfg.AssistantHandler.ChatStream)
			r.Get("/transcript", cfg.SessionHandler.GetTranscript)
			r.Delete("/transcript", cfg.SessionHandler.ResetTranscript)

			r.Get("/places", cfg.AssistantHandler.SearchPlaces)
			r.Post("/recommendations", cfg.AssistantHandler.Recommend)
			r.Get("/history", cfg.SessionHandler.GetSearchHistory)
			r.Get("/weather", cfg.AssistantHandler.Weather)

			r.Route("/itinerary", func(r chi.Router) {
				r.Use(stageGate("itinerary", cfg.ItineraryEnabled))
				r.Get("/", cfg.SessionHandler.GetItinerary)
				r.Post("/", cfg.SessionHandler.AddToItinerary)
				r.Delete("/", cfg.SessionHandler.ClearItinerary)
				r.Post("/generate", cfg.AssistantHandler.GenerateItinerary)
				r.Delete("/{placeKey}", cfg.SessionHandler.RemoveFromItinerary)
			})

			r.Get("/interactions", cfg.LLMInteractionHandler.ListInteractions)
		})
	})

	return r
}
