package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	appLogger "github.com/FACorreiaa/go-travel-assistant/app/logger"
	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/app/tracer"
	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/session"
	"github.com/FACorreiaa/go-travel-assistant/internal/container"
	"github.com/FACorreiaa/go-travel-assistant/internal/router"
)

func main() {
	// standard log until slog is configured
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := appLogger.New(os.Getenv("APP_ENV"))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	shutdownTelemetry, err := tracer.InitTracingAndMetrics()
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	defer shutdownTelemetry()
	metrics.InitAppMetrics()

	// --- Dependencies ---
	c, err := container.NewContainer(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to build application container", slog.Any("error", err))
		os.Exit(1)
	}
	defer c.Close()

	handler := router.SetupRouter(&router.Config{
		SessionHandler:        c.SessionHandler,
		AssistantHandler:      c.AssistantHandler,
		LLMInteractionHandler: c.LLMInteractionHandler,
		SessionMiddleware:     session.Require(c.Sessions, logger),
		Logger:                logger,
		AllowedOrigins:        cfg.Server.AllowedOrigins,
		RateLimit:             cfg.Server.RateLimit,
		Timeout:               cfg.Server.Timeout,
		ItineraryEnabled:      cfg.Pipeline.Itinerary,
	})

	// --- HTTP Server ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:    serverAddress,
		Handler: handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout(cfg.Server.Timeout),
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	servers := []*http.Server{srv}
	if cfg.Handlers.Prometheus.Enabled {
		servers = append(servers, tracer.NewMetricsServer(cfg.Handlers.Prometheus.Port))
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", s.Addr))
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", s.Addr, err)
			}
			return nil
		})
	}

	// a failing server cancels gCtx and takes the others down with it
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server graceful shutdown failed", slog.String("address", s.Addr), slog.Any("error", err))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("HTTP server error", slog.Any("error", err))
	}
	logger.Info("Application shut down complete.")
}

// writeTimeout gives a streamed reply until the request timeout plus a margin.
// A zero request timeout means streams are never cut off by the server.
func writeTimeout(requestTimeout time.Duration) time.Duration {
	if requestTimeout <= 0 {
		return 0
	}
	return requestTimeout + 5*time.Second
}
