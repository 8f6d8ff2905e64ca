package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	UpstreamRequestsTotal   metric.Int64Counter
	UpstreamDurationSeconds metric.Float64Histogram
	ToolCallsTotal          metric.Int64Counter
	PlacesReturnedTotal     metric.Int64Counter
	ActiveSessions          metric.Int64UpDownCounter
	InteractionLogErrors    metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider, so call it
// after the provider is installed.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TravelAssistant")
		var err error
		m := &AppMetrics{}

		m.UpstreamRequestsTotal, err = meter.Int64Counter(
			"upstream_requests_total",
			metric.WithDescription("Total number of requests issued to places, weather and chat services"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_requests_total: %v", err)
		}

		m.UpstreamDurationSeconds, err = meter.Float64Histogram(
			"upstream_duration_seconds",
			metric.WithDescription("Duration of upstream service calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_duration_seconds: %v", err)
		}

		m.ToolCallsTotal, err = meter.Int64Counter(
			"chat_tool_calls_total",
			metric.WithDescription("Tool invocations requested by the chat model"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_tool_calls_total: %v", err)
		}

		m.PlacesReturnedTotal, err = meter.Int64Counter(
			"places_returned_total",
			metric.WithDescription("Place records returned after rating filter and cap"),
			metric.WithUnit("{place}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create places_returned_total: %v", err)
		}

		m.ActiveSessions, err = meter.Int64UpDownCounter(
			"active_sessions",
			metric.WithDescription("Browser sessions currently held in memory"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create active_sessions: %v", err)
		}

		m.InteractionLogErrors, err = meter.Int64Counter(
			"llm_interaction_log_errors_total",
			metric.WithDescription("Failures while persisting LLM interactions"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_interaction_log_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics instance. Without an installed provider the
// instruments are backed by the otel no-op meter.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// RecordUpstream counts one upstream call and its latency, labelled by service
// and outcome.
func (m *AppMetrics) RecordUpstream(ctx context.Context, service string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("outcome", outcome),
	)
	m.UpstreamRequestsTotal.Add(ctx, 1, attrs)
	m.UpstreamDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
}
