package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const (
	currentWeatherPath = "/weather"
	kelvinOffset       = 273.15
	notFoundMessage    = "weather data not found"
)

var _ Client = (*ClientImpl)(nil)

type Client interface {
	GetWeather(ctx context.Context, location string) (*types.WeatherSummary, error)
}

type ClientImpl struct {
	logger *slog.Logger
	http   *resty.Client
	cfg    config.WeatherConfig
}

func NewClient(cfg config.WeatherConfig, logger *slog.Logger) *ClientImpl {
	httpClient := resty.New().SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	return &ClientImpl{
		logger: logger,
		http:   httpClient,
		cfg:    cfg,
	}
}

// GetWeather fetches current conditions for a free-form location. Only the
// part before the first comma is sent, so "Paris, France" asks for "Paris".
func (c *ClientImpl) GetWeather(ctx context.Context, location string) (*types.WeatherSummary, error) {
	ctx, span := otel.Tracer("WeatherClient").Start(ctx, "GetWeather", trace.WithAttributes(
		attribute.String("weather.location", location),
	))
	defer span.End()

	city := NormalizeLocation(location)
	if city == "" {
		err := types.ValidationError("location must not be empty")
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty location")
		return nil, err
	}
	l := c.logger.With(slog.String("client", "weather"), slog.String("location", city))

	start := time.Now()
	summary, err := c.current(ctx, city)
	metrics.Get().RecordUpstream(ctx, "weather", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Weather lookup failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "weather lookup failed")
		return nil, err
	}

	span.SetAttributes(attribute.Float64("weather.temperature_celsius", summary.TemperatureCelsius))
	span.SetStatus(codes.Ok, "weather fetched")
	l.DebugContext(ctx, "Weather fetched", slog.Float64("temperature_celsius", summary.TemperatureCelsius))
	return summary, nil
}

func (c *ClientImpl) current(ctx context.Context, city string) (*types.WeatherSummary, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"appid": c.cfg.APIKey,
		}).
		Get(currentWeatherPath)
	if err != nil {
		return nil, types.NetworkError(err)
	}

	if resp.StatusCode() != http.StatusOK {
		var body errorBody
		msg := resp.String()
		if json.Unmarshal(resp.Body(), &body) == nil && body.Message != "" {
			msg = body.Message
		}
		return nil, types.UpstreamError(resp.StatusCode(), fmt.Sprintf("could not fetch weather data for %s: %s", city, msg))
	}

	var body currentWeatherResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, types.ParseError("malformed weather response", err)
	}
	if body.Main == nil {
		msg := body.Message
		if msg == "" {
			msg = notFoundMessage
		}
		return nil, types.UpstreamError(resp.StatusCode(), msg)
	}

	summary := &types.WeatherSummary{
		Location:           city,
		TemperatureCelsius: KelvinToCelsius(body.Main.Temp),
		FeelsLikeCelsius:   KelvinToCelsius(body.Main.FeelsLike),
		HumidityPercent:    body.Main.Humidity,
	}
	if len(body.Weather) > 0 {
		summary.Condition = body.Weather[0].Description
	}
	summary.Advice = ClothingAdvice(summary.TemperatureCelsius)
	return summary, nil
}

// NormalizeLocation keeps the text before the first comma, trimmed.
func NormalizeLocation(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

// KelvinToCelsius converts and rounds to one decimal.
func KelvinToCelsius(k float64) float64 {
	return math.Round((k-kelvinOffset)*10) / 10
}

func ClothingAdvice(celsius float64) string {
	switch {
	case celsius > 25:
		return "Wear light clothing and stay hydrated."
	case celsius >= 15:
		return "Wear comfortable clothing."
	default:
		return "Dress warmly to stay comfortable."
	}
}
