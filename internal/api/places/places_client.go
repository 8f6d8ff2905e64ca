package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
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
	MinRatingFloor  = 0.0
	MinRatingCeil   = 5.0
	MaxResultsFloor = 1
	MaxResultsCeil  = 20

	textSearchPath = "/textsearch/json"
)

var _ Client = (*ClientImpl)(nil)

// Client searches the places service and builds the links shown on a card.
type Client interface {
	SearchPlaces(ctx context.Context, query string, minRating float64, maxResults int) ([]types.PlaceRecord, error)
	Cards(places []types.PlaceRecord) []types.PlaceCard
	MapURL(loc types.Location) string
}

type ClientImpl struct {
	logger *slog.Logger
	http   *resty.Client
	cfg    config.PlacesConfig
}

func NewClient(cfg config.PlacesConfig, logger *slog.Logger) *ClientImpl {
	httpClient := resty.New().SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	if cfg.PhotoMaxWidth <= 0 {
		cfg.PhotoMaxWidth = 400
	}
	return &ClientImpl{
		logger: logger,
		http:   httpClient,
		cfg:    cfg,
	}
}

// SearchPlaces issues one text-search request and returns the results whose
// rating is at least minRating, capped at maxResults, in upstream order.
func (c *ClientImpl) SearchPlaces(ctx context.Context, query string, minRating float64, maxResults int) ([]types.PlaceRecord, error) {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "SearchPlaces", trace.WithAttributes(
		attribute.String("places.query", query),
		attribute.Float64("places.min_rating", minRating),
		attribute.Int("places.max_results", maxResults),
	))
	defer span.End()

	l := c.logger.With(slog.String("client", "places"), slog.String("query", query))

	if err := validateSearch(query, minRating, maxResults); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid search parameters")
		return nil, err
	}

	start := time.Now()
	results, err := c.textSearch(ctx, strings.TrimSpace(query))
	metrics.Get().RecordUpstream(ctx, "places", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Places text search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "text search failed")
		return nil, err
	}

	records := make([]types.PlaceRecord, 0, len(results))
	for _, r := range results {
		records = append(records, r.toRecord())
	}
	filtered := FilterAndCap(records, minRating, maxResults)

	metrics.Get().PlacesReturnedTotal.Add(ctx, int64(len(filtered)))
	span.SetAttributes(
		attribute.Int("places.upstream_count", len(records)),
		attribute.Int("places.returned_count", len(filtered)),
	)
	span.SetStatus(codes.Ok, "places fetched")
	l.DebugContext(ctx, "Places fetched",
		slog.Int("upstream_count", len(records)),
		slog.Int("returned_count", len(filtered)))
	return filtered, nil
}

func (c *ClientImpl) textSearch(ctx context.Context, query string) ([]placeResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query": query,
			"key":   c.cfg.APIKey,
		}).
		Get(textSearchPath)
	if err != nil {
		return nil, types.NetworkError(err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, types.UpstreamError(resp.StatusCode(), fmt.Sprintf("API error %d: %s", resp.StatusCode(), resp.String()))
	}

	var body textSearchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, types.ParseError("malformed places response", err)
	}

	// the service reports quota and key problems with a 200 and a status field
	if body.Status != "" && body.Status != statusOK && body.Status != statusZeroResults {
		msg := body.Status
		if body.ErrorMessage != "" {
			msg = fmt.Sprintf("%s: %s", body.Status, body.ErrorMessage)
		}
		return nil, types.UpstreamError(resp.StatusCode(), msg)
	}
	return body.Results, nil
}

// FilterAndCap keeps records rated at least minRating (missing rating counts
// as 0) and truncates to maxResults without reordering.
func FilterAndCap(records []types.PlaceRecord, minRating float64, maxResults int) []types.PlaceRecord {
	out := make([]types.PlaceRecord, 0, min(len(records), maxResults))
	for _, rec := range records {
		if len(out) == maxResults {
			break
		}
		if rec.RatingOrZero() >= minRating {
			out = append(out, rec)
		}
	}
	return out
}

func validateSearch(query string, minRating float64, maxResults int) error {
	if strings.TrimSpace(query) == "" {
		return types.ValidationError("query must not be empty")
	}
	if minRating < MinRatingFloor || minRating > MinRatingCeil {
		return types.ValidationError("min_rating must be between %.1f and %.1f, got %v", MinRatingFloor, MinRatingCeil, minRating)
	}
	if maxResults < MaxResultsFloor || maxResults > MaxResultsCeil {
		return types.ValidationError("max_results must be between %d and %d, got %d", MaxResultsFloor, MaxResultsCeil, maxResults)
	}
	return nil
}

// PhotoURL links the place photo endpoint. Empty when the place has no photo.
func (c *ClientImpl) PhotoURL(photoReference string) string {
	if photoReference == "" {
		return ""
	}
	q := url.Values{}
	q.Set("maxwidth", strconv.Itoa(c.cfg.PhotoMaxWidth))
	q.Set("photoreference", photoReference)
	q.Set("key", c.cfg.APIKey)
	return c.cfg.PhotoURL + "?" + q.Encode()
}

// MapURL links a map search centred on loc.
func (c *ClientImpl) MapURL(loc types.Location) string {
	return fmt.Sprintf("%s?api=1&query=%s,%s", c.cfg.MapsURL,
		strconv.FormatFloat(loc.Lat, 'f', -1, 64),
		strconv.FormatFloat(loc.Lng, 'f', -1, 64))
}

func (c *ClientImpl) Cards(places []types.PlaceRecord) []types.PlaceCard {
	cards := make([]types.PlaceCard, 0, len(places))
	for _, p := range places {
		cards = append(cards, types.PlaceCard{
			PlaceRecord: p,
			PhotoURL:    c.PhotoURL(p.PhotoReference),
			MapURL:      c.MapURL(p.Location),
		})
	}
	return cards
}
