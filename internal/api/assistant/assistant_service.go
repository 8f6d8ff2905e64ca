package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/chat"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/places"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/session"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/weather"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// ChatRouter is what the pipeline needs from the chat model.
type ChatRouter interface {
	Route(ctx context.Context, transcript []types.ConversationTurn, tools chat.ToolSet) (types.Reply, error)
	Stream(ctx context.Context, transcript []types.ConversationTurn, onChunk func(string)) (string, error)
	Complete(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

type InteractionRecorder interface {
	Record(ctx context.Context, interaction types.LlmInteraction)
}

// Pipeline is the single query flow behind every surface: chat routing,
// direct search, recommendations, weather and itinerary generation. Optional
// stages are switched by config.
type Pipeline struct {
	logger   *slog.Logger
	places   places.Client
	weather  weather.Client
	router   ChatRouter
	recorder InteractionRecorder
	stages   config.PipelineConfig
	defaults config.PlacesConfig
}

func NewPipeline(
	placesClient places.Client,
	weatherClient weather.Client,
	router ChatRouter,
	recorder InteractionRecorder,
	stages config.PipelineConfig,
	defaults config.PlacesConfig,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		logger:   logger,
		places:   placesClient,
		weather:  weatherClient,
		router:   router,
		recorder: recorder,
		stages:   stages,
		defaults: defaults,
	}
}

// Ask appends the user turn, routes it, and runs at most one tool. Tool
// results go back to the caller only; free text is appended as the
// assistant turn.
func (p *Pipeline) Ask(ctx context.Context, sess *session.Session, message string) (*types.AskResponse, error) {
	ctx, span := otel.Tracer("AssistantPipeline").Start(ctx, "Ask", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
	))
	defer span.End()

	if !p.stages.ChatRouting {
		return nil, fmt.Errorf("chat routing: %w", types.ErrStageDisabled)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, types.ValidationError("message must not be empty")
	}

	sess.AppendTurn(types.RoleUser, message)

	start := time.Now()
	reply, err := p.router.Route(ctx, sess.Transcript(), p.declaredTools())
	interaction := types.LlmInteraction{SessionID: sess.ID, Prompt: message, ModelUsed: p.router.ModelName()}
	interaction.LatencyMs = int(time.Since(start).Milliseconds())
	if err != nil {
		interaction.ResponseText = "error: " + err.Error()
		p.recorder.Record(ctx, interaction)
		span.RecordError(err)
		span.SetStatus(codes.Error, "routing failed")
		return nil, err
	}

	switch r := reply.(type) {
	case types.FreeText:
		interaction.ResponseText = r.Content
		p.recorder.Record(ctx, interaction)
		sess.AppendTurn(types.RoleAssistant, r.Content)
		span.SetStatus(codes.Ok, "free text")
		return &types.AskResponse{Kind: types.AskKindText, Text: r.Content}, nil

	case types.ToolCall:
		interaction.ToolName = string(r.Invocation.ToolName())
		p.recorder.Record(ctx, interaction)
		span.SetAttributes(attribute.String("tool", interaction.ToolName))
		resp, err := p.runTool(ctx, sess, r.Invocation)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "tool failed")
			return nil, err
		}
		span.SetStatus(codes.Ok, "tool ran")
		return resp, nil
	}
	return nil, fmt.Errorf("unexpected reply type %T", reply)
}

func (p *Pipeline) declaredTools() chat.ToolSet {
	tools := chat.ToolSet{chat.PlacesSearchTool()}
	if p.stages.Weather {
		tools = append(tools, chat.WeatherLookupTool())
	}
	return tools
}

func (p *Pipeline) runTool(ctx context.Context, sess *session.Session, inv types.ToolInvocation) (*types.AskResponse, error) {
	switch args := inv.(type) {
	case types.PlacesSearchArgs:
		records, err := p.places.SearchPlaces(ctx, args.Query, p.defaults.DefaultMinRating, p.defaults.DefaultMaxResults)
		if err != nil {
			return nil, err
		}
		// shown to the user, so addable, but not a history entry
		sess.RememberResults(records)
		resp := &types.AskResponse{Kind: types.AskKindPlaces, Tool: args.ToolName(), Places: p.places.Cards(records)}
		if len(records) == 0 {
			resp.Warning = noPlacesWarning
		}
		return resp, nil

	case types.WeatherLookupArgs:
		summary, err := p.weather.GetWeather(ctx, args.Location)
		if err != nil {
			return nil, err
		}
		return &types.AskResponse{Kind: types.AskKindWeather, Tool: args.ToolName(), Weather: summary}, nil
	}
	return nil, types.ValidationError("no handler for tool %q", inv.ToolName())
}

// AskStream is the chat-only variant: no tools, the reply is streamed chunk by
// chunk and appended to the transcript once complete.
func (p *Pipeline) AskStream(ctx context.Context, sess *session.Session, message string, onChunk func(string)) (string, error) {
	ctx, span := otel.Tracer("AssistantPipeline").Start(ctx, "AskStream", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
	))
	defer span.End()

	if !p.stages.ChatRouting {
		return "", fmt.Errorf("chat routing: %w", types.ErrStageDisabled)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", types.ValidationError("message must not be empty")
	}

	sess.AppendTurn(types.RoleUser, message)

	start := time.Now()
	text, err := p.router.Stream(ctx, sess.Transcript(), onChunk)
	interaction := types.LlmInteraction{
		SessionID:    sess.ID,
		Prompt:       message,
		ResponseText: text,
		ModelUsed:    p.router.ModelName(),
		LatencyMs:    int(time.Since(start).Milliseconds()),
	}
	p.recorder.Record(ctx, interaction)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stream failed")
		return text, err
	}

	sess.AppendTurn(types.RoleAssistant, text)
	span.SetStatus(codes.Ok, "stream completed")
	return text, nil
}

// Search is the direct path with no model involved. The query joins the
// session history only once the search has succeeded.
func (p *Pipeline) Search(ctx context.Context, sess *session.Session, req types.PlacesSearchRequest) (*types.PlacesSearchResponse, error) {
	ctx, span := otel.Tracer("AssistantPipeline").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("places.query", req.Query),
	))
	defer span.End()

	records, err := p.places.SearchPlaces(ctx, req.Query, req.MinRating, req.MaxResults)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	sess.RecordSearch(query)
	sess.RememberResults(records)

	resp := &types.PlacesSearchResponse{Query: query, Places: p.places.Cards(records)}
	if len(records) == 0 {
		resp.Warning = noPlacesWarning
	}
	span.SetStatus(codes.Ok, "search completed")
	return resp, nil
}

// Recommend searches and then asks the model to write about the results. A
// places failure aborts; a model failure is reported next to the places.
func (p *Pipeline) Recommend(ctx context.Context, sess *session.Session, req types.PlacesSearchRequest) (*types.RecommendationResponse, error) {
	ctx, span := otel.Tracer("AssistantPipeline").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("places.query", req.Query),
	))
	defer span.End()

	if !p.stages.Recommendations {
		return nil, fmt.Errorf("recommendations: %w", types.ErrStageDisabled)
	}

	records, err := p.places.SearchPlaces(ctx, req.Query, req.MinRating, req.MaxResults)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	sess.RecordSearch(query)
	sess.RememberResults(records)

	resp := &types.RecommendationResponse{Query: query, Places: p.places.Cards(records)}
	if len(records) == 0 {
		resp.Warning = noPlacesWarning
		span.SetStatus(codes.Ok, "no places")
		return resp, nil
	}

	prompt := recommendationPrompt(query, records)
	start := time.Now()
	text, err := p.router.Complete(ctx, prompt)
	interaction := types.LlmInteraction{
		SessionID:    sess.ID,
		Prompt:       prompt,
		ResponseText: text,
		ModelUsed:    p.router.ModelName(),
		LatencyMs:    int(time.Since(start).Milliseconds()),
	}
	p.recorder.Record(ctx, interaction)
	if err != nil {
		p.logger.WarnContext(ctx, "Recommendation failed, returning places only", slog.Any("error", err))
		resp.Error = err.Error()
		span.SetStatus(codes.Error, "recommendation failed")
		return resp, nil
	}

	resp.Recommendation = text
	span.SetStatus(codes.Ok, "recommendation generated")
	return resp, nil
}

func (p *Pipeline) Weather(ctx context.Context, location string) (*types.WeatherSummary, error) {
	if !p.stages.Weather {
		return nil, fmt.Errorf("weather: %w", types.ErrStageDisabled)
	}
	return p.weather.GetWeather(ctx, location)
}

// GenerateItinerary numbers the bucket in insertion order.
func (p *Pipeline) GenerateItinerary(sess *session.Session) (*types.Itinerary, error) {
	if !p.stages.Itinerary {
		return nil, fmt.Errorf("itinerary: %w", types.ErrStageDisabled)
	}
	bucket := sess.Itinerary()
	if len(bucket) == 0 {
		return nil, types.ErrEmptyItinerary
	}

	stops := make([]types.ItineraryStop, 0, len(bucket))
	for i, place := range bucket {
		stops = append(stops, types.ItineraryStop{
			Order:   i + 1,
			Place:   place,
			MapURL:  p.places.MapURL(place.Location),
			Heading: fmt.Sprintf("%d. **%s**", i+1, place.Name),
		})
	}
	return &types.Itinerary{Stops: stops, Markdown: itineraryMarkdown(stops)}, nil
}

// Defaults exposes the configured search defaults for handlers that parse
// optional query parameters.
func (p *Pipeline) Defaults() (minRating float64, maxResults int) {
	return p.defaults.DefaultMinRating, p.defaults.DefaultMaxResults
}
