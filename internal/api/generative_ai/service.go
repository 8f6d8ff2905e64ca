package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const defaultModel = "gemini-2.0-flash"

type AIClient struct {
	client            *genai.Client
	model             string
	temperature       float32
	systemInstruction string
}

func NewAIClient(ctx context.Context, cfg config.LLMConfig) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if cfg.APIKey == "" {
		err := errors.New("GOOGLE_GEMINI_API_KEY is not set")
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client:            client,
		model:             model,
		temperature:       cfg.Temperature,
		systemInstruction: cfg.SystemInstruction,
	}, nil
}

func (ai *AIClient) ModelName() string { return ai.model }

// BaseConfig returns a fresh request config carrying the configured system
// instruction and temperature. Callers add tools on top of it.
func (ai *AIClient) BaseConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(ai.temperature),
	}
	if ai.systemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: ai.systemInstruction}}}
	}
	return cfg
}

// GenerateContent sends the whole conversation in one request.
func (ai *AIClient) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.Int("contents.count", len(contents)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, contents, config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return nil, ClassifyError(err)
	}

	span.SetStatus(codes.Ok, "Content generated successfully")
	return result, nil
}

// GenerateContentStream yields response chunks in arrival order. Errors are
// classified the same way GenerateContent does.
func (ai *AIClient) GenerateContentStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContentStream", trace.WithAttributes(
			attribute.Int("contents.count", len(contents)),
			attribute.String("model", ai.model),
		))
		defer span.End()

		for resp, err := range ai.client.Models.GenerateContentStream(ctx, ai.model, contents, config) {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "Stream failed")
				yield(nil, ClassifyError(err))
				return
			}
			if !yield(resp, nil) {
				return
			}
		}
		span.SetStatus(codes.Ok, "Stream completed")
	}
}

// ClassifyError maps a Gemini SDK error onto the service error kinds. API
// errors carry the HTTP status; anything else is treated as a transport
// failure.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return types.UpstreamError(apiErr.Code, apiErr.Message)
	}
	return types.NetworkError(err)
}
