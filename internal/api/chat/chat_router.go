package chat

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const (
	genaiRoleUser  = "user"
	genaiRoleModel = "model"
)

// Model is the slice of the Gemini client the router depends on.
type Model interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	BaseConfig() *genai.GenerateContentConfig
	ModelName() string
}

// Router asks the chat model for either a free-text answer or a single tool
// invocation. It never executes tools and never feeds tool output back.
type Router struct {
	model  Model
	logger *slog.Logger
}

func NewRouter(model Model, logger *slog.Logger) *Router {
	return &Router{model: model, logger: logger}
}

func (r *Router) ModelName() string { return r.model.ModelName() }

// Route sends the transcript and the declared tools in one request. At most
// one function call is accepted, and only for a declared tool.
func (r *Router) Route(ctx context.Context, transcript []types.ConversationTurn, tools ToolSet) (types.Reply, error) {
	ctx, span := otel.Tracer("ChatRouter").Start(ctx, "Route", trace.WithAttributes(
		attribute.Int("transcript.turns", len(transcript)),
		attribute.StringSlice("tools.declared", tools.Names()),
	))
	defer span.End()

	if len(transcript) == 0 {
		return nil, types.ValidationError("transcript must not be empty")
	}

	cfg := r.model.BaseConfig()
	cfg.Tools = tools.genaiTools()

	resp, err := r.model.GenerateContent(ctx, toContents(transcript), cfg)
	if err != nil {
		err = asServiceError(err)
		r.logger.ErrorContext(ctx, "Chat completion failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		return nil, err
	}

	reply, err := r.interpret(resp, tools)
	if err != nil {
		r.logger.WarnContext(ctx, "Rejected chat reply", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid chat reply")
		return nil, err
	}

	if call, ok := reply.(types.ToolCall); ok {
		name := string(call.Invocation.ToolName())
		metrics.Get().ToolCallsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", name)))
		span.SetAttributes(attribute.String("tool.called", name))
	}
	span.SetStatus(codes.Ok, "reply routed")
	return reply, nil
}

func (r *Router) interpret(resp *genai.GenerateContentResponse, tools ToolSet) (types.Reply, error) {
	calls := resp.FunctionCalls()
	switch {
	case len(calls) > 1:
		return nil, types.ValidationError("model requested %d tool calls, at most one is supported", len(calls))
	case len(calls) == 1:
		spec, ok := tools.Lookup(calls[0].Name)
		if !ok {
			return nil, types.ValidationError("model requested undeclared tool %q", calls[0].Name)
		}
		inv, err := spec.Decode(calls[0].Args)
		if err != nil {
			return nil, err
		}
		return types.ToolCall{Invocation: inv}, nil
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, types.ParseError("model returned neither text nor a tool call", nil)
	}
	return types.FreeText{Content: text}, nil
}

// Stream asks for a free-text reply with no tools declared and hands every
// chunk to onChunk in arrival order. It returns the concatenated reply.
func (r *Router) Stream(ctx context.Context, transcript []types.ConversationTurn, onChunk func(string)) (string, error) {
	ctx, span := otel.Tracer("ChatRouter").Start(ctx, "Stream", trace.WithAttributes(
		attribute.Int("transcript.turns", len(transcript)),
	))
	defer span.End()

	if len(transcript) == 0 {
		return "", types.ValidationError("transcript must not be empty")
	}

	var sb strings.Builder
	chunks := 0
	for resp, err := range r.model.GenerateContentStream(ctx, toContents(transcript), r.model.BaseConfig()) {
		if err != nil {
			err = asServiceError(err)
			r.logger.ErrorContext(ctx, "Chat stream failed", slog.Any("error", err), slog.Int("chunks", chunks))
			span.RecordError(err)
			span.SetStatus(codes.Error, "chat stream failed")
			return sb.String(), err
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		chunks++
		sb.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	span.SetAttributes(attribute.Int("stream.chunks", chunks))
	span.SetStatus(codes.Ok, "stream completed")
	return sb.String(), nil
}

// Complete is a one-shot prompt without transcript or tools.
func (r *Router) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("ChatRouter").Start(ctx, "Complete", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	contents := []*genai.Content{{Role: genaiRoleUser, Parts: []*genai.Part{{Text: prompt}}}}
	resp, err := r.model.GenerateContent(ctx, contents, r.model.BaseConfig())
	if err != nil {
		err = asServiceError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		err := types.ParseError("model returned an empty completion", nil)
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty completion")
		return "", err
	}
	span.SetStatus(codes.Ok, "completion generated")
	return text, nil
}

func toContents(transcript []types.ConversationTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(transcript))
	for _, turn := range transcript {
		role := genaiRoleUser
		if turn.Role == types.RoleAssistant {
			role = genaiRoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}
	return contents
}

func asServiceError(err error) error {
	if _, ok := types.AsServiceError(err); ok {
		return err
	}
	return types.NetworkError(err)
}
