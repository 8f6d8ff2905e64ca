package assistant

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/session"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

type Handler struct {
	pipeline *Pipeline
	logger   *slog.Logger
}

func NewHandler(pipeline *Pipeline, logger *slog.Logger) *Handler {
	return &Handler{pipeline: pipeline, logger: logger}
}

// Chat godoc
// @Summary      Ask The Assistant
// @Description  Routes the message through the model. The reply is text, places or weather depending on the tool the model picks.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        message body types.ChatRequest true "User Message"
// @Success      200 {object} types.AskResponse "Assistant Reply"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Chat Stage Disabled"
// @Failure      502 {object} types.Response "Upstream Error"
// @Security     BearerAuth
// @Router       /chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AssistantHandler").Start(r.Context(), "Chat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/chat"),
	))
	defer span.End()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.Validate(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := h.pipeline.Ask(ctx, sess, req.Message)
	if err != nil {
		h.logger.WarnContext(ctx, "Chat request failed", slog.Any("error", err))
		api.ServiceErrorResponse(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("chat.kind", string(resp.Kind)))
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// ChatStream godoc
// @Summary      Stream Assistant Reply
// @Description  Streams the reply as server-sent chunk events followed by done. Errors raised before
// @Description  the first chunk are plain JSON responses; later ones arrive as an error event.
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Param        message body types.ChatRequest true "User Message"
// @Success      200 {object} types.StreamEvent "Event Stream"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /chat/stream [post]
func (h *Handler) ChatStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
	}
	send := func(event types.StreamEvent) {
		start()
		event.EventID = uuid.NewString()
		event.Timestamp = time.Now()
		h.writeSSE(w, event)
		flusher.Flush()
	}

	text, err := h.pipeline.AskStream(ctx, sess, req.Message, func(chunk string) {
		send(types.StreamEvent{Type: types.EventTypeChunk, Data: chunk})
	})
	if err != nil {
		h.logger.WarnContext(ctx, "Chat stream failed", slog.Any("error", err), slog.Bool("started", started))
		if !started {
			api.ServiceErrorResponse(w, r, err)
			return
		}
		send(types.StreamEvent{Type: types.EventTypeError, Error: err.Error()})
		return
	}
	send(types.StreamEvent{Type: types.EventTypeDone, Data: text})
}

func (h *Handler) writeSSE(w http.ResponseWriter, event types.StreamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", slog.Any("error", err))
		return
	}
	fmt.Fprintf(w, "id: %s\n", event.EventID)
	fmt.Fprintf(w, "event: %s\n", event.Type)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// SearchPlaces godoc
// @Summary      Search Places
// @Description  Text search filtered by minimum rating. Returned places can be added to the itinerary by key.
// @Tags         Places
// @Produce      json
// @Param        query       query string  true  "Search Text"
// @Param        min_rating  query number  false "Minimum Rating"
// @Param        max_results query integer false "Maximum Results"
// @Success      200 {object} types.PlacesSearchResponse "Places"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      502 {object} types.Response "Upstream Error"
// @Security     BearerAuth
// @Router       /places [get]
func (h *Handler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	req, err := h.searchRequestFromQuery(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.pipeline.Search(r.Context(), sess, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

type recommendationRequest struct {
	Query      string   `json:"query"`
	MinRating  *float64 `json:"min_rating,omitempty"`
	MaxResults *int     `json:"max_results,omitempty"`
}

// Recommend godoc
// @Summary      Recommend Places
// @Description  Searches places and asks the model to recommend among them. A model failure keeps the places and sets error.
// @Tags         Places
// @Accept       json
// @Produce      json
// @Param        search body recommendationRequest true "Search Parameters"
// @Success      200 {object} types.RecommendationResponse "Recommendation"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Recommendations Stage Disabled"
// @Failure      502 {object} types.Response "Upstream Error"
// @Security     BearerAuth
// @Router       /recommendations [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body recommendationRequest
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req := h.withDefaults(body.Query, body.MinRating, body.MaxResults)
	if err := api.Validate(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.pipeline.Recommend(r.Context(), sess, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Weather godoc
// @Summary      Get Weather
// @Tags         Weather
// @Produce      json
// @Param        location query string true "City Name"
// @Success      200 {object} types.WeatherSummary "Weather Summary"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Weather Stage Disabled"
// @Failure      502 {object} types.Response "Upstream Error"
// @Security     BearerAuth
// @Router       /weather [get]
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	summary, err := h.pipeline.Weather(r.Context(), location)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}

// GenerateItinerary godoc
// @Summary      Generate Itinerary
// @Description  Orders the bucket into numbered stops with map links.
// @Tags         Itinerary
// @Produce      json
// @Success      200 {object} types.Itinerary "Itinerary"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Itinerary Stage Disabled"
// @Failure      422 {object} types.Response "Empty Bucket"
// @Security     BearerAuth
// @Router       /itinerary/generate [post]
func (h *Handler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	itinerary, err := h.pipeline.GenerateItinerary(sess)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

func (h *Handler) searchRequestFromQuery(r *http.Request) (types.PlacesSearchRequest, error) {
	q := r.URL.Query()
	var minRating *float64
	var maxResults *int
	if raw := q.Get("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.PlacesSearchRequest{}, fmt.Errorf("min_rating must be a number")
		}
		minRating = &v
	}
	if raw := q.Get("max_results"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return types.PlacesSearchRequest{}, fmt.Errorf("max_results must be an integer")
		}
		maxResults = &v
	}
	return h.withDefaults(q.Get("query"), minRating, maxResults), nil
}

func (h *Handler) withDefaults(query string, minRating *float64, maxResults *int) types.PlacesSearchRequest {
	defMin, defMax := h.pipeline.Defaults()
	req := types.PlacesSearchRequest{Query: query, MinRating: defMin, MaxResults: defMax}
	if minRating != nil {
		req.MinRating = *minRating
	}
	if maxResults != nil {
		req.MaxResults = *maxResults
	}
	return req
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		api.ServiceErrorResponse(w, r, types.ErrSessionNotFound)
	}
	return sess, ok
}
