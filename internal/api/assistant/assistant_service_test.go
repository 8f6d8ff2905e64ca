package assistant

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/chat"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/session"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

type MockPlacesClient struct {
	mock.Mock
}

func (m *MockPlacesClient) SearchPlaces(ctx context.Context, query string, minRating float64, maxResults int) ([]types.PlaceRecord, error) {
	args := m.Called(ctx, query, minRating, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlaceRecord), args.Error(1)
}

func (m *MockPlacesClient) Cards(places []types.PlaceRecord) []types.PlaceCard {
	cards := make([]types.PlaceCard, 0, len(places))
	for _, p := range places {
		cards = append(cards, types.PlaceCard{PlaceRecord: p, MapURL: m.MapURL(p.Location)})
	}
	return cards
}

func (m *MockPlacesClient) MapURL(loc types.Location) string {
	return fmt.Sprintf("https://maps.test/?query=%v,%v", loc.Lat, loc.Lng)
}

type MockWeatherClient struct {
	mock.Mock
}

func (m *MockWeatherClient) GetWeather(ctx context.Context, location string) (*types.WeatherSummary, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.WeatherSummary), args.Error(1)
}

type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Route(ctx context.Context, transcript []types.ConversationTurn, tools chat.ToolSet) (types.Reply, error) {
	args := m.Called(ctx, transcript, tools)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.Reply), args.Error(1)
}

func (m *MockRouter) Stream(ctx context.Context, transcript []types.ConversationTurn, onChunk func(string)) (string, error) {
	args := m.Called(ctx, transcript, onChunk)
	if chunks, ok := args.Get(2).([]string); ok {
		for _, c := range chunks {
			onChunk(c)
		}
	}
	return args.String(0), args.Error(1)
}

func (m *MockRouter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockRouter) ModelName() string { return "test-model" }

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, interaction types.LlmInteraction) {
	m.Called(ctx, interaction)
}

type pipelineDeps struct {
	places   *MockPlacesClient
	weather  *MockWeatherClient
	router   *MockRouter
	recorder *MockRecorder
}

func allStages() config.PipelineConfig {
	return config.PipelineConfig{ChatRouting: true, Weather: true, Itinerary: true, Recommendations: true}
}

func setupPipeline(stages config.PipelineConfig) (*Pipeline, pipelineDeps) {
	deps := pipelineDeps{
		places:   new(MockPlacesClient),
		weather:  new(MockWeatherClient),
		router:   new(MockRouter),
		recorder: new(MockRecorder),
	}
	deps.recorder.On("Record", mock.Anything, mock.Anything).Maybe()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPipeline(deps.places, deps.weather, deps.router, deps.recorder, stages,
		config.PlacesConfig{DefaultMinRating: 3.5, DefaultMaxResults: 10}, logger)
	return p, deps
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	store, err := session.NewStore(config.SessionConfig{SecretKey: "s", TTL: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	sess, _, err := store.Create(context.Background())
	require.NoError(t, err)
	return sess
}

func rating(f float64) *float64 { return &f }

// fillItinerary stands in for a search followed by adds.
func fillItinerary(t *testing.T, sess *session.Session, places ...types.PlaceRecord) {
	t.Helper()
	sess.RememberResults(places)
	for _, p := range places {
		_, err := sess.AddToItinerary(p.Key())
		require.NoError(t, err)
	}
}

func TestPipeline_Ask(t *testing.T) {
	ctx := context.Background()

	t.Run("free text is appended as assistant turn", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.router.On("Route", mock.Anything,
			mock.MatchedBy(func(tr []types.ConversationTurn) bool {
				return len(tr) == 1 && tr[0].Role == types.RoleUser && tr[0].Content == "hello there"
			}),
			mock.Anything,
		).Return(types.FreeText{Content: "Hi! Where to?"}, nil).Once()

		resp, err := p.Ask(ctx, sess, "  hello there ")
		require.NoError(t, err)
		assert.Equal(t, types.AskKindText, resp.Kind)
		assert.Equal(t, "Hi! Where to?", resp.Text)

		transcript := sess.Transcript()
		require.Len(t, transcript, 2)
		assert.Equal(t, types.RoleAssistant, transcript[1].Role)
		assert.Equal(t, "Hi! Where to?", transcript[1].Content)
		deps.recorder.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(i types.LlmInteraction) bool {
			return i.SessionID == sess.ID && i.ResponseText == "Hi! Where to?" && i.ModelUsed == "test-model"
		}))
	})

	t.Run("tool result is returned but not appended to transcript", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.router.On("Route", mock.Anything, mock.Anything, mock.Anything).
			Return(types.ToolCall{Invocation: types.WeatherLookupArgs{Location: "Paris"}}, nil).Once()
		summary := &types.WeatherSummary{Location: "Paris", TemperatureCelsius: 27.0, Advice: "Wear light clothing and stay hydrated."}
		deps.weather.On("GetWeather", mock.Anything, "Paris").Return(summary, nil).Once()

		resp, err := p.Ask(ctx, sess, "weather in Paris")
		require.NoError(t, err)
		assert.Equal(t, types.AskKindWeather, resp.Kind)
		assert.Equal(t, types.ToolGetWeather, resp.Tool)
		assert.Same(t, summary, resp.Weather)

		transcript := sess.Transcript()
		require.Len(t, transcript, 1)
		assert.Equal(t, types.RoleUser, transcript[0].Role)
		deps.router.AssertNumberOfCalls(t, "Route", 1)
		deps.recorder.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(i types.LlmInteraction) bool {
			return i.ToolName == "get_weather"
		}))
	})

	t.Run("places tool uses configured defaults", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.router.On("Route", mock.Anything, mock.Anything, mock.Anything).
			Return(types.ToolCall{Invocation: types.PlacesSearchArgs{Query: "cafes in Porto"}}, nil).Once()
		deps.places.On("SearchPlaces", mock.Anything, "cafes in Porto", 3.5, 10).
			Return([]types.PlaceRecord{{Name: "Majestic", Rating: rating(4.5)}}, nil).Once()

		resp, err := p.Ask(ctx, sess, "cafes in Porto")
		require.NoError(t, err)
		assert.Equal(t, types.AskKindPlaces, resp.Kind)
		require.Len(t, resp.Places, 1)
		assert.NotEmpty(t, resp.Places[0].MapURL)
		assert.Empty(t, resp.Warning)
		assert.Len(t, sess.Transcript(), 1)
		assert.Empty(t, sess.SearchHistory())

		added, err := sess.AddToItinerary("Majestic")
		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("empty places result carries a warning", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.router.On("Route", mock.Anything, mock.Anything, mock.Anything).
			Return(types.ToolCall{Invocation: types.PlacesSearchArgs{Query: "igloos in Lisbon"}}, nil).Once()
		deps.places.On("SearchPlaces", mock.Anything, "igloos in Lisbon", 3.5, 10).
			Return([]types.PlaceRecord{}, nil).Once()

		resp, err := p.Ask(ctx, sess, "igloos in Lisbon")
		require.NoError(t, err)
		assert.Equal(t, noPlacesWarning, resp.Warning)
	})

	t.Run("weather tool is not declared when stage is off", func(t *testing.T) {
		stages := allStages()
		stages.Weather = false
		p, deps := setupPipeline(stages)
		sess := newTestSession(t)
		deps.router.On("Route", mock.Anything, mock.Anything,
			mock.MatchedBy(func(tools chat.ToolSet) bool {
				names := tools.Names()
				return len(names) == 1 && names[0] == "search_places"
			}),
		).Return(nil, types.ValidationError("model requested undeclared tool %q", "get_weather")).Once()

		_, err := p.Ask(ctx, sess, "weather in Paris")
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.KindValidation))
		deps.weather.AssertNotCalled(t, "GetWeather", mock.Anything, mock.Anything)
		deps.router.AssertExpectations(t)
	})

	t.Run("routing failure leaves only the user turn", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.router.On("Route", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, types.UpstreamError(http.StatusServiceUnavailable, "overloaded")).Once()

		_, err := p.Ask(ctx, sess, "hi")
		assert.True(t, types.IsKind(err, types.KindUpstream))
		assert.Len(t, sess.Transcript(), 1)
	})

	t.Run("disabled stage and empty message", func(t *testing.T) {
		stages := allStages()
		stages.ChatRouting = false
		p, _ := setupPipeline(stages)
		sess := newTestSession(t)
		_, err := p.Ask(ctx, sess, "hi")
		assert.ErrorIs(t, err, types.ErrStageDisabled)

		p, _ = setupPipeline(allStages())
		_, err = p.Ask(ctx, sess, "   ")
		assert.True(t, types.IsKind(err, types.KindValidation))
		assert.Empty(t, sess.Transcript())
	})
}

func TestPipeline_AskStream(t *testing.T) {
	ctx := context.Background()

	t.Run("appends the full reply once streamed", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.router.On("Stream", mock.Anything, mock.Anything, mock.Anything).
			Return("Visit the Louvre.", nil, []string{"Visit ", "the Louvre."}).Once()

		var chunks []string
		text, err := p.AskStream(ctx, sess, "what to see in Paris", func(c string) { chunks = append(chunks, c) })
		require.NoError(t, err)
		assert.Equal(t, "Visit the Louvre.", text)
		assert.Equal(t, []string{"Visit ", "the Louvre."}, chunks)

		transcript := sess.Transcript()
		require.Len(t, transcript, 2)
		assert.Equal(t, "Visit the Louvre.", transcript[1].Content)
	})

	t.Run("failed stream does not append a partial reply", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.router.On("Stream", mock.Anything, mock.Anything, mock.Anything).
			Return("Visit ", types.NetworkError(assert.AnError), []string{"Visit "}).Once()

		_, err := p.AskStream(ctx, sess, "what to see in Paris", func(string) {})
		assert.True(t, types.IsKind(err, types.KindNetwork))
		assert.Len(t, sess.Transcript(), 1)
	})
}

func TestPipeline_Search(t *testing.T) {
	ctx := context.Background()
	req := types.PlacesSearchRequest{Query: "restaurants in Los Angeles", MinRating: 4.0, MaxResults: 5}

	t.Run("records history after success", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.places.On("SearchPlaces", mock.Anything, req.Query, 4.0, 5).
			Return([]types.PlaceRecord{{Name: "Bestia", Rating: rating(4.8)}}, nil).Twice()

		resp, err := p.Search(ctx, sess, req)
		require.NoError(t, err)
		assert.Len(t, resp.Places, 1)
		_, err = p.Search(ctx, sess, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"restaurants in Los Angeles"}, sess.SearchHistory())

		added, err := sess.AddToItinerary("Bestia")
		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("403 leaves history and bucket untouched", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		fillItinerary(t, sess, types.PlaceRecord{PlaceID: "p-1", Name: "Griffith Observatory"})
		deps.places.On("SearchPlaces", mock.Anything, req.Query, 4.0, 5).
			Return(nil, types.UpstreamError(http.StatusForbidden, "API error 403: denied")).Once()

		_, err := p.Search(ctx, sess, req)
		require.Error(t, err)
		se, ok := types.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, se.Status)
		assert.Empty(t, sess.SearchHistory())
		assert.Len(t, sess.Itinerary(), 1)
		_, err = sess.AddToItinerary("p-2")
		assert.ErrorIs(t, err, types.ErrPlaceNotFetched)
	})

	t.Run("no results is a warning, not an error", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.places.On("SearchPlaces", mock.Anything, req.Query, 4.0, 5).Return([]types.PlaceRecord{}, nil).Once()

		resp, err := p.Search(ctx, sess, req)
		require.NoError(t, err)
		assert.Empty(t, resp.Places)
		assert.Equal(t, noPlacesWarning, resp.Warning)
	})
}

func TestPipeline_Recommend(t *testing.T) {
	ctx := context.Background()
	req := types.PlacesSearchRequest{Query: "best parks in NYC", MinRating: 3.5, MaxResults: 10}
	parks := []types.PlaceRecord{
		{Name: "Central Park", FormattedAddress: "New York, NY", Rating: rating(4.8), Location: types.Location{Lat: 40.78, Lng: -73.96}},
	}

	t.Run("prompt lists the places", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.places.On("SearchPlaces", mock.Anything, req.Query, 3.5, 10).Return(parks, nil).Once()
		deps.router.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "Here are some relevant places I found") &&
				strings.Contains(prompt, "1. Central Park") &&
				strings.Contains(prompt, "Rating: 4.8 (Based on N/A reviews)")
		})).Return("Central Park is a must.", nil).Once()

		resp, err := p.Recommend(ctx, sess, req)
		require.NoError(t, err)
		assert.Equal(t, "Central Park is a must.", resp.Recommendation)
		assert.Len(t, resp.Places, 1)
		assert.Empty(t, resp.Error)
		assert.Equal(t, []string{"best parks in NYC"}, sess.SearchHistory())
		fillItinerary(t, sess, parks[0])
	})

	t.Run("model failure keeps the places", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.places.On("SearchPlaces", mock.Anything, req.Query, 3.5, 10).Return(parks, nil).Once()
		deps.router.On("Complete", mock.Anything, mock.Anything).Return("", types.NetworkError(assert.AnError)).Once()

		resp, err := p.Recommend(ctx, sess, req)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Error)
		assert.Len(t, resp.Places, 1)
	})

	t.Run("no places skips the model", func(t *testing.T) {
		p, deps := setupPipeline(allStages())
		sess := newTestSession(t)
		deps.places.On("SearchPlaces", mock.Anything, req.Query, 3.5, 10).Return([]types.PlaceRecord{}, nil).Once()

		resp, err := p.Recommend(ctx, sess, req)
		require.NoError(t, err)
		assert.Equal(t, noPlacesWarning, resp.Warning)
		deps.router.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("stage disabled", func(t *testing.T) {
		stages := allStages()
		stages.Recommendations = false
		p, _ := setupPipeline(stages)
		_, err := p.Recommend(ctx, newTestSession(t), req)
		assert.ErrorIs(t, err, types.ErrStageDisabled)
	})
}

func TestPipeline_GenerateItinerary(t *testing.T) {
	p, _ := setupPipeline(allStages())
	sess := newTestSession(t)

	_, err := p.GenerateItinerary(sess)
	assert.ErrorIs(t, err, types.ErrEmptyItinerary)

	fillItinerary(t, sess,
		types.PlaceRecord{PlaceID: "a", Name: "Belem Tower"},
		types.PlaceRecord{PlaceID: "b", Name: "Jeronimos Monastery"},
	)

	itinerary, err := p.GenerateItinerary(sess)
	require.NoError(t, err)
	require.Len(t, itinerary.Stops, 2)
	assert.Equal(t, 1, itinerary.Stops[0].Order)
	assert.Equal(t, "2. **Jeronimos Monastery**", itinerary.Stops[1].Heading)
	assert.Contains(t, itinerary.Markdown, "1. **Belem Tower**")

	stages := allStages()
	stages.Itinerary = false
	p, _ = setupPipeline(stages)
	_, err = p.GenerateItinerary(sess)
	assert.ErrorIs(t, err, types.ErrStageDisabled)
}

func TestPipeline_Weather(t *testing.T) {
	p, deps := setupPipeline(allStages())
	deps.weather.On("GetWeather", mock.Anything, "Lisbon").Return(&types.WeatherSummary{Location: "Lisbon"}, nil).Once()
	got, err := p.Weather(context.Background(), "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.Location)

	stages := allStages()
	stages.Weather = false
	p, _ = setupPipeline(stages)
	_, err = p.Weather(context.Background(), "Lisbon")
	assert.ErrorIs(t, err, types.ErrStageDisabled)
}
