package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// apiClient talks to the travel assistant HTTP API on behalf of one session.
type apiClient struct {
	http  *resty.Client
	token string
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func newAPIClient(serverURL, token string, timeout time.Duration) *apiClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(serverURL, "/") + "/api/v1").
		SetTimeout(timeout)
	return &apiClient{http: c, token: token}
}

func (c *apiClient) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	return req
}

// check turns a non-2xx response into an apiError carrying the server message.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsSuccess() {
		return nil
	}
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(resp.String())
	if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &apiError{Status: resp.StatusCode(), Message: msg}
}

func (c *apiClient) StartSession(ctx context.Context) (*types.SessionResponse, error) {
	var out types.SessionResponse
	if err := check(c.request(ctx).SetResult(&out).Post("/sessions")); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *apiClient) EndSession(ctx context.Context) error {
	return check(c.request(ctx).Delete("/sessions"))
}

func (c *apiClient) Ask(ctx context.Context, message string) (*types.AskResponse, error) {
	var out types.AskResponse
	err := check(c.request(ctx).
		SetBody(types.ChatRequest{Message: message}).
		SetResult(&out).
		Post("/chat"))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AskStream posts to the SSE endpoint and calls onChunk per chunk event. The
// full reply comes from the done event.
func (c *apiClient) AskStream(ctx context.Context, message string, onChunk func(string)) (string, error) {
	resp, err := c.request(ctx).
		SetBody(types.ChatRequest{Message: message}).
		SetHeader("Accept", "text/event-stream").
		SetDoNotParseResponse(true).
		Post("/chat/stream")
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(raw).Decode(&body)
		return "", &apiError{Status: resp.StatusCode(), Message: body.Error}
	}

	scanner := bufio.NewScanner(raw)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var ev types.StreamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return "", fmt.Errorf("malformed stream event: %w", err)
		}
		switch ev.Type {
		case types.EventTypeChunk:
			onChunk(ev.Data)
		case types.EventTypeError:
			return "", &apiError{Status: http.StatusBadGateway, Message: ev.Error}
		case types.EventTypeDone:
			return ev.Data, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stream: %w", err)
	}
	return "", fmt.Errorf("stream ended without a done event")
}

func (c *apiClient) SearchPlaces(ctx context.Context, query string, minRating float64, maxResults int) (*types.PlacesSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	if minRating >= 0 {
		params.Set("min_rating", strconv.FormatFloat(minRating, 'f', -1, 64))
	}
	if maxResults > 0 {
		params.Set("max_results", strconv.Itoa(maxResults))
	}
	var out types.PlacesSearchResponse
	if err := check(c.request(ctx).SetQueryParamsFromValues(params).SetResult(&out).Get("/places")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Recommend(ctx context.Context, query string, minRating float64, maxResults int) (*types.RecommendationResponse, error) {
	body := map[string]any{"query": query}
	if minRating >= 0 {
		body["min_rating"] = minRating
	}
	if maxResults > 0 {
		body["max_results"] = maxResults
	}
	var out types.RecommendationResponse
	if err := check(c.request(ctx).SetBody(body).SetResult(&out).Post("/recommendations")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Weather(ctx context.Context, location string) (*types.WeatherSummary, error) {
	var out types.WeatherSummary
	if err := check(c.request(ctx).SetQueryParam("location", location).SetResult(&out).Get("/weather")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) History(ctx context.Context) ([]string, error) {
	var out types.SearchHistoryResponse
	if err := check(c.request(ctx).SetResult(&out).Get("/history")); err != nil {
		return nil, err
	}
	return out.Queries, nil
}

func (c *apiClient) Itinerary(ctx context.Context) ([]types.PlaceRecord, error) {
	var out types.ItineraryBucketResponse
	if err := check(c.request(ctx).SetResult(&out).Get("/itinerary")); err != nil {
		return nil, err
	}
	return out.Places, nil
}

// AddToItinerary adds a place from an earlier search in this session by key.
func (c *apiClient) AddToItinerary(ctx context.Context, key string) (bool, error) {
	var out types.ItineraryBucketResponse
	err := check(c.request(ctx).
		SetBody(types.AddToItineraryRequest{PlaceKey: key}).
		SetResult(&out).
		Post("/itinerary"))
	if err != nil {
		return false, err
	}
	return out.Added != nil && *out.Added, nil
}

func (c *apiClient) RemoveFromItinerary(ctx context.Context, key string) error {
	return check(c.request(ctx).SetPathParam("placeKey", key).Delete("/itinerary/{placeKey}"))
}

func (c *apiClient) ClearItinerary(ctx context.Context) error {
	return check(c.request(ctx).Delete("/itinerary"))
}

func (c *apiClient) GenerateItinerary(ctx context.Context) (*types.Itinerary, error) {
	var out types.Itinerary
	if err := check(c.request(ctx).SetResult(&out).Post("/itinerary/generate")); err != nil {
		return nil, err
	}
	return &out, nil
}
