package session

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

func setupHandlerTest(t *testing.T) (http.Handler, *Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := setupStore(t)
	h := NewHandler(store, logger)

	r := chi.NewRouter()
	r.Post("/sessions", h.CreateSession)
	r.Group(func(r chi.Router) {
		r.Use(Require(store, logger))
		r.Delete("/sessions", h.EndSession)
		r.Get("/history", h.GetSearchHistory)
		r.Get("/transcript", h.GetTranscript)
		r.Delete("/transcript", h.ResetTranscript)
		r.Get("/itinerary", h.GetItinerary)
		r.Post("/itinerary", h.AddToItinerary)
		r.Delete("/itinerary", h.ClearItinerary)
		r.Delete("/itinerary/{placeKey}", h.RemoveFromItinerary)
	})
	return r, store
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, h http.Handler) types.SessionResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/sessions", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp types.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_SessionAuth(t *testing.T) {
	h, _ := setupHandlerTest(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/history", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/history", "junk", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sess := createSession(t, h)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/history", sess.Token, "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/sessions", sess.Token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/history", sess.Token, "").Code)
}

func TestHandler_Itinerary(t *testing.T) {
	h, store := setupHandlerTest(t)
	sess := createSession(t, h)
	live, err := store.Resolve(sess.Token)
	require.NoError(t, err)
	live.RememberResults([]types.PlaceRecord{{
		PlaceID:          "p-1",
		Name:             "Belem Tower",
		FormattedAddress: "Lisbon",
		Location:         types.Location{Lat: 38.69, Lng: -9.21},
	}})
	place := `{"place_key":"p-1"}`

	rec := do(t, h, http.MethodPost, "/itinerary", sess.Token, place)
	require.Equal(t, http.StatusCreated, rec.Code)
	var bucket types.ItineraryBucketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bucket))
	require.NotNil(t, bucket.Added)
	assert.True(t, *bucket.Added)
	require.Len(t, bucket.Places, 1)
	assert.Equal(t, "Belem Tower", bucket.Places[0].Name)

	rec = do(t, h, http.MethodPost, "/itinerary", sess.Token, place)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bucket))
	assert.False(t, *bucket.Added)
	assert.Len(t, bucket.Places, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/itinerary", sess.Token, `{"place_key":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/itinerary", sess.Token, `{"bogus":1}`).Code)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/itinerary/p-404", sess.Token, "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/itinerary/p-1", sess.Token, "").Code)
	assert.Empty(t, live.Itinerary())

	do(t, h, http.MethodPost, "/itinerary", sess.Token, place)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/itinerary", sess.Token, "").Code)

	rec = do(t, h, http.MethodGet, "/itinerary", sess.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"places":[]}`, rec.Body.String())
}

func TestHandler_AddRejectsUnfetchedPlace(t *testing.T) {
	h, store := setupHandlerTest(t)
	sess := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/itinerary", sess.Token,
		`{"place":{"place_id":"forged","name":"Never Searched","rating":1.0}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `unknown key \"place\"`)

	rec = do(t, h, http.MethodPost, "/itinerary", sess.Token, `{"place_key":"forged"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not returned by a search")

	other := createSession(t, h)
	otherLive, err := store.Resolve(other.Token)
	require.NoError(t, err)
	otherLive.RememberResults([]types.PlaceRecord{{PlaceID: "p-9", Name: "Elsewhere"}})
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/itinerary", sess.Token, `{"place_key":"p-9"}`).Code)

	live, err := store.Resolve(sess.Token)
	require.NoError(t, err)
	assert.Empty(t, live.Itinerary())
}

func TestHandler_TranscriptAndHistory(t *testing.T) {
	h, store := setupHandlerTest(t)
	sess := createSession(t, h)
	live, err := store.Resolve(sess.Token)
	require.NoError(t, err)

	live.AppendTurn(types.RoleUser, "hi")
	live.RecordSearch("parks in Madrid")

	rec := do(t, h, http.MethodGet, "/transcript", sess.Token, "")
	var transcript types.TranscriptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transcript))
	assert.Len(t, transcript.Turns, 1)

	rec = do(t, h, http.MethodGet, "/history", sess.Token, "")
	assert.JSONEq(t, `{"queries":["parks in Madrid"]}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/transcript", sess.Token, "").Code)
	assert.Empty(t, live.Transcript())
}
