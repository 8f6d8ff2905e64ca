package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// CreateSession godoc
// @Summary      Start Session
// @Description  Creates an anonymous session and returns the bearer token that identifies it.
// @Tags         Session
// @Produce      json
// @Success      201 {object} types.SessionResponse "Session Created"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, token, err := h.store.Create(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to create session", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to create session")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, types.SessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
	})
}

// EndSession godoc
// @Summary      End Session
// @Description  Discards the session and all of its state. The token stops working.
// @Tags         Session
// @Success      204 "Session Ended"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /sessions [delete]
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.store.End(r.Context(), sess.ID); err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSearchHistory godoc
// @Summary      Get Search History
// @Description  Lists the distinct queries of successful searches in this session, oldest first.
// @Tags         Session
// @Produce      json
// @Success      200 {object} types.SearchHistoryResponse "Search History"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /history [get]
func (h *Handler) GetSearchHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	queries := sess.SearchHistory()
	if queries == nil {
		queries = []string{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.SearchHistoryResponse{Queries: queries})
}

// GetTranscript godoc
// @Summary      Get Transcript
// @Description  Returns the conversation turns of this session.
// @Tags         Chat
// @Produce      json
// @Success      200 {object} types.TranscriptResponse "Transcript"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /transcript [get]
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	turns := sess.Transcript()
	if turns == nil {
		turns = []types.ConversationTurn{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.TranscriptResponse{Turns: turns})
}

// ResetTranscript godoc
// @Summary      Reset Transcript
// @Tags         Chat
// @Success      204 "Transcript Cleared"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /transcript [delete]
func (h *Handler) ResetTranscript(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.ResetTranscript()
	w.WriteHeader(http.StatusNoContent)
}

// GetItinerary godoc
// @Summary      Get Itinerary Bucket
// @Tags         Itinerary
// @Produce      json
// @Success      200 {object} types.ItineraryBucketResponse "Itinerary Bucket"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Itinerary Stage Disabled"
// @Security     BearerAuth
// @Router       /itinerary [get]
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, bucketResponse(sess, nil))
}

// AddToItinerary godoc
// @Summary      Add Place To Itinerary
// @Description  Adds a place returned by an earlier search in this session, named by its key.
// @Description  Adding a place that is already in the bucket is a no-op reported as added=false.
// @Tags         Itinerary
// @Accept       json
// @Produce      json
// @Param        place body types.AddToItineraryRequest true "Place Key"
// @Success      201 {object} types.ItineraryBucketResponse "Place Added"
// @Success      200 {object} types.ItineraryBucketResponse "Already In Bucket"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Place Not Returned By A Search"
// @Security     BearerAuth
// @Router       /itinerary [post]
func (h *Handler) AddToItinerary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req types.AddToItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.Validate(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place_key is required")
		return
	}
	added, err := sess.AddToItinerary(req.PlaceKey)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Rejected itinerary add", slog.String("place_key", req.PlaceKey), slog.Any("error", err))
		api.ServiceErrorResponse(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	api.WriteJSONResponse(w, r, status, bucketResponse(sess, &added))
}

// RemoveFromItinerary godoc
// @Summary      Remove Place From Itinerary
// @Tags         Itinerary
// @Produce      json
// @Param        placeKey path string true "Place Key"
// @Success      200 {object} types.ItineraryBucketResponse "Place Removed"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Place Not In Bucket"
// @Security     BearerAuth
// @Router       /itinerary/{placeKey} [delete]
func (h *Handler) RemoveFromItinerary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "placeKey")
	if err := sess.RemoveFromItinerary(key); err != nil {
		if errors.Is(err, types.ErrPlaceNotFound) {
			h.logger.DebugContext(r.Context(), "Place not in bucket", slog.String("place_key", key))
		}
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, bucketResponse(sess, nil))
}

// ClearItinerary godoc
// @Summary      Clear Itinerary
// @Tags         Itinerary
// @Success      204 "Bucket Cleared"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /itinerary [delete]
func (h *Handler) ClearItinerary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.ClearItinerary()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, ok := FromContext(r.Context())
	if !ok {
		api.ServiceErrorResponse(w, r, types.ErrSessionNotFound)
	}
	return sess, ok
}

func bucketResponse(sess *Session, added *bool) types.ItineraryBucketResponse {
	places := sess.Itinerary()
	if places == nil {
		places = []types.PlaceRecord{}
	}
	return types.ItineraryBucketResponse{Places: places, Added: added}
}
