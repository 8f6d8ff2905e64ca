package types

import (
	"time"

	"github.com/google/uuid"
)

// AddToItineraryRequest names a place returned by an earlier search in the
// same session, by PlaceRecord.Key.
type AddToItineraryRequest struct {
	PlaceKey string `json:"place_key" validate:"required"`
}

type ItineraryBucketResponse struct {
	Places []PlaceRecord `json:"places"`
	Added  *bool         `json:"added,omitempty"`
}

// ItineraryStop is one numbered entry of a generated itinerary.
type ItineraryStop struct {
	Order   int         `json:"order"`
	Place   PlaceRecord `json:"place"`
	MapURL  string      `json:"map_url"`
	Heading string      `json:"heading"`
}

type Itinerary struct {
	Stops    []ItineraryStop `json:"stops"`
	Markdown string          `json:"markdown"`
}

type SearchHistoryResponse struct {
	Queries []string `json:"queries"`
}

type TranscriptResponse struct {
	Turns []ConversationTurn `json:"turns"`
}

// SessionResponse is returned when a browser session is opened.
type SessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
