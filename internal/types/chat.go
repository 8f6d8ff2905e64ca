package types

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ConversationTurn is one entry of a session transcript.
type ConversationTurn struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// ToolName identifies a capability the chat model may ask for.
type ToolName string

const (
	ToolSearchPlaces ToolName = "search_places"
	ToolGetWeather   ToolName = "get_weather"
)

// ToolInvocation is the closed set of decoded tool requests. Only the
// argument types in this package implement it.
type ToolInvocation interface {
	ToolName() ToolName
	isToolInvocation()
}

type PlacesSearchArgs struct {
	Query string `json:"query" validate:"required"`
}

func (PlacesSearchArgs) ToolName() ToolName { return ToolSearchPlaces }
func (PlacesSearchArgs) isToolInvocation()  {}

type WeatherLookupArgs struct {
	Location string `json:"location" validate:"required"`
}

func (WeatherLookupArgs) ToolName() ToolName { return ToolGetWeather }
func (WeatherLookupArgs) isToolInvocation()  {}

// Reply is what the chat router hands back: either FreeText or ToolCall.
type Reply interface {
	isReply()
}

type FreeText struct {
	Content string
}

func (FreeText) isReply() {}

type ToolCall struct {
	Invocation ToolInvocation
}

func (ToolCall) isReply() {}

// AskKind tags the payload of an AskResponse.
type AskKind string

const (
	AskKindText    AskKind = "text"
	AskKindPlaces  AskKind = "places"
	AskKindWeather AskKind = "weather"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// AskResponse is the outcome of one routed chat interaction.
type AskResponse struct {
	Kind    AskKind         `json:"kind"`
	Tool    ToolName        `json:"tool,omitempty"`
	Text    string          `json:"text,omitempty"`
	Places  []PlaceCard     `json:"places,omitempty"`
	Weather *WeatherSummary `json:"weather,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

// StreamEvent is one server-sent event of a streamed chat reply.
type StreamEvent struct {
	Type      string    `json:"type"`
	Data      string    `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	EventID   string    `json:"event_id"`
}

const (
	EventTypeChunk = "chunk"
	EventTypeDone  = "done"
	EventTypeError = "error"
)
