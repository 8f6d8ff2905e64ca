package types

import (
	"time"

	"github.com/google/uuid"
)

// LlmInteraction is one logged call to the chat model.
type LlmInteraction struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	Prompt       string    `json:"prompt"`
	ResponseText string    `json:"response_text"`
	ToolName     string    `json:"tool_name,omitempty"`
	ModelUsed    string    `json:"model_used"`
	LatencyMs    int       `json:"latency_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
