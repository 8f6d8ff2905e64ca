package types

// Response is the body of every JSON error reply.
type Response struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id"`
}
