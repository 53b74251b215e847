// Package llm provides the completion service client used by the router
// and task handlers. All inference runs against a local Ollama instance
// through its OpenAI-compatible endpoint; callers never see provider types.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client is the completion service contract.
// Implementations must return an error for transport failures only;
// malformed model output is still a successful completion; callers
// are responsible for parsing it tolerantly (see ExtractJSON).
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// TaskProfile selects sampling settings and the model for a call.
// Mirrors the three tiers the inference backend is tuned for.
type TaskProfile string

// Task profiles.
const (
	// ProfileReasoning is for routing and long-form generation.
	ProfileReasoning TaskProfile = "reasoning"
	// ProfileFast is for short personalized advice.
	ProfileFast TaskProfile = "fast"
	// ProfileCoding is for technical analysis such as skill gaps.
	ProfileCoding TaskProfile = "coding"
)

// Request configures a completion call.
type Request struct {
	// SystemPrompt frames the specialist persona.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Messages is the conversation to complete.
	Messages []Message `json:"messages"`

	// Profile selects the model tier. Empty means ProfileFast.
	Profile TaskProfile `json:"profile,omitempty"`

	// MaxTokens caps the response length. 0 uses the client default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// Message is a conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Response is the output of a completion call.
type Response struct {
	Content      string        `json:"content"`
	Model        string        `json:"model"`
	FinishReason string        `json:"finish_reason"`
	Usage        TokenUsage    `json:"usage"`
	Duration     time.Duration `json:"duration"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// ErrEmptyCompletion indicates the backend returned no choices.
var ErrEmptyCompletion = errors.New("completion returned no content")

// Error wraps a completion failure with retryability information.
type Error struct {
	// Op is the operation that failed ("complete", "health").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable indicates the call may succeed on retry.
	Retryable bool
}

// NewError creates a completion error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a completion error marked retryable
// or a deadline expiry (slow backend, worth one more attempt elsewhere).
func IsRetryable(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return errors.Is(err, context.DeadlineExceeded)
}
