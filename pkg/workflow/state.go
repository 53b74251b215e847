package workflow

import (
	"time"

	"github.com/careergini/orchestrator/pkg/profile"
)

// Terminal route sentinels. Every routing decision targets either a
// registered handler ID or one of these.
const (
	// Aggregate ends the routing loop and composes the final response.
	Aggregate = "__aggregate__"
	// End terminates the turn without aggregation.
	End = "__end__"
)

// Known handler identifiers.
const (
	HandlerProfile   = "profile"
	HandlerSkillsGap = "skills-gap"
	HandlerJobSearch = "job-search"
	HandlerResume    = "resume-builder"
	HandlerLearning  = "learning"
)

// Role identifies a message author.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in a turn's message log.
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// PartialResult is one handler's contribution to a turn.
// Either Summary/Data are populated (success, possibly degraded) or
// Error records a contained failure. Suggestion carries user-actionable
// guidance for recoverable conditions such as a missing profile.
type PartialResult struct {
	Summary    string         `json:"summary,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
}

// Failed reports whether this result records a contained failure.
func (r PartialResult) Failed() bool {
	return r.Error != ""
}

// State is the shared workflow state for one user turn.
//
// It is exclusively owned by the turn's driver loop: the engine threads
// it through router, handler, and aggregator steps sequentially, so no
// locking is needed. Concurrent sub-calls inside one handler must
// collect into their own PartialResult, never into State directly.
type State struct {
	// Identity of the requester and conversation. Immutable for the
	// turn's lifetime.
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	TurnID    string `json:"turn_id"`

	// MessageLog is the ordered, append-only conversation log for this
	// turn, including injected system trace entries. Use AppendMessage;
	// entries are never reordered or removed.
	MessageLog []Message `json:"message_log"`

	// ProfileSnapshot is the user's profile fetched once at turn start.
	// Nil when the profile store has no record. Read-only within the turn.
	ProfileSnapshot *profile.Record `json:"profile_snapshot,omitempty"`

	// PendingRoute is the most recent routing decision: a handler ID,
	// Aggregate, or End.
	PendingRoute string `json:"pending_route,omitempty"`

	// RoutePlan holds handler IDs queued by a multi-handler
	// classification, consumed one per routing cycle.
	RoutePlan []string `json:"route_plan,omitempty"`

	// HandlerOutputs maps handler ID to that handler's latest result.
	// Re-invoking a handler within a turn overwrites its entry.
	HandlerOutputs map[string]PartialResult `json:"handler_outputs"`

	// FinalOutput and SuggestedFollowups are populated by aggregation.
	FinalOutput        string   `json:"final_output,omitempty"`
	SuggestedFollowups []string `json:"suggested_followups,omitempty"`
}

// NewState creates the state for one turn, seeded with the user message.
func NewState(userID, sessionID, turnID, message string) *State {
	s := &State{
		UserID:         userID,
		SessionID:      sessionID,
		TurnID:         turnID,
		HandlerOutputs: make(map[string]PartialResult),
	}
	s.AppendMessage(RoleUser, message)
	return s
}

// AppendMessage appends one entry to the message log.
// This is the only way the log grows; it never shrinks within a turn.
func (s *State) AppendMessage(role Role, content string) {
	s.MessageLog = append(s.MessageLog, Message{
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	})
}

// LatestUserMessage returns the content of the most recent user-role
// entry, or "" if none exists.
func (s *State) LatestUserMessage() string {
	for i := len(s.MessageLog) - 1; i >= 0; i-- {
		if s.MessageLog[i].Role == RoleUser {
			return s.MessageLog[i].Content
		}
	}
	return ""
}

// RecentMessages returns up to n of the newest log entries, oldest
// first. Handlers use this to bound prompt sizes; the log itself is
// never truncated.
func (s *State) RecentMessages(n int) []Message {
	if n <= 0 || len(s.MessageLog) <= n {
		return s.MessageLog
	}
	return s.MessageLog[len(s.MessageLog)-n:]
}

// SetHandlerOutput records a handler's result, replacing any prior
// entry for the same ID.
func (s *State) SetHandlerOutput(handlerID string, result PartialResult) {
	if s.HandlerOutputs == nil {
		s.HandlerOutputs = make(map[string]PartialResult)
	}
	s.HandlerOutputs[handlerID] = result
}

// Output returns the recorded result for a handler and whether one exists.
func (s *State) Output(handlerID string) (PartialResult, bool) {
	r, ok := s.HandlerOutputs[handlerID]
	return r, ok
}
