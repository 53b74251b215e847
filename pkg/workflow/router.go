package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/careergini/orchestrator/pkg/llm"
	"github.com/careergini/orchestrator/pkg/observability"
)

// Decision is the router's choice for one cycle.
type Decision struct {
	// Route is a registered handler ID, Aggregate, or End.
	Route string
	// Reason explains the choice for the workflow trace.
	Reason string
	// Source records which path produced the decision:
	// "plan", "accumulated", "classifier", "keyword", or "default".
	Source string
	// Plan holds additional handler IDs queued by a multi-handler
	// classification. The engine stores it into state.RoutePlan.
	Plan []string
}

// keyword vocabulary, checked in order. First category with a hit wins;
// no hit falls through to the profile default.
var keywordVocabulary = []struct {
	handlerID string
	words     []string
}{
	{HandlerResume, []string{"resume", "cv", "cover letter"}},
	{HandlerJobSearch, []string{"job", "role", "apply", "hiring", "interview"}},
	{HandlerLearning, []string{"course", "tutorial", "certification", "study"}},
	{HandlerSkillsGap, []string{"skill", "gap", "learn", "become", "transition to"}},
	{HandlerProfile, []string{"profile", "about me", "career path"}},
}

// classifyPrompt frames the supervisor role for the classification call.
const classifyPrompt = `You are the supervisor of a career coaching assistant. Route the user's request to the correct specialist.

Available specialists:
- "profile": career path, transitions, professional identity
- "skills-gap": technical skills, technologies to learn, readiness for a target role
- "job-search": finding jobs, openings, applications, interview prep
- "resume-builder": resume and CV writing, ATS optimization, formatting
- "learning": courses, tutorials, certifications, learning resources

Respond with JSON only. For one specialist:
{"agent": "<id>", "reason": "<short reason>"}
For a request that needs several specialists in order:
{"agents": ["<id>", "<id>"], "reason": "<short reason>"}`

// Router decides which handler processes the next cycle of a turn.
//
// The decision is a pure function of state contents: the same state
// always yields the same decision modulo the classification call, and
// classification failures fall back deterministically to the keyword
// path. Its only side effect is the system trace entry it appends.
type Router struct {
	classifier llm.Client
	handlers   *HandlerSet
	logger     *slog.Logger
	metrics    observability.MetricsRecorder
}

// NewRouter creates a router over the registered handlers.
// classifier may be nil, in which case only the keyword path runs.
func NewRouter(handlers *HandlerSet, classifier llm.Client, logger *slog.Logger, metrics observability.MetricsRecorder) *Router {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Router{
		classifier: classifier,
		handlers:   handlers,
		logger:     logger,
		metrics:    metrics,
	}
}

// Route inspects the state and decides the next step.
// It appends one system trace entry describing the decision.
func (r *Router) Route(ctx context.Context, state *State) Decision {
	decision := r.decide(ctx, state)
	state.AppendMessage(RoleSystem, fmt.Sprintf("route: %s (%s: %s)", decision.Route, decision.Source, decision.Reason))
	observability.LogRouteDecision(r.logger, state.TurnID, decision.Route, decision.Reason)
	return decision
}

func (r *Router) decide(ctx context.Context, state *State) Decision {
	// A queued plan from an earlier multi-handler classification takes
	// priority; the engine pops entries as they dispatch.
	if len(state.RoutePlan) > 0 {
		next := state.RoutePlan[0]
		if r.handlers.Has(next) {
			return Decision{Route: next, Reason: "queued by classification plan", Source: "plan"}
		}
		// Unknown ID in the plan: skip the plan entirely rather than loop.
		return Decision{Route: Aggregate, Reason: "plan referenced unknown handler " + next, Source: "plan"}
	}

	// Once any handler has contributed, the turn aggregates.
	if len(state.HandlerOutputs) > 0 {
		return Decision{Route: Aggregate, Reason: "handler outputs accumulated", Source: "accumulated"}
	}

	message := state.LatestUserMessage()
	if strings.TrimSpace(message) == "" {
		return Decision{Route: End, Reason: "empty user message", Source: "default"}
	}

	if r.classifier != nil {
		if d, ok := r.classify(ctx, message); ok {
			return d
		}
		r.metrics.RecordRouteFallback(ctx, "classifier")
	}

	if id, word := keywordRoute(message); id != "" {
		return Decision{Route: id, Reason: "matched keyword " + quoted(word), Source: "keyword"}
	}

	r.metrics.RecordRouteFallback(ctx, "default")
	return Decision{Route: HandlerProfile, Reason: "no category matched", Source: "default"}
}

// classify asks the completion service for a structured routing decision.
// Malformed or unavailable responses report ok=false; the caller falls
// back to the keyword path. This never aborts the turn.
func (r *Router) classify(ctx context.Context, message string) (Decision, bool) {
	resp, err := r.classifier.Complete(ctx, llm.Request{
		SystemPrompt: classifyPrompt,
		Profile:      llm.ProfileReasoning,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: message}},
	})
	if err != nil {
		observability.LogCompletionFallback(r.logger, "router", err)
		return Decision{}, false
	}

	var parsed struct {
		Agent  string   `json:"agent"`
		Agents []string `json:"agents"`
		Reason string   `json:"reason"`
	}
	if !llm.ExtractJSON(resp.Content, &parsed) {
		// Some models answer with the bare specialist name.
		if id := strings.ToLower(llm.FirstLine(resp.Content)); r.handlers.Has(id) {
			return Decision{Route: id, Reason: "classified", Source: "classifier"}, true
		}
		observability.LogCompletionFallback(r.logger, "router", nil)
		return Decision{}, false
	}

	reason := parsed.Reason
	if reason == "" {
		reason = "classified"
	}

	if len(parsed.Agents) > 0 {
		valid := make([]string, 0, len(parsed.Agents))
		for _, id := range parsed.Agents {
			id = strings.ToLower(strings.TrimSpace(id))
			if r.handlers.Has(id) {
				valid = append(valid, id)
			}
		}
		if len(valid) == 0 {
			return Decision{}, false
		}
		return Decision{Route: valid[0], Reason: reason, Source: "classifier", Plan: valid[1:]}, true
	}

	id := strings.ToLower(strings.TrimSpace(parsed.Agent))
	if !r.handlers.Has(id) {
		return Decision{}, false
	}
	return Decision{Route: id, Reason: reason, Source: "classifier"}, true
}

// keywordRoute matches the message against the fixed vocabulary.
// Returns the handler ID and the matched word, or "" when nothing hits.
func keywordRoute(message string) (string, string) {
	lower := strings.ToLower(message)
	for _, category := range keywordVocabulary {
		for _, word := range category.words {
			if strings.Contains(lower, word) {
				return category.handlerID, word
			}
		}
	}
	return "", ""
}

func quoted(s string) string {
	return `"` + s + `"`
}
