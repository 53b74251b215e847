package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careergini/orchestrator/pkg/cache"
	"github.com/careergini/orchestrator/pkg/history"
	"github.com/careergini/orchestrator/pkg/llm"
	"github.com/careergini/orchestrator/pkg/observability"
	"github.com/careergini/orchestrator/pkg/profile"
)

// Defaults for engine limits.
const (
	DefaultMaxCycles      = 6
	DefaultHandlerTimeout = 30 * time.Second
	DefaultTurnTimeout    = 2 * time.Minute
)

// TurnResult is the outcome of one submitted turn.
type TurnResult struct {
	TurnID    string `json:"turn_id"`
	SessionID string `json:"session_id"`

	// Response is the final user-facing answer. Never empty.
	Response string `json:"response"`

	// Followups are suggested next prompts, at most three.
	Followups []string `json:"followups,omitempty"`

	// Degraded is true when the turn completed through a fallback
	// path (cycle limit, handler failures with no usable output).
	Degraded bool `json:"degraded,omitempty"`
	// DegradedReason explains the degradation when Degraded is true.
	DegradedReason string `json:"degraded_reason,omitempty"`

	// Cached is true when the response was served from the response
	// cache without running the workflow.
	Cached bool `json:"cached,omitempty"`

	// Cycles is the number of routing cycles the turn consumed.
	Cycles int `json:"cycles"`

	// Trace is the turn's full message log, system entries included.
	Trace []Message `json:"trace,omitempty"`

	Duration time.Duration `json:"-"`
}

// Engine drives a turn through its phases: route, dispatch, repeat
// until the router chooses aggregation, then compose the final answer.
//
// A turn always completes with a response. Handler failures, panics,
// and the cycle bound degrade the turn; only an invalid request
// surfaces an error from SubmitTurn.
type Engine struct {
	handlers   *HandlerSet
	router     *Router
	aggregator *Aggregator

	profiles     profile.Store
	historyStore history.Store
	responses    *cache.ResponseCache

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	maxCycles      int
	handlerTimeout time.Duration
	turnTimeout    time.Duration

	classifier llm.Client
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSpanManager sets the trace span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(e *Engine) { e.spans = s }
}

// WithProfileStore enables profile snapshot loading at turn start.
func WithProfileStore(s profile.Store) Option {
	return func(e *Engine) { e.profiles = s }
}

// WithHistoryStore enables conversation persistence after each turn.
func WithHistoryStore(s history.Store) Option {
	return func(e *Engine) { e.historyStore = s }
}

// WithResponseCache enables the read-through response cache.
func WithResponseCache(c *cache.ResponseCache) Option {
	return func(e *Engine) { e.responses = c }
}

// WithClassifier sets the completion client used for route
// classification. Without it, routing uses keywords only.
func WithClassifier(c llm.Client) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithMaxCycles sets the routing loop bound. Values below 1 keep the
// default.
func WithMaxCycles(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxCycles = n
		}
	}
}

// WithHandlerTimeout bounds each handler dispatch. Zero disables the
// per-handler deadline.
func WithHandlerTimeout(d time.Duration) Option {
	return func(e *Engine) { e.handlerTimeout = d }
}

// WithTurnTimeout bounds the whole turn. Zero disables the deadline.
func WithTurnTimeout(d time.Duration) Option {
	return func(e *Engine) { e.turnTimeout = d }
}

// New creates an engine over the registered handlers.
func New(handlers *HandlerSet, opts ...Option) (*Engine, error) {
	if handlers == nil || handlers.Len() == 0 {
		return nil, ErrNoHandlers
	}

	e := &Engine{
		handlers:       handlers,
		metrics:        observability.NoopMetrics{},
		spans:          observability.NoopSpanManager{},
		maxCycles:      DefaultMaxCycles,
		handlerTimeout: DefaultHandlerTimeout,
		turnTimeout:    DefaultTurnTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.router = NewRouter(handlers, e.classifier, e.logger, e.metrics)
	e.aggregator = NewAggregator(handlers)
	return e, nil
}

// SubmitTurn processes one user message and returns the final response.
//
// It returns an error only for an invalid request (empty user ID,
// session ID, or message). Every other failure mode degrades the
// response instead: the caller always gets something to show the user.
func (e *Engine) SubmitTurn(ctx context.Context, userID, sessionID, message string) (*TurnResult, error) {
	switch {
	case strings.TrimSpace(userID) == "":
		return nil, fmt.Errorf("%w: missing user ID", ErrInvalidTurn)
	case strings.TrimSpace(sessionID) == "":
		return nil, fmt.Errorf("%w: missing session ID", ErrInvalidTurn)
	case strings.TrimSpace(message) == "":
		return nil, fmt.Errorf("%w: missing message", ErrInvalidTurn)
	}

	turnID := uuid.NewString()
	start := time.Now()

	// Identical question from the same user inside the cache TTL is
	// answered without running the workflow.
	if cached, ok := e.responses.Get(ctx, userID, message); ok {
		e.metrics.RecordTurn(ctx, false, time.Since(start), 0)
		return &TurnResult{
			TurnID:    turnID,
			SessionID: sessionID,
			Response:  cached,
			Cached:    true,
		}, nil
	}

	if e.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.turnTimeout)
		defer cancel()
	}

	ctx, span := e.spans.StartTurnSpan(ctx, sessionID, turnID)
	logger := observability.EnrichLogger(e.logger, turnID, sessionID, "")
	observability.LogTurnStart(logger, turnID, sessionID)

	state := NewState(userID, sessionID, turnID, message)
	e.loadProfile(ctx, state, logger)

	cycles, degradedReason := e.run(ctx, state)

	degraded := degradedReason != ""
	duration := time.Since(start)

	e.persist(ctx, state, logger)
	if !degraded {
		e.responses.Set(ctx, userID, message, state.FinalOutput)
	}

	e.metrics.RecordTurn(ctx, degraded, duration, cycles)
	if degraded {
		observability.LogTurnDegraded(logger, turnID, degradedReason, cycles)
		e.spans.EndSpanWithError(span, errors.New(degradedReason))
	} else {
		observability.LogTurnComplete(logger, turnID, float64(duration.Milliseconds()), cycles)
		e.spans.EndSpanWithError(span, nil)
	}

	return &TurnResult{
		TurnID:         turnID,
		SessionID:      sessionID,
		Response:       state.FinalOutput,
		Followups:      state.SuggestedFollowups,
		Degraded:       degraded,
		DegradedReason: degradedReason,
		Cycles:         cycles,
		Trace:          state.MessageLog,
		Duration:       duration,
	}, nil
}

// run drives the routing loop until aggregation or termination.
// It returns the cycle count and a degradation reason ("" when clean).
func (e *Engine) run(ctx context.Context, state *State) (int, string) {
	logger := observability.EnrichLogger(e.logger, state.TurnID, state.SessionID, "")

	cycles := 0
	for {
		if cycles >= e.maxCycles {
			limitErr := &MaxCyclesError{Max: e.maxCycles, LastRoute: state.PendingRoute}
			state.AppendMessage(RoleSystem, limitErr.Error())
			e.aggregator.Aggregate(state)
			return cycles, limitErr.Error()
		}
		if err := ctx.Err(); err != nil {
			state.AppendMessage(RoleSystem, "turn deadline exceeded")
			e.aggregator.Aggregate(state)
			return cycles, "turn deadline exceeded"
		}

		decision := e.router.Route(ctx, state)
		state.PendingRoute = decision.Route

		switch decision.Route {
		case End:
			if strings.TrimSpace(state.FinalOutput) == "" {
				state.FinalOutput = clarifyingMessage
				state.AppendMessage(RoleAssistant, state.FinalOutput)
			}
			return cycles, ""

		case Aggregate:
			if decision.Source == "plan" {
				// The plan referenced an unknown handler; drop it
				// instead of re-deriving it forever.
				state.RoutePlan = nil
			}
			e.aggregator.Aggregate(state)
			degraded := ""
			if allFailed(state) {
				degraded = "all handlers failed"
			}
			return cycles, degraded

		default:
			cycles++
			e.dispatch(ctx, state, decision.Route, logger)
			switch decision.Source {
			case "plan":
				state.RoutePlan = state.RoutePlan[1:]
			case "classifier":
				if len(decision.Plan) > 0 {
					state.RoutePlan = decision.Plan
				}
			}
		}
	}
}

// dispatch runs one handler with its own deadline and panic
// containment, recording the outcome in HandlerOutputs.
func (e *Engine) dispatch(ctx context.Context, state *State, id string, logger *slog.Logger) {
	h, ok := e.handlers.Get(id)
	if !ok {
		state.SetHandlerOutput(id, PartialResult{Error: "unknown handler " + id})
		state.AppendMessage(RoleSystem, "dispatch: unknown handler "+id)
		return
	}

	if e.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.handlerTimeout)
		defer cancel()
	}
	ctx, span := e.spans.StartHandlerSpan(ctx, id)

	handlerLogger := observability.EnrichLogger(logger, state.TurnID, state.SessionID, id)
	observability.LogHandlerStart(handlerLogger, id)
	start := time.Now()

	result, err := runContained(ctx, h, state)
	duration := time.Since(start)

	e.metrics.RecordHandlerExecution(ctx, id, duration, err)
	e.spans.EndSpanWithError(span, err)

	if err != nil {
		wrapped := &HandlerError{HandlerID: id, Op: "run", Err: err}
		observability.LogHandlerError(handlerLogger, id, wrapped)
		state.SetHandlerOutput(id, PartialResult{Error: wrapped.Error()})
		state.AppendMessage(RoleSystem, "handler "+id+" failed: "+err.Error())
		return
	}

	observability.LogHandlerComplete(handlerLogger, id, float64(duration.Milliseconds()))
	state.SetHandlerOutput(id, result)
	state.AppendMessage(RoleSystem, "handler "+id+" completed")
}

// runContained executes a handler, converting panics to errors so a
// misbehaving handler cannot take down the turn.
func runContained(ctx context.Context, h Handler, state *State) (result PartialResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				HandlerID: h.ID(),
				Value:     r,
				Stack:     string(debug.Stack()),
			}
		}
	}()
	return h.Run(ctx, state)
}

// loadProfile fetches the user's profile snapshot once per turn.
// A missing record or an unavailable store leaves the snapshot nil;
// handlers degrade on their own terms.
func (e *Engine) loadProfile(ctx context.Context, state *State, logger *slog.Logger) {
	if e.profiles == nil {
		return
	}
	record, err := e.profiles.Get(ctx, state.UserID)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) && logger != nil {
			logger.Warn("profile fetch failed", slog.String("user_id", state.UserID), slog.String("error", err.Error()))
		}
		return
	}
	state.ProfileSnapshot = record
}

// persist appends the turn's messages to session history. Persistence
// failures are logged and swallowed; the turn's response still stands.
func (e *Engine) persist(ctx context.Context, state *State, logger *slog.Logger) {
	if e.historyStore == nil {
		return
	}
	msgs := make([]history.Message, 0, len(state.MessageLog))
	for _, m := range state.MessageLog {
		msgs = append(msgs, history.Message{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.At,
		})
	}
	if err := e.historyStore.AppendTurn(ctx, state.SessionID, state.TurnID, msgs); err != nil {
		observability.LogHistoryError(logger, state.SessionID, "append_turn", err)
	}
}

// allFailed reports whether every recorded handler output is an error.
func allFailed(state *State) bool {
	if len(state.HandlerOutputs) == 0 {
		return false
	}
	for _, r := range state.HandlerOutputs {
		if !r.Failed() {
			return false
		}
	}
	return true
}
