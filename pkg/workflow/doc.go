// Package workflow implements the CareerGini turn engine: a
// supervisor-routed loop that dispatches specialist handlers and
// aggregates their partial results into one response.
//
// A turn moves through a fixed sequence of phases. The router picks
// the next handler (or aggregation) from the turn state; the engine
// dispatches that handler with its own deadline and panic containment;
// the loop repeats until the router chooses aggregation or the cycle
// bound forces it. The aggregator then composes the final answer in
// handler registration order.
//
// Failure containment is the core contract: a handler error, panic, or
// timeout degrades that handler's section, never the turn. SubmitTurn
// returns an error only for an invalid request.
//
// Basic usage:
//
//	handlers := workflow.NewHandlerSet(
//		handlers.NewProfile(client),
//		handlers.NewSkillsGap(client),
//	)
//	engine, err := workflow.New(handlers,
//		workflow.WithClassifier(client),
//		workflow.WithProfileStore(profiles),
//	)
//	result, err := engine.SubmitTurn(ctx, userID, sessionID, message)
package workflow
