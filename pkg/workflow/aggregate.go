package workflow

import (
	"fmt"
	"strings"
)

// clarifyingMessage is produced when no handler contributed anything
// usable. The turn still completes with a response.
const clarifyingMessage = "I wasn't able to put together a useful answer for that. " +
	"Could you tell me a bit more about what you're looking for? " +
	"For example: career advice, skills to learn, job openings, resume help, or learning resources."

// sectionTitles maps handler IDs to the heading used in the combined
// response.
var sectionTitles = map[string]string{
	HandlerProfile:   "Career Guidance",
	HandlerSkillsGap: "Skills Assessment",
	HandlerJobSearch: "Job Matches",
	HandlerResume:    "Resume Feedback",
	HandlerLearning:  "Learning Resources",
}

// followupCatalog holds the suggested next prompts offered after each
// handler contributes. At most three are surfaced per turn.
var followupCatalog = map[string][]string{
	HandlerProfile:   {"What skills should I focus on next?", "Show me jobs that fit my background"},
	HandlerSkillsGap: {"Find me courses for these skills", "Which jobs can I apply for today?"},
	HandlerJobSearch: {"Help me tailor my resume for these roles", "What skills am I missing for these jobs?"},
	HandlerResume:    {"Find jobs that match this resume", "How do I prepare for interviews?"},
	HandlerLearning:  {"How long until I'm ready for a new role?", "Show me jobs that use these skills"},
}

// Aggregator combines partial handler results into the turn's final
// response. It is deterministic: section order follows handler
// registration order, never map iteration.
type Aggregator struct {
	handlers *HandlerSet
}

func NewAggregator(handlers *HandlerSet) *Aggregator {
	return &Aggregator{handlers: handlers}
}

// Aggregate writes state.FinalOutput and state.SuggestedFollowups from
// the accumulated handler outputs. Failed handlers are acknowledged
// with a short note instead of their section. The final output is
// never empty.
func (a *Aggregator) Aggregate(state *State) {
	var sections []string
	var followups []string
	var failures []string

	for _, id := range a.handlers.IDs() {
		result, ok := state.HandlerOutputs[id]
		if !ok {
			continue
		}
		if result.Failed() {
			failures = append(failures, id)
			continue
		}
		if strings.TrimSpace(result.Summary) == "" {
			continue
		}
		title := sectionTitles[id]
		if title == "" {
			title = id
		}
		sections = append(sections, fmt.Sprintf("## %s\n\n%s", title, result.Summary))
		if result.Suggestion != "" {
			followups = append(followups, result.Suggestion)
		} else {
			followups = append(followups, followupCatalog[id]...)
		}
	}

	if len(failures) > 0 {
		note := "Part of your request couldn't be completed (" + strings.Join(failures, ", ") + "). " +
			"The rest of the answer is below; feel free to ask again for the missing part."
		if len(sections) == 0 {
			note = "I ran into trouble handling that request (" + strings.Join(failures, ", ") + "). Please try again in a moment."
		}
		sections = append([]string{note}, sections...)
	}

	if len(sections) == 0 {
		state.FinalOutput = clarifyingMessage
		state.SuggestedFollowups = nil
		state.AppendMessage(RoleAssistant, state.FinalOutput)
		return
	}

	if len(followups) > 3 {
		followups = followups[:3]
	}

	state.FinalOutput = strings.Join(sections, "\n\n")
	state.SuggestedFollowups = followups
	state.AppendMessage(RoleAssistant, state.FinalOutput)
}
