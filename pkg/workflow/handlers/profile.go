package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/careergini/orchestrator/pkg/llm"
	"github.com/careergini/orchestrator/pkg/profile"
	"github.com/careergini/orchestrator/pkg/workflow"
)

const profileAdvicePrompt = `You are a career coach. Using the candidate's profile below, give concise,
personalized career guidance for their question. Speak directly to the
candidate, stay under 200 words, and ground every suggestion in their
actual skills and experience.`

// noProfileGuidance is returned when the user has no stored profile.
// This is a recoverable condition, not a failure.
const noProfileGuidance = "I don't have a profile for you yet, so my advice would be generic. " +
	"Set up your profile with your skills, work history, and career goals and I can give you " +
	"guidance tailored to where you are and where you want to go."

// Profile gives personalized career-path guidance from the user's
// profile snapshot.
type Profile struct {
	client llm.Client
}

// NewProfile creates the profile guidance handler. client may be nil,
// in which case only the deterministic summary path runs.
func NewProfile(client llm.Client) *Profile {
	return &Profile{client: client}
}

func (h *Profile) ID() string { return workflow.HandlerProfile }

func (h *Profile) Run(ctx context.Context, state *workflow.State) (workflow.PartialResult, error) {
	record := state.ProfileSnapshot
	if record == nil {
		return workflow.PartialResult{
			Summary:    noProfileGuidance,
			Suggestion: "Tell me your top skills and I'll start a profile for you",
			Data:       map[string]any{"profile_missing": true},
		}, nil
	}

	summary := describeProfile(record)
	result := workflow.PartialResult{
		Summary: summary,
		Data: map[string]any{
			"skills":           record.Skills,
			"experience_years": record.TotalYears(),
			"career_goals":     record.CareerGoals,
		},
	}

	if h.client == nil {
		return result, nil
	}

	resp, err := h.client.Complete(ctx, llm.Request{
		SystemPrompt: profileAdvicePrompt + "\n\nProfile:\n" + summary,
		Profile:      llm.ProfileFast,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: state.LatestUserMessage()}},
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		// The deterministic summary still answers the question.
		return result, nil
	}
	result.Summary = resp.Content
	return result, nil
}

// describeProfile renders a compact plain-text profile summary, used
// both as prompt context and as the degraded answer.
func describeProfile(record *profile.Record) string {
	var b strings.Builder

	level := record.ExperienceLevel
	if level == "" {
		level = "professional"
	}
	fmt.Fprintf(&b, "You're a %s with %d years of experience", level, record.TotalYears())
	if len(record.Skills) > 0 {
		fmt.Fprintf(&b, ", strongest in %s", strings.Join(capped(record.Skills, 5), ", "))
	}
	b.WriteString(".")

	if len(record.Experience) > 0 {
		latest := record.Experience[0]
		fmt.Fprintf(&b, " Most recently: %s at %s.", latest.Title, latest.Company)
	}
	if len(record.CareerGoals) > 0 {
		fmt.Fprintf(&b, " Your stated goal is to %s.", strings.ToLower(record.CareerGoals[0]))
	}
	return b.String()
}

func capped(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
