package handlers

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/careergini/orchestrator/pkg/learning"
	"github.com/careergini/orchestrator/pkg/workflow"
)

const (
	// maxLearningSkills bounds how many skills get their own resource
	// query per turn.
	maxLearningSkills = 3
	// resourcesPerSkill bounds results per skill.
	resourcesPerSkill = 2
)

// Learning recommends courses and tutorials for the skills the user
// should build next.
type Learning struct {
	provider learning.Provider
}

// NewLearning creates the learning resources handler.
func NewLearning(provider learning.Provider) *Learning {
	return &Learning{provider: provider}
}

func (h *Learning) ID() string { return workflow.HandlerLearning }

func (h *Learning) Run(ctx context.Context, state *workflow.State) (workflow.PartialResult, error) {
	skills := prioritySkills(state)
	if len(skills) == 0 {
		return workflow.PartialResult{
			Summary:    "Tell me which skill you'd like to learn, or set up your profile so I can suggest what to study next.",
			Suggestion: "What skills do I need to become a data scientist?",
			Data:       map[string]any{"skills": []string{}},
		}, nil
	}

	// One provider query per skill, concurrently; a failed skill is
	// dropped from the answer rather than failing the batch.
	results := make([][]learning.Resource, len(skills))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLearningSkills)
	for i, skill := range skills {
		g.Go(func() error {
			resources, err := h.provider.Search(gctx, skill, resourcesPerSkill)
			if err == nil {
				results[i] = resources
			}
			return nil
		})
	}
	g.Wait()

	var flat []learning.Resource
	for _, r := range results {
		flat = append(flat, r...)
	}
	if len(flat) == 0 {
		return workflow.PartialResult{
			Summary: fmt.Sprintf("I couldn't fetch resources for %s right now. Try again in a moment.", strings.Join(skills, ", ")),
			Data:    map[string]any{"skills": skills},
		}, nil
	}

	return workflow.PartialResult{
		Summary: describeResources(skills, flat),
		Data:    map[string]any{"skills": skills, "resources": flat},
	}, nil
}

// prioritySkills picks the skills to recommend resources for: the
// skills-gap handler's missing skills when it already ran this turn,
// otherwise skills named in the message, otherwise the profile's own
// skills for deepening.
func prioritySkills(state *workflow.State) []string {
	if out, ok := state.Output(workflow.HandlerSkillsGap); ok && !out.Failed() {
		if missing := asStrings(out.Data["missing_skills"]); len(missing) > 0 {
			return capped(missing, maxLearningSkills)
		}
	}

	message := strings.ToLower(state.LatestUserMessage())
	var fromMessage []string
	for _, skill := range knownSkills {
		if strings.Contains(message, skill) {
			fromMessage = append(fromMessage, skill)
		}
	}
	if len(fromMessage) > 0 {
		return capped(fromMessage, maxLearningSkills)
	}

	if state.ProfileSnapshot != nil {
		return capped(state.ProfileSnapshot.Skills, maxLearningSkills)
	}
	return nil
}

// knownSkills are skills recognized directly in a message, in the
// order they're checked.
var knownSkills = []string{
	"machine learning",
	"deep learning",
	"system design",
	"statistics",
	"kubernetes",
	"python",
	"react",
	"sql",
}

// asStrings converts []string or []any (post-JSON) values.
func asStrings(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func describeResources(skills []string, resources []learning.Resource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To build %s, start here:\n", strings.Join(skills, ", "))
	for i, r := range resources {
		fmt.Fprintf(&b, "%d. %s (%s, %s", i+1, r.Title, r.Provider, r.Difficulty)
		if r.Free {
			b.WriteString(", free")
		}
		if r.Hours > 0 {
			fmt.Fprintf(&b, ", ~%dh", r.Hours)
		}
		fmt.Fprintf(&b, "), rated %.1f", r.Rating)
		if r.URL != "" {
			fmt.Fprintf(&b, ": %s", r.URL)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
