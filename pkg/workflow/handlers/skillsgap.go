package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/careergini/orchestrator/pkg/llm"
	"github.com/careergini/orchestrator/pkg/workflow"
)

const skillsGapPrompt = `You are a technical career advisor. The candidate wants to reach a target
role. Given their current skills and the skills the role requires,
produce a short prioritized learning roadmap.

Respond with JSON only:
{"roadmap": [{"skill": "<name>", "priority": 1, "note": "<one sentence>"}], "advice": "<two sentences>"}`

// defaultTargetRole is used when neither the message nor the profile
// names a target.
const defaultTargetRole = "software engineer"

// roleOrder fixes the matching order for role extraction; longer, more
// specific titles come before the generic ones they contain.
var roleOrder = []string{
	"machine learning engineer",
	"data scientist",
	"data engineer",
	"frontend developer",
	"backend developer",
	"devops engineer",
	"product manager",
	"software engineer",
}

// roleRequirements maps common target roles to their core skills.
// Unknown roles fall back to generalist requirements.
var roleRequirements = map[string][]string{
	"data scientist":            {"python", "statistics", "machine learning", "sql", "data visualization"},
	"machine learning engineer": {"python", "machine learning", "deep learning", "mlops", "sql"},
	"data engineer":             {"python", "sql", "spark", "airflow", "data modeling"},
	"frontend developer":        {"javascript", "typescript", "react", "css", "testing"},
	"backend developer":         {"go", "sql", "rest apis", "docker", "system design"},
	"software engineer":         {"data structures", "algorithms", "git", "testing", "system design"},
	"devops engineer":           {"linux", "docker", "kubernetes", "ci/cd", "terraform"},
	"product manager":           {"roadmapping", "user research", "analytics", "communication", "prioritization"},
}

// SkillsGap analyzes the distance between the user's current skills
// and a target role's requirements.
type SkillsGap struct {
	client llm.Client
}

// NewSkillsGap creates the skills-gap handler. client may be nil.
func NewSkillsGap(client llm.Client) *SkillsGap {
	return &SkillsGap{client: client}
}

func (h *SkillsGap) ID() string { return workflow.HandlerSkillsGap }

func (h *SkillsGap) Run(ctx context.Context, state *workflow.State) (workflow.PartialResult, error) {
	target := targetRole(state)
	required := requirementsFor(target)

	var have []string
	if state.ProfileSnapshot != nil {
		have = state.ProfileSnapshot.Skills
	}
	covered, missing := splitSkills(have, required)
	readiness := readinessScore(len(covered), len(required))

	result := workflow.PartialResult{
		Summary: describeGap(target, covered, missing, readiness),
		Data: map[string]any{
			"target_role":    target,
			"missing_skills": missing,
			"covered_skills": covered,
			"readiness":      readiness,
		},
	}
	if state.ProfileSnapshot == nil {
		result.Suggestion = "Add your current skills to your profile for an accurate readiness score"
	}

	if h.client == nil || len(missing) == 0 {
		return result, nil
	}

	resp, err := h.client.Complete(ctx, llm.Request{
		SystemPrompt: skillsGapPrompt,
		Profile:      llm.ProfileCoding,
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf("Target role: %s\nCurrent skills: %s\nMissing skills: %s",
				target, strings.Join(have, ", "), strings.Join(missing, ", ")),
		}},
	})
	if err != nil {
		return result, nil
	}

	var parsed struct {
		Roadmap []struct {
			Skill    string `json:"skill"`
			Priority int    `json:"priority"`
			Note     string `json:"note"`
		} `json:"roadmap"`
		Advice string `json:"advice"`
	}
	if !llm.ExtractJSON(resp.Content, &parsed) || len(parsed.Roadmap) == 0 {
		return result, nil
	}

	var b strings.Builder
	b.WriteString(result.Summary)
	b.WriteString("\n\nSuggested roadmap:\n")
	for _, step := range parsed.Roadmap {
		fmt.Fprintf(&b, "%d. %s: %s\n", step.Priority, step.Skill, step.Note)
	}
	if parsed.Advice != "" {
		b.WriteString("\n" + parsed.Advice)
	}
	result.Summary = strings.TrimRight(b.String(), "\n")
	result.Data["roadmap"] = parsed.Roadmap
	return result, nil
}

// targetRole extracts the role the user wants to reach: the message
// first, then profile career goals, then the generalist default.
func targetRole(state *workflow.State) string {
	message := strings.ToLower(state.LatestUserMessage())
	for _, role := range roleOrder {
		if strings.Contains(message, role) {
			return role
		}
	}
	if state.ProfileSnapshot != nil && len(state.ProfileSnapshot.CareerGoals) > 0 {
		goal := strings.ToLower(state.ProfileSnapshot.CareerGoals[0])
		for _, role := range roleOrder {
			if strings.Contains(goal, role) {
				return role
			}
		}
		return strings.TrimSpace(strings.TrimPrefix(goal, "become a "))
	}
	return defaultTargetRole
}

func requirementsFor(role string) []string {
	if required, ok := roleRequirements[strings.ToLower(role)]; ok {
		return required
	}
	return roleRequirements[defaultTargetRole]
}

// splitSkills partitions required skills into covered and missing
// relative to the user's current skills. Matching is case-insensitive
// and tolerant of substring forms ("ml" inside "mlops" does not match;
// "machine learning" inside "machine learning engineering" does).
func splitSkills(have, required []string) (covered, missing []string) {
	haveSet := make(map[string]bool, len(have))
	for _, s := range have {
		haveSet[strings.ToLower(strings.TrimSpace(s))] = true
	}
	for _, req := range required {
		key := strings.ToLower(req)
		if haveSet[key] {
			covered = append(covered, req)
			continue
		}
		matched := false
		for s := range haveSet {
			if len(key) >= 4 && strings.Contains(s, key) {
				matched = true
				break
			}
		}
		if matched {
			covered = append(covered, req)
		} else {
			missing = append(missing, req)
		}
	}
	return covered, missing
}

// readinessScore is the percentage of required skills already covered.
func readinessScore(covered, required int) int {
	if required == 0 {
		return 100
	}
	return covered * 100 / required
}

func describeGap(target string, covered, missing []string, readiness int) string {
	if len(missing) == 0 {
		return fmt.Sprintf("You already cover the core skills for a %s role (readiness %d%%). "+
			"Focus on depth and portfolio projects rather than new fundamentals.", target, readiness)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "For a %s role you're at %d%% readiness.", target, readiness)
	if len(covered) > 0 {
		fmt.Fprintf(&b, " You already have: %s.", strings.Join(covered, ", "))
	}
	fmt.Fprintf(&b, " Skills to build: %s.", strings.Join(missing, ", "))
	return b.String()
}
