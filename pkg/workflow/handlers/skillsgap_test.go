package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careergini/orchestrator/pkg/llm"
	"github.com/careergini/orchestrator/pkg/profile"
)

// TestSkillsGap_TargetFromMessage tests the role named in the message wins.
func TestSkillsGap_TargetFromMessage(t *testing.T) {
	h := NewSkillsGap(nil)

	result, err := h.Run(context.Background(), stateWith("I want to become a data scientist", sampleProfile()))

	require.NoError(t, err)
	assert.Equal(t, "data scientist", result.Data["target_role"])
	missing := result.Data["missing_skills"].([]string)
	assert.Contains(t, missing, "machine learning")
	assert.NotContains(t, missing, "python")
}

// TestSkillsGap_TargetFromCareerGoals tests the profile goal is the
// fallback target.
func TestSkillsGap_TargetFromCareerGoals(t *testing.T) {
	h := NewSkillsGap(nil)

	result, err := h.Run(context.Background(), stateWith("what am I missing", sampleProfile()))

	require.NoError(t, err)
	assert.Equal(t, "data scientist", result.Data["target_role"])
}

// TestSkillsGap_DefaultTarget tests the generalist fallback without a
// profile or named role.
func TestSkillsGap_DefaultTarget(t *testing.T) {
	h := NewSkillsGap(nil)

	result, err := h.Run(context.Background(), stateWith("what am I missing", nil))

	require.NoError(t, err)
	assert.Equal(t, defaultTargetRole, result.Data["target_role"])
	assert.NotEmpty(t, result.Suggestion)
}

// TestSkillsGap_Readiness tests the coverage percentage.
func TestSkillsGap_Readiness(t *testing.T) {
	record := &profile.Record{
		UserID: "u1",
		Skills: []string{"python", "sql", "statistics"},
	}
	h := NewSkillsGap(nil)

	result, err := h.Run(context.Background(), stateWith("become a data scientist", record))

	require.NoError(t, err)
	// 3 of 5 required skills covered.
	assert.Equal(t, 60, result.Data["readiness"])
}

// TestSkillsGap_FullCoverage tests the no-gap message.
func TestSkillsGap_FullCoverage(t *testing.T) {
	record := &profile.Record{
		UserID: "u1",
		Skills: []string{"python", "statistics", "machine learning", "sql", "data visualization"},
	}
	h := NewSkillsGap(nil)

	result, err := h.Run(context.Background(), stateWith("become a data scientist", record))

	require.NoError(t, err)
	assert.Equal(t, 100, result.Data["readiness"])
	assert.Contains(t, result.Summary, "already cover")
}

// TestSkillsGap_RoadmapFromCompletion tests the generated roadmap is
// appended to the summary.
func TestSkillsGap_RoadmapFromCompletion(t *testing.T) {
	client := llm.NewMockClient(`{"roadmap": [{"skill": "machine learning", "priority": 1, "note": "start with scikit-learn"}], "advice": "Build one project per skill."}`)
	h := NewSkillsGap(client)

	result, err := h.Run(context.Background(), stateWith("become a data scientist", sampleProfile()))

	require.NoError(t, err)
	assert.Contains(t, result.Summary, "scikit-learn")
	assert.Contains(t, result.Summary, "Build one project per skill.")
	assert.Contains(t, result.Data, "roadmap")
}

// TestSkillsGap_CompletionFailureKeepsAnalysis tests the deterministic
// gap analysis survives a completion outage.
func TestSkillsGap_CompletionFailureKeepsAnalysis(t *testing.T) {
	client := llm.NewMockClient("").WithError(errors.New("timeout"))
	h := NewSkillsGap(client)

	result, err := h.Run(context.Background(), stateWith("become a data scientist", sampleProfile()))

	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Contains(t, result.Summary, "readiness")
	assert.NotContains(t, result.Data, "roadmap")
}

// TestSplitSkills_SubstringTolerance tests fuzzy coverage matching.
func TestSplitSkills_SubstringTolerance(t *testing.T) {
	covered, missing := splitSkills(
		[]string{"Machine Learning Engineering", "SQL"},
		[]string{"machine learning", "sql", "statistics"},
	)

	assert.Equal(t, []string{"machine learning", "sql"}, covered)
	assert.Equal(t, []string{"statistics"}, missing)
}
