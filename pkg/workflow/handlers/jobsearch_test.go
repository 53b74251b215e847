package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careergini/orchestrator/pkg/jobs"
	"github.com/careergini/orchestrator/pkg/workflow"
)

func samplePostings() []jobs.Posting {
	return []jobs.Posting{
		{
			ID: "j1", Title: "Data Scientist", Company: "DataCo", Location: "Berlin",
			RequiredSkills: []string{"python", "sql"}, YearsRequired: 3,
		},
		{
			ID: "j2", Title: "Kernel Engineer", Company: "LowLevel", Location: "Austin",
			RequiredSkills: []string{"c", "assembly"}, YearsRequired: 8,
		},
		{
			ID: "j3", Title: "Python Developer", Company: "WebCo", Location: "Berlin", Remote: true,
			RequiredSkills: []string{"python"}, YearsRequired: 2, Salary: "€70k",
		},
	}
}

// TestJobSearch_RanksByMatch tests better-fitting postings come first.
func TestJobSearch_RanksByMatch(t *testing.T) {
	h := NewJobSearch(&fakeJobProvider{postings: samplePostings()})

	result, err := h.Run(context.Background(), stateWith("find me a job", sampleProfile()))

	require.NoError(t, err)
	ranked := result.Data["matches"].([]rankedPosting)
	require.Len(t, ranked, 3)
	// The kernel role shares no skills and demands twice the experience.
	assert.Equal(t, "j2", ranked[len(ranked)-1].Posting.ID)
	assert.Greater(t, ranked[0].Score.Overall, ranked[2].Score.Overall)
}

// TestJobSearch_NoProfileNeutralScores tests scoring without a profile.
func TestJobSearch_NoProfileNeutralScores(t *testing.T) {
	h := NewJobSearch(&fakeJobProvider{postings: samplePostings()})

	result, err := h.Run(context.Background(), stateWith("find me a job", nil))

	require.NoError(t, err)
	ranked := result.Data["matches"].([]rankedPosting)
	for _, m := range ranked {
		assert.Equal(t, jobs.NeutralScore, m.Score.Overall)
	}
	assert.Contains(t, result.Summary, "neutral")
}

// TestJobSearch_EmptyResults tests the no-openings response.
func TestJobSearch_EmptyResults(t *testing.T) {
	h := NewJobSearch(&fakeJobProvider{})

	result, err := h.Run(context.Background(), stateWith("find me a job", nil))

	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Contains(t, result.Summary, "couldn't find")
	assert.NotEmpty(t, result.Suggestion)
}

// TestJobSearch_ProviderError tests a provider outage surfaces as a
// handler error for the engine to contain.
func TestJobSearch_ProviderError(t *testing.T) {
	h := NewJobSearch(&fakeJobProvider{err: errors.New("upstream 503")})

	_, err := h.Run(context.Background(), stateWith("find me a job", nil))

	assert.Error(t, err)
}

// TestJobSearch_QueryFromSkillsGapOutput tests cross-handler data flow:
// the skills-gap target role drives the search query.
func TestJobSearch_QueryFromSkillsGapOutput(t *testing.T) {
	h := NewJobSearch(&fakeJobProvider{postings: samplePostings()})

	state := stateWith("and now find me openings", nil)
	state.SetHandlerOutput(workflow.HandlerSkillsGap, workflow.PartialResult{
		Summary: "gap analysis",
		Data:    map[string]any{"target_role": "data scientist"},
	})

	result, err := h.Run(context.Background(), state)

	require.NoError(t, err)
	assert.Equal(t, "data scientist", result.Data["query"])
}

// TestJobSearch_LimitsResults tests at most five matches surface.
func TestJobSearch_LimitsResults(t *testing.T) {
	var many []jobs.Posting
	for i := 0; i < 12; i++ {
		many = append(many, jobs.Posting{ID: string(rune('a' + i)), Title: "Role", Company: "Co"})
	}
	h := NewJobSearch(&fakeJobProvider{postings: many})

	result, err := h.Run(context.Background(), stateWith("find me a job", nil))

	require.NoError(t, err)
	assert.Len(t, result.Data["matches"].([]rankedPosting), maxJobResults)
}
