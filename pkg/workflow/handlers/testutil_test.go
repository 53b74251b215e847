package handlers

import (
	"context"

	"github.com/careergini/orchestrator/pkg/jobs"
	"github.com/careergini/orchestrator/pkg/learning"
	"github.com/careergini/orchestrator/pkg/profile"
	"github.com/careergini/orchestrator/pkg/workflow"
)

// stateWith builds a turn state with an optional profile snapshot.
func stateWith(message string, record *profile.Record) *workflow.State {
	state := workflow.NewState("user-1", "session-1", "turn-1", message)
	state.ProfileSnapshot = record
	return state
}

// sampleProfile is a mid-career backend developer.
func sampleProfile() *profile.Record {
	return &profile.Record{
		UserID: "user-1",
		Skills: []string{"Python", "SQL", "Git"},
		Experience: []profile.Experience{
			{Title: "Backend Developer", Company: "Acme", Years: 4},
		},
		CareerGoals:     []string{"Become a data scientist"},
		ExperienceLevel: "mid-level",
		Location:        "Berlin",
	}
}

// fakeJobProvider returns canned postings or an error.
type fakeJobProvider struct {
	postings []jobs.Posting
	err      error
}

func (p *fakeJobProvider) Search(_ context.Context, _ string, _ jobs.Filters) ([]jobs.Posting, error) {
	return p.postings, p.err
}

// fakeLearningProvider returns canned resources keyed by skill.
type fakeLearningProvider struct {
	resources map[string][]learning.Resource
	err       error
}

func (p *fakeLearningProvider) Search(_ context.Context, skill string, _ int) ([]learning.Resource, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.resources[skill], nil
}
