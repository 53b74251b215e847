package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/careergini/orchestrator/pkg/jobs"
	"github.com/careergini/orchestrator/pkg/profile"
	"github.com/careergini/orchestrator/pkg/workflow"
)

// maxJobResults bounds how many ranked matches the handler surfaces.
const maxJobResults = 5

// JobSearch finds job postings and ranks them against the user's
// profile.
type JobSearch struct {
	provider jobs.Provider
}

// NewJobSearch creates the job search handler.
func NewJobSearch(provider jobs.Provider) *JobSearch {
	return &JobSearch{provider: provider}
}

func (h *JobSearch) ID() string { return workflow.HandlerJobSearch }

// rankedPosting pairs a posting with its computed match score.
type rankedPosting struct {
	Posting jobs.Posting    `json:"posting"`
	Score   jobs.MatchScore `json:"score"`
}

func (h *JobSearch) Run(ctx context.Context, state *workflow.State) (workflow.PartialResult, error) {
	query := jobQuery(state)

	filters := jobs.Filters{Limit: maxJobResults * 3}
	if state.ProfileSnapshot != nil {
		filters.Location = state.ProfileSnapshot.Location
	}

	postings, err := h.provider.Search(ctx, query, filters)
	if err != nil {
		return workflow.PartialResult{}, fmt.Errorf("search %q: %w", query, err)
	}
	if len(postings) == 0 {
		return workflow.PartialResult{
			Summary:    fmt.Sprintf("I couldn't find any openings for %q right now. Try broadening the role or removing location constraints.", query),
			Data:       map[string]any{"query": query, "matches": []rankedPosting{}},
			Suggestion: "What skills should I build to qualify for more roles?",
		}, nil
	}

	ranked := h.rank(ctx, state, postings)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Overall > ranked[j].Score.Overall
	})
	if len(ranked) > maxJobResults {
		ranked = ranked[:maxJobResults]
	}

	return workflow.PartialResult{
		Summary: describeMatches(query, ranked, state.ProfileSnapshot != nil),
		Data:    map[string]any{"query": query, "matches": ranked},
	}, nil
}

// rank scores each posting against the profile concurrently. A scoring
// failure for one candidate falls back to the neutral score rather
// than dropping the posting or failing the batch.
func (h *JobSearch) rank(ctx context.Context, state *workflow.State, postings []jobs.Posting) []rankedPosting {
	ranked := make([]rankedPosting, len(postings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, posting := range postings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				ranked[i] = rankedPosting{Posting: posting, Score: neutralMatch()}
				return nil
			}
			ranked[i] = rankedPosting{
				Posting: posting,
				Score:   scoreContained(state.ProfileSnapshot, posting),
			}
			return nil
		})
	}
	g.Wait()
	return ranked
}

// scoreContained never lets one bad posting take down the batch.
func scoreContained(record *profile.Record, posting jobs.Posting) (score jobs.MatchScore) {
	defer func() {
		if recover() != nil {
			score = neutralMatch()
		}
	}()
	if record == nil {
		return neutralMatch()
	}
	return jobs.Score(record, posting)
}

func neutralMatch() jobs.MatchScore {
	return jobs.MatchScore{
		Overall:    jobs.NeutralScore,
		Skills:     jobs.NeutralScore,
		Experience: jobs.NeutralScore,
		Location:   jobs.NeutralScore,
	}
}

// jobQuery derives the search query: profile career goal first, then
// the skills-gap target if that handler already ran, then the message.
func jobQuery(state *workflow.State) string {
	if out, ok := state.Output(workflow.HandlerSkillsGap); ok && !out.Failed() {
		if target, ok := out.Data["target_role"].(string); ok && target != "" {
			return target
		}
	}
	if state.ProfileSnapshot != nil && len(state.ProfileSnapshot.CareerGoals) > 0 {
		return state.ProfileSnapshot.CareerGoals[0]
	}
	return state.LatestUserMessage()
}

func describeMatches(query string, ranked []rankedPosting, hasProfile bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top openings for %q:\n", query)
	for i, m := range ranked {
		fmt.Fprintf(&b, "%d. %s at %s (%s", i+1, m.Posting.Title, m.Posting.Company, m.Posting.Location)
		if m.Posting.Remote {
			b.WriteString(", remote")
		}
		fmt.Fprintf(&b, "), match %d%%", m.Score.Overall)
		if m.Posting.Salary != "" {
			fmt.Fprintf(&b, ", %s", m.Posting.Salary)
		}
		b.WriteString("\n")
	}
	if !hasProfile {
		b.WriteString("\nMatch scores are neutral because I don't have your profile yet.")
	}
	return strings.TrimRight(b.String(), "\n")
}
