package jobs

import (
	"context"
	"fmt"
	"strings"
)

// StaticProvider serves postings templated from the search query.
// It stands in for real board integrations, which live behind the same
// Provider interface in the application-tracker service.
type StaticProvider struct{}

// NewStaticProvider creates the built-in provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// Search implements Provider.
func (p *StaticProvider) Search(ctx context.Context, query string, filters Filters) ([]Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	role := strings.TrimSpace(query)
	if role == "" {
		return nil, nil
	}

	location := filters.Location
	if location == "" {
		location = "Remote"
	}

	postings := []Posting{
		{
			ID:             "job-101",
			Title:          fmt.Sprintf("Senior %s", role),
			Company:        "TechFlow Systems",
			Location:       location,
			Remote:         filters.Remote,
			RequiredSkills: []string{"Python", "Cloud Architecture"},
			YearsRequired:  5,
			Salary:         "$140k - $180k",
			Description:    fmt.Sprintf("We are looking for a %s with experience in Python and cloud architecture.", role),
			Source:         "LinkedIn",
		},
		{
			ID:              "job-102",
			Title:           fmt.Sprintf("%s II", role),
			Company:         "DataDrive Inc",
			Location:        location,
			Remote:          filters.Remote,
			RequiredSkills:  []string{"SQL", "Python"},
			PreferredSkills: []string{"Airflow"},
			YearsRequired:   3,
			Salary:          "$120k - $150k",
			Description:     fmt.Sprintf("Join our fast-paced team as a %s. Strong problem-solving skills required.", role),
			Source:          "Direct",
		},
		{
			ID:              "job-103",
			Title:           fmt.Sprintf("Lead %s", role),
			Company:         "InnovateAI",
			Location:        "Hybrid",
			RequiredSkills:  []string{"Machine Learning", "Python", "Leadership"},
			PreferredSkills: []string{"MLOps"},
			YearsRequired:   8,
			Salary:          "$160k - $210k",
			Description:     fmt.Sprintf("Leading the future of AI. Seeking a %s to drive our core platform.", role),
			Source:          "Aggregator",
		},
		{
			ID:             "job-104",
			Title:          fmt.Sprintf("Junior %s", role),
			Company:        "BrightStart Labs",
			Location:       location,
			Remote:         true,
			RequiredSkills: []string{"Git"},
			YearsRequired:  0,
			Salary:         "$70k - $95k",
			Description:    fmt.Sprintf("Entry-level %s role with mentorship.", role),
			Source:         "Direct",
		},
	}

	if filters.Limit > 0 && len(postings) > filters.Limit {
		postings = postings[:filters.Limit]
	}
	return postings, nil
}

// Compile-time interface check.
var _ Provider = (*StaticProvider)(nil)
