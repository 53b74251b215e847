// Package jobs defines the job posting search collaborator and the match
// scorer used to rank candidates against a user profile.
package jobs

import "context"

// Posting is one job opening returned by a provider.
type Posting struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Remote          bool     `json:"remote"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills,omitempty"`
	YearsRequired   int      `json:"years_required"`
	Salary          string   `json:"salary,omitempty"`
	Description     string   `json:"description,omitempty"`
	Source          string   `json:"source,omitempty"`
}

// Filters narrow a search.
type Filters struct {
	Location string
	Remote   bool
	Limit    int
}

// Provider searches job postings.
// An empty result slice means no matches, never an error.
type Provider interface {
	Search(ctx context.Context, query string, filters Filters) ([]Posting, error)
}
