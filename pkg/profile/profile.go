// Package profile defines the profile store collaborator.
// The authoritative store lives in the profile microservice; the
// orchestrator only reads a snapshot at the start of each turn.
package profile

import (
	"context"
	"errors"
)

// ErrNotFound indicates no profile exists for the user.
// This is a normal, recoverable outcome, not a failure.
var ErrNotFound = errors.New("profile not found")

// Record is the per-user career profile snapshot.
type Record struct {
	UserID          string       `json:"user_id"`
	Skills          []string     `json:"skills"`
	Experience      []Experience `json:"experience"`
	Education       []Education  `json:"education"`
	CareerGoals     []string     `json:"career_goals"`
	ExperienceLevel string       `json:"experience_level"`
	Location        string       `json:"location,omitempty"`
}

// Experience is one work history entry.
type Experience struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Years   int    `json:"years"`
	Summary string `json:"summary,omitempty"`
}

// Education is one education history entry.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Field       string `json:"field,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// TotalYears sums experience duration across entries.
func (r *Record) TotalYears() int {
	total := 0
	for _, e := range r.Experience {
		total += e.Years
	}
	return total
}

// Store fetches profiles.
// Get returns ErrNotFound when no record exists for userID.
type Store interface {
	Get(ctx context.Context, userID string) (*Record, error)
}
