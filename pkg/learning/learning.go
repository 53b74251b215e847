// Package learning defines the course/tutorial resource collaborator used
// by the learning handler.
package learning

import "context"

// Resource is one learning resource (course, tutorial, certification).
type Resource struct {
	Title      string  `json:"title"`
	Provider   string  `json:"provider"`
	URL        string  `json:"url,omitempty"`
	Skill      string  `json:"skill"`
	Difficulty string  `json:"difficulty"`
	Rating     float64 `json:"rating"`
	Hours      int     `json:"hours,omitempty"`
	Free       bool    `json:"free"`
}

// Provider searches learning resources for a skill.
// An empty result slice means no matches, never an error.
type Provider interface {
	Search(ctx context.Context, skill string, limit int) ([]Resource, error)
}
