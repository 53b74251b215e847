package learning

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CatalogProvider serves a built-in resource catalog.
// It stands in for the course API wrappers (Coursera, edX, YouTube) that
// live in the learning microservice behind the same Provider interface.
type CatalogProvider struct {
	catalog map[string][]Resource
}

// NewCatalogProvider creates a provider with the default catalog.
func NewCatalogProvider() *CatalogProvider {
	return &CatalogProvider{catalog: defaultCatalog()}
}

// Search implements Provider. Unknown skills get generic documentation
// and tutorial entries rather than an empty result.
func (p *CatalogProvider) Search(ctx context.Context, skill string, limit int) ([]Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := strings.ToLower(strings.TrimSpace(skill))
	if key == "" {
		return nil, nil
	}

	resources, ok := p.catalog[key]
	if !ok {
		resources = genericResources(skill)
	}

	// Highest rated first; stable so equal ratings keep catalog order.
	out := make([]Resource, len(resources))
	copy(out, resources)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func genericResources(skill string) []Resource {
	return []Resource{
		{
			Title:      fmt.Sprintf("%s: Official Documentation", skill),
			Provider:   "Documentation",
			Skill:      skill,
			Difficulty: "beginner",
			Rating:     4.5,
			Free:       true,
		},
		{
			Title:      fmt.Sprintf("Intro to %s", skill),
			Provider:   "Coursera",
			Skill:      skill,
			Difficulty: "beginner",
			Rating:     4.3,
			Hours:      20,
		},
		{
			Title:      fmt.Sprintf("%s Crash Course", skill),
			Provider:   "YouTube",
			Skill:      skill,
			Difficulty: "beginner",
			Rating:     4.1,
			Free:       true,
		},
	}
}

func defaultCatalog() map[string][]Resource {
	return map[string][]Resource{
		"python": {
			{Title: "Python for Everybody", Provider: "Coursera", Skill: "Python", Difficulty: "beginner", Rating: 4.8, Hours: 60},
			{Title: "Fluent Python", Provider: "O'Reilly", Skill: "Python", Difficulty: "advanced", Rating: 4.7, Hours: 40},
			{Title: "Automate the Boring Stuff", Provider: "Udemy", Skill: "Python", Difficulty: "beginner", Rating: 4.6, Hours: 30, Free: true},
		},
		"machine learning": {
			{Title: "Machine Learning Specialization", Provider: "Coursera", Skill: "Machine Learning", Difficulty: "intermediate", Rating: 4.9, Hours: 90},
			{Title: "Hands-On Machine Learning", Provider: "O'Reilly", Skill: "Machine Learning", Difficulty: "intermediate", Rating: 4.7, Hours: 50},
		},
		"statistics": {
			{Title: "Statistics with Python", Provider: "Coursera", Skill: "Statistics", Difficulty: "intermediate", Rating: 4.5, Hours: 40},
			{Title: "StatQuest", Provider: "YouTube", Skill: "Statistics", Difficulty: "beginner", Rating: 4.8, Free: true},
		},
		"sql": {
			{Title: "SQL for Data Science", Provider: "Coursera", Skill: "SQL", Difficulty: "beginner", Rating: 4.6, Hours: 20},
			{Title: "SQLBolt Interactive Lessons", Provider: "SQLBolt", Skill: "SQL", Difficulty: "beginner", Rating: 4.4, Free: true},
		},
		"react": {
			{Title: "React: The Complete Guide", Provider: "Udemy", Skill: "React", Difficulty: "intermediate", Rating: 4.7, Hours: 48},
			{Title: "React Docs: Learn React", Provider: "Documentation", Skill: "React", Difficulty: "beginner", Rating: 4.8, Free: true},
		},
		"system design": {
			{Title: "Grokking the System Design Interview", Provider: "Educative", Skill: "System Design", Difficulty: "advanced", Rating: 4.6, Hours: 35},
			{Title: "System Design Primer", Provider: "GitHub", Skill: "System Design", Difficulty: "intermediate", Rating: 4.7, Free: true},
		},
		"deep learning": {
			{Title: "Deep Learning Specialization", Provider: "Coursera", Skill: "Deep Learning", Difficulty: "advanced", Rating: 4.8, Hours: 120},
			{Title: "fast.ai Practical Deep Learning", Provider: "fast.ai", Skill: "Deep Learning", Difficulty: "intermediate", Rating: 4.7, Free: true},
		},
	}
}

// Compile-time interface check.
var _ Provider = (*CatalogProvider)(nil)
