package jobs

import (
	"strings"

	"github.com/careergini/orchestrator/pkg/profile"
)

// NeutralScore is assigned when a candidate can't be scored.
// A failed scoring pass must not drop the posting from results.
const NeutralScore = 50

// Scoring weights. Skills dominate; the rest nudge.
const (
	weightSkills     = 0.5
	weightExperience = 0.3
	weightLocation   = 0.2
)

// MatchScore is the breakdown for one posting.
type MatchScore struct {
	Overall    int `json:"overall"`
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Location   int `json:"location"`
}

// Score computes a 0-100 match between a profile and a posting.
// Pure function: no I/O, deterministic for a given input.
func Score(record *profile.Record, posting Posting) MatchScore {
	if record == nil {
		return MatchScore{Overall: NeutralScore, Skills: NeutralScore, Experience: NeutralScore, Location: NeutralScore}
	}

	skills := scoreSkills(record.Skills, posting.RequiredSkills, posting.PreferredSkills)
	experience := scoreExperience(record.TotalYears(), posting.YearsRequired)
	location := scoreLocation(record.Location, posting)

	overall := int(weightSkills*float64(skills) +
		weightExperience*float64(experience) +
		weightLocation*float64(location))

	return MatchScore{
		Overall:    overall,
		Skills:     skills,
		Experience: experience,
		Location:   location,
	}
}

func scoreSkills(userSkills, required, preferred []string) int {
	if len(required) == 0 && len(preferred) == 0 {
		return NeutralScore
	}

	have := make(map[string]bool, len(userSkills))
	for _, s := range userSkills {
		have[normalizeSkill(s)] = true
	}

	matchedRequired := 0
	for _, s := range required {
		if have[normalizeSkill(s)] {
			matchedRequired++
		}
	}
	matchedPreferred := 0
	for _, s := range preferred {
		if have[normalizeSkill(s)] {
			matchedPreferred++
		}
	}

	// Required skills count double toward the score.
	total := 2*len(required) + len(preferred)
	if total == 0 {
		return NeutralScore
	}
	matched := 2*matchedRequired + matchedPreferred
	return matched * 100 / total
}

func scoreExperience(userYears, requiredYears int) int {
	if requiredYears <= 0 {
		return 100
	}
	if userYears >= requiredYears {
		return 100
	}
	return userYears * 100 / requiredYears
}

func scoreLocation(userLocation string, posting Posting) int {
	if posting.Remote {
		return 100
	}
	if userLocation == "" || posting.Location == "" {
		return NeutralScore
	}
	if strings.EqualFold(strings.TrimSpace(userLocation), strings.TrimSpace(posting.Location)) {
		return 100
	}
	return 25
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
