package scoring

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/warmlead/reachout/internal/contacts"
)

// Contribution weights. Additive, can sum past 1.0; the final clamp is
// mandatory.
const (
	weightEliteAlumni  = 0.8
	weightAlumni       = 0.6
	weightAlumniBonus  = 0.2
	weightRole         = 0.3
	weightRoleSynonym  = 0.2
	weightCompany      = 0.25
	weightLocation     = 0.15
	weightKeywords     = 0.2
	weightSkills       = 0.2
	weightPastCompany  = 0.15
	weightSeniority    = 0.1
	weightCompleteness = 0.05

	completenessSummaryMin = 50
)

var seniorityTerms = []string{
	"senior", "lead", "principal", "staff", "manager", "director", "vp", "chief",
}

// Heuristic is the deterministic scoring strategy: a weighted additive rule
// match over the candidate's fields, clamped to [0, 1]. Pure and safe for
// concurrent use.
type Heuristic struct {
	priority []PrioritySchool
}

func NewHeuristic(cfg *Config) *Heuristic {
	return &Heuristic{priority: cfg.prioritySchools()}
}

func (h *Heuristic) Name() string { return "heuristic" }

// Score populates every candidate's Score and returns the list sorted by
// score descending, input order preserved on ties.
func (h *Heuristic) Score(_ context.Context, user *contacts.UserProfile, intent string, candidates []*contacts.Candidate) []*contacts.Candidate {
	signals := parseIntent(intent)

	scored := append([]*contacts.Candidate(nil), candidates...)
	for _, candidate := range scored {
		candidate.Score = round3(h.scoreCandidate(user, signals, candidate))
	}

	sortByScore(scored)
	return scored
}

func (h *Heuristic) scoreCandidate(user *contacts.UserProfile, signals intentSignals, c *contacts.Candidate) float64 {
	score := 0.0

	schoolText := strings.ToLower(c.SchoolsText())
	title := strings.ToLower(c.Title)
	company := strings.ToLower(c.Company)
	location := strings.ToLower(c.Location)
	summary := strings.ToLower(c.Summary)
	skillsText := strings.ToLower(c.SkillsText())

	switch {
	case h.eliteAlumni(schoolText):
		score += weightEliteAlumni + weightAlumniBonus
	case h.userAlumni(user, schoolText):
		score += weightAlumni + weightAlumniBonus
	}

	if signals.Role != "" && title != "" {
		if strings.Contains(title, signals.Role) {
			score += weightRole
		}
		for _, synonym := range synonymsFor(signals.Role) {
			if strings.Contains(title, synonym) {
				score += weightRoleSynonym
				break
			}
		}
	}

	if signals.Company != "" && company != "" && strings.Contains(company, signals.Company) {
		score += weightCompany
	}

	if signals.Location != "" && location != "" && strings.Contains(location, signals.Location) {
		score += weightLocation
	}

	if len(signals.Keywords) > 0 && summary != "" {
		matches := 0
		for _, keyword := range signals.Keywords {
			if strings.Contains(summary, keyword) {
				matches++
			}
		}
		score += weightKeywords * float64(matches) / float64(len(signals.Keywords))
	}

	if user != nil && len(user.Skills) > 0 {
		haystack := skillsText + " " + summary
		matches := 0
		for _, skill := range user.Skills {
			skill = strings.ToLower(strings.TrimSpace(skill))
			if skill != "" && strings.Contains(haystack, skill) {
				matches++
			}
		}
		score += weightSkills * float64(matches) / float64(len(user.Skills))
	}

	if user != nil && company != "" {
		for _, past := range user.Companies {
			past = strings.ToLower(strings.TrimSpace(past))
			if past != "" && strings.Contains(company, past) {
				score += weightPastCompany
				break
			}
		}
	}

	for _, term := range seniorityTerms {
		if strings.Contains(title, term) {
			score += weightSeniority
			break
		}
	}

	score += h.completeness(c)

	return clamp01(score)
}

func (h *Heuristic) eliteAlumni(schoolText string) bool {
	if schoolText == "" {
		return false
	}
	for _, school := range h.priority {
		if school.Matches(schoolText) {
			return true
		}
	}
	return false
}

func (h *Heuristic) userAlumni(user *contacts.UserProfile, schoolText string) bool {
	if user == nil || schoolText == "" {
		return false
	}
	for _, school := range user.Schools {
		term := strings.ToLower(strings.TrimSpace(school))
		if term == "" || !strings.Contains(schoolText, term) {
			continue
		}
		if excludedTerm(h.priority, term, schoolText) {
			continue
		}
		return true
	}
	return false
}

func (h *Heuristic) completeness(c *contacts.Candidate) float64 {
	score := 0.0
	if len(c.Summary) > completenessSummaryMin {
		score += weightCompleteness
	}
	if strings.TrimSpace(c.Email) != "" {
		score += weightCompleteness
	}
	if strings.TrimSpace(c.LinkedinURL) != "" {
		score += weightCompleteness
	}
	if strings.TrimSpace(c.Schools) != "" {
		score += weightCompleteness
	}
	if strings.TrimSpace(c.Skills) != "" {
		score += weightCompleteness
	}
	return score
}

// sortByScore sorts descending; the stable sort keeps input order on ties.
func sortByScore(candidates []*contacts.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
