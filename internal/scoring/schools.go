package scoring

import "strings"

// PrioritySchool is an institution whose alumni get the elite bonus.
// Exclusions guard against near-miss names: plain substring matching on
// "michigan" would otherwise conflate University of Michigan with Michigan
// State. An exclusion hit vetoes abbreviation matches but never a full-name
// match.
type PrioritySchool struct {
	Name          string   `mapstructure:"name"`
	Abbreviations []string `mapstructure:"abbreviations"`
	Exclusions    []string `mapstructure:"exclusions"`
}

// DefaultPrioritySchools is the built-in list used when the config carries
// none. The deployment this grew out of prioritized one institution; the
// list is configuration, not behavior.
func DefaultPrioritySchools() []PrioritySchool {
	return []PrioritySchool{
		{
			Name:          "University of Michigan",
			Abbreviations: []string{"umich", "u of m", "michigan"},
			Exclusions: []string{
				"michigan state",
				"western michigan",
				"eastern michigan",
				"central michigan",
				"michigan tech",
			},
		},
	}
}

// Matches reports whether the school text names this institution.
func (s PrioritySchool) Matches(text string) bool {
	text = strings.ToLower(text)
	if text == "" {
		return false
	}

	if strings.Contains(text, strings.ToLower(s.Name)) {
		return true
	}

	for _, exclusion := range s.Exclusions {
		if strings.Contains(text, strings.ToLower(exclusion)) {
			return false
		}
	}

	for _, abbr := range s.Abbreviations {
		if strings.Contains(text, strings.ToLower(abbr)) {
			return true
		}
	}

	return false
}

// knowsTerm reports whether term is this institution's name or one of its
// abbreviations.
func (s PrioritySchool) knowsTerm(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	if term == strings.ToLower(s.Name) {
		return true
	}
	for _, abbr := range s.Abbreviations {
		if term == strings.ToLower(abbr) {
			return true
		}
	}
	return false
}

// excludedTerm reports whether a user-profile school term matching the text
// should be discarded because the text actually names an excluded near-miss
// institution. E.g. user school "Michigan" against "Michigan State
// University".
func excludedTerm(priority []PrioritySchool, term, text string) bool {
	text = strings.ToLower(text)
	for _, school := range priority {
		if !school.knowsTerm(term) {
			continue
		}
		if strings.Contains(text, strings.ToLower(school.Name)) {
			continue
		}
		for _, exclusion := range school.Exclusions {
			if strings.Contains(text, strings.ToLower(exclusion)) {
				return true
			}
		}
	}
	return false
}
