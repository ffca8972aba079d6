package scoring

import (
	"regexp"
	"strings"
)

// roleKeywords are probed in order; the first one found as a substring of the
// intent wins. Broad terms sit before narrow ones on purpose.
var roleKeywords = []string{
	"engineer", "software", "swe", "data", "ml", "ai", "product", "pm",
	"designer", "manager", "director", "lead", "senior", "principal",
	"architect", "developer", "analyst", "scientist",
}

// roleSynonyms maps an extracted role to title words that count as the same
// role for matching purposes.
var roleSynonyms = map[string][]string{
	"engineer":  {"developer", "dev", "programmer", "architect", "swe"},
	"software":  {"developer", "engineer", "swe", "programmer"},
	"swe":       {"software engineer", "developer", "engineer"},
	"developer": {"engineer", "dev", "programmer", "swe"},
	"product":   {"pm", "product manager"},
	"pm":        {"product manager", "product"},
	"data":      {"analytics", "scientist", "analyst"},
	"ml":        {"machine learning", "ai"},
	"ai":        {"machine learning", "ml"},
	"designer":  {"ux", "ui", "design"},
	"manager":   {"lead", "head"},
	"scientist": {"researcher", "research"},
	"analyst":   {"analytics", "analysis"},
}

// intentStopwords never count as keywords.
var intentStopwords = map[string]bool{
	"find":     true,
	"contacts": true,
	"with":     true,
	"from":     true,
}

const maxIntentKeywords = 8

var (
	// "at Amazon in Seattle" -> company "Amazon". Stops before " in " or end.
	companyPattern = regexp.MustCompile(`(?i)\bat\s+([a-z0-9\-\.& ]+?)(?:\s+in\s+|\s*$)`)
	// "in Seattle" at the end of the intent -> location "Seattle".
	locationPattern = regexp.MustCompile(`(?i)\bin\s+([a-z\s,]+?)\s*$`)
	tokenPattern    = regexp.MustCompile(`[a-z0-9]+`)
)

// intentSignals is what the heuristic extracts from a free-text intent like
// "Find SWE contacts at Amazon in Seattle". Parsed once per Score call.
type intentSignals struct {
	Role     string
	Company  string
	Location string
	Keywords []string
}

func parseIntent(intent string) intentSignals {
	signals := intentSignals{}
	lower := strings.ToLower(intent)

	for _, role := range roleKeywords {
		if strings.Contains(lower, role) {
			signals.Role = role
			break
		}
	}

	if m := companyPattern.FindStringSubmatch(intent); m != nil {
		signals.Company = strings.ToLower(strings.TrimSpace(m[1]))
	}

	if m := locationPattern.FindStringSubmatch(intent); m != nil {
		signals.Location = strings.ToLower(strings.TrimSpace(m[1]))
	}

	for _, token := range tokenPattern.FindAllString(lower, -1) {
		if len(token) <= 3 || intentStopwords[token] {
			continue
		}
		signals.Keywords = append(signals.Keywords, token)
		if len(signals.Keywords) == maxIntentKeywords {
			break
		}
	}

	return signals
}

func synonymsFor(role string) []string {
	return roleSynonyms[role]
}
