package scoring

import (
	"context"
	"testing"

	"github.com/warmlead/reachout/internal/contacts"
)

func TestHeuristicScoreBounds(t *testing.T) {
	h := NewHeuristic(nil)

	user := &contacts.UserProfile{
		Schools:   []string{"University of Michigan"},
		Companies: []string{"Google"},
		Skills:    []string{"go", "python", "kubernetes"},
	}

	// A candidate matching everything accumulates weights far past 1.0
	// before the clamp.
	loaded := &contacts.Candidate{
		ID:          "1",
		Name:        "A",
		Title:       "Senior Software Engineer",
		Company:     "Google",
		Email:       "a@example.com",
		LinkedinURL: "https://linkedin.com/in/a",
		Location:    "Seattle, WA",
		Summary:     "Software engineer with go, python and kubernetes experience building large systems.",
		Schools:     "University of Michigan",
		Skills:      "go, python, kubernetes",
	}
	empty := &contacts.Candidate{ID: "2", Name: "B"}

	scored := h.Score(context.Background(), user, "Find Software Engineer contacts at Google in Seattle", []*contacts.Candidate{loaded, empty})

	for _, candidate := range scored {
		if candidate.Score < 0 || candidate.Score > 1 {
			t.Fatalf("score out of bounds for %s: %v", candidate.ID, candidate.Score)
		}
	}

	if scored[0].Score != 1 {
		t.Fatalf("expected fully loaded candidate to clamp to 1, got %v", scored[0].Score)
	}
}

func TestHeuristicDeterminism(t *testing.T) {
	h := NewHeuristic(nil)

	user := &contacts.UserProfile{Skills: []string{"go"}}
	intent := "Find SWE contacts at Amazon in Seattle"

	build := func() []*contacts.Candidate {
		return []*contacts.Candidate{
			{ID: "1", Name: "A", Title: "Software Engineer", Company: "Amazon", Summary: "go services"},
			{ID: "2", Name: "B", Title: "Designer", Company: "Acme"},
		}
	}

	first := h.Score(context.Background(), user, intent, build())
	second := h.Score(context.Background(), user, intent, build())

	for i := range first {
		if first[i].Score != second[i].Score {
			t.Fatalf("scores differ between runs: %v vs %v", first[i].Score, second[i].Score)
		}
	}
}

func TestHeuristicStableSort(t *testing.T) {
	h := NewHeuristic(nil)

	// No signal in intent or profile: everyone scores 0 and input order
	// must survive.
	candidates := []*contacts.Candidate{
		{ID: "1", Name: "A"},
		{ID: "2", Name: "B"},
		{ID: "3", Name: "C"},
	}

	scored := h.Score(context.Background(), &contacts.UserProfile{}, "", candidates)

	for i := range scored {
		if i > 0 && scored[i-1].Score < scored[i].Score {
			t.Fatalf("list not sorted descending at index %d", i)
		}
	}

	for i, id := range []string{"1", "2", "3"} {
		if scored[i].ID != id {
			t.Fatalf("tie order not preserved: expected %s at %d, got %s", id, i, scored[i].ID)
		}
	}
}

func TestHeuristicMissingFieldsTolerated(t *testing.T) {
	h := NewHeuristic(nil)

	scored := h.Score(context.Background(), nil, "Find SWE contacts at Amazon in Seattle", []*contacts.Candidate{
		{ID: "1", Name: "Only Name"},
	})

	if len(scored) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(scored))
	}
	if scored[0].Score != 0 {
		t.Fatalf("expected 0 for a bare candidate, got %v", scored[0].Score)
	}
}

func TestHeuristicEmptyList(t *testing.T) {
	h := NewHeuristic(nil)

	scored := h.Score(context.Background(), &contacts.UserProfile{}, "anything", nil)
	if len(scored) != 0 {
		t.Fatalf("expected empty result, got %d", len(scored))
	}
}

func TestHeuristicAlumniDominance(t *testing.T) {
	h := NewHeuristic(nil)

	alumni := &contacts.Candidate{ID: "1", Name: "A", Title: "Analyst", Schools: "University of Michigan"}
	other := &contacts.Candidate{ID: "2", Name: "B", Title: "Analyst"}

	scored := h.Score(context.Background(), &contacts.UserProfile{}, "", []*contacts.Candidate{other, alumni})

	if scored[0].ID != "1" {
		t.Fatalf("expected alumni candidate first, got %s", scored[0].ID)
	}

	// Elite alumni (+1.0) plus the schools completeness tick (+0.05).
	diff := scored[0].Score - scored[1].Score
	if diff < 0.6 {
		t.Fatalf("expected alumni candidate to lead by at least 0.6, got %v", diff)
	}
}

func TestHeuristicExclusionCorrectness(t *testing.T) {
	h := NewHeuristic(nil)

	nearMiss := &contacts.Candidate{ID: "1", Name: "A", Schools: "Michigan State University"}

	scored := h.Score(context.Background(), &contacts.UserProfile{}, "", []*contacts.Candidate{nearMiss})

	// Only the completeness tick for a non-empty schools field, never the
	// elite alumni bonus.
	if scored[0].Score != 0.05 {
		t.Fatalf("expected 0.05 for near-miss school, got %v", scored[0].Score)
	}
}

func TestHeuristicUserSchoolExclusion(t *testing.T) {
	h := NewHeuristic(nil)

	user := &contacts.UserProfile{Schools: []string{"Michigan"}}
	nearMiss := &contacts.Candidate{ID: "1", Name: "A", Schools: "Michigan State University"}

	scored := h.Score(context.Background(), user, "", []*contacts.Candidate{nearMiss})

	if scored[0].Score != 0.05 {
		t.Fatalf("expected user school term not to match excluded institution, got %v", scored[0].Score)
	}
}

func TestHeuristicOrdinaryAlumni(t *testing.T) {
	h := NewHeuristic(nil)

	user := &contacts.UserProfile{Schools: []string{"Stanford"}}
	candidate := &contacts.Candidate{ID: "1", Name: "A", Schools: "Stanford University"}

	scored := h.Score(context.Background(), user, "", []*contacts.Candidate{candidate})

	// 0.6 alumni + 0.2 bonus + 0.05 schools completeness.
	if scored[0].Score != 0.85 {
		t.Fatalf("expected 0.85 for ordinary alumni, got %v", scored[0].Score)
	}
}

func TestHeuristicWorkedExample(t *testing.T) {
	h := NewHeuristic(nil)

	user := &contacts.UserProfile{}
	intent := "Find Software Engineers at Google"

	candidates := []*contacts.Candidate{
		{ID: "1", Name: "A", Title: "Software Engineer", Company: "Google", Schools: "University of Michigan"},
		{ID: "2", Name: "B", Title: "Sales Rep", Company: "Acme"},
	}

	scored := h.Score(context.Background(), user, intent, candidates)

	if scored[0].ID != "1" {
		t.Fatalf("expected candidate 1 first, got %s", scored[0].ID)
	}
	if scored[0].Score <= scored[1].Score {
		t.Fatalf("expected candidate 1 to outscore candidate 2: %v vs %v", scored[0].Score, scored[1].Score)
	}
	if scored[1].Score > 0.1 {
		t.Fatalf("expected candidate 2 near zero, got %v", scored[1].Score)
	}
}

func TestHeuristicRoleSynonym(t *testing.T) {
	h := NewHeuristic(nil)

	exact := &contacts.Candidate{ID: "1", Name: "A", Title: "Software Engineer"}
	synonym := &contacts.Candidate{ID: "2", Name: "B", Title: "Backend Developer"}
	neither := &contacts.Candidate{ID: "3", Name: "C", Title: "Accountant"}

	scored := h.Score(context.Background(), &contacts.UserProfile{}, "Find engineer contacts", []*contacts.Candidate{neither, synonym, exact})

	byID := map[string]float64{}
	for _, candidate := range scored {
		byID[candidate.ID] = candidate.Score
	}

	if byID["1"] != 0.3 {
		t.Fatalf("expected 0.3 for exact role match, got %v", byID["1"])
	}
	if byID["2"] != 0.2 {
		t.Fatalf("expected 0.2 for synonym-only match, got %v", byID["2"])
	}
	if byID["3"] != 0 {
		t.Fatalf("expected 0 for unrelated title, got %v", byID["3"])
	}
}

func TestHeuristicSeniorityBonus(t *testing.T) {
	h := NewHeuristic(nil)

	senior := &contacts.Candidate{ID: "1", Name: "A", Title: "Staff Accountant"}

	scored := h.Score(context.Background(), &contacts.UserProfile{}, "", []*contacts.Candidate{senior})

	if scored[0].Score != 0.1 {
		t.Fatalf("expected 0.1 seniority bonus, got %v", scored[0].Score)
	}
}

func TestHeuristicSkillOverlap(t *testing.T) {
	h := NewHeuristic(nil)

	user := &contacts.UserProfile{Skills: []string{"go", "terraform", "react", "sql"}}
	candidate := &contacts.Candidate{ID: "1", Name: "A", Summary: "I write go and sql all day"}

	scored := h.Score(context.Background(), user, "", []*contacts.Candidate{candidate})

	// 2 of 4 skills -> 0.1, plus no completeness (summary too short is
	// false here: len > 50 is not reached).
	if scored[0].Score != 0.1 {
		t.Fatalf("expected 0.1 for half skill overlap, got %v", scored[0].Score)
	}
}

func TestHeuristicJSONEncodedSchools(t *testing.T) {
	h := NewHeuristic(nil)

	candidate := &contacts.Candidate{
		ID:      "1",
		Name:    "A",
		Schools: `[{"school": "University of Michigan", "degree": "BSE"}]`,
	}

	scored := h.Score(context.Background(), &contacts.UserProfile{}, "", []*contacts.Candidate{candidate})

	// Elite alumni through the JSON-encoded field plus schools completeness.
	if scored[0].Score != 1 {
		t.Fatalf("expected 1.0 for elite alumni via JSON field, got %v", scored[0].Score)
	}
}

func TestHeuristicConfigurablePrioritySchools(t *testing.T) {
	h := NewHeuristic(&Config{
		PrioritySchools: []PrioritySchool{
			{
				Name:          "University of Washington",
				Abbreviations: []string{"udub", "uw"},
				Exclusions:    []string{"washington state"},
			},
		},
	})

	match := &contacts.Candidate{ID: "1", Name: "A", Schools: "UW"}
	excluded := &contacts.Candidate{ID: "2", Name: "B", Schools: "Washington State University"}
	michigan := &contacts.Candidate{ID: "3", Name: "C", Schools: "University of Michigan"}

	scored := h.Score(context.Background(), &contacts.UserProfile{}, "", []*contacts.Candidate{match, excluded, michigan})

	byID := map[string]float64{}
	for _, candidate := range scored {
		byID[candidate.ID] = candidate.Score
	}

	if byID["1"] != 1 {
		t.Fatalf("expected configured school to match, got %v", byID["1"])
	}
	if byID["2"] != 0.05 {
		t.Fatalf("expected configured exclusion to hold, got %v", byID["2"])
	}
	// Default list is replaced, not merged.
	if byID["3"] != 0.05 {
		t.Fatalf("expected default school to be inactive, got %v", byID["3"])
	}
}
