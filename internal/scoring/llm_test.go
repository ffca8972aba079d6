package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/warmlead/reachout/internal/contacts"

	"go.uber.org/zap"
)

type stubGenerator struct {
	responses []string
	err       error
	prompts   []string
	onCall    func()
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return "", s.err
	}
	idx := len(s.prompts) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func (s *stubGenerator) Model() string { return "stub-model" }

func fastConfig() *Config {
	return &Config{BatchDelay: time.Millisecond}
}

func newTestLLM(cfg *Config, generator *stubGenerator) *LLM {
	return NewLLM(cfg, generator, NewHeuristic(cfg), zap.NewNop())
}

func makeCandidates(n int) []*contacts.Candidate {
	candidates := make([]*contacts.Candidate, 0, n)
	for i := 0; i < n; i++ {
		candidates = append(candidates, &contacts.Candidate{
			ID:   fmt.Sprintf("%d", i+1),
			Name: fmt.Sprintf("Candidate %d", i+1),
		})
	}
	return candidates
}

func TestLLMScoreHappyPath(t *testing.T) {
	generator := &stubGenerator{responses: []string{"[0.2, 0.9]"}}
	llm := newTestLLM(fastConfig(), generator)

	scored := llm.Score(context.Background(), &contacts.UserProfile{}, "find engineers", makeCandidates(2))

	if len(generator.prompts) != 1 {
		t.Fatalf("expected 1 generator call, got %d", len(generator.prompts))
	}
	if scored[0].ID != "2" || scored[0].Score != 0.9 {
		t.Fatalf("expected candidate 2 first with 0.9, got %s with %v", scored[0].ID, scored[0].Score)
	}
	if scored[1].ID != "1" || scored[1].Score != 0.2 {
		t.Fatalf("expected candidate 1 second with 0.2, got %s with %v", scored[1].ID, scored[1].Score)
	}
}

func TestLLMScoreFencedResponse(t *testing.T) {
	generator := &stubGenerator{responses: []string{"```json\n[0.7, 0.3]\n```"}}
	llm := newTestLLM(fastConfig(), generator)

	scored := llm.Score(context.Background(), &contacts.UserProfile{}, "", makeCandidates(2))

	if scored[0].Score != 0.7 || scored[1].Score != 0.3 {
		t.Fatalf("expected fenced scores parsed, got %v and %v", scored[0].Score, scored[1].Score)
	}
}

func TestLLMScoreProseAroundArray(t *testing.T) {
	generator := &stubGenerator{responses: []string{"Here are the scores: [0.5, 0.4] as requested."}}
	llm := newTestLLM(fastConfig(), generator)

	scored := llm.Score(context.Background(), &contacts.UserProfile{}, "", makeCandidates(2))

	if scored[0].Score != 0.5 || scored[1].Score != 0.4 {
		t.Fatalf("expected array extracted from prose, got %v and %v", scored[0].Score, scored[1].Score)
	}
}

func TestLLMScoreShortArray(t *testing.T) {
	generator := &stubGenerator{responses: []string{"[0.9]"}}
	llm := newTestLLM(fastConfig(), generator)

	scored := llm.Score(context.Background(), &contacts.UserProfile{}, "", makeCandidates(3))

	if scored[0].Score != 0.9 {
		t.Fatalf("expected first candidate scored, got %v", scored[0].Score)
	}
	for _, candidate := range scored[1:] {
		if candidate.Score != defaultLowScore {
			t.Fatalf("expected default low score for missing entries, got %v", candidate.Score)
		}
	}
}

func TestLLMScoreClampsOutOfRange(t *testing.T) {
	generator := &stubGenerator{responses: []string{"[1.7, -0.3]"}}
	llm := newTestLLM(fastConfig(), generator)

	scored := llm.Score(context.Background(), &contacts.UserProfile{}, "", makeCandidates(2))

	if scored[0].Score != 1 {
		t.Fatalf("expected clamp to 1, got %v", scored[0].Score)
	}
	if scored[1].Score != 0 {
		t.Fatalf("expected clamp to 0, got %v", scored[1].Score)
	}
}

func TestLLMScoreGeneratorErrorFallsBack(t *testing.T) {
	generator := &stubGenerator{err: errors.New("quota exceeded")}
	llm := newTestLLM(fastConfig(), generator)

	candidates := []*contacts.Candidate{
		{ID: "1", Name: "A", Schools: "University of Michigan"},
		{ID: "2", Name: "B"},
	}

	scored := llm.Score(context.Background(), &contacts.UserProfile{}, "", candidates)

	// The heuristic fallback must have run: elite alumni plus the schools
	// completeness tick.
	if scored[0].ID != "1" || scored[0].Score != 1 {
		t.Fatalf("expected heuristic fallback score, got %s with %v", scored[0].ID, scored[0].Score)
	}
}

func TestLLMScoreGarbageResponseFallsBack(t *testing.T) {
	generator := &stubGenerator{responses: []string{"I cannot help with that."}}
	llm := newTestLLM(fastConfig(), generator)

	candidates := []*contacts.Candidate{
		{ID: "1", Name: "A", Title: "Software Engineer"},
	}

	scored := llm.Score(context.Background(), &contacts.UserProfile{}, "Find engineer contacts", candidates)

	if scored[0].Score != 0.3 {
		t.Fatalf("expected heuristic fallback for unparseable response, got %v", scored[0].Score)
	}
}

func TestLLMScoreBatching(t *testing.T) {
	generator := &stubGenerator{responses: []string{
		"[0.1, 0.2, 0.3, 0.4, 0.5]",
		"[0.6, 0.7]",
	}}
	llm := newTestLLM(fastConfig(), generator)

	scored := llm.Score(context.Background(), &contacts.UserProfile{}, "", makeCandidates(7))

	if len(generator.prompts) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(generator.prompts))
	}
	if !strings.Contains(generator.prompts[0], "Candidate 5") || strings.Contains(generator.prompts[0], "Candidate 6") {
		t.Fatalf("first batch should end at candidate 5")
	}
	if !strings.Contains(generator.prompts[1], "Candidate 6") {
		t.Fatalf("second batch should start at candidate 6")
	}
	if scored[0].ID != "7" || scored[0].Score != 0.7 {
		t.Fatalf("expected candidate 7 first with 0.7, got %s with %v", scored[0].ID, scored[0].Score)
	}
	if scored[6].ID != "1" || scored[6].Score != 0.1 {
		t.Fatalf("expected candidate 1 last with 0.1, got %s with %v", scored[6].ID, scored[6].Score)
	}
}

func TestLLMScoreDegradesAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	generator := &stubGenerator{
		responses: []string{"[0.5, 0.5, 0.5, 0.5, 0.5]"},
		onCall:    cancel,
	}
	llm := newTestLLM(fastConfig(), generator)

	scored := llm.Score(ctx, &contacts.UserProfile{}, "", makeCandidates(12))

	// First batch went to the model, the inter-batch wait observed the
	// cancelled context and the rest ran on the heuristic.
	if len(generator.prompts) != 1 {
		t.Fatalf("expected 1 generator call after cancellation, got %d", len(generator.prompts))
	}
	if len(scored) != 12 {
		t.Fatalf("expected all candidates scored, got %d", len(scored))
	}
}

func TestLLMScorePromptContents(t *testing.T) {
	generator := &stubGenerator{responses: []string{"[0.5]"}}
	llm := newTestLLM(fastConfig(), generator)

	user := &contacts.UserProfile{Name: "Pat", Schools: []string{"University of Michigan"}}
	candidates := []*contacts.Candidate{
		{ID: "1", Name: "A", Title: "Engineer", Company: "Acme", Summary: strings.Repeat("x", 400)},
	}

	llm.Score(context.Background(), user, "Find engineers at Acme", candidates)

	prompt := generator.prompts[0]
	for _, want := range []string{"Pat", "University of Michigan", "Find engineers at Acme", "1. Name: A", "Title: Engineer"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, strings.Repeat("x", 301)) {
		t.Fatalf("summary not truncated in prompt")
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("unreplaced placeholder left in prompt")
	}
}

func TestParseScores(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    []float64
		wantErr bool
	}{
		{name: "plain", raw: "[0.85, 0.2, 0.6]", want: []float64{0.85, 0.2, 0.6}},
		{name: "fenced", raw: "```json\n[0.1, 0.9]\n```", want: []float64{0.1, 0.9}},
		{name: "prose", raw: "Sure: [0.3] there you go", want: []float64{0.3}},
		{name: "empty array", raw: "[]", want: []float64{}},
		{name: "no array", raw: "nope", wantErr: true},
		{name: "unterminated", raw: "[0.1, 0.2", wantErr: true},
		{name: "not numbers", raw: `["high", "low"]`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseScores(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d scores, got %d", len(tc.want), len(got))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("score %d: expected %v, got %v", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestNewStrategySelection(t *testing.T) {
	if name := New(nil, nil, zap.NewNop()).Name(); name != "heuristic" {
		t.Fatalf("expected heuristic without a generator, got %s", name)
	}

	generator := &stubGenerator{responses: []string{"[]"}}
	if name := New(nil, generator, zap.NewNop()).Name(); name != "llm" {
		t.Fatalf("expected llm with a generator, got %s", name)
	}
}
