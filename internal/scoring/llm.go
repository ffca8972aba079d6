package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/warmlead/reachout/internal/ai"
	"github.com/warmlead/reachout/internal/contacts"
	"github.com/warmlead/reachout/internal/logger"
	"github.com/warmlead/reachout/internal/utils"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const (
	summaryTruncateRunes = 300
	// defaultLowScore is assigned when the model returns fewer scores than
	// candidates in the batch.
	defaultLowScore = 0.1
	promptPreview   = 200
)

// LLM delegates scoring to a generative model, one prompt per batch of
// candidates. Any batch that fails (transport, empty text, unparseable
// response) is re-scored with the heuristic strategy, so the caller always
// receives a fully scored list.
type LLM struct {
	generator ai.Generator
	fallback  *Heuristic
	batchSize int
	delay     time.Duration
	logger    *zap.Logger
}

func NewLLM(cfg *Config, generator ai.Generator, fallback *Heuristic, log *zap.Logger) *LLM {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLM{
		generator: generator,
		fallback:  fallback,
		batchSize: cfg.batchSize(),
		delay:     cfg.batchDelay(),
		logger:    log,
	}
}

func (l *LLM) Name() string { return "llm" }

// Score processes candidates in fixed-size batches, strictly sequentially,
// with a short pause between batches to respect upstream rate limits. The
// final list is stable-sorted descending across all batches.
func (l *LLM) Score(ctx context.Context, user *contacts.UserProfile, intent string, candidates []*contacts.Candidate) []*contacts.Candidate {
	signals := parseIntent(intent)

	scored := append([]*contacts.Candidate(nil), candidates...)
	degraded := false

	for start := 0; start < len(scored); start += l.batchSize {
		end := start + l.batchSize
		if end > len(scored) {
			end = len(scored)
		}
		batch := scored[start:end]

		if degraded {
			l.scoreBatchHeuristically(user, signals, batch)
			continue
		}

		if err := l.scoreBatch(ctx, user, intent, batch); err != nil {
			l.logger.Warn("llm batch scoring failed, falling back to heuristic",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			l.scoreBatchHeuristically(user, signals, batch)
		}

		if end < len(scored) {
			if err := utils.WaitFor(ctx, l.delay); err != nil {
				// Context gone: degrade the remaining batches instead of
				// surfacing an error.
				degraded = true
			}
		}
	}

	sortByScore(scored)
	return scored
}

func (l *LLM) scoreBatch(ctx context.Context, user *contacts.UserProfile, intent string, batch []*contacts.Candidate) error {
	prompt, err := buildPrompt(user, intent, batch)
	if err != nil {
		return err
	}

	l.logger.Debug("llm scoring request",
		zap.Int("candidates", len(batch)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, promptPreview)),
	)

	raw, err := l.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return err
	}

	l.logger.Debug("llm scoring response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, promptPreview)),
	)

	scores, err := parseScores(raw)
	if err != nil {
		return err
	}

	for i, candidate := range batch {
		score := defaultLowScore
		if i < len(scores) {
			score = clamp01(scores[i])
		}
		candidate.Score = round3(score)
	}

	return nil
}

func (l *LLM) scoreBatchHeuristically(user *contacts.UserProfile, signals intentSignals, batch []*contacts.Candidate) {
	for _, candidate := range batch {
		candidate.Score = round3(l.fallback.scoreCandidate(user, signals, candidate))
	}
}

func buildPrompt(user *contacts.UserProfile, intent string, batch []*contacts.Candidate) (string, error) {
	if user == nil {
		user = &contacts.UserProfile{}
	}

	profileJSON, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal user profile: %w", err)
	}

	var builder strings.Builder
	for i, candidate := range batch {
		fmt.Fprintf(&builder, "%d. Name: %s\n", i+1, candidate.Name)
		writeAttr(&builder, "Title", candidate.Title)
		writeAttr(&builder, "Company", candidate.Company)
		writeAttr(&builder, "Location", candidate.Location)
		writeAttr(&builder, "Summary", truncateRunes(candidate.Summary, summaryTruncateRunes))
		writeAttr(&builder, "Schools", candidate.SchoolsText())
		writeAttr(&builder, "Skills", candidate.SkillsText())
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{INTENT}}", strings.TrimSpace(intent))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES}}", strings.TrimSpace(builder.String()))

	return prompt, nil
}

func writeAttr(builder *strings.Builder, name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(builder, "   %s: %s\n", name, value)
}

// parseScores extracts the first JSON array literal from the response,
// tolerating surrounding prose and markdown fencing.
func parseScores(raw string) ([]float64, error) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "[")
	if start == -1 {
		return nil, errors.New("no JSON array in response")
	}
	end := strings.Index(cleaned[start:], "]")
	if end == -1 {
		return nil, errors.New("unterminated JSON array in response")
	}

	var scores []float64
	if err := json.Unmarshal([]byte(cleaned[start:start+end+1]), &scores); err != nil {
		return nil, fmt.Errorf("parse scores array: %w", err)
	}

	return scores, nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
