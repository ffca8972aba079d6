package scoring

import (
	"context"
	"time"

	"github.com/warmlead/reachout/internal/ai"
	"github.com/warmlead/reachout/internal/contacts"

	"go.uber.org/zap"
)

// Strategy ranks candidates by relevance to the user's profile and intent.
// Implementations populate the Score field on every candidate, clamp it into
// [0, 1] and return the list sorted by score descending with input order
// preserved on ties. A strategy never fails: predictable trouble (malformed
// fields, upstream errors) is absorbed internally.
type Strategy interface {
	Name() string
	Score(ctx context.Context, user *contacts.UserProfile, intent string, candidates []*contacts.Candidate) []*contacts.Candidate
}

// Config tunes the scoring strategies.
type Config struct {
	// PrioritySchools are institutions whose alumni get the elite bonus.
	// Empty means the built-in default list.
	PrioritySchools []PrioritySchool
	// BatchSize bounds how many candidates go into a single LLM prompt.
	BatchSize int
	// BatchDelay is the pause between LLM batches to respect rate limits.
	BatchDelay time.Duration
}

const (
	defaultBatchSize  = 5
	defaultBatchDelay = 100 * time.Millisecond
)

// New selects the scoring strategy: LLM-backed when a generator is
// configured, the deterministic heuristic otherwise. A plain two-branch
// dispatch, mirroring how the provider credential gates the choice.
func New(cfg *Config, generator ai.Generator, logger *zap.Logger) Strategy {
	heuristic := NewHeuristic(cfg)

	if generator == nil {
		return heuristic
	}

	return NewLLM(cfg, generator, heuristic, logger)
}

func (c *Config) batchSize() int {
	if c == nil || c.BatchSize <= 0 {
		return defaultBatchSize
	}
	return c.BatchSize
}

func (c *Config) batchDelay() time.Duration {
	if c == nil || c.BatchDelay <= 0 {
		return defaultBatchDelay
	}
	return c.BatchDelay
}

func (c *Config) prioritySchools() []PrioritySchool {
	if c == nil || len(c.PrioritySchools) == 0 {
		return DefaultPrioritySchools()
	}
	return c.PrioritySchools
}
