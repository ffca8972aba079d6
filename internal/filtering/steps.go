package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/warmlead/reachout/internal/contacts"
)

type missingEmailFilter struct{}

// NewMissingEmail creates a filter that removes candidates without an email
// address. There is no way to contact them.
func NewMissingEmail() Filter {
	return &missingEmailFilter{}
}

func (f *missingEmailFilter) Name() string { return "missing_email" }

func (f *missingEmailFilter) Disable(string) {}

func (f *missingEmailFilter) IsEnabled() bool { return true }

func (f *missingEmailFilter) Validate(*Config) error { return nil }

func (f *missingEmailFilter) Apply(_ context.Context, deps Deps, c *contacts.Candidates) (*contacts.Candidates, Step, error) {
	initial := c.Len()

	kept := make([]*contacts.Candidate, 0, initial)
	var excluded []string
	for _, candidate := range c.Items {
		if strings.TrimSpace(candidate.Email) == "" {
			excluded = append(excluded, candidate.ID)
			continue
		}
		kept = append(kept, candidate)
	}
	c.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding candidates without email. It is impossible to contact them",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *missingEmailFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}

type contactedHistoryFilter struct {
	ignore bool
}

// NewContactedHistory creates a filter that removes candidates already found
// in the outreach history.
func NewContactedHistory(ignore bool) Filter {
	return &contactedHistoryFilter{ignore: ignore}
}

func (f *contactedHistoryFilter) Name() string { return "contacted_history" }

func (f *contactedHistoryFilter) Disable(string) {}

func (f *contactedHistoryFilter) IsEnabled() bool { return true }

func (f *contactedHistoryFilter) Validate(*Config) error { return nil }

func (f *contactedHistoryFilter) Apply(_ context.Context, deps Deps, c *contacts.Candidates) (*contacts.Candidates, Step, error) {
	initial := c.Len()
	if f.ignore {
		if deps.Logger != nil {
			deps.Logger.Info("ignoring already contacted candidates", zap.String("reason", "force flag is set"))
		}
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	if deps.History == nil {
		return c, Step{}, fmt.Errorf("history store is required")
	}

	contacted, err := deps.History.ContactedIDs()
	if err != nil {
		return c, Step{}, fmt.Errorf("get contacted candidates: %w", err)
	}

	excluded := c.Exclude(contacts.CandidateIDField, contacted)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding candidates based on outreach history",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *contactedHistoryFilter) Status() Status {
	details := map[string]string{
		"exclude_contacted": strconv.FormatBool(!f.ignore),
	}
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates contained in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *contacts.Candidates) (*contacts.Candidates, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded, err := contacts.GetExcludedCandidatesFromFile(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	ids := excluded.CandidateIDs()
	removed := c.Exclude(contacts.CandidateIDField, ids)
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type minScoreFilter struct {
	threshold float64
}

// NewMinScore creates a post-scoring filter that removes candidates below
// the configured relevance threshold. A zero threshold keeps everyone.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(string) {}

func (f *minScoreFilter) IsEnabled() bool { return true }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.threshold = 0
	if cfg != nil {
		f.threshold = cfg.MinimumScore
	}
	if f.threshold < 0 || f.threshold > 1 {
		return fmt.Errorf("minimum score must be in [0, 1], got %v", f.threshold)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, c *contacts.Candidates) (*contacts.Candidates, Step, error) {
	initial := c.Len()
	if f.threshold <= 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	// Scored lists are sorted descending, so cut at the first candidate
	// below the threshold to keep relative order intact.
	cut := len(c.Items)
	for idx, candidate := range c.Items {
		if candidate.Score < f.threshold {
			cut = idx
			break
		}
	}

	var excluded []string
	for _, candidate := range c.Items[cut:] {
		excluded = append(excluded, candidate.ID)
	}
	c.Items = c.Items[:cut]

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding candidates below minimum score",
			zap.Float64("threshold", f.threshold),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"threshold": fmt.Sprintf("%.2f", f.threshold)},
	}
}
