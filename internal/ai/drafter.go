package ai

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/warmlead/reachout/internal/contacts"
	"github.com/warmlead/reachout/internal/logger"

	"go.uber.org/zap"
)

//go:embed draft.md
var draftTemplate string

const (
	draftPreview = 200
	// maxDraftRunes caps runaway model output; anything longer is not a
	// 3-5 sentence email anymore.
	maxDraftRunes = 2000
)

// Drafter writes personalized outreach messages. On any generation failure
// it returns the configured default message so a send never blocks on the
// model.
type Drafter struct {
	generator      Generator
	defaultMessage string
	logger         *zap.Logger
}

func NewDrafter(generator Generator, defaultMessage string, log *zap.Logger) *Drafter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Drafter{
		generator:      generator,
		defaultMessage: defaultMessage,
		logger:         log,
	}
}

// Draft returns an outreach email body for the candidate. The second return
// value reports whether the body came from the model.
func (d *Drafter) Draft(ctx context.Context, user *contacts.UserProfile, intent string, candidate *contacts.Candidate) (string, bool) {
	if d.generator == nil {
		return d.defaultMessage, false
	}

	prompt, err := d.buildPrompt(user, intent, candidate)
	if err != nil {
		d.logger.Warn("building draft prompt failed", zap.String("candidate_id", candidate.ID), zap.Error(err))
		return d.defaultMessage, false
	}

	raw, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		d.logger.Warn("drafting message failed, using default",
			zap.String("candidate_id", candidate.ID),
			zap.Error(err),
		)
		return d.defaultMessage, false
	}

	body := strings.TrimSpace(raw)
	if body == "" || utf8.RuneCountInString(body) > maxDraftRunes {
		d.logger.Warn("draft rejected, using default",
			zap.String("candidate_id", candidate.ID),
			zap.Int("length", utf8.RuneCountInString(body)),
		)
		return d.defaultMessage, false
	}

	d.logger.Debug("drafted message",
		zap.String("candidate_id", candidate.ID),
		zap.String("preview", logger.TruncateForLog(body, draftPreview)),
	)

	return body, true
}

func (d *Drafter) buildPrompt(user *contacts.UserProfile, intent string, candidate *contacts.Candidate) (string, error) {
	if user == nil {
		user = &contacts.UserProfile{}
	}

	profileJSON, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return "", err
	}

	candidateJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := strings.ReplaceAll(draftTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{INTENT}}", strings.TrimSpace(intent))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_JSON}}", string(candidateJSON))

	return prompt, nil
}
