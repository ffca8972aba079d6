package outreach

import (
	"context"
	"fmt"

	"github.com/warmlead/reachout/internal/ai"
	"github.com/warmlead/reachout/internal/contacts"
	"github.com/warmlead/reachout/internal/history"

	"go.uber.org/zap"
)

const defaultFallbackMessage = "Hello! I came across your profile and would love to connect."

// Sender drafts and sends one email per candidate and records the result.
// A failed send skips the candidate and moves on; it never aborts the batch.
type Sender struct {
	client  *Client
	drafter *ai.Drafter
	store   *history.Store
	from    string
	subject string
	logger  *zap.Logger
}

type SenderConfig struct {
	From    string
	Subject string
}

func NewSender(client *Client, drafter *ai.Drafter, store *history.Store, cfg SenderConfig, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		client:  client,
		drafter: drafter,
		store:   store,
		from:    cfg.From,
		subject: cfg.Subject,
		logger:  logger,
	}
}

// SendAll processes the candidate list in order. Returns how many emails
// were sent.
func (s *Sender) SendAll(ctx context.Context, user *contacts.UserProfile, intent string, candidates *contacts.Candidates) (int, error) {
	if s.from == "" {
		return 0, fmt.Errorf("sender address is required")
	}

	sent := 0
	for _, candidate := range candidates.Items {
		if err := s.Send(ctx, user, intent, candidate); err != nil {
			s.logger.Warn("sending outreach failed",
				zap.String("candidate_id", candidate.ID),
				zap.String("email", candidate.Email),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	s.logger.Info("outreach batch finished",
		zap.Int("sent", sent),
		zap.Int("total", candidates.Len()),
	)

	return sent, nil
}

// Send drafts and delivers a single outreach email.
func (s *Sender) Send(ctx context.Context, user *contacts.UserProfile, intent string, candidate *contacts.Candidate) error {
	if candidate.Email == "" {
		return fmt.Errorf("candidate %s has no email", candidate.ID)
	}

	message, drafted := s.draft(ctx, user, intent, candidate)

	messageID, err := s.client.Send(&SendRequest{
		From:    s.from,
		To:      candidate.Email,
		Subject: s.subject,
		Text:    message,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if s.store != nil {
		if err := s.store.Record(candidate, messageID, s.subject); err != nil {
			s.logger.Warn("recording outreach history failed",
				zap.String("candidate_id", candidate.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("successfully sent outreach",
		zap.String("candidate_id", candidate.ID),
		zap.String("candidate_name", candidate.Name),
		zap.String("message_id", messageID),
		zap.Bool("drafted", drafted),
	)

	return nil
}

func (s *Sender) draft(ctx context.Context, user *contacts.UserProfile, intent string, candidate *contacts.Candidate) (string, bool) {
	if s.drafter != nil {
		if message, drafted := s.drafter.Draft(ctx, user, intent, candidate); message != "" {
			return message, drafted
		}
	}

	s.logger.Warn("falling back to default built-in message",
		zap.String("candidate_id", candidate.ID),
		zap.String("hint", "specify message under outreach.message"),
	)

	return defaultFallbackMessage, false
}
