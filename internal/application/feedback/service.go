// Package feedback implements feedback submission and triage.
package feedback

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"

	domain "github.com/JamieKoz/platepicker-api/internal/domain/feedback"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// Service persists feedback and relays it by mail.
type Service struct {
	repo     outbound.FeedbackRepository
	mail     outbound.MailSender
	notifyTo string
	logger   *zap.Logger
}

// NewService creates a feedback service. notifyTo is the inbox that
// receives submissions.
func NewService(repo outbound.FeedbackRepository, mail outbound.MailSender, notifyTo string, logger *zap.Logger) *Service {
	return &Service{repo: repo, mail: mail, notifyTo: notifyTo, logger: logger.Named("feedback")}
}

// Submit persists the feedback and sends the notification mail. Mail
// failures are logged but do not fail the submission; the row is the
// source of truth.
func (s *Service) Submit(ctx context.Context, f *domain.Feedback) (*domain.Feedback, error) {
	created, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, err
	}

	if s.notifyTo != "" {
		body := fmt.Sprintf(
			"<p><strong>From:</strong> %s (%s)</p><p>%s</p>",
			html.EscapeString(created.Name),
			html.EscapeString(created.Email),
			html.EscapeString(created.Message),
		)
		if err := s.mail.Send(ctx, s.notifyTo, "New feedback received", body); err != nil {
			s.logger.Error("feedback mail failed", zap.Uint("feedback_id", created.ID), zap.Error(err))
		}
	}

	s.logger.Info("feedback submitted", zap.Uint("feedback_id", created.ID))
	return created, nil
}

// List returns all feedback, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Feedback, error) {
	return s.repo.List(ctx)
}

// Get returns one feedback row.
func (s *Service) Get(ctx context.Context, id uint) (*domain.Feedback, error) {
	return s.repo.GetByID(ctx, id)
}

// SetResolved updates the resolved flag.
func (s *Service) SetResolved(ctx context.Context, id uint, resolved bool) error {
	return s.repo.SetResolved(ctx, id, resolved)
}
