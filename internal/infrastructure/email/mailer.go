// Package email implements the MailSender port over SMTP.
package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/JamieKoz/platepicker-api/internal/infrastructure/config"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// Mailer sends mail through the configured SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewMailer creates a mailer from configuration.
func NewMailer(cfg *config.Config, logger *zap.Logger) outbound.MailSender {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password),
		from:   fmt.Sprintf("%s <%s>", cfg.Mail.FromName, cfg.Mail.FromAddress),
		logger: logger.Named("mail"),
	}
}

// Send delivers one HTML message. The context deadline is honored by
// failing fast when the request is already cancelled; gomail itself
// dials synchronously.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("mail delivery failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send mail: %w", err)
	}
	m.logger.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
