// Package mail sends transactional email: login codes and contact notifications.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/config"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages. Implementations must not log message bodies.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer only logs the recipient and subject. Development use; refused in production by config.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	l := m.Logger
	if l == nil {
		l = zap.NewNop()
	}
	l.Info("mail: message not sent (log provider)", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// New builds the Mailer selected by EMAIL_PROVIDER.
func New(cfg *config.Config, logger *zap.Logger) (Mailer, error) {
	switch cfg.EmailProvider {
	case config.EmailProviderResend:
		c, err := NewResendClient(cfg.ResendAPIKey, cfg.ResendBaseURL, cfg.EmailFrom)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.EmailProviderSMTP:
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom), nil
	case config.EmailProviderLog:
		return LogMailer{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("mail: unknown provider %q", cfg.EmailProvider)
	}
}
