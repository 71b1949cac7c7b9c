package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

// Dialer is the part of gomail.Dialer used by SMTPMailer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	From   string
	Dialer Dialer
}

// NewSMTPMailer returns a mailer for host:port with optional credentials.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{From: from, Dialer: gomail.NewDialer(host, port, username, password)}
}

// Send builds a gomail message. ctx is only checked before dialing; gomail has no cancellation.
func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return s.Dialer.DialAndSend(m)
}
