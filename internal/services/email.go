package services

import (
	"context"
	"fmt"

	"github.com/go-gomail/gomail"
	"github.com/rs/zerolog"
)

// Email is one outbound message. The from-address is fixed per deployment.
type Email struct {
	To      string
	Subject string
	Body    string
}

// EmailSender abstracts the transport so it can be swapped (SMTP, stub)
// without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}

// FromAddress derives the fixed from-address from the deployment identifier.
func FromAddress(projectID string) string {
	if projectID == "" {
		projectID = "hospital"
	}
	return fmt.Sprintf("no-reply@%s.example", projectID)
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	if host == "" {
		return nil
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(_ context.Context, msg Email) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("services: smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// StubSender logs instead of sending. Used when SMTP is not configured.
type StubSender struct {
	logger zerolog.Logger
}

func NewStubSender(logger zerolog.Logger) *StubSender {
	return &StubSender{logger: logger}
}

func (s *StubSender) Send(_ context.Context, msg Email) error {
	s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email disabled, not sent")
	return nil
}

var (
	_ EmailSender = (*SMTPSender)(nil)
	_ EmailSender = (*StubSender)(nil)
)
