// Package mailer is the outbound notification surface. The orchestrator only
// sees the Notifier interface; implementations are constructed in the command
// wiring and injected, never held as package globals.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Kind selects the message template on the other side of the collaborator.
type Kind string

const (
	KindInvitation Kind = "invitation"
	KindWelcome    Kind = "welcome"
)

// Payload carries the fields the templates need. Unused fields stay zero.
type Payload struct {
	To           string
	FirstName    string
	PropertyName string
	InviteURL    string
}

// Notifier sends a message of the given kind. Callers in the onboarding flow
// treat failures as fire-and-forget: they are logged, never propagated as an
// onboarding failure.
type Notifier interface {
	Send(ctx context.Context, kind Kind, p Payload) error
}

// SMTPNotifier delivers mail through a plain SMTP relay.
type SMTPNotifier struct {
	addr string
	from string
}

func NewSMTPNotifier(addr, from string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, from: from}
}

func (n *SMTPNotifier) Send(ctx context.Context, kind Kind, p Payload) error {
	subject, body := render(kind, p)
	msg := strings.Join([]string{
		"From: " + n.from,
		"To: " + p.To,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(n.addr, nil, n.from, []string{p.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send %s mail: %w", kind, err)
	}
	return nil
}

func render(kind Kind, p Payload) (subject, body string) {
	switch kind {
	case KindInvitation:
		subject = "You're invited to join " + p.PropertyName
		body = fmt.Sprintf("Hi %s,\n\nYour landlord invited you to %s. Follow this link to set up your account:\n\n%s\n\nThe link expires in 7 days.\n", p.FirstName, p.PropertyName, p.InviteURL)
	case KindWelcome:
		subject = "Welcome to " + p.PropertyName
		body = fmt.Sprintf("Hi %s,\n\nYour account is ready. Welcome to %s!\n", p.FirstName, p.PropertyName)
	default:
		subject = string(kind)
	}
	return subject, body
}

// LogNotifier writes would-be messages to the log instead of sending them.
// Used in local development when no SMTP relay is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, kind Kind, p Payload) error {
	n.log.Info().
		Str("kind", string(kind)).
		Str("to", p.To).
		Str("invite_url", p.InviteURL).
		Msg("notification (not sent: no SMTP configured)")
	return nil
}
