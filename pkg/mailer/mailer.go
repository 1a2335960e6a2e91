// Package mailer sends transactional email for plan-change confirmations
// and certificate expiry notices. Postmark backs the production sender; a
// log-only sender stands in for development and tests.
package mailer

import (
	"context"
	"errors"
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrInvalidConfig     = errors.New("invalid mailer configuration")
	ErrInvalidMessage    = errors.New("invalid email message")
	ErrFailedToSendEmail = errors.New("failed to send email")
)

// Message is a single outbound email.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks the message for the fields every backend requires.
func (m Message) Validate() error {
	if !emailRegex.MatchString(m.To) {
		return errors.Join(ErrInvalidMessage, errors.New("recipient address is invalid"))
	}
	if m.Subject == "" {
		return errors.Join(ErrInvalidMessage, errors.New("subject is required"))
	}
	if m.BodyHTML == "" {
		return errors.Join(ErrInvalidMessage, errors.New("body is required"))
	}
	return nil
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds mailer configuration. The Postmark tokens are optional so
// development environments can run with the dev sender instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@asoflow.com.br"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"suporte@asoflow.com.br"`
}
