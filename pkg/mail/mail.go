// Package mail delivers transactional email through a pluggable provider.
package mail

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// Message is a single outbound email. HTML is optional.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Validate checks the message has a parseable recipient and content.
func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject required")
	}
	if m.Text == "" && m.HTML == "" {
		return fmt.Errorf("message body required")
	}
	return nil
}

// Mailer sends a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From header.
type Sender struct {
	Name    string
	Address string
}
