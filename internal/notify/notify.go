// Package notify delivers messages to marketplace users. The matching core
// only sees the Notifier port; the server wires it to an outbox that hands
// messages to the background job queue and, from there, to SMTP.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Message is a fully rendered notification.
type Message struct {
	ToAddress string `json:"to_address"`
	ToName    string `json:"to_name"`
	Subject   string `json:"subject"`
	TextBody  string `json:"text_body"`
	HTMLBody  string `json:"html_body,omitempty"`
}

var ErrNoRecipient = errors.New("message has no recipient address")

func (m Message) Validate() error {
	if strings.TrimSpace(m.ToAddress) == "" {
		return ErrNoRecipient
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("message has no subject")
	}
	return nil
}

// Notifier hands a message over for delivery and returns a code that
// identifies the delivery attempt.
type Notifier interface {
	Notify(ctx context.Context, msg Message) (string, error)
}

// Discard drops every message.
type Discard struct{}

func (Discard) Notify(context.Context, Message) (string, error) { return "discarded", nil }

// LogNotifier writes messages to the log instead of sending them. The
// server falls back to it when no SMTP host is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		slog.String("to", msg.ToAddress),
		slog.String("subject", msg.Subject))
	return "logged", nil
}
