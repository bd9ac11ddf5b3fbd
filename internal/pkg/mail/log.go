package mail

import (
	"context"
	"log/slog"
)

// Log writes messages to the structured log instead of sending them. It is
// meant for local development where no SMTP server is available.
type Log struct {
	defaultFrom string
}

// NewLog returns a log-only sender.
func NewLog(from string) *Log {
	return &Log{defaultFrom: from}
}

// Send logs msg at info level.
func (l *Log) Send(ctx context.Context, msg Message) error {
	if len(recipients(msg)) == 0 {
		return ErrNoRecipients
	}

	from := msg.From
	if from == "" {
		from = l.defaultFrom
	}

	slog.InfoContext(ctx, "mail not sent, log driver active",
		"from", from,
		"to", msg.To,
		"subject", msg.Subject,
		"text_body", msg.TextBody,
	)
	return nil
}

// Close implements io.Closer.
func (l *Log) Close() error {
	return nil
}
