package notify

import (
	"context"
	"log/slog"
)

// Sender delivers a short text message to a phone number. The production
// deployment fronts an SMS gateway; development logs the message instead.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSender writes messages to the structured log. Used in development and
// in tests.
type LogSender struct{}

func (LogSender) Send(_ context.Context, phone, message string) error {
	slog.Info("sms", "to", phone, "message", message)
	return nil
}
