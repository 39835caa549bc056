package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jefin10/VoiceUPI/internal/events"
)

// RequestNotifier consumes money-request events and texts the affected
// party. Duplicate stream deliveries are detected via Redis and skipped, so
// a redelivered event never sends a second SMS.
type RequestNotifier struct {
	sender Sender
	redis  *goredis.Client
}

func NewRequestNotifier(sender Sender, redis *goredis.Client) *RequestNotifier {
	return &RequestNotifier{sender: sender, redis: redis}
}

// HandleEvent is the events.Handler wired to the request event stream.
func (n *RequestNotifier) HandleEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.RequestCreated:
		var data events.RequestCreatedEvent
		if err := decode(event.Data, &data); err != nil {
			return err
		}
		if n.alreadyNotified(ctx, data.RequestID, event.Type) {
			slog.Info("request notification already sent, skipping duplicate", "requestId", data.RequestID)
			return nil
		}
		message := fmt.Sprintf("%s requested ₹%s from you", data.RequesterName, data.Amount.StringFixed(2))
		if data.Message != "" {
			message += ": " + data.Message
		}
		return n.sender.Send(ctx, data.RequesteePhone, message)

	case events.RequestUpdated:
		var data events.RequestUpdatedEvent
		if err := decode(event.Data, &data); err != nil {
			return err
		}
		if n.alreadyNotified(ctx, data.RequestID, event.Type+":"+data.NewStatus) {
			return nil
		}
		message := fmt.Sprintf("Your request for ₹%s was %s by %s",
			data.Amount.StringFixed(2), data.NewStatus, data.RequesteeName)
		return n.sender.Send(ctx, data.RequesterPhone, message)
	}
	return nil
}

// alreadyNotified records the notification key and reports whether it had
// been recorded before. Errors count as not-notified; a rare duplicate SMS
// beats a silently dropped one.
func (n *RequestNotifier) alreadyNotified(ctx context.Context, requestID, kind string) bool {
	key := fmt.Sprintf("notified:%s:%s", requestID, kind)
	set, err := n.redis.SetNX(ctx, key, "1", 24*time.Hour).Result()
	if err != nil {
		slog.Warn("notification dedupe check failed", "key", key, "error", err)
		return false
	}
	return !set
}

// decode round-trips the loosely-typed event payload into its struct form.
func decode(data any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal event data: %w", err)
	}
	return nil
}
