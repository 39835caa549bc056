package command

import (
	"context"

	"github.com/jefin10/VoiceUPI/internal/models"
)

// BalanceCache is the slice of the view cache the command side needs:
// refresh after a transfer, drop when a balance went stale.
type BalanceCache interface {
	Set(ctx context.Context, key string, value *models.BalanceView)
	Delete(ctx context.Context, key string)
}

// IdentityCache caches directory entries created at signup.
type IdentityCache interface {
	Set(ctx context.Context, key string, value *models.IdentityView)
}

// Publisher emits domain events. Publish failures are logged by callers,
// never allowed to fail the command.
type Publisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}
