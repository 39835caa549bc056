package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/events"
	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/repository"
	"github.com/jefin10/VoiceUPI/internal/utils"
)

// IdentityCommandService creates identities and opens their accounts. Both
// keys (phone, derived UPI handle) are unique; signup seeds the account
// balance, the only point where funds enter the ledger.
type IdentityCommandService struct {
	store         repository.Store
	identityCache IdentityCache
	publisher     Publisher
	seedBalance   decimal.Decimal
}

func NewIdentityCommandService(
	store repository.Store,
	identityCache IdentityCache,
	publisher Publisher,
	seedBalance decimal.Decimal,
) *IdentityCommandService {
	return &IdentityCommandService{
		store:         store,
		identityCache: identityCache,
		publisher:     publisher,
		seedBalance:   seedBalance,
	}
}

// accountNumberAttempts bounds the retries when a freshly drawn account
// number collides with an existing one.
const accountNumberAttempts = 5

func (s *IdentityCommandService) SignUp(cmd cqrs.SignUpCommand) (*models.Identity, error) {
	ctx := context.Background()
	phone := utils.CanonicalPhone(cmd.PhoneNumber)
	handle := utils.DeriveUpiHandle(cmd.DisplayName)

	// Repeat signup with the same name and phone acts as a login and
	// returns the existing identity. A handle taken by a different phone
	// is a conflict; no renaming scheme is applied.
	if existing, err := s.store.IdentityByUpiHandle(ctx, handle); err == nil {
		if existing.PhoneNumber == phone {
			// A failure between identity creation and account opening can
			// leave the identity without an account; heal it on login so
			// the user is not locked out of the ledger.
			if _, err := s.store.AccountByIdentity(ctx, existing.ID); errors.Is(err, models.ErrNotFound) {
				if err := s.openAccount(ctx, existing.ID); err != nil {
					return nil, err
				}
			} else if err != nil {
				return nil, err
			}
			return existing, nil
		}
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	identity := &models.Identity{
		ID:          utils.GenerateID("usr"),
		PhoneNumber: phone,
		UpiHandle:   handle,
		DisplayName: cmd.DisplayName,
		CreatedAt:   now,
	}
	if err := s.store.CreateIdentity(ctx, identity); err != nil {
		return nil, err
	}
	if err := s.openAccount(ctx, identity.ID); err != nil {
		return nil, err
	}

	s.identityCache.Set(ctx, "identity:phone:"+phone, &models.IdentityView{
		DisplayName: identity.DisplayName,
		PhoneNumber: identity.PhoneNumber,
		UpiHandle:   identity.UpiHandle,
	})
	if err := s.publisher.Publish(ctx, events.IdentityEventsStream, events.IdentityCreated, events.IdentityCreatedEvent{
		IdentityID:  identity.ID,
		PhoneNumber: identity.PhoneNumber,
		UpiHandle:   identity.UpiHandle,
		DisplayName: identity.DisplayName,
	}); err != nil {
		slog.Warn("failed to publish identity.created event", "error", err)
	}
	return identity, nil
}

// openAccount opens the identity's seeded account, drawing a fresh account
// number on each collision. The number space is small enough that
// collisions are expected, never fatal.
func (s *IdentityCommandService) openAccount(ctx context.Context, identityID string) error {
	now := time.Now().UTC()
	var lastErr error
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		err := s.store.OpenAccount(ctx, &models.Account{
			AccountNumber: utils.GenerateAccountNumber(),
			IdentityID:    identityID,
			Balance:       s.seedBalance,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
