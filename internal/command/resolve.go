package command

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/repository"
	"github.com/jefin10/VoiceUPI/internal/utils"
)

// resolveParty resolves a phone number or UPI handle to the identity and
// the account it owns. References containing "@" are treated as handles,
// anything else as a phone number.
func resolveParty(ctx context.Context, store repository.Store, ref string) (*models.Identity, *models.Account, error) {
	var identity *models.Identity
	var err error
	if utils.IsUpiHandle(ref) {
		identity, err = store.IdentityByUpiHandle(ctx, strings.ToLower(strings.TrimSpace(ref)))
	} else {
		identity, err = store.IdentityByPhone(ctx, utils.CanonicalPhone(ref))
	}
	if err != nil {
		return nil, nil, err
	}
	account, err := store.AccountByIdentity(ctx, identity.ID)
	if err != nil {
		return nil, nil, err
	}
	return identity, account, nil
}

// validateAmount enforces the amount contract: strictly positive and
// representable at two decimal places. Trailing zeros beyond two places
// (1.500) are fine; real sub-paisa precision (1.505) is not.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return models.ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return models.ErrInvalidAmount
	}
	return nil
}
