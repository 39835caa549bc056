package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jefin10/VoiceUPI/internal/models"
)

// Store is the logical storage contract of the ledger. Implementations must
// honour the failure taxonomy in models (ErrNotFound, ErrConflict, ...) and
// the atomicity rules documented per method. A Store is opened at process
// start, injected into the services, and closed at shutdown; none of the
// implementations keep package-level state.
type Store interface {
	// CreateIdentity inserts a new identity. Fails with ErrConflict when the
	// phone number or UPI handle is already taken.
	CreateIdentity(ctx context.Context, identity *models.Identity) error

	// IdentityByPhone resolves a canonical phone number to its identity.
	IdentityByPhone(ctx context.Context, phone string) (*models.Identity, error)

	// IdentityByUpiHandle resolves a UPI handle to its identity.
	IdentityByUpiHandle(ctx context.Context, handle string) (*models.Identity, error)

	// OpenAccount creates the single account owned by an identity. Fails
	// with ErrConflict when the identity already has one.
	OpenAccount(ctx context.Context, account *models.Account) error

	// AccountByIdentity returns the account owned by the identity.
	AccountByIdentity(ctx context.Context, identityID string) (*models.Account, error)

	// AccountOwner returns the identity owning the given account.
	AccountOwner(ctx context.Context, accountNumber string) (*models.Identity, error)

	// Transfer atomically debits fromAccount, credits toAccount and appends
	// a completed transaction record; either all three are visible or none.
	// Both account locks are taken in ascending account-number order before
	// either balance is read. Returns the created transaction and the
	// sender's new balance. Fails with ErrInsufficientFunds (no mutation)
	// or ErrBusy (lock wait exceeded). Amount validation is the caller's.
	Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) (*models.Transaction, decimal.Decimal, error)

	// CreateMoneyRequest inserts a new pending money request.
	CreateMoneyRequest(ctx context.Context, request *models.MoneyRequest) error

	// MoneyRequestByID returns a single money request.
	MoneyRequestByID(ctx context.Context, id uuid.UUID) (*models.MoneyRequest, error)

	// TransitionMoneyRequest applies the single allowed transition out of
	// pending, enforcing actor authorization (requester cancels, requestee
	// approves/rejects). Approval executes the transfer inside the same
	// unit of work: a failed transfer leaves the request pending, and a
	// concurrent transition losing the race gets ErrAlreadyProcessed.
	// Returns the updated request and, on approval, the transaction.
	TransitionMoneyRequest(ctx context.Context, id uuid.UUID, actingAccount string, newStatus models.RequestStatus) (*models.MoneyRequest, *models.Transaction, error)

	// TransactionsFor returns the sent and received transactions of an
	// account, newest first, as a consistent snapshot.
	TransactionsFor(ctx context.Context, accountNumber string) (sent, received []models.Transaction, err error)

	// MoneyRequestsFor returns the sent and received money requests of an
	// account, newest first, as a consistent snapshot.
	MoneyRequestsFor(ctx context.Context, accountNumber string) (sent, received []models.MoneyRequest, err error)

	// Close releases the store's resources.
	Close() error
}
