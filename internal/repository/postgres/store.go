package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/jefin10/VoiceUPI/internal/models"
)

// pq error codes mapped to the failure taxonomy.
const (
	pqUniqueViolation   = "23505"
	pqCheckViolation    = "23514"
	pqLockNotAvailable  = "55P03"
	pqSerializationFail = "40001"
)

// Store is the PostgreSQL implementation of repository.Store.
//
// Transfers run in a single SQL transaction: both account rows are locked
// with SELECT ... FOR UPDATE in ascending account-number order (never in
// caller order, so opposite-direction transfers cannot deadlock), the
// balance check and both updates happen under those locks, and the
// transaction record commits with them or not at all. `SET LOCAL
// lock_timeout` bounds the lock wait; pq's lock_not_available becomes
// ErrBusy.
type Store struct {
	db       *sql.DB
	lockWait time.Duration
}

// Open connects to Postgres and verifies the connection.
func Open(databaseURL string, lockWait time.Duration) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db, lockWait: lockWait}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// translate maps driver errors onto the ledger taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return models.ErrConflict
		case pqCheckViolation:
			return models.ErrInsufficientFunds
		case pqLockNotAvailable, pqSerializationFail:
			return models.ErrBusy
		}
	}
	return fmt.Errorf("%w: %v", models.ErrInternal, err)
}

// ---------- identities ----------

func (s *Store) CreateIdentity(ctx context.Context, identity *models.Identity) error {
	query := `
		INSERT INTO identities (id, phone_number, upi_handle, display_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		identity.ID, identity.PhoneNumber, identity.UpiHandle,
		identity.DisplayName, identity.CreatedAt,
	)
	return translate(err)
}

func (s *Store) IdentityByPhone(ctx context.Context, phone string) (*models.Identity, error) {
	return s.identityBy(ctx, "phone_number", phone)
}

func (s *Store) IdentityByUpiHandle(ctx context.Context, handle string) (*models.Identity, error) {
	return s.identityBy(ctx, "upi_handle", handle)
}

func (s *Store) identityBy(ctx context.Context, column, value string) (*models.Identity, error) {
	query := fmt.Sprintf(`
		SELECT id, phone_number, upi_handle, display_name, created_at
		FROM identities WHERE %s = $1
	`, column)
	var identity models.Identity
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&identity.ID, &identity.PhoneNumber, &identity.UpiHandle,
		&identity.DisplayName, &identity.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &identity, nil
}

// ---------- accounts ----------

func (s *Store) OpenAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (account_number, identity_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.AccountNumber, account.IdentityID, account.Balance,
		account.CreatedAt, account.UpdatedAt,
	)
	return translate(err)
}

func (s *Store) AccountByIdentity(ctx context.Context, identityID string) (*models.Account, error) {
	query := `
		SELECT account_number, identity_id, balance, created_at, updated_at
		FROM accounts WHERE identity_id = $1
	`
	var account models.Account
	err := s.db.QueryRowContext(ctx, query, identityID).Scan(
		&account.AccountNumber, &account.IdentityID, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *Store) AccountOwner(ctx context.Context, accountNumber string) (*models.Identity, error) {
	query := `
		SELECT i.id, i.phone_number, i.upi_handle, i.display_name, i.created_at
		FROM identities i
		JOIN accounts a ON a.identity_id = i.id
		WHERE a.account_number = $1
	`
	var identity models.Identity
	err := s.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&identity.ID, &identity.PhoneNumber, &identity.UpiHandle,
		&identity.DisplayName, &identity.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &identity, nil
}

// ---------- transfer engine ----------

func (s *Store) Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) (*models.Transaction, decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, translate(err)
	}
	defer tx.Rollback()

	txn, newBalance, err := s.transferInTx(ctx, tx, fromAccount, toAccount, amount)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, translate(err)
	}
	return txn, newBalance, nil
}

// transferInTx performs the locked debit/credit/record triple inside tx so
// request approval can reuse it in its own transaction.
func (s *Store) transferInTx(ctx context.Context, tx *sql.Tx, fromAccount, toAccount string, amount decimal.Decimal) (*models.Transaction, decimal.Decimal, error) {
	if err := s.setLockTimeout(ctx, tx); err != nil {
		return nil, decimal.Zero, err
	}

	// Lock both rows in ascending account-number order.
	first, second := fromAccount, toAccount
	if second < first {
		first, second = second, first
	}
	balances := make(map[string]decimal.Decimal, 2)
	for _, number := range []string{first, second} {
		var balance decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM accounts WHERE account_number = $1 FOR UPDATE`,
			number,
		).Scan(&balance)
		if err != nil {
			return nil, decimal.Zero, translate(err)
		}
		balances[number] = balance
	}

	if balances[fromAccount].LessThan(amount) {
		return nil, decimal.Zero, models.ErrInsufficientFunds
	}

	now := time.Now().UTC()
	debit := `UPDATE accounts SET balance = balance - $1, updated_at = $2 WHERE account_number = $3`
	if _, err := tx.ExecContext(ctx, debit, amount, now, fromAccount); err != nil {
		return nil, decimal.Zero, translate(err)
	}
	credit := `UPDATE accounts SET balance = balance + $1, updated_at = $2 WHERE account_number = $3`
	if _, err := tx.ExecContext(ctx, credit, amount, now, toAccount); err != nil {
		return nil, decimal.Zero, translate(err)
	}

	txn := &models.Transaction{
		ID:              uuid.New(),
		SenderAccount:   fromAccount,
		ReceiverAccount: toAccount,
		Amount:          amount,
		Status:          models.TransactionCompleted,
		CreatedAt:       now,
	}
	record := `
		INSERT INTO transactions (id, sender_account, receiver_account, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, record,
		txn.ID, txn.SenderAccount, txn.ReceiverAccount, txn.Amount, txn.Status, txn.CreatedAt,
	); err != nil {
		return nil, decimal.Zero, translate(err)
	}
	return txn, balances[fromAccount].Sub(amount), nil
}

func (s *Store) setLockTimeout(ctx context.Context, tx *sql.Tx) error {
	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockWait.Milliseconds())
	if _, err := tx.ExecContext(ctx, timeout); err != nil {
		return translate(err)
	}
	return nil
}

// ---------- money requests ----------

func (s *Store) CreateMoneyRequest(ctx context.Context, request *models.MoneyRequest) error {
	query := `
		INSERT INTO money_requests (id, requester_account, requestee_account, amount, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		request.ID, request.RequesterAccount, request.RequesteeAccount,
		request.Amount, request.Message, request.Status,
		request.CreatedAt, request.UpdatedAt,
	)
	return translate(err)
}

func (s *Store) MoneyRequestByID(ctx context.Context, id uuid.UUID) (*models.MoneyRequest, error) {
	query := `
		SELECT id, requester_account, requestee_account, amount, message, status, created_at, updated_at
		FROM money_requests WHERE id = $1
	`
	var request models.MoneyRequest
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID, &request.RequesterAccount, &request.RequesteeAccount,
		&request.Amount, &request.Message, &request.Status,
		&request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (s *Store) TransitionMoneyRequest(ctx context.Context, id uuid.UUID, actingAccount string, newStatus models.RequestStatus) (*models.MoneyRequest, *models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, translate(err)
	}
	defer tx.Rollback()

	if err := s.setLockTimeout(ctx, tx); err != nil {
		return nil, nil, err
	}

	var request models.MoneyRequest
	err = tx.QueryRowContext(ctx, `
		SELECT id, requester_account, requestee_account, amount, message, status, created_at, updated_at
		FROM money_requests WHERE id = $1 FOR UPDATE
	`, id).Scan(
		&request.ID, &request.RequesterAccount, &request.RequesteeAccount,
		&request.Amount, &request.Message, &request.Status,
		&request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		return nil, nil, translate(err)
	}

	if request.Status != models.RequestPending {
		return nil, nil, models.ErrAlreadyProcessed
	}
	if err := authorizeTransition(&request, actingAccount, newStatus); err != nil {
		return nil, nil, err
	}

	var txn *models.Transaction
	if newStatus == models.RequestApproved {
		// Funds move in the same transaction that commits the status: a
		// failed transfer rolls everything back and the request stays
		// pending.
		txn, _, err = s.transferInTx(ctx, tx, request.RequesteeAccount, request.RequesterAccount, request.Amount)
		if err != nil {
			return nil, nil, err
		}
	}

	now := time.Now().UTC()
	// Conditional write keeps the transition optimistic even though the
	// row lock already serialises writers.
	result, err := tx.ExecContext(ctx, `
		UPDATE money_requests SET status = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'
	`, newStatus, now, id)
	if err != nil {
		return nil, nil, translate(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, nil, translate(err)
	}
	if rows == 0 {
		return nil, nil, models.ErrAlreadyProcessed
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, translate(err)
	}

	request.Status = newStatus
	request.UpdatedAt = now
	return &request, txn, nil
}

func authorizeTransition(request *models.MoneyRequest, actingAccount string, newStatus models.RequestStatus) error {
	switch newStatus {
	case models.RequestCancelled:
		if actingAccount != request.RequesterAccount {
			return models.ErrUnauthorized
		}
	case models.RequestApproved, models.RequestRejected:
		if actingAccount != request.RequesteeAccount {
			return models.ErrUnauthorized
		}
	default:
		return models.ErrInvalidOperation
	}
	return nil
}

// ---------- queries ----------

func (s *Store) TransactionsFor(ctx context.Context, accountNumber string) (sent, received []models.Transaction, err error) {
	if _, err := s.AccountOwner(ctx, accountNumber); err != nil {
		return nil, nil, err
	}
	sent, err = s.transactionsBy(ctx, "sender_account", accountNumber)
	if err != nil {
		return nil, nil, err
	}
	received, err = s.transactionsBy(ctx, "receiver_account", accountNumber)
	if err != nil {
		return nil, nil, err
	}
	return sent, received, nil
}

func (s *Store) transactionsBy(ctx context.Context, column, accountNumber string) ([]models.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT id, sender_account, receiver_account, amount, status, created_at
		FROM transactions
		WHERE %s = $1
		ORDER BY created_at DESC
	`, column)
	rows, err := s.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.SenderAccount, &txn.ReceiverAccount,
			&txn.Amount, &txn.Status, &txn.CreatedAt,
		); err != nil {
			return nil, translate(err)
		}
		txns = append(txns, txn)
	}
	return txns, translate(rows.Err())
}

func (s *Store) MoneyRequestsFor(ctx context.Context, accountNumber string) (sent, received []models.MoneyRequest, err error) {
	if _, err := s.AccountOwner(ctx, accountNumber); err != nil {
		return nil, nil, err
	}
	sent, err = s.requestsBy(ctx, "requester_account", accountNumber)
	if err != nil {
		return nil, nil, err
	}
	received, err = s.requestsBy(ctx, "requestee_account", accountNumber)
	if err != nil {
		return nil, nil, err
	}
	return sent, received, nil
}

func (s *Store) requestsBy(ctx context.Context, column, accountNumber string) ([]models.MoneyRequest, error) {
	query := fmt.Sprintf(`
		SELECT id, requester_account, requestee_account, amount, message, status, created_at, updated_at
		FROM money_requests
		WHERE %s = $1
		ORDER BY created_at DESC
	`, column)
	rows, err := s.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var requests []models.MoneyRequest
	for rows.Next() {
		var request models.MoneyRequest
		if err := rows.Scan(
			&request.ID, &request.RequesterAccount, &request.RequesteeAccount,
			&request.Amount, &request.Message, &request.Status,
			&request.CreatedAt, &request.UpdatedAt,
		); err != nil {
			return nil, translate(err)
		}
		requests = append(requests, request)
	}
	return requests, translate(rows.Err())
}
