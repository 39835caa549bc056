package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jefin10/VoiceUPI/internal/models"
)

// Store is the map-backed implementation of repository.Store. It is the
// default store in development and the fixture for tests.
//
// Locking discipline: mu guards the maps and is held for every read and for
// the brief apply step of a transfer, so readers always observe either the
// full debit+credit+record triple or none of it. Balance mutations are
// additionally serialised by per-account locks taken in ascending
// account-number order before either balance is read, which rules out both
// lost updates and lock-order deadlocks. Lock acquisition is bounded by
// lockWait; exceeding it fails with ErrBusy instead of blocking.
type Store struct {
	mu sync.RWMutex

	identities   map[string]*models.Identity // by identity ID
	phoneIndex   map[string]string           // phone -> identity ID
	upiIndex     map[string]string           // upi handle -> identity ID
	accounts     map[string]*models.Account  // by account number
	accountIndex map[string]string           // identity ID -> account number
	transactions []*models.Transaction
	requests     map[uuid.UUID]*models.MoneyRequest

	accountLocks map[string]*sync.Mutex
	requestLocks map[uuid.UUID]*sync.Mutex

	lockWait time.Duration
}

// NewStore creates an empty store. lockWait bounds how long a transfer
// waits for account locks before failing with ErrBusy.
func NewStore(lockWait time.Duration) *Store {
	return &Store{
		identities:   make(map[string]*models.Identity),
		phoneIndex:   make(map[string]string),
		upiIndex:     make(map[string]string),
		accounts:     make(map[string]*models.Account),
		accountIndex: make(map[string]string),
		requests:     make(map[uuid.UUID]*models.MoneyRequest),
		accountLocks: make(map[string]*sync.Mutex),
		requestLocks: make(map[uuid.UUID]*sync.Mutex),
		lockWait:     lockWait,
	}
}

func (s *Store) Close() error { return nil }

// ---------- identities ----------

func (s *Store) CreateIdentity(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.phoneIndex[identity.PhoneNumber]; taken {
		return models.ErrConflict
	}
	if _, taken := s.upiIndex[identity.UpiHandle]; taken {
		return models.ErrConflict
	}
	cp := *identity
	s.identities[cp.ID] = &cp
	s.phoneIndex[cp.PhoneNumber] = cp.ID
	s.upiIndex[cp.UpiHandle] = cp.ID
	return nil
}

func (s *Store) IdentityByPhone(_ context.Context, phone string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.phoneIndex[phone]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *s.identities[id]
	return &cp, nil
}

func (s *Store) IdentityByUpiHandle(_ context.Context, handle string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.upiIndex[handle]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *s.identities[id]
	return &cp, nil
}

// ---------- accounts ----------

func (s *Store) OpenAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accountIndex[account.IdentityID]; exists {
		return models.ErrConflict
	}
	if _, exists := s.accounts[account.AccountNumber]; exists {
		return models.ErrConflict
	}
	cp := *account
	s.accounts[cp.AccountNumber] = &cp
	s.accountIndex[cp.IdentityID] = cp.AccountNumber
	s.accountLocks[cp.AccountNumber] = &sync.Mutex{}
	return nil
}

func (s *Store) AccountByIdentity(_ context.Context, identityID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	number, ok := s.accountIndex[identityID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *s.accounts[number]
	return &cp, nil
}

func (s *Store) AccountOwner(_ context.Context, accountNumber string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, models.ErrNotFound
	}
	identity, ok := s.identities[account.IdentityID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *identity
	return &cp, nil
}

// ---------- transfer engine ----------

func (s *Store) Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) (*models.Transaction, decimal.Decimal, error) {
	unlock, err := s.lockAccounts(ctx, fromAccount, toAccount)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer unlock()

	s.mu.RLock()
	from, fromOK := s.accounts[fromAccount]
	to, toOK := s.accounts[toAccount]
	s.mu.RUnlock()
	if !fromOK || !toOK {
		return nil, decimal.Zero, models.ErrNotFound
	}

	// Safe to read without mu: balances only change under the account
	// locks held here.
	if from.Balance.LessThan(amount) {
		return nil, decimal.Zero, models.ErrInsufficientFunds
	}

	now := time.Now().UTC()
	txn := &models.Transaction{
		ID:              uuid.New(),
		SenderAccount:   fromAccount,
		ReceiverAccount: toAccount,
		Amount:          amount,
		Status:          models.TransactionCompleted,
		CreatedAt:       now,
	}

	// Apply step: debit, credit and record become visible together.
	s.mu.Lock()
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)
	from.UpdatedAt = now
	to.UpdatedAt = now
	s.transactions = append(s.transactions, txn)
	s.mu.Unlock()

	cp := *txn
	return &cp, from.Balance, nil
}

// lockAccounts takes both account locks in ascending account-number order,
// each within the bounded wait. On failure every acquired lock is released.
func (s *Store) lockAccounts(ctx context.Context, a, b string) (func(), error) {
	numbers := []string{a, b}
	sort.Strings(numbers)

	s.mu.RLock()
	locks := make([]*sync.Mutex, 0, 2)
	for _, n := range numbers {
		l, ok := s.accountLocks[n]
		if !ok {
			s.mu.RUnlock()
			return nil, models.ErrNotFound
		}
		locks = append(locks, l)
	}
	s.mu.RUnlock()

	deadline := time.Now().Add(s.lockWait)
	for i, l := range locks {
		if err := acquire(ctx, l, deadline); err != nil {
			for j := 0; j < i; j++ {
				locks[j].Unlock()
			}
			return nil, err
		}
	}
	return func() {
		for _, l := range locks {
			l.Unlock()
		}
	}, nil
}

// acquire polls TryLock until the deadline, then fails with ErrBusy so the
// caller never blocks indefinitely.
func acquire(ctx context.Context, l *sync.Mutex, deadline time.Time) error {
	for {
		if l.TryLock() {
			return nil
		}
		if time.Now().After(deadline) {
			return models.ErrBusy
		}
		select {
		case <-ctx.Done():
			return models.ErrBusy
		case <-time.After(time.Millisecond):
		}
	}
}

// ---------- money requests ----------

func (s *Store) CreateMoneyRequest(_ context.Context, request *models.MoneyRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *request
	s.requests[cp.ID] = &cp
	s.requestLocks[cp.ID] = &sync.Mutex{}
	return nil
}

func (s *Store) MoneyRequestByID(_ context.Context, id uuid.UUID) (*models.MoneyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *request
	return &cp, nil
}

func (s *Store) TransitionMoneyRequest(ctx context.Context, id uuid.UUID, actingAccount string, newStatus models.RequestStatus) (*models.MoneyRequest, *models.Transaction, error) {
	s.mu.RLock()
	request, ok := s.requests[id]
	lock := s.requestLocks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, models.ErrNotFound
	}

	// The request lock makes claim, transfer and commit one unit: a
	// concurrent transition waits here and then fails the pending check.
	deadline := time.Now().Add(s.lockWait)
	if err := acquire(ctx, lock, deadline); err != nil {
		return nil, nil, err
	}
	defer lock.Unlock()

	if request.Status != models.RequestPending {
		return nil, nil, models.ErrAlreadyProcessed
	}
	if err := authorizeTransition(request, actingAccount, newStatus); err != nil {
		return nil, nil, err
	}

	var txn *models.Transaction
	if newStatus == models.RequestApproved {
		// Funds move before the status commits; on failure the request
		// stays pending and the error is surfaced.
		created, _, err := s.Transfer(ctx, request.RequesteeAccount, request.RequesterAccount, request.Amount)
		if err != nil {
			return nil, nil, err
		}
		txn = created
	}

	s.mu.Lock()
	request.Status = newStatus
	request.UpdatedAt = time.Now().UTC()
	cp := *request
	s.mu.Unlock()
	return &cp, txn, nil
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

func (s *Store) TransactionsFor(_ context.Context, accountNumber string) (sent, received []models.Transaction, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[accountNumber]; !ok {
		return nil, nil, models.ErrNotFound
	}
	for _, txn := range s.transactions {
		if txn.SenderAccount == accountNumber {
			sent = append(sent, *txn)
		}
		if txn.ReceiverAccount == accountNumber {
			received = append(received, *txn)
		}
	}
	sortTransactionsDesc(sent)
	sortTransactionsDesc(received)
	return sent, received, nil
}

func (s *Store) MoneyRequestsFor(_ context.Context, accountNumber string) (sent, received []models.MoneyRequest, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[accountNumber]; !ok {
		return nil, nil, models.ErrNotFound
	}
	for _, request := range s.requests {
		if request.RequesterAccount == accountNumber {
			sent = append(sent, *request)
		}
		if request.RequesteeAccount == accountNumber {
			received = append(received, *request)
		}
	}
	sort.Slice(sent, func(i, j int) bool { return sent[i].CreatedAt.After(sent[j].CreatedAt) })
	sort.Slice(received, func(i, j int) bool { return received[i].CreatedAt.After(received[j].CreatedAt) })
	return sent, received, nil
}

func sortTransactionsDesc(txns []models.Transaction) {
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreatedAt.After(txns[j].CreatedAt) })
}
