package query

import (
	"context"
	"strings"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/repository"
	"github.com/jefin10/VoiceUPI/internal/utils"
)

// LedgerQueryService is the read side: balances, directory lookups and
// history listings. Reads may serve a slightly stale cached view but never
// a partially-applied one; the stores only expose consistent snapshots.
type LedgerQueryService struct {
	store         repository.Store
	balanceCache  ViewCache[models.BalanceView]
	identityCache ViewCache[models.IdentityView]
}

func NewLedgerQueryService(
	store repository.Store,
	balanceCache ViewCache[models.BalanceView],
	identityCache ViewCache[models.IdentityView],
) *LedgerQueryService {
	return &LedgerQueryService{
		store:         store,
		balanceCache:  balanceCache,
		identityCache: identityCache,
	}
}

func (s *LedgerQueryService) Resolve(q cqrs.ResolveIdentityQuery) (*models.IdentityView, error) {
	ctx := context.Background()

	var key string
	var lookup func() (*models.Identity, error)
	switch {
	case q.PhoneNumber != "":
		phone := utils.CanonicalPhone(q.PhoneNumber)
		key = "identity:phone:" + phone
		lookup = func() (*models.Identity, error) { return s.store.IdentityByPhone(ctx, phone) }
	case q.UpiHandle != "":
		handle := strings.ToLower(strings.TrimSpace(q.UpiHandle))
		key = "identity:upi:" + handle
		lookup = func() (*models.Identity, error) { return s.store.IdentityByUpiHandle(ctx, handle) }
	default:
		return nil, models.ErrInvalidOperation
	}

	if view, ok := s.identityCache.Get(ctx, key); ok {
		return view, nil
	}
	identity, err := lookup()
	if err != nil {
		return nil, err
	}
	view := &models.IdentityView{
		DisplayName: identity.DisplayName,
		PhoneNumber: identity.PhoneNumber,
		UpiHandle:   identity.UpiHandle,
	}
	s.identityCache.Set(ctx, key, view)
	return view, nil
}

func (s *LedgerQueryService) GetBalance(q cqrs.GetBalanceQuery) (*models.BalanceView, error) {
	ctx := context.Background()
	phone := utils.CanonicalPhone(q.PhoneNumber)

	if view, ok := s.balanceCache.Get(ctx, "balance:"+phone); ok {
		return view, nil
	}

	identity, err := s.store.IdentityByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	account, err := s.store.AccountByIdentity(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	view := &models.BalanceView{
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance,
		UpdatedAt:     account.UpdatedAt,
	}
	s.balanceCache.Set(ctx, "balance:"+phone, view)
	return view, nil
}

func (s *LedgerQueryService) ListTransactions(q cqrs.ListTransactionsQuery) (*models.TransactionHistory, error) {
	ctx := context.Background()
	account, err := s.accountForPhone(ctx, q.PhoneNumber)
	if err != nil {
		return nil, err
	}

	sent, received, err := s.store.TransactionsFor(ctx, account.AccountNumber)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	history := &models.TransactionHistory{
		Sent:     make([]models.TransactionView, 0, len(sent)),
		Received: make([]models.TransactionView, 0, len(received)),
	}
	for _, txn := range sent {
		history.Sent = append(history.Sent, models.TransactionView{
			ID:           txn.ID.String(),
			Counterparty: s.ownerName(ctx, names, txn.ReceiverAccount),
			Amount:       txn.Amount,
			Status:       string(txn.Status),
			Direction:    "sent",
			CreatedAt:    txn.CreatedAt,
		})
	}
	for _, txn := range received {
		history.Received = append(history.Received, models.TransactionView{
			ID:           txn.ID.String(),
			Counterparty: s.ownerName(ctx, names, txn.SenderAccount),
			Amount:       txn.Amount,
			Status:       string(txn.Status),
			Direction:    "received",
			CreatedAt:    txn.CreatedAt,
		})
	}
	return history, nil
}

func (s *LedgerQueryService) ListMoneyRequests(q cqrs.ListMoneyRequestsQuery) (*models.MoneyRequestHistory, error) {
	ctx := context.Background()
	account, err := s.accountForPhone(ctx, q.PhoneNumber)
	if err != nil {
		return nil, err
	}

	sent, received, err := s.store.MoneyRequestsFor(ctx, account.AccountNumber)
	if err != nil {
		return nil, err
	}

	history := &models.MoneyRequestHistory{
		Sent:     make([]models.MoneyRequestView, 0, len(sent)),
		Received: make([]models.MoneyRequestView, 0, len(received)),
	}
	for _, request := range sent {
		history.Sent = append(history.Sent, s.requestView(ctx, request, request.RequesteeAccount, "sent"))
	}
	for _, request := range received {
		history.Received = append(history.Received, s.requestView(ctx, request, request.RequesterAccount, "received"))
	}
	return history, nil
}

func (s *LedgerQueryService) requestView(ctx context.Context, request models.MoneyRequest, counterpartyAccount, direction string) models.MoneyRequestView {
	view := models.MoneyRequestView{
		ID:        request.ID.String(),
		Amount:    request.Amount,
		Message:   request.Message,
		Status:    string(request.Status),
		Direction: direction,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
	if owner, err := s.store.AccountOwner(ctx, counterpartyAccount); err == nil {
		view.Counterparty = owner.DisplayName
		view.CounterpartyPhone = owner.PhoneNumber
	}
	return view
}

func (s *LedgerQueryService) accountForPhone(ctx context.Context, phone string) (*models.Account, error) {
	identity, err := s.store.IdentityByPhone(ctx, utils.CanonicalPhone(phone))
	if err != nil {
		return nil, err
	}
	return s.store.AccountByIdentity(ctx, identity.ID)
}

// ownerName memoises AccountOwner lookups across one listing.
func (s *LedgerQueryService) ownerName(ctx context.Context, cache map[string]string, accountNumber string) string {
	if name, ok := cache[accountNumber]; ok {
		return name
	}
	owner, err := s.store.AccountOwner(ctx, accountNumber)
	if err != nil {
		return ""
	}
	cache[accountNumber] = owner.DisplayName
	return owner.DisplayName
}
