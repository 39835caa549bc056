package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/repository/memory"
)

type stubCache[T any] struct {
	data map[string]*T
}

func newStubCache[T any]() *stubCache[T] {
	return &stubCache[T]{data: make(map[string]*T)}
}

func (c *stubCache[T]) Get(_ context.Context, key string) (*T, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *stubCache[T]) Set(_ context.Context, key string, value *T) {
	c.data[key] = value
}

type queryFixture struct {
	store      *memory.Store
	balances   *stubCache[models.BalanceView]
	identities *stubCache[models.IdentityView]
	svc        *LedgerQueryService
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	f := &queryFixture{
		store:      memory.NewStore(time.Second),
		balances:   newStubCache[models.BalanceView](),
		identities: newStubCache[models.IdentityView](),
	}
	f.svc = NewLedgerQueryService(f.store, f.balances, f.identities)
	return f
}

func (f *queryFixture) seed(t *testing.T, id, name, phone, handle, accountNumber, balance string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.store.CreateIdentity(context.Background(), &models.Identity{
		ID: id, PhoneNumber: phone, UpiHandle: handle, DisplayName: name, CreatedAt: now,
	}))
	require.NoError(t, f.store.OpenAccount(context.Background(), &models.Account{
		AccountNumber: accountNumber,
		IdentityID:    id,
		Balance:       decimal.RequireFromString(balance),
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func TestResolveByPhonePopulatesCache(t *testing.T) {
	f := newQueryFixture(t)
	f.seed(t, "usr-alice", "Alice Kumar", "+919900000001", "alicekumar@upi", "01000001", "100.00")

	view, err := f.svc.Resolve(cqrs.ResolveIdentityQuery{PhoneNumber: "99000 00001"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Kumar", view.DisplayName)
	assert.Equal(t, "alicekumar@upi", view.UpiHandle)

	_, ok := f.identities.data["identity:phone:+919900000001"]
	assert.True(t, ok)
}

func TestResolveByHandleIsCaseInsensitive(t *testing.T) {
	f := newQueryFixture(t)
	f.seed(t, "usr-alice", "Alice Kumar", "+919900000001", "alicekumar@upi", "01000001", "100.00")

	view, err := f.svc.Resolve(cqrs.ResolveIdentityQuery{UpiHandle: " AliceKumar@UPI "})
	require.NoError(t, err)
	assert.Equal(t, "+919900000001", view.PhoneNumber)
}

func TestResolveServedFromCache(t *testing.T) {
	f := newQueryFixture(t)
	f.identities.data["identity:upi:ghost@upi"] = &models.IdentityView{DisplayName: "Ghost"}

	view, err := f.svc.Resolve(cqrs.ResolveIdentityQuery{UpiHandle: "ghost@upi"})
	require.NoError(t, err)
	assert.Equal(t, "Ghost", view.DisplayName)
}

func TestResolveRequiresAKey(t *testing.T) {
	f := newQueryFixture(t)
	_, err := f.svc.Resolve(cqrs.ResolveIdentityQuery{})
	assert.ErrorIs(t, err, models.ErrInvalidOperation)
}

func TestResolveUnknown(t *testing.T) {
	f := newQueryFixture(t)
	_, err := f.svc.Resolve(cqrs.ResolveIdentityQuery{UpiHandle: "nobody@upi"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetBalanceReadsThroughAndCaches(t *testing.T) {
	f := newQueryFixture(t)
	f.seed(t, "usr-alice", "Alice Kumar", "+919900000001", "alicekumar@upi", "01000001", "1234.00")

	view, err := f.svc.GetBalance(cqrs.GetBalanceQuery{PhoneNumber: "+919900000001"})
	require.NoError(t, err)
	assert.Equal(t, "01000001", view.AccountNumber)
	assert.True(t, view.Balance.Equal(decimal.RequireFromString("1234.00")))

	cached, ok := f.balances.data["balance:+919900000001"]
	require.True(t, ok)
	assert.True(t, cached.Balance.Equal(decimal.RequireFromString("1234.00")))
}

func TestGetBalancePrefersCachedView(t *testing.T) {
	f := newQueryFixture(t)
	f.seed(t, "usr-alice", "Alice Kumar", "+919900000001", "alicekumar@upi", "01000001", "1234.00")
	f.balances.data["balance:+919900000001"] = &models.BalanceView{
		AccountNumber: "01000001",
		Balance:       decimal.RequireFromString("999.00"),
	}

	view, err := f.svc.GetBalance(cqrs.GetBalanceQuery{PhoneNumber: "+919900000001"})
	require.NoError(t, err)
	assert.True(t, view.Balance.Equal(decimal.RequireFromString("999.00")))
}

func TestGetBalanceUnknownCaller(t *testing.T) {
	f := newQueryFixture(t)
	_, err := f.svc.GetBalance(cqrs.GetBalanceQuery{PhoneNumber: "+919999999999"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListTransactionsNamesCounterparties(t *testing.T) {
	f := newQueryFixture(t)
	f.seed(t, "usr-alice", "Alice Kumar", "+919900000001", "alicekumar@upi", "01000001", "100.00")
	f.seed(t, "usr-bob", "Bob Singh", "+919900000002", "bobsingh@upi", "01000002", "100.00")

	_, _, err := f.store.Transfer(context.Background(), "01000001", "01000002", decimal.RequireFromString("25.00"))
	require.NoError(t, err)
	_, _, err = f.store.Transfer(context.Background(), "01000002", "01000001", decimal.RequireFromString("10.00"))
	require.NoError(t, err)

	history, err := f.svc.ListTransactions(cqrs.ListTransactionsQuery{PhoneNumber: "+919900000001"})
	require.NoError(t, err)
	require.Len(t, history.Sent, 1)
	require.Len(t, history.Received, 1)
	assert.Equal(t, "Bob Singh", history.Sent[0].Counterparty)
	assert.Equal(t, "sent", history.Sent[0].Direction)
	assert.Equal(t, "Bob Singh", history.Received[0].Counterparty)
	assert.Equal(t, "received", history.Received[0].Direction)
}

func TestListMoneyRequestsNamesCounterparties(t *testing.T) {
	f := newQueryFixture(t)
	f.seed(t, "usr-alice", "Alice Kumar", "+919900000001", "alicekumar@upi", "01000001", "100.00")
	f.seed(t, "usr-bob", "Bob Singh", "+919900000002", "bobsingh@upi", "01000002", "100.00")

	now := time.Now().UTC()
	require.NoError(t, f.store.CreateMoneyRequest(context.Background(), &models.MoneyRequest{
		ID:               uuid.New(),
		RequesterAccount: "01000001",
		RequesteeAccount: "01000002",
		Amount:           decimal.RequireFromString("40.00"),
		Status:           models.RequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}))

	history, err := f.svc.ListMoneyRequests(cqrs.ListMoneyRequestsQuery{PhoneNumber: "+919900000001"})
	require.NoError(t, err)
	require.Len(t, history.Sent, 1)
	assert.Empty(t, history.Received)
	assert.Equal(t, "Bob Singh", history.Sent[0].Counterparty)
	assert.Equal(t, "+919900000002", history.Sent[0].CounterpartyPhone)
	assert.Equal(t, "pending", history.Sent[0].Status)

	history, err = f.svc.ListMoneyRequests(cqrs.ListMoneyRequestsQuery{PhoneNumber: "+919900000002"})
	require.NoError(t, err)
	assert.Empty(t, history.Sent)
	require.Len(t, history.Received, 1)
	assert.Equal(t, "Alice Kumar", history.Received[0].Counterparty)
}
