package command

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/repository"
	"github.com/jefin10/VoiceUPI/internal/repository/memory"
)

// flakyStore wraps a store and fails OpenAccount a configured number of
// times before delegating.
type flakyStore struct {
	repository.Store
	openFailures int
	openErr      error
}

func (s *flakyStore) OpenAccount(ctx context.Context, account *models.Account) error {
	if s.openFailures > 0 {
		s.openFailures--
		return s.openErr
	}
	return s.Store.OpenAccount(ctx, account)
}

type stubBalanceCache struct {
	sets    map[string]*models.BalanceView
	deletes []string
}

func newStubBalanceCache() *stubBalanceCache {
	return &stubBalanceCache{sets: make(map[string]*models.BalanceView)}
}

func (c *stubBalanceCache) Set(_ context.Context, key string, value *models.BalanceView) {
	c.sets[key] = value
}

func (c *stubBalanceCache) Delete(_ context.Context, key string) {
	c.deletes = append(c.deletes, key)
}

type stubIdentityCache struct {
	sets map[string]*models.IdentityView
}

func newStubIdentityCache() *stubIdentityCache {
	return &stubIdentityCache{sets: make(map[string]*models.IdentityView)}
}

func (c *stubIdentityCache) Set(_ context.Context, key string, value *models.IdentityView) {
	c.sets[key] = value
}

type publishedEvent struct {
	stream    string
	eventType string
	data      any
}

type stubPublisher struct {
	events []publishedEvent
}

func (p *stubPublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	p.events = append(p.events, publishedEvent{stream: stream, eventType: eventType, data: data})
	return nil
}

func (p *stubPublisher) byType(eventType string) []publishedEvent {
	var out []publishedEvent
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fixture wires the command services against the in-memory store with
// recording fakes for the cache and the event stream.
type fixture struct {
	store      *memory.Store
	balances   *stubBalanceCache
	identities *stubIdentityCache
	publisher  *stubPublisher

	identitySvc *IdentityCommandService
	transferSvc *TransferCommandService
	requestSvc  *RequestCommandService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(time.Second),
		balances:   newStubBalanceCache(),
		identities: newStubIdentityCache(),
		publisher:  &stubPublisher{},
	}
	f.identitySvc = NewIdentityCommandService(f.store, f.identities, f.publisher, decimal.RequireFromString("5000.00"))
	f.transferSvc = NewTransferCommandService(f.store, f.balances, f.publisher)
	f.requestSvc = NewRequestCommandService(f.store, f.balances, f.publisher)
	return f
}

func (f *fixture) signUp(t *testing.T, name, phone string) *models.Identity {
	t.Helper()
	identity, err := f.identitySvc.SignUp(cqrs.SignUpCommand{DisplayName: name, PhoneNumber: phone})
	require.NoError(t, err)
	return identity
}
