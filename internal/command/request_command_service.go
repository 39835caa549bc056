package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/events"
	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/repository"
)

// RequestCommandService drives the money-request lifecycle: create in
// pending, then exactly one transition out of it. Approval pays through
// the transfer engine inside the store's unit of work.
type RequestCommandService struct {
	store        repository.Store
	balanceCache BalanceCache
	publisher    Publisher
}

func NewRequestCommandService(
	store repository.Store,
	balanceCache BalanceCache,
	publisher Publisher,
) *RequestCommandService {
	return &RequestCommandService{
		store:        store,
		balanceCache: balanceCache,
		publisher:    publisher,
	}
}

func (s *RequestCommandService) CreateRequest(cmd cqrs.CreateMoneyRequestCommand) (*models.MoneyRequest, error) {
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}
	ctx := context.Background()

	requester, requesterAccount, err := resolveParty(ctx, s.store, cmd.RequesterPhone)
	if err != nil {
		return nil, err
	}
	requestee, requesteeAccount, err := resolveParty(ctx, s.store, cmd.Requestee)
	if err != nil {
		return nil, err
	}
	if requesterAccount.AccountNumber == requesteeAccount.AccountNumber {
		return nil, models.ErrInvalidOperation
	}

	now := time.Now().UTC()
	request := &models.MoneyRequest{
		ID:               uuid.New(),
		RequesterAccount: requesterAccount.AccountNumber,
		RequesteeAccount: requesteeAccount.AccountNumber,
		Amount:           cmd.Amount,
		Message:          cmd.Message,
		Status:           models.RequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateMoneyRequest(ctx, request); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.RequestEventsStream, events.RequestCreated, events.RequestCreatedEvent{
		RequestID:      request.ID.String(),
		RequesterPhone: requester.PhoneNumber,
		RequesteePhone: requestee.PhoneNumber,
		RequesterName:  requester.DisplayName,
		Amount:         request.Amount,
		Message:        request.Message,
	}); err != nil {
		slog.Warn("failed to publish request.created event", "error", err)
	}
	return request, nil
}

func (s *RequestCommandService) UpdateStatus(cmd cqrs.UpdateRequestStatusCommand) (*models.MoneyRequest, error) {
	newStatus := models.RequestStatus(cmd.NewStatus)
	if !newStatus.Terminal() {
		return nil, fmt.Errorf("%w: cannot transition to %q", models.ErrInvalidOperation, cmd.NewStatus)
	}
	requestID, err := uuid.Parse(cmd.RequestID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed request id", models.ErrInvalidOperation)
	}
	ctx := context.Background()

	actor, actorAccount, err := resolveParty(ctx, s.store, cmd.ActingPhone)
	if err != nil {
		return nil, err
	}

	request, txn, err := s.store.TransitionMoneyRequest(ctx, requestID, actorAccount.AccountNumber, newStatus)
	if err != nil {
		return nil, err
	}

	requester, err := s.store.AccountOwner(ctx, request.RequesterAccount)
	if err != nil {
		slog.Warn("failed to resolve requester for notification", "error", err)
		requester = &models.Identity{}
	}

	if txn != nil {
		// Funds moved: both cached balances are stale.
		s.balanceCache.Delete(ctx, "balance:"+requester.PhoneNumber)
		s.balanceCache.Delete(ctx, "balance:"+actor.PhoneNumber)
		if err := s.publisher.Publish(ctx, events.TransferEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
			TransactionID:   txn.ID.String(),
			SenderAccount:   txn.SenderAccount,
			ReceiverAccount: txn.ReceiverAccount,
			Amount:          txn.Amount,
		}); err != nil {
			slog.Warn("failed to publish transfer.completed event", "error", err)
		}
	}

	if err := s.publisher.Publish(ctx, events.RequestEventsStream, events.RequestUpdated, events.RequestUpdatedEvent{
		RequestID:      request.ID.String(),
		RequesterPhone: requester.PhoneNumber,
		RequesteeName:  actor.DisplayName,
		Amount:         request.Amount,
		NewStatus:      string(request.Status),
	}); err != nil {
		slog.Warn("failed to publish request.updated event", "error", err)
	}
	return request, nil
}
