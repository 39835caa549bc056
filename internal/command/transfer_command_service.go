package command

import (
	"context"
	"log/slog"

	"github.com/jefin10/VoiceUPI/internal/cqrs"
	"github.com/jefin10/VoiceUPI/internal/events"
	"github.com/jefin10/VoiceUPI/internal/models"
	"github.com/jefin10/VoiceUPI/internal/repository"
)

// TransferCommandService is the write side of the transfer engine. It
// validates the command, resolves both parties and delegates the atomic
// debit/credit/record to the store, then refreshes the read model.
type TransferCommandService struct {
	store        repository.Store
	balanceCache BalanceCache
	publisher    Publisher
}

func NewTransferCommandService(
	store repository.Store,
	balanceCache BalanceCache,
	publisher Publisher,
) *TransferCommandService {
	return &TransferCommandService{
		store:        store,
		balanceCache: balanceCache,
		publisher:    publisher,
	}
}

func (s *TransferCommandService) Transfer(cmd cqrs.TransferCommand) (*models.TransferReceipt, error) {
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}
	ctx := context.Background()

	sender, senderAccount, err := resolveParty(ctx, s.store, cmd.SenderPhone)
	if err != nil {
		return nil, err
	}
	receiver, receiverAccount, err := resolveParty(ctx, s.store, cmd.Recipient)
	if err != nil {
		return nil, err
	}
	if senderAccount.AccountNumber == receiverAccount.AccountNumber {
		return nil, models.ErrInvalidOperation
	}

	txn, newBalance, err := s.store.Transfer(ctx, senderAccount.AccountNumber, receiverAccount.AccountNumber, cmd.Amount)
	if err != nil {
		return nil, err
	}

	s.balanceCache.Set(ctx, "balance:"+sender.PhoneNumber, &models.BalanceView{
		AccountNumber: senderAccount.AccountNumber,
		Balance:       newBalance,
		UpdatedAt:     txn.CreatedAt,
	})
	// The receiver's cached balance is stale now; drop it and let the
	// next read repopulate.
	s.balanceCache.Delete(ctx, "balance:"+receiver.PhoneNumber)

	if err := s.publisher.Publish(ctx, events.TransferEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
		TransactionID:   txn.ID.String(),
		SenderAccount:   txn.SenderAccount,
		ReceiverAccount: txn.ReceiverAccount,
		Amount:          txn.Amount,
	}); err != nil {
		slog.Warn("failed to publish transfer.completed event", "error", err)
	}

	return &models.TransferReceipt{
		TransactionID:    txn.ID.String(),
		NewSenderBalance: newBalance,
	}, nil
}
