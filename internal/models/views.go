package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IdentityView is the read-optimised projection of an identity as returned
// by directory lookups and profile reads.
type IdentityView struct {
	DisplayName string `json:"displayName"`
	PhoneNumber string `json:"phoneNumber"`
	UpiHandle   string `json:"upiId"`
}

// BalanceView is the read-optimised projection of an account balance.
type BalanceView struct {
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	UpdatedAt     time.Time       `json:"updatedTimestamp"`
}

// TransferReceipt is what a successful transfer returns to the caller.
type TransferReceipt struct {
	TransactionID    string          `json:"transactionId"`
	NewSenderBalance decimal.Decimal `json:"newSenderBalance"`
}

// TransactionView is a transaction as seen from one side of the ledger:
// Counterparty is the display name of the other account's owner and
// Direction is "sent" or "received".
type TransactionView struct {
	ID           string          `json:"id"`
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	Direction    string          `json:"direction"`
	CreatedAt    time.Time       `json:"createdTimestamp"`
}

// TransactionHistory groups an account's transactions by direction,
// newest first on both sides.
type TransactionHistory struct {
	Sent     []TransactionView `json:"sent"`
	Received []TransactionView `json:"received"`
}

// MoneyRequestView is a money request as seen from one side: Counterparty
// identifies the other party, Direction is "sent" or "received".
type MoneyRequestView struct {
	ID                string          `json:"id"`
	Counterparty      string          `json:"counterparty"`
	CounterpartyPhone string          `json:"counterpartyPhone"`
	Amount            decimal.Decimal `json:"amount"`
	Message           string          `json:"message,omitempty"`
	Status            string          `json:"status"`
	Direction         string          `json:"direction"`
	CreatedAt         time.Time       `json:"createdTimestamp"`
	UpdatedAt         time.Time       `json:"updatedTimestamp"`
}

// MoneyRequestHistory groups an account's money requests by direction,
// newest first on both sides.
type MoneyRequestHistory struct {
	Sent     []MoneyRequestView `json:"sent"`
	Received []MoneyRequestView `json:"received"`
}
