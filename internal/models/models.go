package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Identity is a verified user of the assistant, keyed by phone number and
// by the UPI handle derived from the display name at signup.
type Identity struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	UpiHandle   string    `json:"upiId"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdTimestamp"`
}

// Account holds the balance owned by exactly one Identity. Balance is a
// fixed-point decimal with two fractional digits; it is mutated only by the
// transfer engine and never goes negative.
type Account struct {
	AccountNumber string          `json:"accountNumber"`
	IdentityID    string          `json:"-"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"createdTimestamp"`
	UpdatedAt     time.Time       `json:"updatedTimestamp"`
}

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is the immutable record of a completed transfer. Transfers
// execute synchronously, so there is no pending transaction state.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	SenderAccount   string            `json:"-"`
	ReceiverAccount string            `json:"-"`
	Amount          decimal.Decimal   `json:"amount"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdTimestamp"`
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// Terminal reports whether a request status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected || s == RequestCancelled
}

// MoneyRequest is a pull-payment proposal: the requester asks the requestee
// to send Amount. Only the single transition out of pending mutates it.
type MoneyRequest struct {
	ID               uuid.UUID       `json:"id"`
	RequesterAccount string          `json:"-"`
	RequesteeAccount string          `json:"-"`
	Amount           decimal.Decimal `json:"amount"`
	Message          string          `json:"message,omitempty"`
	Status           RequestStatus   `json:"status"`
	CreatedAt        time.Time       `json:"createdTimestamp"`
	UpdatedAt        time.Time       `json:"updatedTimestamp"`
}
