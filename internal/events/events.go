package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	IdentityCreated = "identity.created"

	TransferCompleted = "transfer.completed"

	RequestCreated = "request.created"
	RequestUpdated = "request.updated"
)

// Stream names
const (
	IdentityEventsStream = "identity.events"
	TransferEventsStream = "transfer.events"
	RequestEventsStream  = "request.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Identity events
type IdentityCreatedEvent struct {
	IdentityID  string `json:"identityId"`
	PhoneNumber string `json:"phoneNumber"`
	UpiHandle   string `json:"upiId"`
	DisplayName string `json:"displayName"`
}

// Transfer events
type TransferCompletedEvent struct {
	TransactionID   string          `json:"transactionId"`
	SenderAccount   string          `json:"senderAccount"`
	ReceiverAccount string          `json:"receiverAccount"`
	Amount          decimal.Decimal `json:"amount"`
}

// Money request events
type RequestCreatedEvent struct {
	RequestID      string          `json:"requestId"`
	RequesterPhone string          `json:"requesterPhone"`
	RequesteePhone string          `json:"requesteePhone"`
	RequesterName  string          `json:"requesterName"`
	Amount         decimal.Decimal `json:"amount"`
	Message        string          `json:"message,omitempty"`
}

type RequestUpdatedEvent struct {
	RequestID      string          `json:"requestId"`
	RequesterPhone string          `json:"requesterPhone"`
	RequesteeName  string          `json:"requesteeName"`
	Amount         decimal.Decimal `json:"amount"`
	NewStatus      string          `json:"newStatus"`
}
