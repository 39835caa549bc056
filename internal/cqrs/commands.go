package cqrs

import "github.com/shopspring/decimal"

type SignUpCommand struct {
	DisplayName string
	PhoneNumber string
}

// TransferCommand moves funds from the authenticated sender to a recipient
// addressed by phone number or UPI handle.
type TransferCommand struct {
	SenderPhone string
	Recipient   string
	Amount      decimal.Decimal
}

// CreateMoneyRequestCommand asks the requestee to send Amount to the
// authenticated requester.
type CreateMoneyRequestCommand struct {
	RequesterPhone string
	Requestee      string
	Amount         decimal.Decimal
	Message        string
}

// UpdateRequestStatusCommand applies the single allowed transition out of
// pending. ActingPhone identifies who is attempting it.
type UpdateRequestStatusCommand struct {
	RequestID   string
	ActingPhone string
	NewStatus   string
}
