package models

import "errors"

// Ledger failure taxonomy. Every operation reports failures as one of these
// sentinels (possibly wrapped with %w); callers branch with errors.Is rather
// than matching message text.
var (
	// ErrNotFound: the referenced identity, account or request does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: signup would duplicate an existing phone number or UPI handle.
	ErrConflict = errors.New("already exists")

	// ErrInvalidAmount: the amount is non-positive or carries more than two
	// fractional digits.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidOperation: the operation is malformed, e.g. a self-transfer.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInsufficientFunds: the debit would take the sender below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnauthorized: the acting account may not perform this transition.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyProcessed: the money request already reached a terminal state.
	ErrAlreadyProcessed = errors.New("request already processed")

	// ErrBusy: account locks could not be acquired within the bounded wait.
	// Safe for the caller to retry.
	ErrBusy = errors.New("ledger busy, retry")

	// ErrInternal: a storage-level failure not attributable to the request.
	ErrInternal = errors.New("internal error")
)
