package cqrs

// ---------- Identity queries ----------

// ResolveIdentityQuery looks up an identity by exactly one of the keys.
type ResolveIdentityQuery struct {
	PhoneNumber string
	UpiHandle   string
}

// ---------- Ledger queries ----------

// GetBalanceQuery fetches the balance of the account owned by the phone's identity.
type GetBalanceQuery struct {
	PhoneNumber string
}

// ListTransactionsQuery fetches sent and received transactions for the
// phone's account, newest first.
type ListTransactionsQuery struct {
	PhoneNumber string
}

// ListMoneyRequestsQuery fetches sent and received money requests for the
// phone's account, newest first.
type ListMoneyRequestsQuery struct {
	PhoneNumber string
}
