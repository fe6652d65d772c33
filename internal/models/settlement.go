package models

import "github.com/evenlyhq/evenly/internal/money"

// Settlement represents a direct payment between two group members that
// pays down outstanding debt.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID SettlementID

	// GroupID is the group this settlement belongs to.
	GroupID GroupID

	// PaidBy is the debtor settling up.
	PaidBy UserID

	// PaidTo is the creditor being paid.
	PaidTo UserID

	// Amount is the payment amount in cents. Always positive.
	Amount money.Cents

	// Currency is the currency code, defaulting to the group's currency.
	Currency string

	// Note is an optional description.
	Note string

	// Date is the Unix timestamp of when the payment was made.
	Date int64

	// CreatedBy is the user who recorded the settlement.
	CreatedBy UserID

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}
