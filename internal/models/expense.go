package models

import "github.com/evenlyhq/evenly/internal/money"

// Split types governing how an expense's amount becomes participant shares.
// Only SplitEqual is computed server-side; the other three accept the
// caller's shares verbatim.
const (
	SplitEqual      = "equal"
	SplitExact      = "exact"
	SplitPercentage = "percentage"
	SplitShares     = "shares"
)

// ExpenseCategories is the set of valid expense category tags.
var ExpenseCategories = []string{
	"food", "transport", "accommodation", "entertainment",
	"shopping", "utilities", "healthcare", "education",
	"travel", "groceries", "sports", "other",
}

// Participant is one member's share of an expense.
type Participant struct {
	// UserID is the participating member.
	UserID UserID

	// Share is this member's portion of the expense amount, in cents.
	// Shares of non-equal splits come from the caller and are not
	// required to sum exactly to the expense amount.
	Share money.Cents
}

// Expense represents a shared cost paid by one member on behalf of
// the participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID ExpenseID

	// GroupID is the group this expense belongs to.
	GroupID GroupID

	// Title is a short human-readable description.
	Title string

	// Amount is the full expense amount in cents. Always positive.
	Amount money.Cents

	// Currency is the currency code, defaulting to the group's currency.
	Currency string

	// PaidBy is the member who advanced the money.
	PaidBy UserID

	// Participants are the members splitting the expense, in the order
	// they were submitted. Never empty for a stored expense.
	Participants []Participant

	// SplitType is one of the Split* constants.
	SplitType string

	// Category is one of ExpenseCategories.
	Category string

	// Notes is optional free text.
	Notes string

	// Date is the Unix timestamp of when the expense occurred
	// (not when it was recorded).
	Date int64

	// CreatedBy is the user who recorded the expense. Only the creator
	// can edit or delete it.
	CreatedBy UserID

	// Deleted soft-deletes the expense. Deleted expenses are excluded
	// from every listing and from all balance math.
	Deleted bool

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}

// ShareOf returns the share recorded for the given member and whether the
// member participates in the expense at all.
func (e *Expense) ShareOf(id UserID) (money.Cents, bool) {
	for _, p := range e.Participants {
		if p.UserID == id {
			return p.Share, true
		}
	}
	return 0, false
}

// ValidCategory reports whether c is a known expense category.
func ValidCategory(c string) bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidSplitType reports whether s is a known split type.
func ValidSplitType(s string) bool {
	switch s {
	case SplitEqual, SplitExact, SplitPercentage, SplitShares:
		return true
	}
	return false
}
