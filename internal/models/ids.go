package models

// Typed identifiers for the domain. All are UUID strings underneath, but
// the distinct types keep them from being mixed up and make map keys
// self-documenting (e.g. map[UserID]money.Cents).
type (
	// UserID identifies a registered user.
	UserID string

	// GroupID identifies a group.
	GroupID string

	// ExpenseID identifies an expense record.
	ExpenseID string

	// SettlementID identifies a settlement record.
	SettlementID string
)

func (id UserID) String() string       { return string(id) }
func (id GroupID) String() string      { return string(id) }
func (id ExpenseID) String() string    { return string(id) }
func (id SettlementID) String() string { return string(id) }
