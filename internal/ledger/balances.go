// Package ledger implements the group ledger engine: aggregating expense
// and settlement records into per-member net balances, and simplifying
// those balances into a short list of point-to-point payments.
//
// Everything here is a pure function over value inputs. The package does
// no I/O, holds no state, and is safe to call concurrently for different
// groups; the caller owns the input snapshot.
package ledger

import (
	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
)

// Expense carries the minimal expense information the ledger needs.
type Expense struct {
	PaidBy       models.UserID
	Amount       money.Cents
	Participants []Share
}

// Share is one participant's recorded portion of an expense.
type Share struct {
	UserID models.UserID
	Amount money.Cents
}

// Settlement carries the minimal settlement information the ledger needs.
type Settlement struct {
	PaidBy models.UserID // debtor settling up
	PaidTo models.UserID // creditor being paid
	Amount money.Cents
}

// ExpenseInput converts a stored expense into ledger form.
func ExpenseInput(e *models.Expense) Expense {
	shares := make([]Share, len(e.Participants))
	for i, p := range e.Participants {
		shares[i] = Share{UserID: p.UserID, Amount: p.Share}
	}
	return Expense{PaidBy: e.PaidBy, Amount: e.Amount, Participants: shares}
}

// SettlementInput converts a stored settlement into ledger form.
func SettlementInput(s *models.Settlement) Settlement {
	return Settlement{PaidBy: s.PaidBy, PaidTo: s.PaidTo, Amount: s.Amount}
}

// ComputeBalances aggregates expenses and settlements into one signed net
// balance per current member. Positive means the member is owed money,
// negative means the member owes.
//
// Algorithm:
//   - every current member starts at zero
//   - for each expense: credit the payer the full amount, debit each
//     participant their recorded share (a payer who also participates has
//     their own share net out)
//   - for each settlement: credit the payer, debit the payee
//
// References to users who are no longer group members are skipped, not
// reassigned: a departed member's share simply has no effect on the
// current members' balances. This is the deliberate stale-reference
// tolerance, not an error.
//
// For a self-contained group the balances sum to zero within rounding
// tolerance; arithmetic is in integer cents so nothing drifts across
// repeated additions.
func ComputeBalances(members []models.UserID, expenses []Expense, settlements []Settlement) map[models.UserID]money.Cents {
	balances := make(map[models.UserID]money.Cents, len(members))
	for _, id := range members {
		balances[id] = 0
	}

	for _, e := range expenses {
		if _, ok := balances[e.PaidBy]; ok {
			balances[e.PaidBy] += e.Amount
		}
		for _, p := range e.Participants {
			if _, ok := balances[p.UserID]; ok {
				balances[p.UserID] -= p.Amount
			}
		}
	}

	for _, s := range settlements {
		if _, ok := balances[s.PaidBy]; ok {
			balances[s.PaidBy] += s.Amount
		}
		if _, ok := balances[s.PaidTo]; ok {
			balances[s.PaidTo] -= s.Amount
		}
	}

	return balances
}
