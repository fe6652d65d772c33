// Package analytics computes a member's personal spending rollups across
// all of their groups: owed/owing totals, category breakdown and a
// trailing six-month spend series. Like the ledger, it is a pure
// function of the records handed to it.
package analytics

import (
	"sort"
	"time"

	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
)

// monthWindow is the number of trailing calendar months in the monthly
// series, current month included.
const monthWindow = 6

// Stats is the headline dashboard numbers for one member.
type Stats struct {
	// TotalSpent is the sum of amounts for expenses the member paid.
	TotalSpent money.Cents `json:"totalSpent"`

	// TotalOwed is what others still owe the member, floored at zero
	// for display.
	TotalOwed money.Cents `json:"totalOwed"`

	// TotalOwing is what the member still owes others, floored at zero
	// for display.
	TotalOwing money.Cents `json:"totalOwing"`

	// NetBalance is the unclamped difference owed-owing; may be negative.
	NetBalance money.Cents `json:"netBalance"`

	// GroupCount is the number of active groups the member belongs to.
	GroupCount int `json:"groupCount"`

	// ExpenseCount is the number of visible expenses across those groups.
	ExpenseCount int `json:"expenseCount"`
}

// CategoryAmount is the member's own share summed for one category.
type CategoryAmount struct {
	Category string      `json:"category"`
	Amount   money.Cents `json:"amount"`
}

// MonthlySpend is the amount the member personally paid in one calendar
// month.
type MonthlySpend struct {
	Month string      `json:"month"` // e.g. "Apr 25"
	Spent money.Cents `json:"spent"`
}

// Summary is the full dashboard payload for one member.
type Summary struct {
	Stats        Stats            `json:"stats"`
	CategoryData []CategoryAmount `json:"categoryData"`
	MonthlyData  []MonthlySpend   `json:"monthlyData"`
}

// Summarize builds the dashboard rollups for member from the expenses and
// settlements visible to them across groupCount groups. now anchors the
// monthly window.
//
// Per expense where the member participates, net = (amount if payer
// else 0) - member's share; positive net accumulates into owed, the
// absolute value of negative net into owing. Settlements the member paid
// reduce owing; settlements the member received reduce owed. Both totals
// are floored at zero for display only; NetBalance keeps the raw
// difference. Category totals sum the member's own share; the monthly
// series sums amounts the member paid, zero-filled over the trailing six
// months, oldest first.
func Summarize(member models.UserID, expenses []*models.Expense, settlements []*models.Settlement, groupCount int, now time.Time) Summary {
	var totalSpent, totalOwed, totalOwing money.Cents
	categories := make(map[string]money.Cents)
	monthly := make(map[string]money.Cents)

	for _, e := range expenses {
		paidByMe := e.PaidBy == member
		if paidByMe {
			totalSpent += e.Amount
		}

		myShare, participates := e.ShareOf(member)
		if !participates {
			continue
		}

		var paid money.Cents
		if paidByMe {
			paid = e.Amount
		}
		net := paid - myShare
		switch {
		case net > 0:
			totalOwed += net
		case net < 0:
			totalOwing += -net
		}

		categories[e.Category] += myShare

		if paidByMe {
			monthly[monthKey(time.Unix(e.Date, 0))] += e.Amount
		}
	}

	for _, s := range settlements {
		switch member {
		case s.PaidBy:
			totalOwing -= s.Amount
		case s.PaidTo:
			totalOwed -= s.Amount
		}
	}

	categoryData := make([]CategoryAmount, 0, len(categories))
	for category, amount := range categories {
		categoryData = append(categoryData, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(categoryData, func(i, j int) bool {
		if categoryData[i].Amount != categoryData[j].Amount {
			return categoryData[i].Amount > categoryData[j].Amount
		}
		return categoryData[i].Category < categoryData[j].Category
	})

	monthlyData := make([]MonthlySpend, 0, monthWindow)
	for i := monthWindow - 1; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		monthlyData = append(monthlyData, MonthlySpend{
			Month: m.Format("Jan 06"),
			Spent: monthly[monthKey(m)],
		})
	}

	return Summary{
		Stats: Stats{
			TotalSpent:   totalSpent,
			TotalOwed:    clampZero(totalOwed),
			TotalOwing:   clampZero(totalOwing),
			NetBalance:   totalOwed - totalOwing,
			GroupCount:   groupCount,
			ExpenseCount: len(expenses),
		},
		CategoryData: categoryData,
		MonthlyData:  monthlyData,
	}
}

// clampZero floors a display total at zero. A negative remainder after
// settlement adjustment is a display simplification, not a ledger
// correction; NetBalance keeps the raw value.
func clampZero(c money.Cents) money.Cents {
	if c < 0 {
		return 0
	}
	return c
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
