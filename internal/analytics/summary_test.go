package analytics

import (
	"testing"
	"time"

	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
)

var (
	me     = models.UserID("me")
	friend = models.UserID("friend")
	now    = time.Date(2026, time.September, 15, 12, 0, 0, 0, time.UTC)
)

func expense(paidBy models.UserID, amount money.Cents, category string, date time.Time, participants ...models.Participant) *models.Expense {
	return &models.Expense{
		ID:           "e1",
		PaidBy:       paidBy,
		Amount:       amount,
		Category:     category,
		Date:         date.Unix(),
		Participants: participants,
	}
}

func TestSummarize_OwedAndOwing(t *testing.T) {
	expenses := []*models.Expense{
		// I paid 60, my share 20: others owe me 40.
		expense(me, 6000, "food", now,
			models.Participant{UserID: me, Share: 2000},
			models.Participant{UserID: friend, Share: 4000},
		),
		// Friend paid 30, my share 15: I owe 15.
		expense(friend, 3000, "transport", now,
			models.Participant{UserID: friend, Share: 1500},
			models.Participant{UserID: me, Share: 1500},
		),
	}

	s := Summarize(me, expenses, nil, 1, now)

	if s.Stats.TotalSpent != 6000 {
		t.Errorf("totalSpent = %v, want 60.00", s.Stats.TotalSpent)
	}
	if s.Stats.TotalOwed != 4000 {
		t.Errorf("totalOwed = %v, want 40.00", s.Stats.TotalOwed)
	}
	if s.Stats.TotalOwing != 1500 {
		t.Errorf("totalOwing = %v, want 15.00", s.Stats.TotalOwing)
	}
	if s.Stats.NetBalance != 2500 {
		t.Errorf("netBalance = %v, want 25.00", s.Stats.NetBalance)
	}
	if s.Stats.ExpenseCount != 2 || s.Stats.GroupCount != 1 {
		t.Errorf("counts = %d groups / %d expenses, want 1 / 2", s.Stats.GroupCount, s.Stats.ExpenseCount)
	}
}

func TestSummarize_SettlementsReduceTotals(t *testing.T) {
	expenses := []*models.Expense{
		expense(me, 6000, "food", now,
			models.Participant{UserID: me, Share: 2000},
			models.Participant{UserID: friend, Share: 4000},
		),
	}
	settlements := []*models.Settlement{
		// Friend paid me back 25 of the 40 they owed.
		{PaidBy: friend, PaidTo: me, Amount: 2500},
	}

	s := Summarize(me, expenses, settlements, 1, now)

	if s.Stats.TotalOwed != 1500 {
		t.Errorf("totalOwed = %v, want 15.00", s.Stats.TotalOwed)
	}
	if s.Stats.NetBalance != 1500 {
		t.Errorf("netBalance = %v, want 15.00", s.Stats.NetBalance)
	}
}

func TestSummarize_OverpaymentClampedForDisplay(t *testing.T) {
	expenses := []*models.Expense{
		expense(me, 1000, "food", now,
			models.Participant{UserID: me, Share: 500},
			models.Participant{UserID: friend, Share: 500},
		),
	}
	settlements := []*models.Settlement{
		// Friend paid back more than owed; display floors at zero but
		// the net keeps the raw difference.
		{PaidBy: friend, PaidTo: me, Amount: 800},
	}

	s := Summarize(me, expenses, settlements, 1, now)

	if s.Stats.TotalOwed != 0 {
		t.Errorf("totalOwed = %v, want 0 (clamped)", s.Stats.TotalOwed)
	}
	if s.Stats.NetBalance != -300 {
		t.Errorf("netBalance = %v, want -3.00 (unclamped)", s.Stats.NetBalance)
	}
}

func TestSummarize_CategoryBreakdownSorted(t *testing.T) {
	expenses := []*models.Expense{
		expense(friend, 4000, "food", now,
			models.Participant{UserID: me, Share: 2000},
			models.Participant{UserID: friend, Share: 2000},
		),
		expense(me, 9000, "travel", now,
			models.Participant{UserID: me, Share: 4500},
			models.Participant{UserID: friend, Share: 4500},
		),
		expense(me, 1000, "food", now,
			models.Participant{UserID: me, Share: 500},
			models.Participant{UserID: friend, Share: 500},
		),
	}

	s := Summarize(me, expenses, nil, 1, now)

	want := []CategoryAmount{
		{Category: "travel", Amount: 4500},
		{Category: "food", Amount: 2500},
	}
	if len(s.CategoryData) != len(want) {
		t.Fatalf("got %d categories, want %d", len(s.CategoryData), len(want))
	}
	for i, c := range s.CategoryData {
		if c != want[i] {
			t.Errorf("categoryData[%d] = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestSummarize_MonthlySeriesZeroFilled(t *testing.T) {
	s := Summarize(me, nil, nil, 0, now)

	if len(s.MonthlyData) != 6 {
		t.Fatalf("got %d months, want 6", len(s.MonthlyData))
	}
	wantLabels := []string{"Apr 26", "May 26", "Jun 26", "Jul 26", "Aug 26", "Sep 26"}
	for i, m := range s.MonthlyData {
		if m.Month != wantLabels[i] {
			t.Errorf("month[%d] label = %q, want %q", i, m.Month, wantLabels[i])
		}
		if m.Spent != 0 {
			t.Errorf("month[%d] spent = %v, want 0", i, m.Spent)
		}
	}
}

func TestSummarize_MonthlySeriesBucketsPayments(t *testing.T) {
	expenses := []*models.Expense{
		expense(me, 3000, "food", now,
			models.Participant{UserID: me, Share: 1500},
			models.Participant{UserID: friend, Share: 1500},
		),
		expense(me, 2000, "food", now.AddDate(0, -2, 0),
			models.Participant{UserID: me, Share: 1000},
			models.Participant{UserID: friend, Share: 1000},
		),
		// Paid by friend: not my spend, must not appear in the series.
		expense(friend, 9900, "food", now,
			models.Participant{UserID: me, Share: 4950},
			models.Participant{UserID: friend, Share: 4950},
		),
		// Older than the window: dropped.
		expense(me, 5000, "food", now.AddDate(0, -7, 0),
			models.Participant{UserID: me, Share: 5000},
		),
	}

	s := Summarize(me, expenses, nil, 1, now)

	byLabel := make(map[string]money.Cents)
	for _, m := range s.MonthlyData {
		byLabel[m.Month] = m.Spent
	}
	if byLabel["Sep 26"] != 3000 {
		t.Errorf("Sep 26 spent = %v, want 30.00", byLabel["Sep 26"])
	}
	if byLabel["Jul 26"] != 2000 {
		t.Errorf("Jul 26 spent = %v, want 20.00", byLabel["Jul 26"])
	}
	if byLabel["Aug 26"] != 0 {
		t.Errorf("Aug 26 spent = %v, want 0", byLabel["Aug 26"])
	}
}
