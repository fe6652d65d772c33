package ledger

import (
	"reflect"
	"testing"

	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
)

var (
	alice   = models.UserID("alice")
	bob     = models.UserID("bob")
	carol   = models.UserID("carol")
	dave    = models.UserID("dave")
	members = []models.UserID{alice, bob, carol}
)

func equalSplitExpense(paidBy models.UserID, amount money.Cents, participants ...models.UserID) Expense {
	shares := money.SplitEqual(amount, len(participants))
	e := Expense{PaidBy: paidBy, Amount: amount}
	for i, p := range participants {
		e.Participants = append(e.Participants, Share{UserID: p, Amount: shares[i]})
	}
	return e
}

func sumBalances(balances map[models.UserID]money.Cents) money.Cents {
	var sum money.Cents
	for _, b := range balances {
		sum += b
	}
	return sum
}

func TestComputeBalances_EqualSplit(t *testing.T) {
	// 100.00 paid by alice, split equally three ways. Alice is
	// participant #1 so she absorbs the rounding remainder:
	// shares [33.34, 33.33, 33.33], alice nets +66.66.
	exp := equalSplitExpense(alice, 10000, alice, bob, carol)

	balances := ComputeBalances(members, []Expense{exp}, nil)

	if got := balances[alice]; got != 6666 {
		t.Errorf("alice balance = %v, want 66.66", got)
	}
	if got := balances[bob]; got != -3333 {
		t.Errorf("bob balance = %v, want -33.33", got)
	}
	if got := balances[carol]; got != -3333 {
		t.Errorf("carol balance = %v, want -33.33", got)
	}
	if sum := sumBalances(balances); sum != 0 {
		t.Errorf("balances sum = %v, want 0", sum)
	}
}

func TestComputeBalances_PayerNotFirstParticipant(t *testing.T) {
	// Same expense but bob submitted first: remainder lands on bob and
	// alice's balance is +66.67.
	exp := equalSplitExpense(alice, 10000, bob, carol, alice)

	balances := ComputeBalances(members, []Expense{exp}, nil)

	if got := balances[alice]; got != 6667 {
		t.Errorf("alice balance = %v, want 66.67", got)
	}
	if got := balances[bob]; got != -3334 {
		t.Errorf("bob balance = %v, want -33.34", got)
	}
}

func TestComputeBalances_SettlementMovesBothTowardZero(t *testing.T) {
	exp := equalSplitExpense(alice, 9000, alice, bob, carol) // alice +60, others -30
	settle := Settlement{PaidBy: bob, PaidTo: alice, Amount: 3000}

	balances := ComputeBalances(members, []Expense{exp}, []Settlement{settle})

	if got := balances[bob]; got != 0 {
		t.Errorf("bob balance after settling = %v, want 0", got)
	}
	if got := balances[alice]; got != 3000 {
		t.Errorf("alice balance after settling = %v, want 30.00", got)
	}
	if sum := sumBalances(balances); sum != 0 {
		t.Errorf("balances sum = %v, want 0", sum)
	}
}

func TestComputeBalances_DepartedMemberIgnored(t *testing.T) {
	// dave left the group; his paid expense and his share must not
	// leak into current members' balances.
	exp := equalSplitExpense(dave, 6000, dave, alice, bob)

	balances := ComputeBalances(members, []Expense{exp}, nil)

	if _, ok := balances[dave]; ok {
		t.Error("departed member should not appear in balances")
	}
	if got := balances[alice]; got != -2000 {
		t.Errorf("alice balance = %v, want -20.00", got)
	}
	if got := balances[carol]; got != 0 {
		t.Errorf("carol balance = %v, want 0", got)
	}
}

func TestComputeBalances_EmptyGroup(t *testing.T) {
	balances := ComputeBalances(nil, nil, nil)
	if len(balances) != 0 {
		t.Errorf("expected empty balance map, got %v", balances)
	}
	if transfers := SimplifyDebts(nil, balances); len(transfers) != 0 {
		t.Errorf("expected no transfers, got %v", transfers)
	}
}

func TestComputeBalances_Idempotent(t *testing.T) {
	expenses := []Expense{
		equalSplitExpense(alice, 10000, alice, bob, carol),
		equalSplitExpense(bob, 4500, bob, carol),
	}
	settlements := []Settlement{{PaidBy: carol, PaidTo: alice, Amount: 1200}}

	first := ComputeBalances(members, expenses, settlements)
	second := ComputeBalances(members, expenses, settlements)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs: %v vs %v", first, second)
	}

	t1 := SimplifyDebts(members, first)
	t2 := SimplifyDebts(members, second)
	if !reflect.DeepEqual(t1, t2) {
		t.Errorf("repeated simplification differs: %v vs %v", t1, t2)
	}
}

func TestSimplifyDebts_TwoDebtorsOneCreditor(t *testing.T) {
	balances := map[models.UserID]money.Cents{
		alice: 5000,  // +50
		bob:   -3000, // -30
		carol: -2000, // -20
	}

	transfers := SimplifyDebts(members, balances)

	want := []Transfer{
		{From: bob, To: alice, Amount: 3000},
		{From: carol, To: alice, Amount: 2000},
	}
	if !reflect.DeepEqual(transfers, want) {
		t.Errorf("transfers = %v, want %v", transfers, want)
	}
}

func TestSimplifyDebts_SettledBalancesExcluded(t *testing.T) {
	balances := map[models.UserID]money.Cents{
		alice: 1,  // within noise band
		bob:   -1, // within noise band
		carol: 0,
	}
	if transfers := SimplifyDebts(members, balances); len(transfers) != 0 {
		t.Errorf("expected no transfers for settled group, got %v", transfers)
	}
}

func TestSimplifyDebts_TransferBoundAndConservation(t *testing.T) {
	order := []models.UserID{alice, bob, carol, dave}
	balances := map[models.UserID]money.Cents{
		alice: 7351,
		bob:   -1200,
		carol: -4151,
		dave:  -2000,
	}

	transfers := SimplifyDebts(order, balances)

	// At most debtors+creditors-1 transfers.
	if len(transfers) > 3 {
		t.Errorf("got %d transfers, want at most 3", len(transfers))
	}

	// Everything routed away from a debtor equals that debtor's
	// original absolute balance, and creditors receive what they are owed.
	outflow := make(map[models.UserID]money.Cents)
	inflow := make(map[models.UserID]money.Cents)
	for _, tr := range transfers {
		if tr.Amount <= 0 {
			t.Fatalf("non-positive transfer amount: %v", tr)
		}
		outflow[tr.From] += tr.Amount
		inflow[tr.To] += tr.Amount
	}
	for id, b := range balances {
		if b < -noiseBand && outflow[id] != -b {
			t.Errorf("debtor %s routed %v, want %v", id, outflow[id], -b)
		}
		if b > noiseBand && inflow[id] != b {
			t.Errorf("creditor %s received %v, want %v", id, inflow[id], b)
		}
	}
}

func TestSimplifyDebts_QueueOrderDependence(t *testing.T) {
	balances := map[models.UserID]money.Cents{
		alice: 3000,
		bob:   3000,
		carol: -3000,
		dave:  -3000,
	}

	forward := SimplifyDebts([]models.UserID{alice, bob, carol, dave}, balances)
	reversed := SimplifyDebts([]models.UserID{bob, alice, dave, carol}, balances)

	wantForward := []Transfer{
		{From: carol, To: alice, Amount: 3000},
		{From: dave, To: bob, Amount: 3000},
	}
	wantReversed := []Transfer{
		{From: dave, To: bob, Amount: 3000},
		{From: carol, To: alice, Amount: 3000},
	}
	if !reflect.DeepEqual(forward, wantForward) {
		t.Errorf("forward order transfers = %v, want %v", forward, wantForward)
	}
	if !reflect.DeepEqual(reversed, wantReversed) {
		t.Errorf("reversed order transfers = %v, want %v", reversed, wantReversed)
	}
}

func TestBalanceSumNearZero_ManyExpenses(t *testing.T) {
	// A pile of awkward amounts; integer-cent accumulation keeps the
	// total exactly balanced for equal splits.
	expenses := []Expense{
		equalSplitExpense(alice, 10001, alice, bob, carol),
		equalSplitExpense(bob, 3333, alice, bob, carol),
		equalSplitExpense(carol, 999, bob, carol),
		equalSplitExpense(alice, 7777, alice, carol),
	}

	balances := ComputeBalances(members, expenses, nil)
	if sum := sumBalances(balances); sum != 0 {
		t.Errorf("balances sum = %v, want 0", sum)
	}
}
