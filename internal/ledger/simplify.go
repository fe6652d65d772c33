package ledger

import (
	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
)

// noiseBand is the tolerance, in cents, inside which a balance is treated
// as already settled.
const noiseBand = 1

// Transfer is one payment in a simplified settlement plan. Write-once:
// the simplifier creates transfers and never mutates them afterwards.
type Transfer struct {
	From   models.UserID // debtor
	To     models.UserID // creditor
	Amount money.Cents   // always > 0
}

type queueEntry struct {
	userID    models.UserID
	remaining money.Cents // always positive
}

// SimplifyDebts reduces the balance map to a short list of point-to-point
// payments that zero every balance. order fixes queue order: members are
// partitioned into debtors and creditors in the order given, which is the
// group's member join order.
//
// Algorithm (greedy two-queue matching):
//   - members with balance below -1 cent join the debtor queue, members
//     above +1 cent join the creditor queue; anything within the band is
//     considered settled
//   - repeatedly pair the head of each queue, transferring
//     min(debtor remaining, creditor remaining), and advance whichever
//     head drops below one cent (both, if both hit zero)
//   - stop when either queue is exhausted
//
// The result fully settles all balances in at most
// len(debtors)+len(creditors)-1 transfers, but it is not guaranteed to be
// the theoretical minimum transfer count (finding that is a subset-sum
// style problem). The greedy plan and its dependence on queue order are
// intentional and must be preserved.
func SimplifyDebts(order []models.UserID, balances map[models.UserID]money.Cents) []Transfer {
	var debtors, creditors []queueEntry
	for _, id := range order {
		switch b := balances[id]; {
		case b < -noiseBand:
			debtors = append(debtors, queueEntry{userID: id, remaining: -b})
		case b > noiseBand:
			creditors = append(creditors, queueEntry{userID: id, remaining: b})
		}
	}

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := debtor.remaining
		if creditor.remaining < amount {
			amount = creditor.remaining
		}

		if amount > noiseBand {
			transfers = append(transfers, Transfer{
				From:   debtor.userID,
				To:     creditor.userID,
				Amount: amount,
			})
		}

		debtor.remaining -= amount
		creditor.remaining -= amount

		if debtor.remaining < noiseBand {
			i++
		}
		if creditor.remaining < noiseBand {
			j++
		}
	}

	return transfers
}
