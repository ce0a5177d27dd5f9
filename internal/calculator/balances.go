package calculator

import (
	"sort"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
)

// Balance is what one participant paid against what they owe.
type Balance struct {
	Participant string
	Paid        money.Money
	Owed        money.Money
	Net         money.Money // Positive = is owed money, Negative = owes money
}

// Balances nets the settled totals against what each participant paid at the
// till. Participants that only appear in paid are included as well. The
// result is sorted by participant.
func Balances(totals []models.ParticipantTotal, paid map[string]money.Money) []Balance {
	byName := make(map[string]*Balance)
	get := func(p string) *Balance {
		b, ok := byName[p]
		if !ok {
			b = &Balance{Participant: p}
			byName[p] = b
		}
		return b
	}

	for _, t := range totals {
		b := get(t.Participant)
		b.Owed = b.Owed.Add(t.Total)
	}
	for p, amount := range paid {
		b := get(p)
		b.Paid = b.Paid.Add(amount)
	}

	out := make([]Balance, 0, len(byName))
	for _, b := range byName {
		b.Net = b.Paid.Sub(b.Owed)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Participant < out[j].Participant })
	return out
}

// Transfers works out the payments that settle the balances. Debtors are
// matched greedily with creditors, largest amounts first, so the number of
// payments stays small. Amounts are exact; nothing is lost to rounding.
func Transfers(totals []models.ParticipantTotal, paid map[string]money.Money) []models.Transfer {
	var creditors, debtors []Balance
	for _, b := range Balances(totals, paid) {
		switch b.Net.Sign() {
		case 1:
			creditors = append(creditors, b)
		case -1:
			b.Net = b.Net.Neg() // Make positive
			debtors = append(debtors, b)
		}
	}
	byAmount := func(bs []Balance) {
		sort.SliceStable(bs, func(i, j int) bool { return bs[i].Net.Cmp(bs[j].Net) > 0 })
	}
	byAmount(creditors)
	byAmount(debtors)

	var transfers []models.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := debtor.Net
		if creditor.Net.Cmp(amount) < 0 {
			amount = creditor.Net
		}

		transfers = append(transfers, models.Transfer{
			From:   debtor.Participant,
			To:     creditor.Participant,
			Amount: amount,
		})

		debtor.Net = debtor.Net.Sub(amount)
		creditor.Net = creditor.Net.Sub(amount)
		if debtor.Net.IsZero() {
			i++
		}
		if creditor.Net.IsZero() {
			j++
		}
	}
	return transfers
}
