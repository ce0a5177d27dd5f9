package models

import "github.com/mmynk/bonsplitser/internal/money"

// Shares maps a participant name to the number of shares they hold on a line.
// Participants without shares may be left out.
type Shares map[string]int

// Total returns the sum of all share counts.
func (s Shares) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// ShareAssignment holds the shares for every line of a receipt, index-aligned
// with Receipt.Items and Receipt.BonusItems.
type ShareAssignment struct {
	Items      []Shares `json:"items"`
	BonusItems []Shares `json:"bonus_items"`
}

// ParticipantTotal is the amount one participant owes for a receipt.
type ParticipantTotal struct {
	Participant string      `json:"participant"`
	Total       money.Money `json:"total"`
}

// Settlement is the result of splitting a receipt among its participants.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// ReceiptID is the receipt this settlement splits.
	ReceiptID string `json:"receipt_id"`

	// Totals holds one entry per receipt participant, in participant order.
	Totals []ParticipantTotal `json:"totals"`

	// GrandTotal is the receipt's grand total.
	GrandTotal money.Money `json:"grand_total"`

	// Balanced is true when every consistency check passed.
	Balanced bool `json:"balanced"`

	// Mismatches names the checks that failed, e.g. "subtotal".
	Mismatches []string `json:"mismatches,omitempty"`

	// LeftoverCents is the number of indivisible cents handed out by lottery.
	LeftoverCents int `json:"leftover_cents"`

	// Shares is the assignment the settlement was computed from.
	Shares ShareAssignment `json:"shares"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"created_at"`
}

// TotalFor returns the amount owed by participant, or zero.
func (s *Settlement) TotalFor(participant string) money.Money {
	for _, t := range s.Totals {
		if t.Participant == participant {
			return t.Total
		}
	}
	return money.Zero
}

// Transfer is a payment one participant owes another.
type Transfer struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Money `json:"amount"`
}
