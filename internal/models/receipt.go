package models

import "github.com/mmynk/bonsplitser/internal/money"

// BonusMarker is the discount annotation printed after an item's price.
type BonusMarker string

const (
	// MarkerNone means the item carries no discount annotation.
	MarkerNone BonusMarker = ""
	// MarkerBonus is the loyalty discount marker ("B").
	MarkerBonus BonusMarker = "B"
	// MarkerPercent35 is the 35% discount marker.
	MarkerPercent35 BonusMarker = "35%"
)

// Receipt is a scanned supermarket receipt reconstructed from OCR output.
// It stores the items, the discounts and the printed totals together with
// the result of checking those totals against each other.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string `json:"id"`

	// Supermarket identifies the receipt layout, e.g. "AH".
	Supermarket string `json:"supermarket"`

	// Participants are the people splitting the receipt, sorted and unique.
	Participants []string `json:"participants"`

	// Subtotal is the printed sum of all items before discounts.
	Subtotal           money.Money `json:"subtotal"`
	SubtotalConfidence float64     `json:"subtotal_confidence"`

	// BonusTotal is the printed sum of all discounts ("UW VOORDEEL").
	BonusTotal      money.Money `json:"bonus_total"`
	BonusConfidence float64     `json:"bonus_confidence"`

	// GrandTotal is the printed amount paid.
	GrandTotal      money.Money `json:"grand_total"`
	TotalConfidence float64     `json:"total_confidence"`

	// Items are the purchased products in the order they were printed.
	Items []Item `json:"items"`

	// BonusItems are the discount lines in the order they were printed.
	BonusItems []BonusItem `json:"bonus_items"`

	// Verification records which printed totals agree with the parsed lines.
	Verification Verification `json:"verification"`

	// CreatedAt is the Unix timestamp when the receipt was stored.
	CreatedAt int64 `json:"created_at"`
}

// Item is a single purchased product line.
type Item struct {
	Price           money.Money `json:"price"`
	PriceConfidence float64     `json:"price_confidence"`
	Marker          BonusMarker `json:"marker,omitempty"`
	Description     string      `json:"description"`
}

// BonusItem is a discount line. Price is the magnitude of the discount.
type BonusItem struct {
	Price           money.Money `json:"price"`
	PriceConfidence float64     `json:"price_confidence"`
	Description     string      `json:"description"`
}

// Verification holds the outcome of the three total checks.
type Verification struct {
	// Subtotal: the items add up to the subtotal.
	Subtotal bool `json:"subtotal"`
	// Bonus: the discount lines add up to the bonus total.
	Bonus bool `json:"bonus"`
	// Total: subtotal minus bonus total equals the grand total.
	Total bool `json:"total"`
}

// OK reports whether every check passed.
func (v Verification) OK() bool {
	return v.Subtotal && v.Bonus && v.Total
}

// Failed returns the names of the failed checks.
func (v Verification) Failed() []string {
	var failed []string
	if !v.Subtotal {
		failed = append(failed, "subtotal")
	}
	if !v.Bonus {
		failed = append(failed, "bonus")
	}
	if !v.Total {
		failed = append(failed, "total")
	}
	return failed
}

// ItemPrices returns the price of every item.
func (r *Receipt) ItemPrices() []money.Money {
	prices := make([]money.Money, len(r.Items))
	for i, item := range r.Items {
		prices[i] = item.Price
	}
	return prices
}

// BonusPrices returns the discount of every bonus item.
func (r *Receipt) BonusPrices() []money.Money {
	prices := make([]money.Money, len(r.BonusItems))
	for i, item := range r.BonusItems {
		prices[i] = item.Price
	}
	return prices
}

// HasParticipant reports whether name is one of the receipt's participants.
func (r *Receipt) HasParticipant(name string) bool {
	for _, p := range r.Participants {
		if p == name {
			return true
		}
	}
	return false
}
