package receipt

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnknownSupermarket is returned for a supermarket without a known layout.
var ErrUnknownSupermarket = errors.New("unknown supermarket")

// Layout holds the printed markers the scanner looks for on one chain's receipts.
// All markers are compared case-insensitively against whole tokens.
type Layout struct {
	// Headers start the item table (any one of them is enough).
	Headers []string
	// LoyaltyCard marks the line where the loyalty card was scanned.
	LoyaltyCard string
	// Subtotal ends the item table and carries the subtotal amount.
	Subtotal string
	// BonusTotal ends the discount table and carries the total discount.
	BonusTotal string
	// Total carries the amount paid.
	Total string
	// BonusNoise are substrings removed from discount line descriptions.
	BonusNoise []string
}

// AlbertHeijn is the layout of Albert Heijn receipts.
var AlbertHeijn = Layout{
	Headers:     []string{"AANTAL", "OMSCHRIJVING", "PRIJS", "BEDRAG"},
	LoyaltyCard: "BONUSKAART",
	Subtotal:    "SUBTOTAAL",
	BonusTotal:  "VOORDEEL",
	Total:       "TOTAAL",
	BonusNoise:  []string{"BONUS", "35% K"},
}

var layouts = map[string]Layout{
	"AH": AlbertHeijn,
}

// LayoutFor returns the layout registered for supermarket.
func LayoutFor(supermarket string) (Layout, bool) {
	l, ok := layouts[strings.ToUpper(strings.TrimSpace(supermarket))]
	return l, ok
}

// Supermarkets lists the supported supermarket identifiers.
func Supermarkets() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
