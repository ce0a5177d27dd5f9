package receipt

import (
	"errors"
	"fmt"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
)

// ErrCorrectionMismatch is returned when a correction does not list one price
// per line of the receipt it corrects.
var ErrCorrectionMismatch = errors.New("correction does not match receipt")

// confirmed is the confidence given to values a person typed in.
const confirmed = 100

// Correction carries the values of the adjustment form. Prices are listed in
// receipt order, one per item and one per discount line.
type Correction struct {
	ItemPrices  []money.Money
	BonusPrices []money.Money
	Subtotal    money.Money
	BonusTotal  money.Money
	GrandTotal  money.Money
}

// ApplyCorrection returns a copy of r with the corrected values filled in and
// verified again. Descriptions and markers are kept. Values that changed get
// full confidence.
func ApplyCorrection(r *models.Receipt, c Correction) (*models.Receipt, error) {
	if len(c.ItemPrices) != len(r.Items) {
		return nil, fmt.Errorf("%w: got %d item prices for %d items", ErrCorrectionMismatch, len(c.ItemPrices), len(r.Items))
	}
	if len(c.BonusPrices) != len(r.BonusItems) {
		return nil, fmt.Errorf("%w: got %d bonus prices for %d bonus items", ErrCorrectionMismatch, len(c.BonusPrices), len(r.BonusItems))
	}

	out := *r
	out.Participants = append([]string(nil), r.Participants...)

	out.Items = make([]models.Item, len(r.Items))
	for i, item := range r.Items {
		if price := c.ItemPrices[i]; !price.Equal(item.Price) {
			item.Price, item.PriceConfidence = price, confirmed
		}
		out.Items[i] = item
	}

	out.BonusItems = make([]models.BonusItem, len(r.BonusItems))
	for i, item := range r.BonusItems {
		if price := c.BonusPrices[i]; !price.Equal(item.Price) {
			item.Price, item.PriceConfidence = price, confirmed
		}
		out.BonusItems[i] = item
	}

	if !c.Subtotal.Equal(r.Subtotal) {
		out.Subtotal, out.SubtotalConfidence = c.Subtotal, confirmed
	}
	if !c.BonusTotal.Equal(r.BonusTotal) {
		out.BonusTotal, out.BonusConfidence = c.BonusTotal, confirmed
	}
	if !c.GrandTotal.Equal(r.GrandTotal) {
		out.GrandTotal, out.TotalConfidence = c.GrandTotal, confirmed
	}

	out.Verification = Verify(&out)
	return &out, nil
}
