package receipt

import (
	"log/slog"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
)

// Verify checks the printed totals of r against its lines. A receipt without
// discount lines passes the bonus check whatever its bonus total says.
func Verify(r *models.Receipt) models.Verification {
	v := models.Verification{
		Subtotal: money.Sum(r.ItemPrices()...).Equal(r.Subtotal),
		Bonus:    true,
		Total:    r.Subtotal.Sub(r.BonusTotal).Equal(r.GrandTotal),
	}
	if len(r.BonusItems) > 0 {
		v.Bonus = money.Sum(r.BonusPrices()...).Equal(r.BonusTotal)
	}
	return v
}

func logVerification(logger *slog.Logger, r *models.Receipt) {
	v := r.Verification
	if v.OK() {
		logger.Info("All items and totals add up", "receipt_id", r.ID, "items", len(r.Items), "bonus_items", len(r.BonusItems))
		return
	}
	if !v.Subtotal {
		logger.Warn("Items do not add up to the subtotal",
			"receipt_id", r.ID, "items_sum", money.Sum(r.ItemPrices()...), "subtotal", r.Subtotal)
	}
	if !v.Bonus {
		logger.Warn("Discounts do not add up to the bonus total",
			"receipt_id", r.ID, "bonus_sum", money.Sum(r.BonusPrices()...), "bonus_total", r.BonusTotal)
	}
	if !v.Total {
		logger.Warn("Subtotal minus bonus does not match the total",
			"receipt_id", r.ID, "subtotal", r.Subtotal, "bonus_total", r.BonusTotal, "total", r.GrandTotal)
	}
}
