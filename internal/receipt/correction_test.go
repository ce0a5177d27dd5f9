package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
)

func TestApplyCorrection(t *testing.T) {
	r, _ := NewScanner(AlbertHeijn, testLogger()).Scan(toLines(
		"AANTAL",
		"1 MELK 1,29",
		"1 KAAS 4,89",
		"SUBTOTAAL 6,28",
		"BONUS KAAS -1,00",
		"VOORDEEL 1,00",
		"TOTAAL 5,28",
	))
	r.Participants = []string{"Bas", "Mila"}
	r.Verification = Verify(r)
	require.False(t, r.Verification.Subtotal)

	corrected, err := ApplyCorrection(r, Correction{
		ItemPrices:  []money.Money{money.MustParse("1,29"), money.MustParse("4,99")},
		BonusPrices: []money.Money{money.MustParse("1,00")},
		Subtotal:    money.MustParse("6,28"),
		BonusTotal:  money.MustParse("1,00"),
		GrandTotal:  money.MustParse("5,28"),
	})
	require.NoError(t, err)

	assert.True(t, corrected.Verification.OK())
	assert.Equal(t, "4.99", corrected.Items[1].Price.String())
	assert.Equal(t, 100.0, corrected.Items[1].PriceConfidence)
	assert.Equal(t, 90.0, corrected.Items[0].PriceConfidence)
	assert.Equal(t, "1 KAAS", corrected.Items[1].Description)
	assert.Equal(t, r.Participants, corrected.Participants)

	// The original receipt is left alone.
	assert.Equal(t, "4.89", r.Items[1].Price.String())
	assert.False(t, r.Verification.Subtotal)
}

func TestApplyCorrectionLengthMismatch(t *testing.T) {
	r := &models.Receipt{Items: []models.Item{{Price: money.MustParse("1,00")}}}

	_, err := ApplyCorrection(r, Correction{})
	assert.ErrorIs(t, err, ErrCorrectionMismatch)

	_, err = ApplyCorrection(r, Correction{
		ItemPrices:  []money.Money{money.MustParse("1,00")},
		BonusPrices: []money.Money{money.MustParse("1,00")},
	})
	assert.ErrorIs(t, err, ErrCorrectionMismatch)
}
