package receipt

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
	"github.com/mmynk/bonsplitser/internal/ocr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// toLines builds a line stream from space separated rows. Every token gets a
// confidence of 90.
func toLines(rows ...string) []ocr.Line {
	lines := make([]ocr.Line, len(rows))
	for i, row := range rows {
		var tokens []ocr.Token
		for _, word := range strings.Fields(row) {
			tokens = append(tokens, ocr.Token{Text: word, Confidence: 90, Key: ocr.LineKey{Page: 1, Block: 1, Paragraph: 1, Line: i + 1}})
		}
		lines[i] = ocr.Line{Index: i, Tokens: tokens}
	}
	return lines
}

var sampleReceipt = []string{
	"ALBERT HEIJN",
	"Amsterdam",
	"AANTAL OMSCHRIJVING PRIJS BEDRAG",
	"BONUSKAART xx1234",
	"1 MELK 1,29",
	"2 BROOD 1,15 2,30 B",
	"1 KAAS 4,9935%",
	"1 APPELS 199b",
	"SUBTOTAAL 10,57",
	"BONUS BROOD -0,50",
	"35% K KAAS -1,75",
	"UW VOORDEEL 2,25",
	"BETAALD MET PIN",
	"TOTAAL 8,32",
	"BEDANKT EN TOT ZIENS",
	"TOTAAL 99,99",
}

func TestScanWorkedReceipt(t *testing.T) {
	r, warnings := NewScanner(AlbertHeijn, testLogger()).Scan(toLines(sampleReceipt...))
	require.Empty(t, warnings)

	assert.Equal(t, []models.Item{
		{Price: money.MustParse("1,29"), PriceConfidence: 90, Description: "1 MELK"},
		{Price: money.MustParse("2,30"), PriceConfidence: 90, Marker: models.MarkerBonus, Description: "2 BROOD"},
		{Price: money.MustParse("4,99"), PriceConfidence: 90, Marker: models.MarkerPercent35, Description: "1 KAAS"},
		{Price: money.MustParse("1,99"), PriceConfidence: 90, Marker: models.MarkerBonus, Description: "1 APPELS"},
	}, r.Items)
	assert.Equal(t, []models.BonusItem{
		{Price: money.MustParse("0,50"), PriceConfidence: 90, Description: "BROOD"},
		{Price: money.MustParse("1,75"), PriceConfidence: 90, Description: "KAAS"},
	}, r.BonusItems)

	assert.Equal(t, "10.57", r.Subtotal.String())
	assert.Equal(t, "2.25", r.BonusTotal.String())
	assert.Equal(t, "8.32", r.GrandTotal.String())
	assert.Equal(t, 90.0, r.TotalConfidence)
	assert.True(t, Verify(r).OK())
}

func TestScanIsDeterministic(t *testing.T) {
	s := NewScanner(AlbertHeijn, testLogger())
	first, w1 := s.Scan(toLines(sampleReceipt...))
	second, w2 := s.Scan(toLines(sampleReceipt...))
	assert.Equal(t, first, second)
	assert.Equal(t, w1, w2)
}

func TestScanItemLines(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		price       string
		marker      models.BonusMarker
		description string
	}{
		{name: "plain", line: "1 MELK 1,29", price: "1.29", description: "1 MELK"},
		{name: "marker own token", line: "1 KIP 5,49 B", price: "5.49", marker: models.MarkerBonus, description: "1 KIP"},
		{name: "lowercase marker own token", line: "1 KIP 5,49 b", price: "5.49", marker: models.MarkerBonus, description: "1 KIP"},
		{name: "marker glued", line: "1 KIP 5,49B", price: "5.49", marker: models.MarkerBonus, description: "1 KIP"},
		{name: "percent own token", line: "1 WIJN 7,99 35%", price: "7.99", marker: models.MarkerPercent35, description: "1 WIJN"},
		{name: "percent glued", line: "1 WIJN 7,9935%", price: "7.99", marker: models.MarkerPercent35, description: "1 WIJN"},
		{name: "missing separator", line: "1 THEE 249", price: "2.49", description: "1 THEE"},
		{name: "unit price skipped", line: "3 YOGHURT 0,89 2,67", price: "2.67", description: "3 YOGHURT"},
		{name: "price only", line: "0,99", price: "0.99", description: ""},
		{name: "returned deposit", line: "1 EMBALLAGE -0,25", price: "-0.25", description: "1 EMBALLAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := NewScanner(AlbertHeijn, testLogger()).Scan(toLines("AANTAL", tt.line))
			require.Len(t, r.Items, 1)
			item := r.Items[0]
			assert.Equal(t, tt.price, item.Price.String())
			assert.Equal(t, tt.marker, item.Marker)
			assert.Equal(t, tt.description, item.Description)
		})
	}
}

func TestScanLoyaltyCardSkippedOnce(t *testing.T) {
	r, warnings := NewScanner(AlbertHeijn, testLogger()).Scan(toLines(
		"OMSCHRIJVING",
		"bonuskaart xx1234",
		"1 MELK 1,29",
		"BONUSKAART 1,00",
		"SUBTOTAAL 2,29",
		"VOORDEEL 0,00",
		"TOTAAL 2,29",
	))
	require.Empty(t, warnings)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "BONUSKAART", r.Items[1].Description)
	assert.True(t, Verify(r).OK())
}

func TestScanHeaderIsCaseInsensitive(t *testing.T) {
	r, _ := NewScanner(AlbertHeijn, testLogger()).Scan(toLines("aantal omschrijving", "1 MELK 1,29", "subtotaal 1,29"))
	require.Len(t, r.Items, 1)
	assert.Equal(t, "1.29", r.Subtotal.String())
}

func TestScanSkipsUnreadableLines(t *testing.T) {
	lines := toLines(
		"AANTAL",
		"1 MELK 1,29",
		"1 KAAS ??",
		"1 BROOD 2,00",
		"SUBTOTAAL 3,29",
		"VOORDEEL 0,00",
		"TOTAAL 3,29",
	)
	r, warnings := NewScanner(AlbertHeijn, testLogger()).Scan(lines)

	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Line)
	assert.Equal(t, "ITEMS", warnings[0].State)
	assert.ErrorIs(t, warnings[0], money.ErrParse)

	require.Len(t, r.Items, 2)
	assert.Equal(t, "3.29", r.GrandTotal.String())
	assert.True(t, r.BonusTotal.IsZero())
}

func TestScanUnreadableTotalStillTransitions(t *testing.T) {
	r, warnings := NewScanner(AlbertHeijn, testLogger()).Scan(toLines(
		"AANTAL",
		"1 MELK 1,29",
		"SUBTOTAAL ??",
		"BONUS MELK -0,10",
		"VOORDEEL 0,10",
		"TOTAAL 1,19",
	))
	require.Len(t, warnings, 1)
	assert.Equal(t, "ITEMS", warnings[0].State)
	assert.True(t, r.Subtotal.IsZero())
	require.Len(t, r.BonusItems, 1)
	assert.Equal(t, "1.19", r.GrandTotal.String())
	assert.False(t, Verify(r).Subtotal)
}

func TestScanIncompleteReceipt(t *testing.T) {
	r, warnings := NewScanner(AlbertHeijn, testLogger()).Scan(toLines(
		"AANTAL",
		"1 MELK 1,29",
		"SUBTOTAAL 1,29",
	))
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], ErrIncomplete)
	assert.Equal(t, -1, warnings[0].Line)
	assert.Equal(t, "BONUS", warnings[0].State)

	assert.Equal(t, "1.29", r.Subtotal.String())
	assert.True(t, r.GrandTotal.IsZero())
	v := Verify(r)
	assert.True(t, v.Subtotal)
	assert.False(t, v.Total)
}

func TestScanEmptyStream(t *testing.T) {
	r, warnings := NewScanner(AlbertHeijn, testLogger()).Scan(nil)
	require.Len(t, warnings, 1)
	assert.Equal(t, "START", warnings[0].State)
	assert.Empty(t, r.Items)
	assert.Empty(t, r.BonusItems)
}
