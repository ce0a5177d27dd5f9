package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
	"github.com/mmynk/bonsplitser/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	store, err := New(dbPath)
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReceipt() *models.Receipt {
	return &models.Receipt{
		Supermarket:        "AH",
		Participants:       []string{"Bas", "Mila"},
		Subtotal:           money.MustParse("6,28"),
		SubtotalConfidence: 91.5,
		BonusTotal:         money.MustParse("1,00"),
		BonusConfidence:    88,
		GrandTotal:         money.MustParse("5,28"),
		TotalConfidence:    96,
		Items: []models.Item{
			{Price: money.MustParse("1,29"), PriceConfidence: 90, Description: "1 MELK"},
			{Price: money.MustParse("4,99"), PriceConfidence: 70, Marker: models.MarkerBonus, Description: "1 KAAS"},
		},
		BonusItems: []models.BonusItem{
			{Price: money.MustParse("1,00"), PriceConfidence: 85, Description: "KAAS"},
		},
		Verification: models.Verification{Subtotal: true, Bonus: true, Total: true},
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	t.Run("CreateReceipt generates ID and timestamp", func(t *testing.T) {
		receipt := sampleReceipt()
		require.NoError(t, store.CreateReceipt(ctx, receipt))

		assert.NotEmpty(t, receipt.ID)
		assert.NotZero(t, receipt.CreatedAt)
	})

	t.Run("GetReceipt retrieves complete receipt", func(t *testing.T) {
		original := sampleReceipt()
		require.NoError(t, store.CreateReceipt(ctx, original))

		got, err := store.GetReceipt(ctx, original.ID)
		require.NoError(t, err)

		assert.Equal(t, "AH", got.Supermarket)
		assert.Equal(t, "6.28", got.Subtotal.String())
		assert.Equal(t, "1.00", got.BonusTotal.String())
		assert.Equal(t, "5.28", got.GrandTotal.String())
		assert.Equal(t, 91.5, got.SubtotalConfidence)
		assert.Equal(t, []string{"Bas", "Mila"}, got.Participants)

		require.Len(t, got.Items, 2)
		assert.Equal(t, "1 KAAS", got.Items[1].Description)
		assert.Equal(t, models.MarkerBonus, got.Items[1].Marker)
		assert.Equal(t, "4.99", got.Items[1].Price.String())

		require.Len(t, got.BonusItems, 1)
		assert.Equal(t, "1.00", got.BonusItems[0].Price.String())
		assert.True(t, got.Verification.OK())
	})

	t.Run("GetReceipt returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetReceipt(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateReceipt replaces lines and totals", func(t *testing.T) {
		receipt := sampleReceipt()
		require.NoError(t, store.CreateReceipt(ctx, receipt))

		receipt.Items = receipt.Items[:1]
		receipt.Items[0].Price = money.MustParse("2,29")
		receipt.Subtotal = money.MustParse("2,29")
		receipt.Verification = models.Verification{Subtotal: true, Bonus: true, Total: false}
		require.NoError(t, store.UpdateReceipt(ctx, receipt))

		got, err := store.GetReceipt(ctx, receipt.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "2.29", got.Items[0].Price.String())
		assert.Equal(t, "2.29", got.Subtotal.String())
		assert.False(t, got.Verification.Total)
		assert.Equal(t, receipt.CreatedAt, got.CreatedAt, "CreatedAt must not change")
	})

	t.Run("UpdateReceipt returns ErrNotFound", func(t *testing.T) {
		receipt := sampleReceipt()
		receipt.ID = "missing"
		assert.ErrorIs(t, store.UpdateReceipt(ctx, receipt), storage.ErrNotFound)
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	receipt := sampleReceipt()
	require.NoError(t, store.CreateReceipt(ctx, receipt))

	first := &models.Settlement{
		ReceiptID:  receipt.ID,
		GrandTotal: receipt.GrandTotal,
		Balanced:   true,
		Totals: []models.ParticipantTotal{
			{Participant: "Bas", Total: money.MustParse("0,65")},
			{Participant: "Mila", Total: money.MustParse("4,63")},
		},
		LeftoverCents: 1,
		Shares: models.ShareAssignment{
			Items:      []models.Shares{{"Bas": 1, "Mila": 1}, {"Mila": 1}},
			BonusItems: []models.Shares{{"Mila": 1, "Bas": 0}},
		},
		CreatedAt: 100,
	}
	second := &models.Settlement{
		ReceiptID:  receipt.ID,
		GrandTotal: receipt.GrandTotal,
		Balanced:   false,
		Mismatches: []string{"subtotal", "participants"},
		Totals: []models.ParticipantTotal{
			{Participant: "Bas", Total: money.MustParse("5,28")},
			{Participant: "Mila", Total: money.Zero},
		},
		Shares: models.ShareAssignment{
			Items:      []models.Shares{{"Bas": 1}, {"Bas": 1}},
			BonusItems: []models.Shares{{"Bas": 1}},
		},
		CreatedAt: 200,
	}

	for _, s := range []*models.Settlement{first, second} {
		require.NoError(t, store.CreateSettlement(ctx, s))
		assert.NotEmpty(t, s.ID)
	}

	got, err := store.ListSettlements(ctx, receipt.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{second.ID, first.ID}, []string{got[0].ID, got[1].ID}, "newest first")

	newest := got[0]
	assert.False(t, newest.Balanced)
	assert.Equal(t, []string{"subtotal", "participants"}, newest.Mismatches)

	oldest := got[1]
	assert.True(t, oldest.Balanced)
	assert.Nil(t, oldest.Mismatches)
	assert.Equal(t, 1, oldest.LeftoverCents)
	assert.Equal(t, "4.63", oldest.TotalFor("Mila").String())
	require.Len(t, oldest.Shares.Items, 2)
	assert.Equal(t, 1, oldest.Shares.Items[0]["Bas"])
	assert.Equal(t, 1, oldest.Shares.Items[1]["Mila"])
	require.Len(t, oldest.Shares.BonusItems, 1)
	assert.Equal(t, 1, oldest.Shares.BonusItems[0]["Mila"])

	t.Run("unknown receipt is rejected", func(t *testing.T) {
		err := store.CreateSettlement(ctx, &models.Settlement{ReceiptID: "missing", CreatedAt: 1})
		assert.Error(t, err, "foreign key violation expected")
	})

	t.Run("empty list", func(t *testing.T) {
		got, err := store.ListSettlements(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
