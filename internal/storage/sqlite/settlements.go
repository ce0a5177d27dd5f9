package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/bonsplitser/internal/models"
)

const (
	shareKindItem  = "item"
	shareKindBonus = "bonus"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, receipt_id, grand_total, balanced, mismatches, leftover_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.ReceiptID, settlement.GrandTotal, settlement.Balanced,
		strings.Join(settlement.Mismatches, ","), settlement.LeftoverCents, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for i, t := range settlement.Totals {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO settlement_totals (settlement_id, position, participant, total) VALUES (?, ?, ?, ?)",
			settlement.ID, i, t.Participant, t.Total,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement total: %w", err)
		}
	}

	insertShares := func(kind string, lines []models.Shares) error {
		for i, shares := range lines {
			for participant, n := range shares {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO settlement_shares (settlement_id, kind, position, participant, shares)
					 VALUES (?, ?, ?, ?, ?)`,
					settlement.ID, kind, i, participant, n,
				)
				if err != nil {
					return fmt.Errorf("failed to insert %s shares: %w", kind, err)
				}
			}
		}
		return nil
	}
	if err := insertShares(shareKindItem, settlement.Shares.Items); err != nil {
		return err
	}
	if err := insertShares(shareKindBonus, settlement.Shares.BonusItems); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListSettlements retrieves all settlements of a receipt, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, receiptID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, receipt_id, grand_total, balanced, mismatches, leftover_cents, created_at
		 FROM settlements WHERE receipt_id = ? ORDER BY created_at DESC, rowid DESC`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var mismatches string

		if err := rows.Scan(&settlement.ID, &settlement.ReceiptID, &settlement.GrandTotal, &settlement.Balanced,
			&mismatches, &settlement.LeftoverCents, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if mismatches != "" {
			settlement.Mismatches = strings.Split(mismatches, ",")
		}

		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	rows.Close()

	for _, settlement := range settlements {
		if err := s.loadSettlementDetails(ctx, settlement); err != nil {
			return nil, err
		}
	}

	return settlements, nil
}

func (s *SQLiteStore) loadSettlementDetails(ctx context.Context, settlement *models.Settlement) error {
	totalRows, err := s.db.QueryContext(ctx,
		"SELECT participant, total FROM settlement_totals WHERE settlement_id = ? ORDER BY position",
		settlement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get settlement totals: %w", err)
	}
	defer totalRows.Close()

	for totalRows.Next() {
		var t models.ParticipantTotal
		if err := totalRows.Scan(&t.Participant, &t.Total); err != nil {
			return fmt.Errorf("failed to scan settlement total: %w", err)
		}
		settlement.Totals = append(settlement.Totals, t)
	}
	if err := totalRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate settlement totals: %w", err)
	}

	shareRows, err := s.db.QueryContext(ctx,
		"SELECT kind, position, participant, shares FROM settlement_shares WHERE settlement_id = ?",
		settlement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get settlement shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var kind, participant string
		var position, n int
		if err := shareRows.Scan(&kind, &position, &participant, &n); err != nil {
			return fmt.Errorf("failed to scan settlement shares: %w", err)
		}
		lines := &settlement.Shares.Items
		if kind == shareKindBonus {
			lines = &settlement.Shares.BonusItems
		}
		for len(*lines) <= position {
			*lines = append(*lines, models.Shares{})
		}
		(*lines)[position][participant] = n
	}
	if err := shareRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate settlement shares: %w", err)
	}

	return nil
}
