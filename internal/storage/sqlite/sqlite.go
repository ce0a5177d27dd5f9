// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver. Pragmas in the DSN apply to every
	// pooled connection, not just the first one.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateReceipt persists a new receipt to the database.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	// Generate ID if not set
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	v := receipt.Verification
	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, supermarket, subtotal, subtotal_confidence, bonus_total, bonus_confidence,
		 grand_total, total_confidence, subtotal_ok, bonus_ok, total_ok, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.Supermarket,
		receipt.Subtotal, receipt.SubtotalConfidence,
		receipt.BonusTotal, receipt.BonusConfidence,
		receipt.GrandTotal, receipt.TotalConfidence,
		v.Subtotal, v.Bonus, v.Total, receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	// Insert participants
	for _, name := range receipt.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (receipt_id, name) VALUES (?, ?)",
			receipt.ID, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := insertLines(ctx, tx, receipt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateReceipt replaces the amounts, lines and verification of a receipt.
// Participants and creation time are left unchanged.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	v := receipt.Verification
	res, err := tx.ExecContext(ctx,
		`UPDATE receipts SET subtotal = ?, subtotal_confidence = ?, bonus_total = ?, bonus_confidence = ?,
		 grand_total = ?, total_confidence = ?, subtotal_ok = ?, bonus_ok = ?, total_ok = ?
		 WHERE id = ?`,
		receipt.Subtotal, receipt.SubtotalConfidence,
		receipt.BonusTotal, receipt.BonusConfidence,
		receipt.GrandTotal, receipt.TotalConfidence,
		v.Subtotal, v.Bonus, v.Total, receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated receipt: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("receipt %s: %w", receipt.ID, storage.ErrNotFound)
	}

	// Replace lines
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE receipt_id = ?", receipt.ID); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM bonus_items WHERE receipt_id = ?", receipt.ID); err != nil {
		return fmt.Errorf("failed to delete bonus items: %w", err)
	}
	if err := insertLines(ctx, tx, receipt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, receipt *models.Receipt) error {
	for i, item := range receipt.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (receipt_id, position, price, price_confidence, marker, description)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			receipt.ID, i, item.Price, item.PriceConfidence, string(item.Marker), item.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	for i, item := range receipt.BonusItems {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bonus_items (receipt_id, position, price, price_confidence, description)
			 VALUES (?, ?, ?, ?, ?)`,
			receipt.ID, i, item.Price, item.PriceConfidence, item.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bonus item: %w", err)
		}
	}

	return nil
}

// GetReceipt retrieves a receipt by ID, including all lines and participants.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	v := &receipt.Verification
	err := s.db.QueryRowContext(ctx,
		`SELECT id, supermarket, subtotal, subtotal_confidence, bonus_total, bonus_confidence,
		 grand_total, total_confidence, subtotal_ok, bonus_ok, total_ok, created_at
		 FROM receipts WHERE id = ?`,
		receiptID,
	).Scan(&receipt.ID, &receipt.Supermarket,
		&receipt.Subtotal, &receipt.SubtotalConfidence,
		&receipt.BonusTotal, &receipt.BonusConfidence,
		&receipt.GrandTotal, &receipt.TotalConfidence,
		&v.Subtotal, &v.Bonus, &v.Total, &receipt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	// Get participants
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM participants WHERE receipt_id = ? ORDER BY name",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		receipt.Participants = append(receipt.Participants, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	// Get items in printed order
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT price, price_confidence, marker, description FROM items WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	receipt.Items = []models.Item{}
	for itemRows.Next() {
		var item models.Item
		var marker string
		if err := itemRows.Scan(&item.Price, &item.PriceConfidence, &marker, &item.Description); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Marker = models.BonusMarker(marker)
		receipt.Items = append(receipt.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	// Get discounts in printed order
	bonusRows, err := s.db.QueryContext(ctx,
		"SELECT price, price_confidence, description FROM bonus_items WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus items: %w", err)
	}
	defer bonusRows.Close()

	receipt.BonusItems = []models.BonusItem{}
	for bonusRows.Next() {
		var item models.BonusItem
		if err := bonusRows.Scan(&item.Price, &item.PriceConfidence, &item.Description); err != nil {
			return nil, fmt.Errorf("failed to scan bonus item: %w", err)
		}
		receipt.BonusItems = append(receipt.BonusItems, item)
	}
	if err := bonusRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bonus items: %w", err)
	}

	return receipt, nil
}
