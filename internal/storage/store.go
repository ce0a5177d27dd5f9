// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/bonsplitser/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for receipt storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateReceipt persists a new receipt.
	// The receipt.ID and CreatedAt fields are populated by the store when empty.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt with its lines by ID.
	// Returns an error wrapping ErrNotFound if the receipt does not exist.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// UpdateReceipt replaces the totals, lines and verification of a receipt.
	// Returns an error wrapping ErrNotFound if the receipt does not exist.
	UpdateReceipt(ctx context.Context, receipt *models.Receipt) error

	// CreateSettlement persists a settlement of an existing receipt.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements returns the settlements of a receipt, newest first.
	ListSettlements(ctx context.Context, receiptID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
