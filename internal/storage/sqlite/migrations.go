package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as TEXT with two decimals.
const schema = `
CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    supermarket TEXT NOT NULL,
    subtotal TEXT NOT NULL,
    subtotal_confidence REAL NOT NULL,
    bonus_total TEXT NOT NULL,
    bonus_confidence REAL NOT NULL,
    grand_total TEXT NOT NULL,
    total_confidence REAL NOT NULL,
    subtotal_ok INTEGER NOT NULL,
    bonus_ok INTEGER NOT NULL,
    total_ok INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    receipt_id TEXT NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (receipt_id, name),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS items (
    receipt_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    price TEXT NOT NULL,
    price_confidence REAL NOT NULL,
    marker TEXT NOT NULL,
    description TEXT NOT NULL,
    PRIMARY KEY (receipt_id, position),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bonus_items (
    receipt_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    price TEXT NOT NULL,
    price_confidence REAL NOT NULL,
    description TEXT NOT NULL,
    PRIMARY KEY (receipt_id, position),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL,
    grand_total TEXT NOT NULL,
    balanced INTEGER NOT NULL,
    mismatches TEXT NOT NULL,
    leftover_cents INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlement_totals (
    settlement_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    participant TEXT NOT NULL,
    total TEXT NOT NULL,
    PRIMARY KEY (settlement_id, position),
    FOREIGN KEY (settlement_id) REFERENCES settlements(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlement_shares (
    settlement_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    position INTEGER NOT NULL,
    participant TEXT NOT NULL,
    shares INTEGER NOT NULL,
    PRIMARY KEY (settlement_id, kind, position, participant),
    FOREIGN KEY (settlement_id) REFERENCES settlements(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_participants_receipt_id ON participants(receipt_id);
CREATE INDEX IF NOT EXISTS idx_items_receipt_id ON items(receipt_id);
CREATE INDEX IF NOT EXISTS idx_bonus_items_receipt_id ON bonus_items(receipt_id);
CREATE INDEX IF NOT EXISTS idx_settlements_receipt_id ON settlements(receipt_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
