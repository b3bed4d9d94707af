package database

import (
	"database/sql"
	"fmt"

	"github.com/triggerNode/BuxTax/src/logger"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS payout_uploads (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL,
		column_mapping TEXT NOT NULL DEFAULT '{}',
		total_rows INTEGER NOT NULL DEFAULT 0,
		valid_rows INTEGER NOT NULL DEFAULT 0,
		errors TEXT NOT NULL DEFAULT '[]',
		date_start TEXT NOT NULL DEFAULT '',
		date_end TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payout_uploads_user ON payout_uploads(user_id, created_at);

	CREATE TABLE IF NOT EXISTS payout_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		upload_id TEXT NOT NULL,
		date TEXT NOT NULL,
		gross_amount REAL NOT NULL DEFAULT 0,
		net_amount REAL NOT NULL DEFAULT 0,
		marketplace_fee REAL NOT NULL DEFAULT 0,
		ad_spend REAL NOT NULL DEFAULT 0,
		group_splits REAL NOT NULL DEFAULT 0,
		affiliate_payouts REAL NOT NULL DEFAULT 0,
		refunds REAL NOT NULL DEFAULT 0,
		other_costs REAL NOT NULL DEFAULT 0,
		usd_value REAL NOT NULL DEFAULT 0,
		FOREIGN KEY(upload_id) REFERENCES payout_uploads(id)
	);

	CREATE INDEX IF NOT EXISTS idx_payout_records_upload ON payout_records(upload_id, date);

	CREATE TABLE IF NOT EXISTS entitlements (
		user_id TEXT PRIMARY KEY,
		plan TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL DEFAULT 'inactive',
		updated_at TEXT NOT NULL
	);
	`

// Open opens the sqlite database at databasePath (":memory:" works) and ensures the schema.
func Open(databasePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	// sqlite allows one writer; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	if err := migratePayoutUploads(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	logger.L.Info("Database tables ensured/created.")
	return db, nil
}

// migratePayoutUploads adds columns introduced after the first release to an existing
// payout_uploads table. A missing table is created later from schema.
func migratePayoutUploads(db *sql.DB) error {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='payout_uploads'").Scan(&tableName)
	if err == sql.ErrNoRows {
		logger.L.Info("payout_uploads table does not exist, no migration needed as table will be created.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking for payout_uploads table: %w", err)
	}

	columnExists, err := tableColumns(db, "payout_uploads")
	if err != nil {
		return err
	}

	added := []struct {
		name       string
		definition string
	}{
		{"filename", "TEXT NOT NULL DEFAULT ''"},
		{"column_mapping", "TEXT NOT NULL DEFAULT '{}'"},
		{"errors", "TEXT NOT NULL DEFAULT '[]'"},
	}
	for _, col := range added {
		if columnExists[col.name] {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE payout_uploads ADD COLUMN %s %s", col.name, col.definition)); err != nil {
			return fmt.Errorf("error adding %s column to payout_uploads: %w", col.name, err)
		}
		logger.L.Info("Added column to payout_uploads table", "column", col.name)
	}
	return nil
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("error querying table schema for %s: %w", table, err)
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("error scanning column info for %s: %w", table, err)
		}
		columnExists[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over column info for %s: %w", table, err)
	}
	return columnExists, nil
}
