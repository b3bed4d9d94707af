package model

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/triggerNode/BuxTax/src/models"
)

var ErrUploadNotFound = errors.New("upload not found")

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// PayoutUpload is one stored CSV upload together with its normalized records.
type PayoutUpload struct {
	ID        string                `json:"id"`
	UserID    string                `json:"-"`
	Filename  string                `json:"filename"`
	Format    string                `json:"format"`
	Mapping   models.ColumnMapping  `json:"mapping"`
	TotalRows int                   `json:"total_rows"`
	ValidRows int                   `json:"valid_rows"`
	Errors    []string              `json:"errors"`
	DateRange models.DateRange      `json:"date_range"`
	CreatedAt time.Time             `json:"created_at"`
	Records   []models.PayoutRecord `json:"records"`
}

// CreateUpload inserts u and its records in a single transaction.
func CreateUpload(db *sql.DB, u *PayoutUpload) error {
	mappingJSON, err := json.Marshal(u.Mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal column mapping: %w", err)
	}
	errs := u.Errors
	if errs == nil {
		errs = []string{}
	}
	errorsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("failed to marshal upload errors: %w", err)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
	INSERT INTO payout_uploads (id, user_id, filename, format, column_mapping, total_rows, valid_rows, errors, date_start, date_end, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserID, u.Filename, u.Format, string(mappingJSON), u.TotalRows, u.ValidRows,
		string(errorsJSON), u.DateRange.Start, u.DateRange.End, u.CreatedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO payout_records (upload_id, date, gross_amount, net_amount, marketplace_fee, ad_spend, group_splits, affiliate_payouts, refunds, other_costs, usd_value)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range u.Records {
		if _, err := stmt.Exec(u.ID, r.Date, r.GrossAmount, r.NetAmount, r.MarketplaceFee, r.AdSpend,
			r.GroupSplits, r.AffiliatePayouts, r.Refunds, r.OtherCosts, r.USDValue); err != nil {
			return fmt.Errorf("failed to insert record for %s: %w", r.Date, err)
		}
	}
	return tx.Commit()
}

// GetLatestUploadByUserID returns the user's most recent upload with its records.
func GetLatestUploadByUserID(db *sql.DB, userID string) (*PayoutUpload, error) {
	row := db.QueryRow(`
	SELECT id, user_id, filename, format, column_mapping, total_rows, valid_rows, errors, date_start, date_end, created_at
	FROM payout_uploads
	WHERE user_id = ?
	ORDER BY created_at DESC, rowid DESC
	LIMIT 1`, userID)

	var u PayoutUpload
	var mappingJSON, errorsJSON, createdAt string
	err := row.Scan(&u.ID, &u.UserID, &u.Filename, &u.Format, &mappingJSON, &u.TotalRows, &u.ValidRows,
		&errorsJSON, &u.DateRange.Start, &u.DateRange.End, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(mappingJSON), &u.Mapping); err != nil {
		return nil, fmt.Errorf("failed to decode column mapping of upload %s: %w", u.ID, err)
	}
	if err := json.Unmarshal([]byte(errorsJSON), &u.Errors); err != nil {
		return nil, fmt.Errorf("failed to decode errors of upload %s: %w", u.ID, err)
	}
	if u.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at on upload %s: %w", u.ID, err)
	}

	u.Records, err = GetRecordsByUploadID(db, u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRecordsByUploadID returns the records of an upload ordered by date.
func GetRecordsByUploadID(db *sql.DB, uploadID string) ([]models.PayoutRecord, error) {
	rows, err := db.Query(`
	SELECT date, gross_amount, net_amount, marketplace_fee, ad_spend, group_splits, affiliate_payouts, refunds, other_costs, usd_value
	FROM payout_records
	WHERE upload_id = ?
	ORDER BY date ASC, id ASC`, uploadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.PayoutRecord{}
	for rows.Next() {
		var r models.PayoutRecord
		if err := rows.Scan(&r.Date, &r.GrossAmount, &r.NetAmount, &r.MarketplaceFee, &r.AdSpend,
			&r.GroupSplits, &r.AffiliatePayouts, &r.Refunds, &r.OtherCosts, &r.USDValue); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteUploadsByUserID removes every upload of the user and returns how many were deleted.
func DeleteUploadsByUserID(db *sql.DB, userID string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM payout_records WHERE upload_id IN (SELECT id FROM payout_uploads WHERE user_id = ?)`, userID); err != nil {
		return 0, fmt.Errorf("failed to delete payout records: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM payout_uploads WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payout uploads: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
