package model

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Payment statuses stored on an entitlement.
const (
	PaymentStatusActive   = "active"
	PaymentStatusPastDue  = "past_due"
	PaymentStatusInactive = "inactive"
)

var ErrEntitlementNotFound = errors.New("entitlement not found")

// Entitlement records whether a user currently has paid access.
type Entitlement struct {
	UserID        string    `json:"user_id"`
	Plan          string    `json:"plan"`
	PaymentStatus string    `json:"payment_status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsActive reports whether the entitlement grants access.
func (e *Entitlement) IsActive() bool {
	return e != nil && e.PaymentStatus == PaymentStatusActive
}

// UpsertEntitlement inserts or replaces the user's entitlement. An empty Plan keeps the
// stored plan.
func UpsertEntitlement(db *sql.DB, e *Entitlement) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}
	_, err := db.Exec(`
	INSERT INTO entitlements (user_id, plan, payment_status, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		plan = CASE WHEN excluded.plan = '' THEN entitlements.plan ELSE excluded.plan END,
		payment_status = excluded.payment_status,
		updated_at = excluded.updated_at`,
		e.UserID, e.Plan, e.PaymentStatus, e.UpdatedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to upsert entitlement for %s: %w", e.UserID, err)
	}
	return nil
}

// GetEntitlementByUserID returns the stored entitlement or ErrEntitlementNotFound.
func GetEntitlementByUserID(db *sql.DB, userID string) (*Entitlement, error) {
	row := db.QueryRow(`SELECT user_id, plan, payment_status, updated_at FROM entitlements WHERE user_id = ?`, userID)

	var e Entitlement
	var updatedAt string
	if err := row.Scan(&e.UserID, &e.Plan, &e.PaymentStatus, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEntitlementNotFound
		}
		return nil, err
	}
	t, err := time.Parse(timestampLayout, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at on entitlement %s: %w", userID, err)
	}
	e.UpdatedAt = t
	return &e, nil
}
