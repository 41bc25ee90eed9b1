package repository

import (
	"context"
	"database/sql"
	"time"
)

// ConsentRecord is one append-only entry in the consent ledger,
// written when a customer accepts (or withdraws) a document in the
// funnel. It exists for compliance, independent of whether a booking
// was ultimately created.
type ConsentRecord struct {
	ID               uint64    `json:"id"`
	BookingReference string    `json:"booking_reference,omitempty"`
	Document         string    `json:"document"`
	Accepted         bool      `json:"accepted"`
	ClientEmail      string    `json:"client_email,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ConsentRepo provides access to the consent_log table.
type ConsentRepo struct {
	db *sql.DB
}

// NewConsentRepo returns a ConsentRepo bound to the given database.
func NewConsentRepo(db *sql.DB) *ConsentRepo { return &ConsentRepo{db: db} }

// Append inserts a consent entry and populates its ID and timestamp.
func (r *ConsentRepo) Append(ctx context.Context, rec *ConsentRecord) error {
	const q = `INSERT INTO consent_log (booking_reference, document, accepted, client_email, meta_user_agent)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, rec.BookingReference, rec.Document, rec.Accepted, rec.ClientEmail, rec.UserAgent)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM consent_log WHERE id = ?`, rec.ID).Scan(&rec.CreatedAt)
}
