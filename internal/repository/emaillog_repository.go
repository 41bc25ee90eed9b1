package repository

import (
	"context"
	"database/sql"
	"time"
)

// EmailLogRecord is one delivery attempt against the external
// automation endpoint. The admin console reads this list to render a
// booking's workflow status.
type EmailLogRecord struct {
	ID        uint64    `json:"id"`
	BookingID uint64    `json:"booking_id"`
	EmailType string    `json:"email_type"`
	Status    string    `json:"status"` // success | failed
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

// EmailLogRepo provides access to the email_log table. Rows are
// append-only; nothing updates or deletes them.
type EmailLogRepo struct {
	db *sql.DB
}

// NewEmailLogRepo returns an EmailLogRepo bound to the given database.
func NewEmailLogRepo(db *sql.DB) *EmailLogRepo { return &EmailLogRepo{db: db} }

// Append records one delivery attempt. errMsg is empty on success and
// is truncated to the column width on failure.
func (r *EmailLogRepo) Append(ctx context.Context, bookingID uint64, emailType, status, errMsg string) error {
	if len(errMsg) > 500 {
		errMsg = errMsg[:500]
	}
	const q = `INSERT INTO email_log (booking_id, email_type, status, error) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, bookingID, emailType, status, errMsg)
	return err
}

// ListByBooking returns a booking's delivery attempts, oldest first.
func (r *EmailLogRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]EmailLogRecord, error) {
	const q = `SELECT id, booking_id, email_type, status, error, created_at
	           FROM email_log WHERE booking_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]EmailLogRecord, 0)
	for rows.Next() {
		var rec EmailLogRecord
		if err := rows.Scan(&rec.ID, &rec.BookingID, &rec.EmailType, &rec.Status, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
