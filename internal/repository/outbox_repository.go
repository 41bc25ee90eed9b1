package repository

import (
	"context"
	"database/sql"
	"time"
)

// OutboxRecord mirrors one row of the outbox_events table. A row is
// appended in the same transaction as the state change that produced
// it and drained asynchronously by the queue dispatcher, so a
// committed state change always has its event on disk and an aborted
// one never does.
type OutboxRecord struct {
	ID           uint64
	BookingID    uint64
	Event        string
	Payload      []byte // flattened JSON delivered downstream as-is
	Status       string // pending | dispatched
	Attempts     int
	CreatedAt    time.Time
	DispatchedAt *time.Time
}

// OutboxRepo provides access to the outbox_events table.
type OutboxRepo struct {
	db *sql.DB
}

// NewOutboxRepo returns an OutboxRepo bound to the given database.
func NewOutboxRepo(db *sql.DB) *OutboxRepo { return &OutboxRepo{db: db} }

// AppendTx inserts a pending event within the caller's transaction.
func (r *OutboxRepo) AppendTx(ctx context.Context, tx *sql.Tx, bookingID uint64, event string, payload []byte) error {
	const q = `INSERT INTO outbox_events (booking_id, event, payload) VALUES (?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, bookingID, event, payload)
	return err
}

// DeletePendingForBookingTx removes undelivered events for a booking.
// Used by the hard-delete path so no event fires for a removed record.
// Already-dispatched rows are kept for the operational trail.
func (r *OutboxRepo) DeletePendingForBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	const q = `DELETE FROM outbox_events WHERE booking_id = ? AND status = 'pending'`
	_, err := tx.ExecContext(ctx, q, bookingID)
	return err
}

// ListPending returns up to limit undelivered events, oldest first.
// The drainer claims rows with SKIP LOCKED so concurrent drain ticks
// (or a second instance) do not double-publish the same row while one
// still holds it.
func (r *OutboxRepo) ListPending(ctx context.Context, tx *sql.Tx, limit int) ([]OutboxRecord, error) {
	const q = `SELECT id, booking_id, event, payload, status, attempts, created_at
	           FROM outbox_events WHERE status = 'pending' ORDER BY id LIMIT ? FOR UPDATE SKIP LOCKED`
	rows, err := tx.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OutboxRecord
	for rows.Next() {
		var rec OutboxRecord
		if err := rows.Scan(&rec.ID, &rec.BookingID, &rec.Event, &rec.Payload, &rec.Status, &rec.Attempts, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkDispatchedTx flags a row as delivered to the broker.
func (r *OutboxRepo) MarkDispatchedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE outbox_events SET status = 'dispatched', dispatched_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// BumpAttemptTx records a failed publish; the row stays pending and
// the next drain tick retries it.
func (r *OutboxRepo) BumpAttemptTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE outbox_events SET attempts = attempts + 1 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
