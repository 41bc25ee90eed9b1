package repository

import (
	"context"
	"database/sql"

	"github.com/vespanova/booking-api/internal/model"
)

// ReportRepo provides access to the condition_reports table. Reports
// are append-only: entries are inserted after a completed rental and
// never deleted, so the history of every vehicle zone survives.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Append inserts one condition report and populates its ID and
// timestamp. Zone and kind must have been validated by the caller.
func (r *ReportRepo) Append(ctx context.Context, rep *model.ConditionReport) error {
	const q = `INSERT INTO condition_reports (booking_id, kind, zone, checked, note, photo_url)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		rep.BookingID, string(rep.Kind), string(rep.Zone), rep.Checked, rep.Note, rep.PhotoURL)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM condition_reports WHERE id = ?`, rep.ID).Scan(&rep.CreatedAt)
}

// ListByBooking returns a booking's reports of one kind in insertion
// order.
func (r *ReportRepo) ListByBooking(ctx context.Context, bookingID uint64, kind model.ReportKind) ([]model.ConditionReport, error) {
	const q = `SELECT id, booking_id, kind, zone, checked, note, photo_url, created_at
	           FROM condition_reports WHERE booking_id = ? AND kind = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ConditionReport, 0)
	for rows.Next() {
		var rep model.ConditionReport
		var kindStr, zoneStr string
		if err := rows.Scan(&rep.ID, &rep.BookingID, &kindStr, &zoneStr, &rep.Checked, &rep.Note, &rep.PhotoURL, &rep.CreatedAt); err != nil {
			return nil, err
		}
		rep.Kind = model.ReportKind(kindStr)
		rep.Zone = model.ReportZone(zoneStr)
		out = append(out, rep)
	}
	return out, rows.Err()
}
