package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vespanova/booking-api/internal/model"
)

// BookingRepo provides CRUD operations for the bookings table. All
// status changes and availability-relevant writes run inside caller
// supplied transactions so the outbox append and the capacity recount
// commit atomically with them.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, booking_reference, status,
	customer_name, customer_email, customer_phone, customer_age, license_category,
	vespa_model, start_date, rental_type, route, helmet, message,
	price_base_cents, price_helmet_cents, price_subtotal_cents, price_deposit_cents, price_total_cents,
	wf_confirmation_email_sent, wf_payment_processed, wf_thank_you_email_sent, wf_completed_at,
	doc_rental_agreement, doc_terms, doc_privacy_policy, signature_ref,
	meta_language, meta_user_agent, meta_referrer, meta_source,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBooking maps one bookings row onto the model. start_date scans
// as time.Time (parseTime DSN) and is carried as YYYY-MM-DD.
func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var status string
	var startDate time.Time
	var rentalType string
	var completedAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.Reference, &status,
		&b.Customer.Name, &b.Customer.Email, &b.Customer.Phone, &b.Customer.Age, &b.Customer.LicenseCategory,
		&b.Rental.Model, &startDate, &rentalType, &b.Rental.Route, &b.Rental.Helmet, &b.Rental.Message,
		&b.Pricing.BaseCents, &b.Pricing.HelmetCents, &b.Pricing.SubtotalCents, &b.Pricing.DepositCents, &b.Pricing.TotalCents,
		&b.Workflow.ConfirmationEmailSent, &b.Workflow.PaymentProcessed, &b.Workflow.ThankYouEmailSent, &completedAt,
		&b.Documents.RentalAgreement, &b.Documents.Terms, &b.Documents.PrivacyPolicy, &b.Documents.SignatureRef,
		&b.Metadata.Language, &b.Metadata.UserAgent, &b.Metadata.Referrer, &b.Metadata.Source,
		&b.Metadata.CreatedAt, &b.Metadata.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.Status(status)
	b.Rental.StartDate = startDate.Format("2006-01-02")
	b.Rental.EndDate = b.Rental.StartDate
	b.Rental.RentalType = model.RentalType(rentalType)
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		b.Workflow.CompletedAt = &t
	}
	return &b, nil
}

// CountActiveOnDateTx counts non-cancelled bookings on a date inside
// the given transaction, taking row locks so a concurrent create for
// the same date serializes behind it. This is what closes the
// read-then-write capacity race: the count and the insert commit
// atomically or not at all.
func (r *BookingRepo) CountActiveOnDateTx(ctx context.Context, tx *sql.Tx, date string) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE start_date = ? AND status <> 'cancelled' FOR UPDATE`
	var n int
	if err := tx.QueryRowContext(ctx, q, date).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateCapacityCheckedTx recounts the date under lock and inserts the
// booking only when a unit is still free, returning ErrDateFull
// otherwise. Count and insert share the caller's transaction, so two
// concurrent submissions for the last unit serialize on the row locks
// and exactly one of them succeeds.
func (r *BookingRepo) CreateCapacityCheckedTx(ctx context.Context, tx *sql.Tx, b *model.Booking, fleetSize int) error {
	n, err := r.CountActiveOnDateTx(ctx, tx, b.Rental.StartDate)
	if err != nil {
		return err
	}
	if n >= fleetSize {
		return ErrDateFull
	}
	return r.CreateTx(ctx, tx, b)
}

// CreateTx inserts a new booking within the provided transaction and
// populates the generated ID plus the database-assigned timestamps on
// the record. The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (
		booking_reference, status,
		customer_name, customer_email, customer_phone, customer_age, license_category,
		vespa_model, start_date, rental_type, route, helmet, message,
		price_base_cents, price_helmet_cents, price_subtotal_cents, price_deposit_cents, price_total_cents,
		doc_rental_agreement, doc_terms, doc_privacy_policy, signature_ref,
		meta_language, meta_user_agent, meta_referrer, meta_source
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.Reference, string(b.Status),
		b.Customer.Name, b.Customer.Email, b.Customer.Phone, b.Customer.Age, b.Customer.LicenseCategory,
		b.Rental.Model, b.Rental.StartDate, string(b.Rental.RentalType), b.Rental.Route, b.Rental.Helmet, b.Rental.Message,
		b.Pricing.BaseCents, b.Pricing.HelmetCents, b.Pricing.SubtotalCents, b.Pricing.DepositCents, b.Pricing.TotalCents,
		b.Documents.RentalAgreement, b.Documents.Terms, b.Documents.PrivacyPolicy, b.Documents.SignatureRef,
		b.Metadata.Language, b.Metadata.UserAgent, b.Metadata.Referrer, b.Metadata.Source,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Read back timestamps and defaults assigned by the database.
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.Metadata.CreatedAt, &b.Metadata.UpdatedAt)
}

// GetByID loads one booking. It returns ErrNotFound when no row
// matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// GetByIDTx is GetByID inside a transaction, locking the row so a
// concurrent transition or edit of the same booking serializes.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// ListByDateRange returns all bookings whose start date falls within
// [from, to], cancelled ones included; the availability index filters
// by status itself so a cancellation frees its date on the next read.
func (r *BookingRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE start_date BETWEEN ? AND ? ORDER BY start_date, id`
	rows, err := r.db.QueryContext(ctx, q, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListFilter narrows the admin booking list. Zero values mean "no
// filter" for their field.
type ListFilter struct {
	Status   model.Status
	From, To string // YYYY-MM-DD, inclusive
}

// List returns bookings for the admin console, newest first.
func (r *BookingRepo) List(ctx context.Context, f ListFilter) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := make([]any, 0, 3)
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.From != "" {
		q += ` AND start_date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		q += ` AND start_date <= ?`
		args = append(args, f.To)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateStatusTx persists a status change plus the updated timestamp.
// Entering completed additionally stamps the workflow completion time.
// Legality of the transition must have been checked by the caller via
// model.Transition before any write happens.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to model.Status) error {
	if to == model.StatusCompleted {
		const q = `UPDATE bookings SET status = ?, wf_completed_at = UTC_TIMESTAMP(), updated_at = UTC_TIMESTAMP() WHERE id = ?`
		_, err := tx.ExecContext(ctx, q, string(to), id)
		return err
	}
	const q = `UPDATE bookings SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(to), id)
	return err
}

// UpdateDetailsTx persists an admin edit of non-status fields. The
// caller passes a fully recomputed booking; pricing totals must have
// been derived from the edited components, never taken from client
// input.
func (r *BookingRepo) UpdateDetailsTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `UPDATE bookings SET
		customer_name = ?, customer_email = ?, customer_phone = ?, customer_age = ?, license_category = ?,
		vespa_model = ?, start_date = ?, rental_type = ?, route = ?, helmet = ?, message = ?,
		price_base_cents = ?, price_helmet_cents = ?, price_subtotal_cents = ?, price_deposit_cents = ?, price_total_cents = ?,
		updated_at = UTC_TIMESTAMP()
		WHERE id = ?`
	res, err := tx.ExecContext(ctx, q,
		b.Customer.Name, b.Customer.Email, b.Customer.Phone, b.Customer.Age, b.Customer.LicenseCategory,
		b.Rental.Model, b.Rental.StartDate, string(b.Rental.RentalType), b.Rental.Route, b.Rental.Helmet, b.Rental.Message,
		b.Pricing.BaseCents, b.Pricing.HelmetCents, b.Pricing.SubtotalCents, b.Pricing.DepositCents, b.Pricing.TotalCents,
		b.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTx hard-removes a booking. This is irreversible and not a
// status transition; pending outbox rows for the booking should be
// removed in the same transaction so no event fires for a record that
// no longer exists.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// workflowColumns whitelists the updatable workflow flags. Flags are
// monotonic: they are only ever set, never cleared.
var workflowColumns = map[string]string{
	"confirmation_email_sent": "wf_confirmation_email_sent",
	"payment_processed":       "wf_payment_processed",
	"thank_you_email_sent":    "wf_thank_you_email_sent",
}

// SetWorkflowFlag marks a lifecycle side effect as fired. Unknown
// flags are ignored so event consumers stay forward-compatible.
func (r *BookingRepo) SetWorkflowFlag(ctx context.Context, id uint64, flag string) error {
	col, ok := workflowColumns[flag]
	if !ok {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET `+col+` = 1, updated_at = UTC_TIMESTAMP() WHERE id = ?`, id)
	return err
}
