package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vespanova/booking-api/internal/repository"
)

func newAdminHandler(t *testing.T, fleetSize int) (*AdminBookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAdminBookingHandler(
		repository.NewBookingRepo(db),
		repository.NewOutboxRepo(db),
		repository.NewEmailLogRepo(db),
		nil,
		fleetSize,
	), mock
}

// bookingRow builds a full bookings row in column order for scanning.
func bookingRow(id uint64, status, startDate string) *sqlmock.Rows {
	start, _ := time.Parse("2006-01-02", startDate)
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "booking_reference", "status",
		"customer_name", "customer_email", "customer_phone", "customer_age", "license_category",
		"vespa_model", "start_date", "rental_type", "route", "helmet", "message",
		"price_base_cents", "price_helmet_cents", "price_subtotal_cents", "price_deposit_cents", "price_total_cents",
		"wf_confirmation_email_sent", "wf_payment_processed", "wf_thank_you_email_sent", "wf_completed_at",
		"doc_rental_agreement", "doc_terms", "doc_privacy_policy", "signature_ref",
		"meta_language", "meta_user_agent", "meta_referrer", "meta_source",
		"created_at", "updated_at",
	}).AddRow(
		id, "VN2026-000123ABCDEF", status,
		"Ana Petrova", "ana@example.com", "+49 170 1234567", 29, "AM",
		"Primavera 125", start, "full", "", true, "",
		8900, 500, 9400, 15000, 24400,
		false, false, false, nil,
		true, true, true, "",
		"en", "", "", "website",
		now, now,
	)
}

func patchBooking(h *AdminBookingHandler, id, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/v1/admin/bookings/"+id, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return rec, h.Edit(c)
}

func TestEditRejectsMoveToFullDate(t *testing.T) {
	h, mock := newAdminHandler(t, 2)

	// The target date already carries two active bookings on a fleet of
	// two: the edit must recount under lock and refuse before writing.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, "confirmed", "2026-07-09"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE start_date = \? AND status <> 'cancelled' FOR UPDATE`).
		WithArgs("2026-07-10").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	rec, err := patchBooking(h, "7", `{"start_date":"2026-07-10"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "date_full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditMovesBookingWhenTargetDateHasCapacity(t *testing.T) {
	h, mock := newAdminHandler(t, 2)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, "confirmed", "2026-07-09"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE start_date = \? AND status <> 'cancelled' FOR UPDATE`).
		WithArgs("2026-07-10").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`UPDATE bookings SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := patchBooking(h, "7", `{"start_date":"2026-07-10"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditWithoutDateChangeSkipsCapacityCheck(t *testing.T) {
	h, mock := newAdminHandler(t, 2)

	// Editing non-date fields never recounts the date.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, "confirmed", "2026-07-09"))
	mock.ExpectExec(`UPDATE bookings SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := patchBooking(h, "7", `{"name":"Maria Ivanova"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditCancelledBookingMovesFreely(t *testing.T) {
	h, mock := newAdminHandler(t, 2)

	// A cancelled booking occupies no capacity, so moving it does not
	// recount the target date.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, "cancelled", "2026-07-09"))
	mock.ExpectExec(`UPDATE bookings SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := patchBooking(h, "7", `{"start_date":"2026-07-10"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
