package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vespanova/booking-api/internal/model"
)

func newMockRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func TestCountActiveOnDateTx(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE start_date = \? AND status <> 'cancelled' FOR UPDATE`).
		WithArgs("2026-07-10").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	n, err := repo.CountActiveOnDateTx(ctx, tx, "2026-07-10")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTx(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	created := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	b := &model.Booking{
		Reference: "VN2026-000123ABCDEF",
		Status:    model.StatusPending,
		Customer: model.Customer{
			Name: "Ana Petrova", Email: "ana@example.com",
			Phone: "+49 170 1234567", Age: 29, LicenseCategory: "AM",
		},
		Rental: model.Rental{
			Model: "Primavera 125", StartDate: "2026-07-10",
			RentalType: model.RentalFull, Helmet: true,
		},
		Pricing:   model.ComputePricing(model.RentalFull, true),
		Documents: model.Documents{RentalAgreement: true, Terms: true, PrivacyPolicy: true},
		Metadata:  model.Metadata{Language: "en", Source: "website"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM bookings WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(ctx, tx, b))
	assert.Equal(t, uint64(7), b.ID)
	assert.Equal(t, created, b.Metadata.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCapacityCheckedTxDateFull(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	b := &model.Booking{
		Reference: "VN2026-000124ABCDEF",
		Status:    model.StatusPending,
		Rental:    model.Rental{StartDate: "2026-07-10", RentalType: model.RentalFull},
	}

	// Two active bookings on a fleet of two: the insert never runs.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE start_date = \? AND status <> 'cancelled' FOR UPDATE`).
		WithArgs("2026-07-10").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.CreateCapacityCheckedTx(ctx, tx, b, 2), ErrDateFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusTx(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		ctx := context.Background()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bookings SET status = \?, updated_at = UTC_TIMESTAMP\(\) WHERE id = \?`).
			WithArgs("confirmed", uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx, err := repo.DB().BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatusTx(ctx, tx, 7, model.StatusConfirmed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("completed stamps completion time", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		ctx := context.Background()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bookings SET status = \?, wf_completed_at = UTC_TIMESTAMP\(\), updated_at = UTC_TIMESTAMP\(\) WHERE id = \?`).
			WithArgs("completed", uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx, err := repo.DB().BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatusTx(ctx, tx, 7, model.StatusCompleted))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteTxNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM bookings WHERE id = \?`).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.DeleteTx(ctx, tx, 99), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \?`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetWorkflowFlag(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE bookings SET wf_confirmation_email_sent = 1, updated_at = UTC_TIMESTAMP\(\) WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetWorkflowFlag(ctx, 7, "confirmation_email_sent"))

	// Unknown flags are ignored without touching the database.
	require.NoError(t, repo.SetWorkflowFlag(ctx, 7, "carrier_pigeon_sent"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
