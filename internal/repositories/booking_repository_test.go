package repository_test

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bookloop/booking-platform/internal/models"
	repository "github.com/bookloop/booking-platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(userID uuid.UUID) *models.Booking {
	return &models.Booking{
		ID:        uuid.New(),
		BookingID: "BK-1735000000000-A1B2C3",
		UserID:    userID,
		Status:    models.BookingStatusPending,
		Items: []models.BookingItem{
			{ProductID: uuid.New(), Quantity: 2, Subtotal: decimal.NewFromInt(100)},
			{ProductID: uuid.New(), Quantity: 1, Subtotal: decimal.NewFromInt(25)},
		},
	}
}

func TestBookingRepository_CreateBooking(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingRepo(db)
	ctx := t.Context()

	emptyItems, err := json.Marshal([]models.CartItem{})
	require.NoError(t, err)
	zeroSummary, err := json.Marshal(models.ZeroCartSummary())
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		booking := newTestBooking(userID)
		now := time.Now()

		mock.ExpectBegin()

		for _, item := range booking.Items {
			mock.ExpectExec(`UPDATE products SET stock = stock -`).
				WithArgs(item.ProductID, item.Quantity).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WithArgs(booking.ID, booking.BookingID, booking.UserID, booking.Status, booking.Tracking.ID).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		for _, item := range booking.Items {
			mock.ExpectExec(`INSERT INTO booking_items`).
				WithArgs(sqlmock.AnyArg(), booking.ID, item.ProductID, item.Quantity, item.Subtotal).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}

		mock.ExpectExec(`UPDATE carts SET items =`).
			WithArgs(emptyItems, zeroSummary, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		// Act
		err := repo.CreateBooking(ctx, booking)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, booking.CreatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StockConflictRollsBack", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		booking := newTestBooking(userID)

		mock.ExpectBegin()

		// First decrement wins, second finds no matching row.
		mock.ExpectExec(`UPDATE products SET stock = stock -`).
			WithArgs(booking.Items[0].ProductID, booking.Items[0].Quantity).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET stock = stock -`).
			WithArgs(booking.Items[1].ProductID, booking.Items[1].Quantity).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectRollback()

		// Act
		err := repo.CreateBooking(ctx, booking)

		// Assert
		require.Error(t, err)

		var conflict *repository.StockConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, booking.Items[1].ProductID, conflict.ProductID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		booking := newTestBooking(userID)
		dbError := errors.New("insert failed")

		mock.ExpectBegin()

		for _, item := range booking.Items {
			mock.ExpectExec(`UPDATE products SET stock = stock -`).
				WithArgs(item.ProductID, item.Quantity).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WithArgs(booking.ID, booking.BookingID, booking.UserID, booking.Status, booking.Tracking.ID).
			WillReturnError(dbError)

		mock.ExpectRollback()

		// Act
		err := repo.CreateBooking(ctx, booking)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, dbError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_BookingIDExists(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingRepo(db)
	ctx := t.Context()

	t.Run("Exists", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("BK-1735000000000-A1B2C3").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.BookingIDExists(ctx, "BK-1735000000000-A1B2C3")

		require.NoError(t, err)
		assert.True(t, exists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("BK-1735000000001-FFFFFF").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.BookingIDExists(ctx, "BK-1735000000001-FFFFFF")

		require.NoError(t, err)
		assert.False(t, exists)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_GetBookingByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingRepo(db)
	ctx := t.Context()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		bookingID := uuid.New()
		userID := uuid.New()
		productID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT booking_id, user_id, status, tracking_id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{"booking_id", "user_id", "status", "tracking_id", "created_at", "updated_at"}).
				AddRow("BK-1735000000000-A1B2C3", userID, models.BookingStatusPending, "", now, now))

		mock.ExpectQuery(`SELECT product_id, quantity, subtotal`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "subtotal"}).
				AddRow(productID, int64(2), decimal.NewFromInt(100)))

		// Act
		booking, err := repo.GetBookingByID(ctx, bookingID)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Equal(t, "BK-1735000000000-A1B2C3", booking.BookingID)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		require.Len(t, booking.Items, 1)
		assert.Equal(t, productID, booking.Items[0].ProductID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectQuery(`SELECT booking_id, user_id, status, tracking_id`).
			WithArgs(bookingID).
			WillReturnError(sql.ErrNoRows)

		booking, err := repo.GetBookingByID(ctx, bookingID)

		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, booking)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_UpdateBooking(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingRepo(db)
	ctx := t.Context()

	t.Run("Success", func(t *testing.T) {
		booking := &models.Booking{
			ID:       uuid.New(),
			Status:   models.BookingStatusCompleted,
			Tracking: models.Tracking{ID: "TRK-42"},
		}

		mock.ExpectExec(`UPDATE bookings SET status =`).
			WithArgs(booking.Status, booking.Tracking.ID, sqlmock.AnyArg(), booking.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateBooking(ctx, booking)

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		booking := &models.Booking{
			ID:     uuid.New(),
			Status: models.BookingStatusCancelled,
		}

		mock.ExpectExec(`UPDATE bookings SET status =`).
			WithArgs(booking.Status, booking.Tracking.ID, sqlmock.AnyArg(), booking.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateBooking(ctx, booking)

		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
