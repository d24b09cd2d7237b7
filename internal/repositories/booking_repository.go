package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bookloop/booking-platform/internal/models"
	"github.com/bookloop/booking-platform/internal/utils"
	"github.com/google/uuid"
)

type BookingRepository interface {
	// CreateBooking commits the whole checkout: stock decrements, the
	// booking insert and the cart clear, atomically.
	CreateBooking(ctx context.Context, booking *models.Booking) error
	BookingIDExists(ctx context.Context, bookingID string) (bool, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	ListBookings(ctx context.Context, page, size int) ([]models.Booking, int, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Booking, int, error)
}

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepo(db *sql.DB) BookingRepository {
	return &bookingRepository{DB: db}
}

// CreateBooking runs one transaction over three tables:
//
//  1. per line item, a conditional decrement `stock = stock - q WHERE
//     stock >= q`; zero rows affected means a concurrent booking won the
//     stock and the whole transaction rolls back with StockConflictError,
//  2. the booking row plus its line-item snapshots,
//  3. the owning cart emptied (items [], summary all-zero).
//
// A failure or context cancellation at any point leaves no partial
// decrement behind.
func (r *bookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	decrementQuery := `
		UPDATE products SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	for _, item := range booking.Items {

		result, err := tx.ExecContext(dbCtx, decrementQuery, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		updated, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get updated rows: %w", err)
		}

		if updated == 0 {
			return &StockConflictError{ProductID: item.ProductID}
		}
	}

	insertQuery := `
		INSERT INTO bookings (id, booking_id, user_id, status, tracking_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, insertQuery, booking.ID, booking.BookingID, booking.UserID, booking.Status, booking.Tracking.ID).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	itemQuery := `
		INSERT INTO booking_items (id, booking_id, product_id, quantity, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	for _, item := range booking.Items {
		if _, err := tx.ExecContext(dbCtx, itemQuery, uuid.New(), booking.ID, item.ProductID, item.Quantity, item.Subtotal); err != nil {
			return fmt.Errorf("failed to insert booking item: %w", err)
		}
	}

	emptyItems, err := json.Marshal([]models.CartItem{})
	if err != nil {
		return fmt.Errorf("failed to marshal empty cart items: %w", err)
	}

	zeroSummary, err := json.Marshal(models.ZeroCartSummary())
	if err != nil {
		return fmt.Errorf("failed to marshal zero cart summary: %w", err)
	}

	clearQuery := `
		UPDATE carts SET items = $1, summary = $2, updated_at = NOW()
		WHERE user_id = $3
	`

	if _, err := tx.ExecContext(dbCtx, clearQuery, emptyItems, zeroSummary, booking.UserID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) BookingIDExists(ctx context.Context, bookingID string) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_id = $1)`

	if err := r.DB.QueryRowContext(dbCtx, query, bookingID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to probe booking id: %w", err)
	}

	return exists, nil
}

func (r *bookingRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	booking := &models.Booking{ID: id}

	query := `
		SELECT booking_id, user_id, status, tracking_id, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&booking.BookingID, &booking.UserID, &booking.Status, &booking.Tracking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get the booking: %w", err)
	}

	items, err := r.bookingItems(dbCtx, id)
	if err != nil {
		return nil, err
	}

	booking.Items = items

	return booking, nil
}

func (r *bookingRepository) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE bookings SET status = $1, tracking_id = $2, updated_at = $3 WHERE id = $4
	`

	result, err := r.DB.ExecContext(dbCtx, query, booking.Status, booking.Tracking.ID, time.Now(), booking.ID)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updated == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *bookingRepository) ListBookings(ctx context.Context, page, size int) ([]models.Booking, int, error) {
	return r.list(ctx, uuid.Nil, page, size)
}

func (r *bookingRepository) ListBookingsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Booking, int, error) {
	return r.list(ctx, userID, page, size)
}

func (r *bookingRepository) list(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Booking, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var (
		total int
		rows  *sql.Rows
		err   error
	)

	offset := (page - 1) * size

	if userID == uuid.Nil {

		if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err != nil {
			return nil, 0, err
		}

		query := `
			SELECT id, booking_id, user_id, status, tracking_id, created_at, updated_at
			FROM bookings
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`
		rows, err = r.DB.QueryContext(dbCtx, query, size, offset)

	} else {

		if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&total); err != nil {
			return nil, 0, err
		}

		query := `
			SELECT id, booking_id, user_id, status, tracking_id, created_at, updated_at
			FROM bookings
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		rows, err = r.DB.QueryContext(dbCtx, query, userID, size, offset)
	}

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	defer rows.Close()

	var bookings []models.Booking

	for rows.Next() {

		var booking models.Booking

		err := rows.Scan(&booking.ID, &booking.BookingID, &booking.UserID, &booking.Status, &booking.Tracking.ID, &booking.CreatedAt, &booking.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}

		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range bookings {

		items, err := r.bookingItems(dbCtx, bookings[i].ID)
		if err != nil {
			return nil, 0, err
		}

		bookings[i].Items = items
	}

	return bookings, total, nil
}

func (r *bookingRepository) bookingItems(ctx context.Context, bookingID uuid.UUID) ([]models.BookingItem, error) {

	query := `
		SELECT product_id, quantity, subtotal
		FROM booking_items
		WHERE booking_id = $1
	`

	rows, err := r.DB.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking items: %w", err)
	}

	defer rows.Close()

	var items []models.BookingItem

	for rows.Next() {

		var item models.BookingItem

		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan booking item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
