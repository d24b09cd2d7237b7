package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookloop/booking-platform/internal/errors"
	"github.com/bookloop/booking-platform/internal/metrics"
	"github.com/bookloop/booking-platform/internal/models"
	repository "github.com/bookloop/booking-platform/internal/repositories"
	"github.com/google/uuid"
)

const (
	bookingIDPrefix = "BK"

	// idAllocationAttempts bounds the generate-and-probe loop. Hitting
	// the cap means namespace exhaustion or clock skew and is surfaced
	// as a server error rather than looping forever.
	idAllocationAttempts = 5
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID) (*models.Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus, trackingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, page, size int) ([]models.Booking, int, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Booking, int, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	activity    ActivityService
}

func NewBookingService(bookingRepo repository.BookingRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, activity ActivityService) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		activity:    activity,
	}
}

// CreateBooking places a booking from the user's current cart.
//
// Validation (user, cart, per-line stock) happens before any mutation and
// the whole checkout commits in one repository transaction, so a losing
// race on stock or a failed insert leaves products, cart and bookings
// untouched. The activity record is the only step allowed to fail after
// commit; its error is swallowed.
func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID) (*models.Booking, error) {

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, errors.NotFoundError("User not found").WithError(err)
	}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NotFoundError("Cart not found").WithError(err)
	}

	if len(cart.Items) == 0 {
		return nil, errors.NotFoundError("Cart is empty")
	}

	// Fail-fast pre-check across every line before touching any stock.
	productNames := make(map[uuid.UUID]string, len(cart.Items))

	for _, item := range cart.Items {

		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, errors.NotFoundError("Product not found: " + item.ProductID.String()).WithError(err)
		}

		if item.Quantity > product.Stock {
			metrics.StockConflict()

			return nil, errors.InsufficientStockError("Insufficient stock for product: " + product.Name)
		}

		productNames[product.ID] = product.Name
	}

	bookingID, err := s.allocateBookingID(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.BookingItem, 0, len(cart.Items))

	for _, item := range cart.Items {
		// Snapshot quantity and subtotal from the cart; never re-read
		// live product state.
		items = append(items, models.BookingItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}

	booking := &models.Booking{
		ID:        uuid.New(),
		BookingID: bookingID,
		UserID:    userID,
		Items:     items,
		Status:    models.BookingStatusPending,
	}

	if err := s.bookingRepo.CreateBooking(ctx, booking); err != nil {

		var conflict *repository.StockConflictError
		if stderrors.As(err, &conflict) {

			name := productNames[conflict.ProductID]
			if name == "" {
				name = conflict.ProductID.String()
			}

			metrics.StockConflict()

			// Stock changed between validation and commit; the
			// transaction already rolled everything back.
			return nil, errors.InsufficientStockError("Insufficient stock for product: " + name).WithError(err)
		}

		return nil, errors.DatabaseError("Failed to create booking").WithError(err)
	}

	metrics.BookingCreated()

	s.activity.Record(ctx, userID, "Booking Created",
		fmt.Sprintf("Created a new booking with ID: %s", bookingID), models.ActivityTypeBooking)

	return booking, nil
}

// allocateBookingID generates BK-<unix-millis>-<6 hex chars> candidates
// and probes the store until one is free, bounded at idAllocationAttempts.
func (s *bookingService) allocateBookingID(ctx context.Context) (string, error) {

	for attempt := 0; attempt < idAllocationAttempts; attempt++ {

		suffix := make([]byte, 3)

		if _, err := rand.Read(suffix); err != nil {
			return "", errors.InternalError("Failed to generate booking id").WithError(err)
		}

		candidate := fmt.Sprintf("%s-%d-%s", bookingIDPrefix, time.Now().UnixMilli(), strings.ToUpper(hex.EncodeToString(suffix)))

		exists, err := s.bookingRepo.BookingIDExists(ctx, candidate)
		if err != nil {
			return "", errors.DatabaseError("Failed to probe booking id").WithError(err)
		}

		if !exists {
			return candidate, nil
		}
	}

	return "", errors.IDAllocationError("Failed to allocate a unique booking id")
}

func (s *bookingService) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {

	booking, err := s.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Booking not found").WithError(err)
	}

	return booking, nil
}

// UpdateBookingStatus applies an admin status change. Transitions are
// checked against the booking state machine before anything is written;
// completed and cancelled are terminal.
func (s *bookingService) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus, trackingID string) (*models.Booking, error) {

	booking, err := s.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Booking not found").WithError(err)
	}

	if !booking.Status.CanTransitionTo(status) {
		return nil, errors.InvalidTransitionError(
			fmt.Sprintf("Cannot transition booking from %s to %s", booking.Status, status))
	}

	booking.Status = status

	if status == models.BookingStatusCompleted && trackingID != "" {
		booking.Tracking.ID = trackingID
	}

	if err := s.bookingRepo.UpdateBooking(ctx, booking); err != nil {
		return nil, errors.DatabaseError("Failed to update booking status").WithError(err)
	}

	s.activity.Record(ctx, booking.UserID, "Booking Updated",
		fmt.Sprintf("Booking with ID: %s status changed to %s", booking.BookingID, status), models.ActivityTypeBooking)

	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, page, size int) ([]models.Booking, int, error) {

	bookings, total, err := s.bookingRepo.ListBookings(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch bookings").WithError(err)
	}

	return bookings, total, nil
}

func (s *bookingService) ListBookingsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Booking, int, error) {

	bookings, total, err := s.bookingRepo.ListBookingsByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch bookings").WithError(err)
	}

	return bookings, total, nil
}
