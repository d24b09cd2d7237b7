package service_test

import (
	"errors"
	"strings"
	"testing"

	appErrors "github.com/bookloop/booking-platform/internal/errors"
	"github.com/bookloop/booking-platform/internal/models"
	repository "github.com/bookloop/booking-platform/internal/repositories"
	"github.com/bookloop/booking-platform/internal/repositories/mocks"
	service "github.com/bookloop/booking-platform/internal/services"
	serviceMocks "github.com/bookloop/booking-platform/internal/services/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupBookingServiceTest(t *testing.T) (service.BookingService, *mocks.BookingRepository, *mocks.CartRepository, *mocks.ProductRepository, *mocks.UserRepository, *serviceMocks.ActivityService) {
	mockBookingRepo := mocks.NewBookingRepository(t)
	mockCartRepo := mocks.NewCartRepository(t)
	mockProductRepo := mocks.NewProductRepository(t)
	mockUserRepo := mocks.NewUserRepository(t)
	mockActivity := serviceMocks.NewActivityService(t)

	bookingService := service.NewBookingService(mockBookingRepo, mockCartRepo, mockProductRepo, mockUserRepo, mockActivity)

	return bookingService, mockBookingRepo, mockCartRepo, mockProductRepo, mockUserRepo, mockActivity
}

func TestCreateBooking_Success(t *testing.T) {
	// Arrange
	bookingService, mockBookingRepo, mockCartRepo, mockProductRepo, mockUserRepo, mockActivity := setupBookingServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()
	productID1 := uuid.New()
	productID2 := uuid.New()

	mockUserRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID}, nil).Once()

	mockCart := &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: productID1, Quantity: 2, Subtotal: decimal.NewFromInt(100)},
			{ProductID: productID2, Quantity: 1, Subtotal: decimal.NewFromInt(25)},
		},
	}
	mockCart.RecomputeSummary()

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(mockCart, nil).Once()

	mockProductRepo.On("GetProductByID", ctx, productID1).
		Return(&models.Product{ID: productID1, Name: "Tour A", Stock: 5, Price: decimal.NewFromInt(50)}, nil).Once()
	mockProductRepo.On("GetProductByID", ctx, productID2).
		Return(&models.Product{ID: productID2, Name: "Tour B", Stock: 1, Price: decimal.NewFromInt(25)}, nil).Once()

	mockBookingRepo.On("BookingIDExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()

	mockBookingRepo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Run(func(args mock.Arguments) {
		bookingArg := args.Get(1).(*models.Booking)
		assert.Equal(t, userID, bookingArg.UserID)
		assert.Equal(t, models.BookingStatusPending, bookingArg.Status)
		assert.Len(t, bookingArg.Items, 2)
		assert.True(t, bookingArg.Items[0].Subtotal.Equal(decimal.NewFromInt(100)), "Subtotal must be the cart snapshot")
	}).Once()

	mockActivity.On("Record", ctx, userID, "Booking Created", mock.AnythingOfType("string"), models.ActivityTypeBooking).Once()

	// Act
	booking, err := bookingService.CreateBooking(ctx, userID)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.True(t, strings.HasPrefix(booking.BookingID, "BK-"), "Booking ID should carry the BK prefix")
	assert.Len(t, booking.Items, 2)
}

func TestCreateBooking_UserNotFound(t *testing.T) {
	bookingService, _, _, _, mockUserRepo, _ := setupBookingServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()

	mockUserRepo.On("GetUserByID", ctx, userID).Return(nil, errors.New("no rows")).Once()

	booking, err := bookingService.CreateBooking(ctx, userID)

	require.Error(t, err)
	assert.Nil(t, booking)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
}

func TestCreateBooking_EmptyCart(t *testing.T) {
	bookingService, _, mockCartRepo, _, mockUserRepo, _ := setupBookingServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()

	mockUserRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID}, nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).
		Return(&models.Cart{UserID: userID, Items: []models.CartItem{}}, nil).Once()

	booking, err := bookingService.CreateBooking(ctx, userID)

	require.Error(t, err)
	assert.Nil(t, booking)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	assert.Equal(t, "Cart is empty", appErr.Message)
}

func TestCreateBooking_InsufficientStockPreCheck(t *testing.T) {
	// Arrange
	bookingService, _, mockCartRepo, mockProductRepo, mockUserRepo, _ := setupBookingServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	mockUserRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID}, nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(&models.Cart{
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: productID, Quantity: 10, Subtotal: decimal.NewFromInt(500)},
		},
	}, nil).Once()

	mockProductRepo.On("GetProductByID", ctx, productID).
		Return(&models.Product{ID: productID, Name: "Tour A", Stock: 3}, nil).Once()

	// Act
	booking, err := bookingService.CreateBooking(ctx, userID)

	// Assert: no booking repo call should ever happen.
	require.Error(t, err)
	assert.Nil(t, booking)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "Tour A")
}

func TestCreateBooking_LateStockConflict(t *testing.T) {
	// Arrange: pre-check passes, but the transaction loses the race.
	bookingService, mockBookingRepo, mockCartRepo, mockProductRepo, mockUserRepo, _ := setupBookingServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	mockUserRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID}, nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(&models.Cart{
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: productID, Quantity: 2, Subtotal: decimal.NewFromInt(100)},
		},
	}, nil).Once()

	mockProductRepo.On("GetProductByID", ctx, productID).
		Return(&models.Product{ID: productID, Name: "Tour A", Stock: 2}, nil).Once()

	mockBookingRepo.On("BookingIDExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	mockBookingRepo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).
		Return(&repository.StockConflictError{ProductID: productID}).Once()

	// Act
	booking, err := bookingService.CreateBooking(ctx, userID)

	// Assert
	require.Error(t, err)
	assert.Nil(t, booking)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "Tour A")
}

func TestCreateBooking_IDAllocationExhausted(t *testing.T) {
	// Arrange: every candidate collides.
	bookingService, mockBookingRepo, mockCartRepo, mockProductRepo, mockUserRepo, _ := setupBookingServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	mockUserRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID}, nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(&models.Cart{
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: productID, Quantity: 1, Subtotal: decimal.NewFromInt(50)},
		},
	}, nil).Once()

	mockProductRepo.On("GetProductByID", ctx, productID).
		Return(&models.Product{ID: productID, Name: "Tour A", Stock: 10}, nil).Once()

	mockBookingRepo.On("BookingIDExists", ctx, mock.AnythingOfType("string")).Return(true, nil).Times(5)

	// Act
	booking, err := bookingService.CreateBooking(ctx, userID)

	// Assert
	require.Error(t, err)
	assert.Nil(t, booking)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeIDAllocationFailed, appErr.Code)
}

func TestUpdateBookingStatus(t *testing.T) {
	ctx := t.Context()

	t.Run("PendingToCompletedStoresTracking", func(t *testing.T) {
		bookingService, mockBookingRepo, _, _, _, mockActivity := setupBookingServiceTest(t)
		bookingID := uuid.New()
		userID := uuid.New()

		mockBookingRepo.On("GetBookingByID", ctx, bookingID).Return(&models.Booking{
			ID:        bookingID,
			BookingID: "BK-1735000000000-A1B2C3",
			UserID:    userID,
			Status:    models.BookingStatusPending,
		}, nil).Once()

		mockBookingRepo.On("UpdateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Status == models.BookingStatusCompleted && b.Tracking.ID == "TRK-42"
		})).Return(nil).Once()

		mockActivity.On("Record", ctx, userID, "Booking Updated", mock.AnythingOfType("string"), models.ActivityTypeBooking).Once()

		booking, err := bookingService.UpdateBookingStatus(ctx, bookingID, models.BookingStatusCompleted, "TRK-42")

		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCompleted, booking.Status)
		assert.Equal(t, "TRK-42", booking.Tracking.ID)
	})

	t.Run("PendingToCancelledIgnoresTracking", func(t *testing.T) {
		bookingService, mockBookingRepo, _, _, _, mockActivity := setupBookingServiceTest(t)
		bookingID := uuid.New()
		userID := uuid.New()

		mockBookingRepo.On("GetBookingByID", ctx, bookingID).Return(&models.Booking{
			ID:     bookingID,
			UserID: userID,
			Status: models.BookingStatusPending,
		}, nil).Once()

		mockBookingRepo.On("UpdateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Status == models.BookingStatusCancelled && b.Tracking.ID == ""
		})).Return(nil).Once()

		mockActivity.On("Record", ctx, userID, "Booking Updated", mock.AnythingOfType("string"), models.ActivityTypeBooking).Once()

		booking, err := bookingService.UpdateBookingStatus(ctx, bookingID, models.BookingStatusCancelled, "TRK-42")

		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, booking.Status)
		assert.Empty(t, booking.Tracking.ID, "Tracking belongs to completed bookings only")
	})

	t.Run("TerminalStateRejected", func(t *testing.T) {
		bookingService, mockBookingRepo, _, _, _, _ := setupBookingServiceTest(t)
		bookingID := uuid.New()

		mockBookingRepo.On("GetBookingByID", ctx, bookingID).Return(&models.Booking{
			ID:     bookingID,
			Status: models.BookingStatusCompleted,
		}, nil).Once()

		booking, err := bookingService.UpdateBookingStatus(ctx, bookingID, models.BookingStatusCancelled, "")

		require.Error(t, err)
		assert.Nil(t, booking)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeInvalidTransition, appErr.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		bookingService, mockBookingRepo, _, _, _, _ := setupBookingServiceTest(t)
		bookingID := uuid.New()

		mockBookingRepo.On("GetBookingByID", ctx, bookingID).Return(nil, errors.New("no rows")).Once()

		booking, err := bookingService.UpdateBookingStatus(ctx, bookingID, models.BookingStatusCompleted, "")

		require.Error(t, err)
		assert.Nil(t, booking)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestListBookings(t *testing.T) {
	ctx := t.Context()

	t.Run("AllUsers", func(t *testing.T) {
		bookingService, mockBookingRepo, _, _, _, _ := setupBookingServiceTest(t)

		expected := []models.Booking{{ID: uuid.New()}, {ID: uuid.New()}}
		mockBookingRepo.On("ListBookings", ctx, 1, 10).Return(expected, 2, nil).Once()

		bookings, total, err := bookingService.ListBookings(ctx, 1, 10)

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, bookings, 2)
	})

	t.Run("ByUser", func(t *testing.T) {
		bookingService, mockBookingRepo, _, _, _, _ := setupBookingServiceTest(t)
		userID := uuid.New()

		mockBookingRepo.On("ListBookingsByUser", ctx, userID, 2, 5).
			Return([]models.Booking{{ID: uuid.New(), UserID: userID}}, 6, nil).Once()

		bookings, total, err := bookingService.ListBookingsByUser(ctx, userID, 2, 5)

		require.NoError(t, err)
		assert.Equal(t, 6, total)
		require.Len(t, bookings, 1)
		assert.Equal(t, userID, bookings[0].UserID)
	})

	t.Run("RepoError", func(t *testing.T) {
		bookingService, mockBookingRepo, _, _, _, _ := setupBookingServiceTest(t)

		mockBookingRepo.On("ListBookings", ctx, 1, 10).Return(nil, 0, errors.New("db down")).Once()

		bookings, total, err := bookingService.ListBookings(ctx, 1, 10)

		require.Error(t, err)
		assert.Zero(t, total)
		assert.Nil(t, bookings)
	})
}
