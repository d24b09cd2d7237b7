package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bookloop/booking-platform/internal/api/middleware"
	"github.com/bookloop/booking-platform/internal/errors"
	"github.com/bookloop/booking-platform/internal/models"
	service "github.com/bookloop/booking-platform/internal/services"
	"github.com/bookloop/booking-platform/internal/utils"
	"github.com/bookloop/booking-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type BookingHandler struct {
	bookingService service.BookingService
	validator      *validator.Validate
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, validator: validator.New()}
}

// CreateBooking turns the caller's cart into a pending booking. The body
// is empty; everything comes from the cart.
func (h *BookingHandler) CreateBooking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized booking creation attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		booking, err := h.bookingService.CreateBooking(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to create booking", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Booking created", slog.String("bookingId", booking.BookingID))
		response.Success(w, http.StatusCreated, "Booking created successfully", booking)
	}
}

func (h *BookingHandler) GetBooking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized booking access attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid booking id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		booking, err := h.bookingService.GetBookingByID(r.Context(), id)
		if err != nil {
			logger.Error("Failed to get booking", slog.String("bookingId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		// Owners see their own bookings; admins see everything.
		if booking.UserID != claims.UserID && !claims.IsAdmin() {
			logger.Warn("Attempted to access another user's booking", slog.String("bookingId", id.String()))
			response.Error(w, errors.ForbiddenError("Access denied"))
			return
		}

		response.Success(w, http.StatusOK, "Booking fetched successfully", booking)
	}
}

func (h *BookingHandler) ListMyBookings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized booking list attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		page, size := parsePagination(r)

		bookings, total, err := h.bookingService.ListBookingsByUser(r.Context(), claims.UserID, page, size)
		if err != nil {
			logger.Error("Failed to list bookings", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, "Bookings fetched successfully", models.PaginatedResponse{
			Data:     bookings,
			Total:    total,
			Page:     page,
			PageSize: size,
		})
	}
}

func (h *BookingHandler) ListAllBookings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, size := parsePagination(r)

		bookings, total, err := h.bookingService.ListBookings(r.Context(), page, size)
		if err != nil {
			logger.Error("Failed to list bookings", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, "Bookings fetched successfully", models.PaginatedResponse{
			Data:     bookings,
			Total:    total,
			Page:     page,
			PageSize: size,
		})
	}
}

func (h *BookingHandler) UpdateBookingStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid booking id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		var req models.UpdateBookingStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid status update input")
			return
		}

		booking, err := h.bookingService.UpdateBookingStatus(r.Context(), id, req.Status, req.TrackingID)
		if err != nil {
			logger.Error("Failed to update booking status",
				slog.String("bookingId", id.String()),
				slog.String("status", string(req.Status)),
				slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Booking status updated",
			slog.String("bookingId", booking.BookingID),
			slog.String("status", string(booking.Status)))
		response.Success(w, http.StatusOK, "Booking status updated", booking)
	}
}
