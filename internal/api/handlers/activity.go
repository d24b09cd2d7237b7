package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bookloop/booking-platform/internal/api/middleware"
	"github.com/bookloop/booking-platform/internal/models"
	service "github.com/bookloop/booking-platform/internal/services"
	"github.com/bookloop/booking-platform/internal/utils/response"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) ListActivities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, size := parsePagination(r)

		activities, total, err := h.activityService.ListActivities(r.Context(), page, size)
		if err != nil {
			logger.Error("Failed to list activities", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, "Activities fetched successfully", models.PaginatedResponse{
			Data:     activities,
			Total:    total,
			Page:     page,
			PageSize: size,
		})
	}
}
