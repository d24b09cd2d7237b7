package service_test

import (
	"errors"
	"testing"

	appErrors "github.com/bookloop/booking-platform/internal/errors"
	"github.com/bookloop/booking-platform/internal/models"
	"github.com/bookloop/booking-platform/internal/repositories/mocks"
	service "github.com/bookloop/booking-platform/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	ctx := t.Context()

	t.Run("AppendsEntry", func(t *testing.T) {
		// Arrange
		mockActivityRepo := mocks.NewActivityRepository(t)
		activityService := service.NewActivityService(mockActivityRepo)
		userID := uuid.New()

		mockActivityRepo.On("Append", ctx, mock.MatchedBy(func(a *models.Activity) bool {
			return a.UserID == userID &&
				a.Action == "Booking Created" &&
				a.Type == models.ActivityTypeBooking &&
				a.ID != uuid.Nil
		})).Return(nil).Once()

		// Act
		activityService.Record(ctx, userID, "Booking Created", "Created booking BK-1", models.ActivityTypeBooking)
	})

	t.Run("SwallowsRepoError", func(t *testing.T) {
		// Arrange
		mockActivityRepo := mocks.NewActivityRepository(t)
		activityService := service.NewActivityService(mockActivityRepo)

		mockActivityRepo.On("Append", ctx, mock.AnythingOfType("*models.Activity")).
			Return(errors.New("insert failed")).Once()

		// Act: must not panic or surface the failure.
		activityService.Record(ctx, uuid.New(), "User Login", "", models.ActivityTypeUser)
	})
}

func TestListActivities(t *testing.T) {
	ctx := t.Context()

	t.Run("Success", func(t *testing.T) {
		mockActivityRepo := mocks.NewActivityRepository(t)
		activityService := service.NewActivityService(mockActivityRepo)

		expected := []models.Activity{
			{ID: uuid.New(), Action: "User Login", Type: models.ActivityTypeUser},
			{ID: uuid.New(), Action: "Booking Created", Type: models.ActivityTypeBooking},
		}

		mockActivityRepo.On("ListActivities", ctx, 1, 10).Return(expected, 2, nil).Once()

		activities, total, err := activityService.ListActivities(ctx, 1, 10)

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, activities, 2)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockActivityRepo := mocks.NewActivityRepository(t)
		activityService := service.NewActivityService(mockActivityRepo)

		mockActivityRepo.On("ListActivities", ctx, 1, 10).Return(nil, 0, errors.New("query failed")).Once()

		activities, total, err := activityService.ListActivities(ctx, 1, 10)

		require.Error(t, err)
		assert.Nil(t, activities)
		assert.Zero(t, total)

		var appErr *appErrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
	})
}
