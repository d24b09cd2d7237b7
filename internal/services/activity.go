package service

import (
	"context"
	"log/slog"

	"github.com/bookloop/booking-platform/internal/errors"
	"github.com/bookloop/booking-platform/internal/models"
	repository "github.com/bookloop/booking-platform/internal/repositories"
	"github.com/google/uuid"
)

type ActivityService interface {
	// Record appends an audit entry, best-effort. A failed write is
	// logged and swallowed so it can never fail the triggering
	// operation.
	Record(ctx context.Context, userID uuid.UUID, action, description string, activityType models.ActivityType)
	ListActivities(ctx context.Context, page, size int) ([]models.Activity, int, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, userID uuid.UUID, action, description string, activityType models.ActivityType) {

	activity := &models.Activity{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		Description: description,
		Type:        activityType,
	}

	if err := s.repo.Append(ctx, activity); err != nil {
		slog.Warn("Failed to record activity",
			slog.String("action", action),
			slog.String("userId", userID.String()),
			slog.String("error", err.Error()))
	}
}

func (s *activityService) ListActivities(ctx context.Context, page, size int) ([]models.Activity, int, error) {

	activities, total, err := s.repo.ListActivities(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch activities").WithError(err)
	}

	return activities, total, nil
}
