package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookloop/booking-platform/internal/models"
	"github.com/bookloop/booking-platform/internal/utils"
)

type ActivityRepository interface {
	Append(ctx context.Context, activity *models.Activity) error
	ListActivities(ctx context.Context, page, size int) ([]models.Activity, int, error)
}

type activityRepository struct {
	DB *sql.DB
}

func NewActivityRepo(db *sql.DB) ActivityRepository {
	return &activityRepository{DB: db}
}

func (r *activityRepository) Append(ctx context.Context, activity *models.Activity) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO activities (id, user_id, action, description, type, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, activity.ID, activity.UserID, activity.Action, activity.Description, activity.Type).
		Scan(&activity.CreatedAt)
}

func (r *activityRepository) ListActivities(ctx context.Context, page, size int) ([]models.Activity, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM activities`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size

	query := `
		SELECT id, user_id, action, description, type, created_at
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}

	defer rows.Close()

	var activities []models.Activity

	for rows.Next() {

		var activity models.Activity

		err := rows.Scan(&activity.ID, &activity.UserID, &activity.Action, &activity.Description, &activity.Type, &activity.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity: %w", err)
		}

		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}
