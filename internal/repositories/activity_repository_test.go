package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bookloop/booking-platform/internal/models"
	repository "github.com/bookloop/booking-platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewActivityRepo(db)
	ctx := t.Context()

	t.Run("Append", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			// Arrange
			activity := &models.Activity{
				ID:          uuid.New(),
				UserID:      uuid.New(),
				Action:      "Booking Created",
				Description: "Created a new booking with ID: BK-1735000000000-A1B2C3",
				Type:        models.ActivityTypeBooking,
			}
			now := time.Now()

			mock.ExpectQuery(`INSERT INTO activities`).
				WithArgs(activity.ID, activity.UserID, activity.Action, activity.Description, activity.Type).
				WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

			// Act
			err := repo.Append(ctx, activity)

			// Assert
			require.NoError(t, err)
			assert.WithinDuration(t, now, activity.CreatedAt, time.Second)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Error", func(t *testing.T) {
			activity := &models.Activity{
				ID:     uuid.New(),
				UserID: uuid.New(),
				Action: "User Login",
				Type:   models.ActivityTypeUser,
			}
			dbError := errors.New("insert failed")

			mock.ExpectQuery(`INSERT INTO activities`).
				WithArgs(activity.ID, activity.UserID, activity.Action, activity.Description, activity.Type).
				WillReturnError(dbError)

			err := repo.Append(ctx, activity)

			require.Error(t, err)
			assert.ErrorIs(t, err, dbError)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("ListActivities", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			now := time.Now()

			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activities`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

			mock.ExpectQuery(`SELECT id, user_id, action, description, type`).
				WithArgs(10, 0).
				WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "description", "type", "created_at"}).
					AddRow(uuid.New(), uuid.New(), "Booking Created", "", models.ActivityTypeBooking, now).
					AddRow(uuid.New(), uuid.New(), "User Login", "", models.ActivityTypeUser, now.Add(-time.Minute)))

			activities, total, err := repo.ListActivities(ctx, 1, 10)

			require.NoError(t, err)
			assert.Equal(t, 2, total)
			require.Len(t, activities, 2)
			assert.Equal(t, "Booking Created", activities[0].Action)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})
}
