package models_test

import (
	"testing"

	"github.com/bookloop/booking-platform/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBookingStatusIsValid(t *testing.T) {
	assert.True(t, models.BookingStatusPending.IsValid())
	assert.True(t, models.BookingStatusCompleted.IsValid())
	assert.True(t, models.BookingStatusCancelled.IsValid())
	assert.False(t, models.BookingStatus("shipped").IsValid())
	assert.False(t, models.BookingStatus("").IsValid())
}

func TestBookingStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    models.BookingStatus
		to      models.BookingStatus
		allowed bool
	}{
		{"PendingToCompleted", models.BookingStatusPending, models.BookingStatusCompleted, true},
		{"PendingToCancelled", models.BookingStatusPending, models.BookingStatusCancelled, true},
		{"PendingToPending", models.BookingStatusPending, models.BookingStatusPending, false},
		{"CompletedToCancelled", models.BookingStatusCompleted, models.BookingStatusCancelled, false},
		{"CompletedToPending", models.BookingStatusCompleted, models.BookingStatusPending, false},
		{"CompletedToCompleted", models.BookingStatusCompleted, models.BookingStatusCompleted, false},
		{"CancelledToCompleted", models.BookingStatusCancelled, models.BookingStatusCompleted, false},
		{"CancelledToPending", models.BookingStatusCancelled, models.BookingStatusPending, false},
		{"UnknownSource", models.BookingStatus("shipped"), models.BookingStatusCompleted, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}
