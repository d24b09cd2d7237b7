package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the full transition table. Completed and
// cancelled are terminal; nothing transitions back into pending.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]

	return ok
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// BookingItem is a snapshot of a cart line at booking time. Subtotal is
// never recomputed from live product state.
type BookingItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   *Product        `json:"product,omitempty"`
}

type Tracking struct {
	ID string `json:"id"`
}

type Booking struct {
	ID        uuid.UUID     `json:"id"`
	BookingID string        `json:"booking_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Items     []BookingItem `json:"items"`
	Status    BookingStatus `json:"status"`
	Tracking  Tracking      `json:"tracking"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type UpdateBookingStatusRequest struct {
	Status     BookingStatus `json:"status" validate:"required,oneof=pending completed cancelled"`
	TrackingID string        `json:"tracking_id,omitempty"`
}
