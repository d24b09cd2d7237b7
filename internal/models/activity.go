package models

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityTypeBooking ActivityType = "booking"
	ActivityTypeCart    ActivityType = "cart"
	ActivityTypeUser    ActivityType = "user"
	ActivityTypeProduct ActivityType = "product"
	ActivityTypeSystem  ActivityType = "system"
)

// Activity is an append-only audit record. Writes are best-effort and
// never block or roll back the operation that produced them.
type Activity struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Action      string       `json:"action"`
	Description string       `json:"description"`
	Type        ActivityType `json:"type"`
	CreatedAt   time.Time    `json:"created_at"`
}
