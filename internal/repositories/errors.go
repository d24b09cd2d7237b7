package repository

import (
	"fmt"

	"github.com/google/uuid"
)

// StockConflictError is returned when a conditional stock decrement
// matches no row, meaning available stock dropped below the requested
// quantity between validation and commit.
type StockConflictError struct {
	ProductID uuid.UUID
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}
