package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart item ordering is preserved; items marshal to a JSONB array.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   *Product        `json:"product,omitempty"`
}

// CartSummary is always a full recomputation of the items, never an
// incremental patch. See Cart.RecomputeSummary.
type CartSummary struct {
	TotalItems     int64           `json:"total_items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	ShippingCharge decimal.Decimal `json:"shipping_charge"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

func ZeroCartSummary() CartSummary {
	return CartSummary{
		TotalItems:     0,
		Subtotal:       decimal.Zero,
		Discount:       decimal.Zero,
		ShippingCharge: decimal.Zero,
		GrandTotal:     decimal.Zero,
	}
}

type Cart struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Items     []CartItem  `json:"items"`
	Summary   CartSummary `json:"summary"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RecomputeSummary rebuilds every summary field from the item list.
// Discount and shipping charge are kept as-is; grand total is
// subtotal - discount + shipping.
func (c *Cart) RecomputeSummary() {
	var totalItems int64

	subtotal := decimal.Zero

	for _, item := range c.Items {
		totalItems += item.Quantity
		subtotal = subtotal.Add(item.Subtotal)
	}

	c.Summary.TotalItems = totalItems
	c.Summary.Subtotal = subtotal
	c.Summary.GrandTotal = subtotal.Sub(c.Summary.Discount).Add(c.Summary.ShippingCharge)
}

// Item returns a pointer into Items for the given product, or nil.
func (c *Cart) Item(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}

	return nil
}

const (
	// CartModeAdd increments an existing line's quantity (storefront flow).
	CartModeAdd = "add"
	// CartModeSet replaces the quantity outright (cart-page edit flow).
	CartModeSet = "set"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int64     `json:"quantity" validate:"required,min=1"`
	Mode      string    `json:"mode,omitempty" validate:"omitempty,oneof=add set"`
}
