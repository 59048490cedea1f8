package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is a reservation of stock for a single product. Orders are never
// deleted; cancellation flips Active to false and releases the stock.
type Order struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
	Active      bool      `json:"active"`
}

// NewOrder builds an active order with a fresh id and the total fixed at
// creation time. Total is never recomputed afterwards.
func NewOrder(productID, description string, quantity int, unitPrice float64) Order {
	return Order{
		ID:          uuid.New().String(),
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       float64(quantity) * unitPrice,
		CreatedAt:   time.Now().UTC(),
		Active:      true,
	}
}

func (o Order) Key() string { return o.ID }
