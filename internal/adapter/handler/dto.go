package handler

import (
	"time"

	"orderstock/internal/core/domain"
)

type CreateOrderRequest struct {
	ProductID   string  `json:"product_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type OrderResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
	Active      bool      `json:"active"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		ProductID:   o.ProductID,
		Description: o.Description,
		Quantity:    o.Quantity,
		UnitPrice:   o.UnitPrice,
		Total:       o.Total,
		CreatedAt:   o.CreatedAt,
		Active:      o.Active,
	}
}
