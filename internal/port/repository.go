package port

import (
	"context"

	"orderstock/internal/core/domain"
)

// InventoryRepository guards available stock per product.
type InventoryRepository interface {
	// Reserve atomically checks and decrements available stock. Returns
	// false without mutating when the product is absent or stock is short.
	// Quantity must be positive; validating it is the caller's job.
	Reserve(ctx context.Context, productID string, quantity int) (bool, error)

	// Release increments available stock with no upper bound. Returns false
	// without mutating when the product is absent. Safe to call even when
	// the matching reserve's outcome is uncertain.
	Release(ctx context.Context, productID string, quantity int) (bool, error)

	// GetByProduct returns the entry for a product, or false if unknown.
	GetByProduct(ctx context.Context, productID string) (domain.InventoryEntry, bool, error)
}

// OrderRepository stores order records and derived views.
type OrderRepository interface {
	// Add persists a new order. Ids are generated fresh per order, so this
	// is always an insert.
	Add(ctx context.Context, order domain.Order) (domain.Order, error)

	// GetByID returns the order with the given id, or false if absent.
	GetByID(ctx context.Context, id string) (domain.Order, bool, error)

	// ListActive returns all orders still active, in store order.
	ListActive(ctx context.Context) ([]domain.Order, error)

	// Cancel flips the order inactive and persists. Returns false when the
	// id is absent. Inventory is untouched; that is the workflow's job.
	Cancel(ctx context.Context, id string) (bool, error)
}
