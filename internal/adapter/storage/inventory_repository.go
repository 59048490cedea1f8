package storage

import (
	"context"
	"errors"

	"orderstock/internal/core/domain"
	"orderstock/internal/port"
)

// errShortStock aborts a reserve inside the collection's critical section.
// It never escapes Reserve.
var errShortStock = errors.New("short stock")

// InventoryRepository enforces the non-negative stock invariant. Each
// operation is one critical section through the collection's Update, so no
// check-then-act window is visible to concurrent callers.
type InventoryRepository struct {
	col port.Collection[domain.InventoryEntry]
}

func NewInventoryRepository(col port.Collection[domain.InventoryEntry]) *InventoryRepository {
	return &InventoryRepository{col: col}
}

func (r *InventoryRepository) Reserve(ctx context.Context, productID string, quantity int) (bool, error) {
	applied, err := r.col.Update(ctx, productID, func(e domain.InventoryEntry) (domain.InventoryEntry, error) {
		if e.Available < quantity {
			return e, errShortStock
		}
		e.Available -= quantity
		return e, nil
	})
	if errors.Is(err, errShortStock) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *InventoryRepository) Release(ctx context.Context, productID string, quantity int) (bool, error) {
	return r.col.Update(ctx, productID, func(e domain.InventoryEntry) (domain.InventoryEntry, error) {
		e.Available += quantity
		return e, nil
	})
}

func (r *InventoryRepository) GetByProduct(ctx context.Context, productID string) (domain.InventoryEntry, bool, error) {
	return r.col.Get(ctx, productID)
}
