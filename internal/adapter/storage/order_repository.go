package storage

import (
	"context"

	"orderstock/internal/core/domain"
	"orderstock/internal/port"
)

// OrderRepository stores orders. It knows nothing about stock.
type OrderRepository struct {
	col port.Collection[domain.Order]
}

func NewOrderRepository(col port.Collection[domain.Order]) *OrderRepository {
	return &OrderRepository{col: col}
}

func (r *OrderRepository) Add(ctx context.Context, order domain.Order) (domain.Order, error) {
	return r.col.Insert(ctx, order)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (domain.Order, bool, error) {
	return r.col.Get(ctx, id)
}

func (r *OrderRepository) ListActive(ctx context.Context) ([]domain.Order, error) {
	all, err := r.col.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if o.Active {
			active = append(active, o)
		}
	}
	return active, nil
}

func (r *OrderRepository) Cancel(ctx context.Context, id string) (bool, error) {
	return r.col.Update(ctx, id, func(o domain.Order) (domain.Order, error) {
		o.Active = false
		return o, nil
	})
}
