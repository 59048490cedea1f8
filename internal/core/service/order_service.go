package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"orderstock/internal/core/domain"
	"orderstock/internal/port"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrAlreadyCancelled  = errors.New("order already cancelled")
)

// Alerter receives inconsistencies the workflow could not repair: a release
// that failed after a failed order persist, or an order left active after its
// stock was already released. These are not retried.
type Alerter func(ctx context.Context, msg, orderID, productID string, err error)

// OrderService orchestrates the inventory and order ledgers. Reserve and
// persist are two separate critical sections, not one transaction, so a
// failed persist is undone with a compensating release.
type OrderService struct {
	inventory port.InventoryRepository
	orders    port.OrderRepository
	logger    zerolog.Logger
	alert     Alerter
}

// NewOrderService wires the workflow. A nil alerter logs inconsistencies at
// error level.
func NewOrderService(inventory port.InventoryRepository, orders port.OrderRepository, logger zerolog.Logger, alert Alerter) *OrderService {
	s := &OrderService{
		inventory: inventory,
		orders:    orders,
		logger:    logger,
		alert:     alert,
	}
	if s.alert == nil {
		s.alert = s.logAlert
	}
	return s
}

// CreateOrder reserves stock, then persists the order. A persist failure
// releases the reservation before the error is returned.
func (s *OrderService) CreateOrder(ctx context.Context, productID, description string, quantity int, unitPrice float64) (domain.Order, error) {
	reserved, err := s.inventory.Reserve(ctx, productID, quantity)
	if err != nil {
		return domain.Order{}, fmt.Errorf("reserve stock: %w", err)
	}
	if !reserved {
		// Refusal carries no cause; probe the entry to classify it. Stock
		// may move between the two reads, which only affects the message,
		// not correctness.
		_, found, err := s.inventory.GetByProduct(ctx, productID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("inspect stock: %w", err)
		}
		if !found {
			return domain.Order{}, ErrProductNotFound
		}
		return domain.Order{}, ErrInsufficientStock
	}

	order := domain.NewOrder(productID, description, quantity, unitPrice)
	stored, err := s.orders.Add(ctx, order)
	if err != nil {
		if _, relErr := s.inventory.Release(ctx, productID, quantity); relErr != nil {
			s.alert(ctx, "reservation not released after failed order persist", order.ID, productID, relErr)
		}
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}

	s.logger.Info().
		Str("order_id", stored.ID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("order created")
	return stored, nil
}

// CancelOrder releases the order's reservation and marks it inactive.
// Cancelling twice fails with ErrAlreadyCancelled; stock moves only once.
func (s *OrderService) CancelOrder(ctx context.Context, id string) error {
	order, found, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if !found {
		return ErrOrderNotFound
	}
	if !order.Active {
		return ErrAlreadyCancelled
	}

	released, err := s.inventory.Release(ctx, order.ProductID, order.Quantity)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	if !released {
		// The product was deprovisioned while the order was open. The
		// cancellation still proceeds; there is no entry to credit.
		s.logger.Warn().
			Str("order_id", id).
			Str("product_id", order.ProductID).
			Msg("no inventory entry to release")
	}

	cancelled, err := s.orders.Cancel(ctx, id)
	if err != nil {
		s.alert(ctx, "stock released but order still active", id, order.ProductID, err)
		return fmt.Errorf("cancel order: %w", err)
	}
	if !cancelled {
		s.alert(ctx, "stock released but order record missing", id, order.ProductID, nil)
		return ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id).Msg("order cancelled")
	return nil
}

func (s *OrderService) ListActiveOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListActive(ctx)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, found, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load order: %w", err)
	}
	if !found {
		return domain.Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) logAlert(ctx context.Context, msg, orderID, productID string, err error) {
	s.logger.Error().
		Str("order_id", orderID).
		Str("product_id", productID).
		Err(err).
		Bool("inconsistency", true).
		Msg(msg)
}
