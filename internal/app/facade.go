package app

import (
	"context"

	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type POSFacade struct {
	checkout *usecase.CheckoutUseCase
	orders   *usecase.OrderUseCase
	points   *usecase.PointsUseCase
	health   HealthChecker
}

func NewPOSFacade(checkout *usecase.CheckoutUseCase, orders *usecase.OrderUseCase, points *usecase.PointsUseCase, health HealthChecker) *POSFacade {
	return &POSFacade{checkout: checkout, orders: orders, points: points, health: health}
}

func (f *POSFacade) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	return f.checkout.Checkout(ctx, req)
}

func (f *POSFacade) Order(ctx context.Context, number string) (*model.Order, error) {
	return f.orders.Get(ctx, number)
}

func (f *POSFacade) PendingPoints(ctx context.Context, limit int) ([]model.Order, error) {
	return f.points.Pending(ctx, limit)
}

func (f *POSFacade) ReconcilePoints(ctx context.Context, order model.Order) error {
	return f.points.Reconcile(ctx, order)
}

func (f *POSFacade) Ready(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
