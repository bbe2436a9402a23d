package handlers

import (
	"context"

	"github.com/polkiloo/gopherpos/internal/domain/model"
)

// CheckoutFacade runs a cart through the checkout transaction.
type CheckoutFacade interface {
	Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error)
}

// OrderFacade looks up persisted orders.
type OrderFacade interface {
	Order(ctx context.Context, number string) (*model.Order, error)
}

// HealthFacade reports readiness of the backing store.
type HealthFacade interface {
	Ready(ctx context.Context) error
}

// POSFacade aggregates the full set of operations used across handlers.
type POSFacade interface {
	CheckoutFacade
	OrderFacade
	HealthFacade
}
