package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/domain/repository"
	"github.com/polkiloo/gopherpos/internal/pkg/orderno"
)

// OrderUseCase serves lookups of committed orders.
type OrderUseCase struct {
	orders repository.OrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders}
}

// Get returns the order with its lines.
func (u *OrderUseCase) Get(ctx context.Context, number string) (*model.Order, error) {
	if !orderno.Valid(number) {
		return nil, domainErrors.ErrInvalidOrderNumber
	}
	return u.orders.GetByNumber(ctx, number)
}
