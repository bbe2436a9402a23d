package test

import (
	"context"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
)

// MarkPointsCall stores information about MarkPoints invocations.
type MarkPointsCall struct {
	OrderID int64
	Status  model.PointsStatus
	Earned  decimal.Decimal
}

// OrderRepositoryStub allows tests to customize behaviour.
type OrderRepositoryStub struct {
	CreateFn      func(context.Context, *model.Order) error
	GetByNumberFn func(context.Context, string) (*model.Order, error)
	MarkPointsFn  func(context.Context, int64, model.PointsStatus, decimal.Decimal) error
	ClaimFn       func(context.Context, int) ([]model.Order, error)

	Orders    []model.Order
	Pending   []model.Order
	MarkCalls []MarkPointsCall
}

// Create stores the order unless overridden.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	order.ID = int64(len(s.Orders) + 1)
	s.Orders = append(s.Orders, *order)
	return nil
}

// GetByNumber returns matched order either via override or stored slice.
func (s *OrderRepositoryStub) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	if s.GetByNumberFn != nil {
		return s.GetByNumberFn(ctx, number)
	}
	for _, o := range s.Orders {
		if o.Number == number {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// MarkPoints records update invocations.
func (s *OrderRepositoryStub) MarkPoints(ctx context.Context, orderID int64, status model.PointsStatus, earned decimal.Decimal) error {
	s.MarkCalls = append(s.MarkCalls, MarkPointsCall{OrderID: orderID, Status: status, Earned: earned})
	if s.MarkPointsFn != nil {
		return s.MarkPointsFn(ctx, orderID, status, earned)
	}
	return nil
}

// ClaimPendingPoints returns queued orders.
func (s *OrderRepositoryStub) ClaimPendingPoints(ctx context.Context, limit int) ([]model.Order, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit)
	}
	if len(s.Pending) > limit {
		return s.Pending[:limit], nil
	}
	return s.Pending, nil
}
