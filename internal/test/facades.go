package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/gopherpos/internal/domain/model"
)

// POSFacadeStub provides controllable behaviour for checkout endpoints.
type POSFacadeStub struct {
	CheckoutFn func(context.Context, model.CheckoutRequest) (*model.CheckoutResult, error)
	OrderFn    func(context.Context, string) (*model.Order, error)
	ReadyFn    func(context.Context) error

	mu       sync.Mutex
	Requests []model.CheckoutRequest
}

// Checkout records the request and delegates to CheckoutFn.
func (s *POSFacadeStub) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, req)
	}
	return &model.CheckoutResult{Order: &model.Order{ID: 1, Number: "ORD-TEST"}}, nil
}

// Order returns the configured order or a bare one with the given number.
func (s *POSFacadeStub) Order(ctx context.Context, number string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, number)
	}
	return &model.Order{Number: number}, nil
}

func (s *POSFacadeStub) Ready(ctx context.Context) error {
	if s.ReadyFn != nil {
		return s.ReadyFn(ctx)
	}
	return nil
}

// WorkerFacadeStub mimics the reconciler's view of the facade.
type WorkerFacadeStub struct {
	Batches     [][]model.Order
	PendingFn   func(context.Context, int) ([]model.Order, error)
	ReconcileFn func(context.Context, model.Order) error
	Reconciled  []model.Order

	mu        sync.Mutex
	callCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// PendingPoints returns batches from the configured queue, then nothing.
func (s *WorkerFacadeStub) PendingPoints(ctx context.Context, limit int) ([]model.Order, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.callCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// ReconcilePoints records the order before delegating to ReconcileFn.
func (s *WorkerFacadeStub) ReconcilePoints(ctx context.Context, order model.Order) error {
	s.mu.Lock()
	s.Reconciled = append(s.Reconciled, order)
	s.mu.Unlock()
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, order)
	}
	return nil
}

// ReconciledCount reports how many orders were handed to ReconcilePoints.
func (s *WorkerFacadeStub) ReconciledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Reconciled)
}
