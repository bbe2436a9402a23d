package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/gopherpos/internal/domain/model"
)

// PointsFacade exposes the subset of application functionality required by the worker.
type PointsFacade interface {
	PendingPoints(ctx context.Context, limit int) ([]model.Order, error)
	ReconcilePoints(ctx context.Context, order model.Order) error
}

// ReconcileRecorder receives the result of each reconciliation.
type ReconcileRecorder interface {
	ObserveReconcile(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveReconcile(bool) {}

// PointsReconciler periodically credits points that checkout had to defer.
type PointsReconciler struct {
	facade    PointsFacade
	recorder  ReconcileRecorder
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPointsReconciler constructs the reconciler worker pool. recorder may be nil.
func NewPointsReconciler(facade PointsFacade, recorder ReconcileRecorder, interval time.Duration, batchSize, workers int, logger *slog.Logger) *PointsReconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &PointsReconciler{
		facade:    facade,
		recorder:  recorder,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
	}
}

// Start launches background processing.
func (p *PointsReconciler) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.jobs = make(chan model.Order, p.batchSize*p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx, p.jobs)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx, p.jobs)
}

// Stop waits for all workers to finish.
func (p *PointsReconciler) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PointsReconciler) dispatch(ctx context.Context, jobs chan<- model.Order) {
	defer p.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx, jobs)
		}
	}
}

func (p *PointsReconciler) fetchAndDispatch(ctx context.Context, jobs chan<- model.Order) {
	orders, err := p.facade.PendingPoints(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch pending points failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case jobs <- order:
		}
	}
}

func (p *PointsReconciler) worker(ctx context.Context, jobs <-chan model.Order) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *PointsReconciler) handleOrder(ctx context.Context, order model.Order) {
	if err := p.facade.ReconcilePoints(ctx, order); err != nil {
		p.recorder.ObserveReconcile(false)
		p.logger.Warn("points reconciliation failed", slog.String("order", order.Number), slog.String("error", err.Error()))
		return
	}
	p.recorder.ObserveReconcile(true)
}
