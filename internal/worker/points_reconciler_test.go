package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polkiloo/gopherpos/internal/domain/model"
	testhelpers "github.com/polkiloo/gopherpos/internal/test"
)

type resultRecorder struct {
	mu      sync.Mutex
	results []bool
}

func (r *resultRecorder) ObserveReconcile(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, ok)
}

func (r *resultRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.results...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for reconciler")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewPointsReconcilerDefaults(t *testing.T) {
	rec := NewPointsReconciler(&testhelpers.WorkerFacadeStub{}, nil, 0, 0, 0, discardLogger())
	if rec.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", rec.batchSize)
	}
	if rec.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", rec.workers)
	}
	if rec.interval != time.Second {
		t.Fatalf("expected interval default to 1s, got %v", rec.interval)
	}
	if _, ok := rec.recorder.(nopRecorder); !ok {
		t.Fatalf("expected nop recorder, got %T", rec.recorder)
	}
}

func TestPointsReconcilerCreditsPendingOrders(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Order{{{ID: 1, Number: "ORD-1"}, {ID: 2, Number: "ORD-2"}}},
	}
	recorder := &resultRecorder{}
	rec := NewPointsReconciler(facade, recorder, 5*time.Millisecond, 2, 2, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)
	waitFor(t, func() bool { return facade.ReconciledCount() == 2 })
	rec.Stop()

	results := recorder.snapshot()
	if len(results) != 2 || !results[0] || !results[1] {
		t.Fatalf("expected two successful reconciliations, got %v", results)
	}
}

func TestPointsReconcilerRecordsFailures(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Order{{{ID: 1, Number: "ORD-1"}}},
		ReconcileFn: func(context.Context, model.Order) error {
			return errors.New("ledger offline")
		},
	}
	recorder := &resultRecorder{}
	rec := NewPointsReconciler(facade, recorder, 5*time.Millisecond, 1, 1, discardLogger())

	rec.Start(context.Background())
	waitFor(t, func() bool { return len(recorder.snapshot()) == 1 })
	rec.Stop()

	if recorder.snapshot()[0] {
		t.Fatal("expected failed reconciliation to be recorded")
	}
}

func TestPointsReconcilerSurvivesFetchErrors(t *testing.T) {
	var calls atomic.Int32
	facade := &testhelpers.WorkerFacadeStub{
		PendingFn: func(context.Context, int) ([]model.Order, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("connection reset")
			}
			return nil, nil
		},
	}
	rec := NewPointsReconciler(facade, nil, 5*time.Millisecond, 1, 1, discardLogger())

	rec.Start(context.Background())
	waitFor(t, func() bool { return calls.Load() >= 2 })
	rec.Stop()
}

func TestPointsReconcilerStartIsIdempotent(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{}
	rec := NewPointsReconciler(facade, nil, 5*time.Millisecond, 1, 3, discardLogger())

	rec.Start(context.Background())
	rec.Start(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		rec.Stop()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected stop to finish")
	}

	// restart after stop
	rec.Start(context.Background())
	rec.Stop()
}

func TestPointsReconcilerStopWithoutStart(t *testing.T) {
	rec := NewPointsReconciler(&testhelpers.WorkerFacadeStub{}, nil, time.Second, 1, 1, discardLogger())
	rec.Stop()
}
