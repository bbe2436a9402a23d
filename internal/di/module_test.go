package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/gopherpos/internal/app"
	"github.com/polkiloo/gopherpos/internal/config"
	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/domain/repository"
	"github.com/polkiloo/gopherpos/internal/storage/postgres"
	"github.com/polkiloo/gopherpos/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:          ":0",
		DatabaseURI:         "postgres://stub",
		PointsEnabled:       true,
		PointsRate:          decimal.NewFromInt(1),
		CheckoutMaxAttempts: 3,
		PointsRetryInterval: time.Millisecond,
		PointsRetryBatch:    1,
		WorkerPoolSize:      1,
		ShutdownTimeout:     time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := test.NewMemoryStore()
	store.AddProduct(model.Product{ID: 1, Name: "mug", Price: decimal.NewFromInt(9), Stock: decimal.NewFromInt(3), Unit: "piece"})

	var (
		facade     *app.POSFacade
		engine     *gin.Engine
		transactor repository.Transactor
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(fx.Annotate(store, fx.As(new(repository.Transactor)))),
			fx.Replace(fx.Annotate(store.Orders(), fx.As(new(repository.OrderRepository)))),
		),
		fx.Populate(&facade, &engine, &transactor),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || engine == nil {
		t.Fatal("expected facade and router instances")
	}
	if transactor != repository.Transactor(store) {
		t.Fatalf("expected memory store to replace postgres transactor, got %T", transactor)
	}

	result, err := facade.Checkout(context.Background(), model.CheckoutRequest{
		Lines:         []model.CartLine{{ProductID: 1, Quantity: decimal.NewFromInt(1)}},
		PaymentMethod: model.PaymentCash,
		OperatorID:    1,
	})
	if err != nil {
		t.Fatalf("checkout through graph failed: %v", err)
	}
	if result.Order == nil || len(store.CommittedOrders()) != 1 {
		t.Fatalf("expected committed order, got %+v", result)
	}
}
