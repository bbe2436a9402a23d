package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/gopherpos/internal/domain/model"
)

// Tx exposes repositories bound to a single open database transaction.
type Tx interface {
	Catalog() CatalogRepository
	Inventory() InventoryLedger
	Orders() OrderRepository
	Usage() RecipeUsageRepository
	Points() PointsRepository
	// Savepoint runs fn in a nested transaction. An error from fn rolls back
	// only the work done inside it.
	Savepoint(ctx context.Context, fn func(Tx) error) error
}

// Transactor opens transactions. fn's error rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Tx) error) error
}

// CatalogRepository reads catalog rows as of transaction time.
type CatalogRepository interface {
	Recipes(ctx context.Context, ids []int64) (map[int64]model.Recipe, error)
	// LockMaterials and LockProducts take row locks in ascending id order.
	LockMaterials(ctx context.Context, ids []int64) (map[int64]model.Material, error)
	LockProducts(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	Member(ctx context.Context, id int64) (*model.Member, error)
}

// InventoryLedger applies stock deltas with an audit trail.
type InventoryLedger interface {
	ApplyDeduction(ctx context.Context, ref model.StockRef, amount decimal.Decimal, orderNumber string) error
}

// OrderRepository persists checkout orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	MarkPoints(ctx context.Context, orderID int64, status model.PointsStatus, earned decimal.Decimal) error
	ClaimPendingPoints(ctx context.Context, limit int) ([]model.Order, error)
}

// RecipeUsageRepository stores recipe consumption provenance.
type RecipeUsageRepository interface {
	Log(ctx context.Context, usage *model.RecipeUsage) error
}

// PointsRepository credits loyalty points. Crediting the same order number
// twice is a no-op.
type PointsRepository interface {
	Credit(ctx context.Context, memberID int64, orderNumber string, points decimal.Decimal) error
}
