package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/repository"
)

const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"

	ordersNumberConstraint = "orders_number_key"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool        pgxPool
	logger      *slog.Logger
	lockTimeout time.Duration
}

// Option configures Storage.
type Option func(*Storage)

// WithLockTimeout bounds how long a checkout transaction waits for row locks.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Storage) { s.lockTimeout = d }
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger, opts ...Option) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	for _, opt := range opts {
		opt(storage)
	}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("storage ready", slog.Duration("lock_timeout", storage.lockTimeout))
	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Orders returns an order repository that runs outside any transaction.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{q: s.pool, storage: s}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        price NUMERIC(12,2) NOT NULL,
        stock NUMERIC(14,3) NOT NULL DEFAULT 0,
        unit TEXT NOT NULL DEFAULT 'piece',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS materials (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        stock NUMERIC(14,3) NOT NULL DEFAULT 0,
        unit TEXT NOT NULL,
        custom_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS recipes (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        price_per_kg NUMERIC(12,2) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS recipe_ingredients (
        recipe_id BIGINT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
        material_id BIGINT NOT NULL REFERENCES materials(id),
        percentage DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (recipe_id, material_id)
    )`,
	`CREATE TABLE IF NOT EXISTS members (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        discount_rate NUMERIC(5,4) NOT NULL DEFAULT 0,
        points NUMERIC(14,0) NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS orders (
        id BIGSERIAL PRIMARY KEY,
        number TEXT NOT NULL CONSTRAINT orders_number_key UNIQUE,
        member_id BIGINT REFERENCES members(id),
        operator_id BIGINT NOT NULL,
        subtotal NUMERIC(12,2) NOT NULL,
        discount NUMERIC(12,2) NOT NULL DEFAULT 0,
        total NUMERIC(12,2) NOT NULL,
        payment_method TEXT NOT NULL,
        points_status TEXT NOT NULL DEFAULT 'NONE',
        points_earned NUMERIC(14,0) NOT NULL DEFAULT 0,
        points_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS order_lines (
        id BIGSERIAL PRIMARY KEY,
        order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
        position INT NOT NULL,
        kind TEXT NOT NULL,
        product_id BIGINT REFERENCES products(id),
        recipe_id BIGINT REFERENCES recipes(id),
        name TEXT NOT NULL,
        quantity NUMERIC(14,3) NOT NULL DEFAULT 0,
        weight_grams DOUBLE PRECISION NOT NULL DEFAULT 0,
        unit_price NUMERIC(12,2) NOT NULL,
        amount NUMERIC(12,2) NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS inventory_adjustments (
        id BIGSERIAL PRIMARY KEY,
        item_kind TEXT NOT NULL,
        item_id BIGINT NOT NULL,
        delta NUMERIC(14,3) NOT NULL,
        reason TEXT NOT NULL,
        remark TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS recipe_usage_logs (
        id BIGSERIAL PRIMARY KEY,
        order_id BIGINT NOT NULL REFERENCES orders(id),
        recipe_id BIGINT NOT NULL REFERENCES recipes(id),
        weight_grams DOUBLE PRECISION NOT NULL,
        details JSONB NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS member_points (
        id BIGSERIAL PRIMARY KEY,
        member_id BIGINT NOT NULL REFERENCES members(id),
        order_number TEXT NOT NULL UNIQUE,
        points NUMERIC(14,0) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_points_pending ON orders(created_at) WHERE points_status IN ('PENDING', 'RETRYING')`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_adjustments_item ON inventory_adjustments(item_kind, item_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_recipe_usage_logs_order ON recipe_usage_logs(order_id)`,
}

func (s *Storage) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// WithinTx runs fn with repositories bound to a new transaction. The
// transaction gives up waiting for row locks after the configured timeout.
func (s *Storage) WithinTx(ctx context.Context, fn func(repository.Tx) error) error {
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if s.lockTimeout > 0 {
			const setLockTimeout = `SELECT set_config('lock_timeout', $1, true)`
			if _, err := tx.Exec(ctx, setLockTimeout, fmt.Sprintf("%dms", s.lockTimeout.Milliseconds())); err != nil {
				return fmt.Errorf("set lock timeout: %w", err)
			}
		}
		return fn(&txRepositories{tx: tx})
	})
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// mapError translates PostgreSQL failures the checkout reacts to.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == ordersNumberConstraint:
		return fmt.Errorf("%w: %w", domainErrors.ErrOrderNumberTaken, err)
	case pgErr.Code == codeLockNotAvailable:
		return fmt.Errorf("%w: %w", domainErrors.ErrLockTimeout, err)
	}
	return err
}

// txRepositories binds repositories to one pgx transaction.
type txRepositories struct {
	tx pgx.Tx
}

func (t *txRepositories) Catalog() repository.CatalogRepository {
	return &catalogRepository{q: t.tx}
}

func (t *txRepositories) Inventory() repository.InventoryLedger {
	return &inventoryLedger{q: t.tx}
}

func (t *txRepositories) Orders() repository.OrderRepository {
	return &orderRepository{q: t.tx}
}

func (t *txRepositories) Usage() repository.RecipeUsageRepository {
	return &usageRepository{q: t.tx}
}

func (t *txRepositories) Points() repository.PointsRepository {
	return &pointsRepository{q: t.tx}
}

// Savepoint runs fn inside a nested pgx transaction, which PostgreSQL
// implements as SAVEPOINT / ROLLBACK TO SAVEPOINT.
func (t *txRepositories) Savepoint(ctx context.Context, fn func(repository.Tx) error) (err error) {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer func() {
		if err != nil {
			_ = sp.Rollback(ctx)
		} else {
			err = sp.Commit(ctx)
		}
	}()

	return fn(&txRepositories{tx: sp})
}
