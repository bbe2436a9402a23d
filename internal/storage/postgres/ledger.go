package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
)

const saleDeductionReason = "sale deduction"

type stockQueries struct {
	deduct string
	lookup string
}

var stockTables = map[model.StockKind]stockQueries{
	model.StockMaterial: {
		deduct: `UPDATE materials SET stock = stock - $1 WHERE id = $2 AND stock >= $1 RETURNING stock`,
		lookup: `SELECT name, stock, unit FROM materials WHERE id = $1`,
	},
	model.StockProduct: {
		deduct: `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1 RETURNING stock`,
		lookup: `SELECT name, stock, unit FROM products WHERE id = $1`,
	},
}

type inventoryLedger struct {
	q querier
}

// ApplyDeduction decrements stock only when enough is left and appends an
// adjustment row whose remark carries orderNumber.
func (l *inventoryLedger) ApplyDeduction(ctx context.Context, ref model.StockRef, amount decimal.Decimal, orderNumber string) error {
	queries, ok := stockTables[ref.Kind]
	if !ok {
		return fmt.Errorf("unknown stock kind %q", ref.Kind)
	}

	var remaining decimal.Decimal
	err := l.q.QueryRow(ctx, queries.deduct, amount, ref.ID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l.insufficient(ctx, queries, ref, amount)
		}
		return mapError(err)
	}

	const insertAdjustment = `INSERT INTO inventory_adjustments (item_kind, item_id, delta, reason, remark)
                              VALUES ($1, $2, $3, $4, $5)`
	remark := fmt.Sprintf("order %s", orderNumber)
	if _, err := l.q.Exec(ctx, insertAdjustment, string(ref.Kind), ref.ID, amount.Neg(), saleDeductionReason, remark); err != nil {
		return mapError(err)
	}
	return nil
}

func (l *inventoryLedger) insufficient(ctx context.Context, queries stockQueries, ref model.StockRef, amount decimal.Decimal) error {
	var (
		name      string
		available decimal.Decimal
		stockUnit string
	)
	err := l.q.QueryRow(ctx, queries.lookup, ref.ID).Scan(&name, &available, &stockUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domainErrors.NotFoundError{Kind: string(ref.Kind), ID: ref.ID}
		}
		return mapError(err)
	}
	return &domainErrors.InsufficientStockError{
		Kind:      string(ref.Kind),
		ID:        ref.ID,
		Name:      name,
		Required:  amount,
		Available: available,
		Unit:      stockUnit,
	}
}
