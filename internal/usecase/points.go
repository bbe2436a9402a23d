package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/domain/repository"
)

// PointsAccruer credits loyalty points for an order using tx.
type PointsAccruer interface {
	Accrue(ctx context.Context, tx repository.Tx, memberID int64, total decimal.Decimal, orderNumber string) (decimal.Decimal, error)
}

// LedgerAccruer awards floor(total * rate) points through the points ledger.
type LedgerAccruer struct {
	rate decimal.Decimal
}

// NewLedgerAccruer constructs LedgerAccruer.
func NewLedgerAccruer(rate decimal.Decimal) *LedgerAccruer {
	return &LedgerAccruer{rate: rate}
}

// Accrue credits the member and returns the points awarded.
func (a *LedgerAccruer) Accrue(ctx context.Context, tx repository.Tx, memberID int64, total decimal.Decimal, orderNumber string) (decimal.Decimal, error) {
	points := total.Mul(a.rate).Floor()
	if !points.IsPositive() {
		return decimal.Zero, nil
	}
	if err := tx.Points().Credit(ctx, memberID, orderNumber, points); err != nil {
		return decimal.Zero, err
	}
	return points, nil
}

// PointsUseCase retries points accrual for orders left PENDING by checkout.
type PointsUseCase struct {
	tx      repository.Transactor
	orders  repository.OrderRepository
	accruer PointsAccruer
	logger  *slog.Logger
}

// NewPointsUseCase constructs PointsUseCase.
func NewPointsUseCase(tx repository.Transactor, orders repository.OrderRepository, accruer PointsAccruer, logger *slog.Logger) *PointsUseCase {
	return &PointsUseCase{tx: tx, orders: orders, accruer: accruer, logger: logger}
}

// Pending claims a batch of orders whose points are still owed.
func (u *PointsUseCase) Pending(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ClaimPendingPoints(ctx, limit)
}

// Reconcile credits points for a claimed order. On failure the order goes
// back to PENDING.
func (u *PointsUseCase) Reconcile(ctx context.Context, order model.Order) error {
	if order.MemberID == nil {
		return u.orders.MarkPoints(ctx, order.ID, model.PointsNone, decimal.Zero)
	}

	var earned decimal.Decimal
	err := u.tx.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		earned, err = u.accruer.Accrue(ctx, tx, *order.MemberID, order.Total, order.Number)
		if err != nil {
			return err
		}
		return tx.Orders().MarkPoints(ctx, order.ID, model.PointsCredited, earned)
	})
	if err != nil {
		if markErr := u.orders.MarkPoints(ctx, order.ID, model.PointsPending, decimal.Zero); markErr != nil {
			return errors.Join(err, markErr)
		}
		return err
	}

	u.logger.InfoContext(ctx, "points credited",
		slog.String("order", order.Number),
		slog.Int64("member", *order.MemberID),
		slog.String("points", earned.String()),
	)
	return nil
}
