package postgres

import (
	"context"

	"github.com/shopspring/decimal"
)

type pointsRepository struct {
	q querier
}

// Credit records points for orderNumber and adds them to the member balance.
// A second call for the same order number changes nothing.
func (r *pointsRepository) Credit(ctx context.Context, memberID int64, orderNumber string, points decimal.Decimal) error {
	const query = `WITH credited AS (
                       INSERT INTO member_points (member_id, order_number, points)
                       VALUES ($1, $2, $3)
                       ON CONFLICT (order_number) DO NOTHING
                       RETURNING member_id, points
                   )
                   UPDATE members m SET points = m.points + c.points
                   FROM credited c
                   WHERE m.id = c.member_id`
	if _, err := r.q.Exec(ctx, query, memberID, orderNumber, points); err != nil {
		return mapError(err)
	}
	return nil
}
