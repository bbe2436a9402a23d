package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
)

// retryingStaleAfter is how long a claimed order may sit in RETRYING before
// another reconciler pass picks it up again.
const retryingStaleAfter = "5 minutes"

type orderRepository struct {
	q       querier
	storage *Storage
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const insertOrder = `INSERT INTO orders (number, member_id, operator_id, subtotal, discount, total, payment_method, points_status, points_earned)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                         RETURNING id, created_at`
	err := r.q.QueryRow(ctx, insertOrder,
		order.Number, order.MemberID, order.OperatorID,
		order.Subtotal, order.Discount, order.Total,
		string(order.PaymentMethod), string(order.PointsStatus), order.PointsEarned,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	const insertLine = `INSERT INTO order_lines (order_id, position, kind, product_id, recipe_id, name, quantity, weight_grams, unit_price, amount)
                        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, line := range order.Lines {
		_, err := r.q.Exec(ctx, insertLine,
			order.ID, i, string(line.Kind), nullableID(line.ProductID), nullableID(line.RecipeID),
			line.Name, line.Quantity, line.WeightGrams, line.UnitPrice, line.Amount,
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	const orderQuery = `SELECT id, number, member_id, operator_id, subtotal, discount, total, payment_method, points_status, points_earned, created_at
                        FROM orders WHERE number=$1`
	var (
		order   model.Order
		payment string
		points  string
	)
	err := r.q.QueryRow(ctx, orderQuery, number).Scan(
		&order.ID, &order.Number, &order.MemberID, &order.OperatorID,
		&order.Subtotal, &order.Discount, &order.Total,
		&payment, &points, &order.PointsEarned, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", number, domainErrors.ErrNotFound)
		}
		return nil, err
	}
	order.PaymentMethod = model.PaymentMethod(payment)
	order.PointsStatus = model.PointsStatus(points)

	if order.Lines, err = r.lines(ctx, order.ID); err != nil {
		return nil, err
	}
	if err := r.attachConsumption(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) lines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	const query = `SELECT kind, product_id, recipe_id, name, quantity, weight_grams, unit_price, amount
                   FROM order_lines WHERE order_id=$1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderLine
	for rows.Next() {
		var (
			line      model.OrderLine
			kind      string
			productID *int64
			recipeID  *int64
		)
		if err := rows.Scan(&kind, &productID, &recipeID, &line.Name, &line.Quantity, &line.WeightGrams, &line.UnitPrice, &line.Amount); err != nil {
			return nil, err
		}
		line.Kind = model.LineKind(kind)
		if productID != nil {
			line.ProductID = *productID
		}
		if recipeID != nil {
			line.RecipeID = *recipeID
		}
		result = append(result, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// attachConsumption pairs usage logs with recipe lines in insertion order.
func (r *orderRepository) attachConsumption(ctx context.Context, order *model.Order) error {
	const query = `SELECT recipe_id, details FROM recipe_usage_logs WHERE order_id=$1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	next := 0
	for rows.Next() {
		var (
			recipeID int64
			raw      []byte
		)
		if err := rows.Scan(&recipeID, &raw); err != nil {
			return err
		}
		var details []model.Consumption
		if err := json.Unmarshal(raw, &details); err != nil {
			return fmt.Errorf("decode usage details: %w", err)
		}
		for ; next < len(order.Lines); next++ {
			line := &order.Lines[next]
			if line.Kind == model.LineRecipe && line.RecipeID == recipeID {
				line.Consumption = details
				next++
				break
			}
		}
	}
	return rows.Err()
}

func (r *orderRepository) MarkPoints(ctx context.Context, orderID int64, status model.PointsStatus, earned decimal.Decimal) error {
	const query = `UPDATE orders SET points_status=$1, points_earned=$2, points_updated_at=NOW() WHERE id=$3`
	tag, err := r.q.Exec(ctx, query, string(status), earned, orderID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return &domainErrors.NotFoundError{Kind: "order", ID: orderID}
	}
	return nil
}

// ClaimPendingPoints moves up to limit orders awaiting points into RETRYING
// and returns them. Rows locked by a concurrent claimer are skipped.
func (r *orderRepository) ClaimPendingPoints(ctx context.Context, limit int) ([]model.Order, error) {
	if r.storage == nil {
		return r.claim(ctx, r.q, limit)
	}
	var orders []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		orders, err = r.claim(ctx, tx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) claim(ctx context.Context, q querier, limit int) ([]model.Order, error) {
	const selectQuery = `SELECT id, number, member_id, total, points_status, created_at
                         FROM orders
                         WHERE points_status = 'PENDING'
                            OR (points_status = 'RETRYING' AND points_updated_at < NOW() - $2::interval)
                         ORDER BY created_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`
	rows, err := q.Query(ctx, selectQuery, limit, retryingStaleAfter)
	if err != nil {
		return nil, err
	}

	var (
		orders []model.Order
		ids    []int64
	)
	for rows.Next() {
		var (
			o      model.Order
			status string
		)
		if err := rows.Scan(&o.ID, &o.Number, &o.MemberID, &o.Total, &status, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		o.PointsStatus = model.PointsRetrying
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	const updateQuery = `UPDATE orders SET points_status='RETRYING', points_updated_at=NOW() WHERE id = ANY($1)`
	if _, err := q.Exec(ctx, updateQuery, ids); err != nil {
		return nil, err
	}
	return orders, nil
}

func nullableID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
