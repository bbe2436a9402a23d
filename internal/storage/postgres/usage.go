package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/polkiloo/gopherpos/internal/domain/model"
)

type usageRepository struct {
	q querier
}

func (r *usageRepository) Log(ctx context.Context, usage *model.RecipeUsage) error {
	details, err := json.Marshal(usage.Details)
	if err != nil {
		return fmt.Errorf("encode usage details: %w", err)
	}

	const query = `INSERT INTO recipe_usage_logs (order_id, recipe_id, weight_grams, details)
                   VALUES ($1, $2, $3, $4)
                   RETURNING id, created_at`
	err = r.q.QueryRow(ctx, query, usage.OrderID, usage.RecipeID, usage.WeightGrams, details).Scan(&usage.ID, &usage.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}
