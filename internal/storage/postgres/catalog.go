package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
)

type catalogRepository struct {
	q querier
}

func (r *catalogRepository) Recipes(ctx context.Context, ids []int64) (map[int64]model.Recipe, error) {
	result := make(map[int64]model.Recipe, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	const recipesQuery = `SELECT id, name, price_per_kg FROM recipes WHERE id = ANY($1)`
	rows, err := r.q.Query(ctx, recipesQuery, ids)
	if err != nil {
		return nil, mapError(err)
	}
	for rows.Next() {
		var rc model.Recipe
		if err := rows.Scan(&rc.ID, &rc.Name, &rc.PricePerKg); err != nil {
			rows.Close()
			return nil, err
		}
		result[rc.ID] = rc
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	const ingredientsQuery = `SELECT i.recipe_id, i.material_id, m.name, i.percentage, m.unit, m.custom_rate
                              FROM recipe_ingredients i
                              JOIN materials m ON m.id = i.material_id
                              WHERE i.recipe_id = ANY($1)
                              ORDER BY i.recipe_id, i.material_id`
	rows, err = r.q.Query(ctx, ingredientsQuery, ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID int64
			ing      model.Ingredient
		)
		if err := rows.Scan(&recipeID, &ing.MaterialID, &ing.MaterialName, &ing.Percentage, &ing.StockUnit, &ing.CustomRate); err != nil {
			return nil, err
		}
		rc, ok := result[recipeID]
		if !ok {
			continue
		}
		rc.Ingredients = append(rc.Ingredients, ing)
		result[recipeID] = rc
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (r *catalogRepository) LockMaterials(ctx context.Context, ids []int64) (map[int64]model.Material, error) {
	result := make(map[int64]model.Material, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	const query = `SELECT id, name, stock, unit, custom_rate
                   FROM materials WHERE id = ANY($1)
                   ORDER BY id
                   FOR UPDATE`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Stock, &m.Unit, &m.CustomRate); err != nil {
			return nil, err
		}
		result[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (r *catalogRepository) LockProducts(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	result := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	const query = `SELECT id, name, price, stock, unit
                   FROM products WHERE id = ANY($1)
                   ORDER BY id
                   FOR UPDATE`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Unit); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (r *catalogRepository) Member(ctx context.Context, id int64) (*model.Member, error) {
	const query = `SELECT id, name, discount_rate, points FROM members WHERE id=$1`
	var m model.Member
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.DiscountRate, &m.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domainErrors.NotFoundError{Kind: "member", ID: id}
		}
		return nil, mapError(err)
	}
	return &m, nil
}
