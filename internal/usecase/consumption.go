package usecase

import (
	"fmt"
	"math"

	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/pkg/unit"
)

// ResolveConsumption splits targetGrams of recipe into per-material amounts.
// Each share is rounded to a whole gram and then converted to the material's
// stock unit. Percentages are used as stored.
func ResolveConsumption(recipe model.Recipe, targetGrams float64) ([]model.Consumption, error) {
	result := make([]model.Consumption, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		grams := math.Round(targetGrams * ing.Percentage / 100)

		native, err := unit.FromGrams(grams, ing.StockUnit, ing.CustomRate)
		if err != nil {
			return nil, fmt.Errorf("recipe %d material %d: %w", recipe.ID, ing.MaterialID, err)
		}

		result = append(result, model.Consumption{
			MaterialID:   ing.MaterialID,
			MaterialName: ing.MaterialName,
			Grams:        int64(grams),
			Amount:       unit.Format(native, ing.StockUnit),
			Unit:         ing.StockUnit,
			Display:      fmt.Sprintf("%s%s (%dg)", unit.Display(native, ing.StockUnit), unit.Label(ing.StockUnit), int64(grams)),
		})
	}
	return result, nil
}
