package dto

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the cart line rules registered.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(cartLineStructValidation, CartLineRequest{})
	return v
}

// cartLineStructValidation requires a line to name exactly one of a product
// or a recipe, together with the amount that kind is sold by.
func cartLineStructValidation(sl validatorv10.StructLevel) {
	line := sl.Current().Interface().(CartLineRequest)

	switch {
	case line.ProductID > 0 && line.RecipeID > 0:
		sl.ReportError(line.RecipeID, "recipe_id", "RecipeID", "excluded_with_product", "")
	case line.ProductID > 0:
		if line.Quantity == nil || !line.Quantity.IsPositive() {
			sl.ReportError(line.Quantity, "quantity", "Quantity", "required_positive", "")
		}
	case line.RecipeID > 0:
		if line.WeightGrams <= 0 {
			sl.ReportError(line.WeightGrams, "weight_grams", "WeightGrams", "required_positive", "")
		}
	default:
		sl.ReportError(line.ProductID, "product_id", "ProductID", "product_or_recipe", "")
	}
}
