package usecase

import (
	"fmt"
	"math"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
)

// ValidateCheckout checks the shape of a cart without touching storage.
func ValidateCheckout(req model.CheckoutRequest) error {
	if len(req.Lines) == 0 {
		return &domainErrors.ValidationError{Reason: "cart is empty"}
	}
	if req.OperatorID <= 0 {
		return &domainErrors.ValidationError{Reason: "operator id must be positive"}
	}
	if !req.PaymentMethod.Valid() {
		return &domainErrors.ValidationError{Reason: fmt.Sprintf("unsupported payment method %q", req.PaymentMethod)}
	}
	if req.MemberID != nil && *req.MemberID <= 0 {
		return &domainErrors.ValidationError{Reason: "member id must be positive"}
	}
	if req.QuotedTotal != nil && req.QuotedTotal.IsNegative() {
		return &domainErrors.ValidationError{Reason: "quoted total must not be negative"}
	}

	for i, line := range req.Lines {
		if err := validateLine(i+1, line); err != nil {
			return err
		}
	}
	return nil
}

func validateLine(n int, line model.CartLine) error {
	switch {
	case line.IsProduct() && line.IsRecipe():
		return &domainErrors.ValidationError{Line: n, Reason: "line must reference either a product or a recipe, not both"}
	case line.IsProduct():
		if !line.Quantity.IsPositive() {
			return &domainErrors.ValidationError{Line: n, Reason: "quantity must be positive"}
		}
		if line.WeightGrams != 0 {
			return &domainErrors.ValidationError{Line: n, Reason: "product line must not carry a weight"}
		}
	case line.IsRecipe():
		if math.IsNaN(line.WeightGrams) || math.IsInf(line.WeightGrams, 0) || line.WeightGrams <= 0 {
			return &domainErrors.ValidationError{Line: n, Reason: "weight must be a positive number of grams"}
		}
		if !line.Quantity.IsZero() {
			return &domainErrors.ValidationError{Line: n, Reason: "recipe line must not carry a quantity"}
		}
	default:
		return &domainErrors.ValidationError{Line: n, Reason: "line must reference a product or a recipe"}
	}
	return nil
}
