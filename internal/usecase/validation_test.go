package usecase

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
)

func validRequest() model.CheckoutRequest {
	return model.CheckoutRequest{
		Lines: []model.CartLine{
			{ProductID: 1, Quantity: decimal.NewFromInt(2)},
			{RecipeID: 1, WeightGrams: 200},
		},
		PaymentMethod: model.PaymentCash,
		OperatorID:    7,
	}
}

func TestValidateCheckoutAcceptsWellFormedCart(t *testing.T) {
	if err := ValidateCheckout(validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCheckoutRejects(t *testing.T) {
	negativeMember := int64(-1)
	negativeTotal := decimal.NewFromInt(-1)

	tests := []struct {
		name   string
		mutate func(*model.CheckoutRequest)
		reason string
	}{
		{"empty cart", func(r *model.CheckoutRequest) { r.Lines = nil }, "cart is empty"},
		{"missing operator", func(r *model.CheckoutRequest) { r.OperatorID = 0 }, "operator id"},
		{"unknown payment", func(r *model.CheckoutRequest) { r.PaymentMethod = "iou" }, "unsupported payment method"},
		{"bad member", func(r *model.CheckoutRequest) { r.MemberID = &negativeMember }, "member id"},
		{"negative quote", func(r *model.CheckoutRequest) { r.QuotedTotal = &negativeTotal }, "quoted total"},
		{"both references", func(r *model.CheckoutRequest) { r.Lines[0].RecipeID = 3 }, "not both"},
		{"no reference", func(r *model.CheckoutRequest) { r.Lines[0] = model.CartLine{Quantity: decimal.NewFromInt(1)} }, "must reference"},
		{"zero quantity", func(r *model.CheckoutRequest) { r.Lines[0].Quantity = decimal.Zero }, "quantity must be positive"},
		{"product with weight", func(r *model.CheckoutRequest) { r.Lines[0].WeightGrams = 10 }, "must not carry a weight"},
		{"zero weight", func(r *model.CheckoutRequest) { r.Lines[1].WeightGrams = 0 }, "weight must be"},
		{"nan weight", func(r *model.CheckoutRequest) { r.Lines[1].WeightGrams = math.NaN() }, "weight must be"},
		{"recipe with quantity", func(r *model.CheckoutRequest) { r.Lines[1].Quantity = decimal.NewFromInt(1) }, "must not carry a quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := ValidateCheckout(req)
			if !errors.Is(err, domainErrors.ErrInvalidCart) {
				t.Fatalf("expected invalid cart, got %v", err)
			}
			var ve *domainErrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %T", err)
			}
			if !strings.Contains(ve.Reason, tt.reason) {
				t.Fatalf("expected reason containing %q, got %q", tt.reason, ve.Reason)
			}
		})
	}
}

func TestValidateCheckoutReportsLineNumber(t *testing.T) {
	req := validRequest()
	req.Lines[1].WeightGrams = -5

	var ve *domainErrors.ValidationError
	if !errors.As(ValidateCheckout(req), &ve) {
		t.Fatal("expected validation error")
	}
	if ve.Line != 2 {
		t.Fatalf("expected line 2, got %d", ve.Line)
	}
}
