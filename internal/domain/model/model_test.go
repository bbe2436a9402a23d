package model

import "testing"

func TestPaymentMethodValid(t *testing.T) {
	cases := []struct {
		method PaymentMethod
		valid  bool
	}{
		{PaymentCash, true},
		{PaymentCard, true},
		{PaymentWeChat, true},
		{PaymentAlipay, true},
		{PaymentMemberBalance, true},
		{PaymentMethod("cheque"), false},
		{PaymentMethod(""), false},
	}

	for _, tc := range cases {
		t.Run(string(tc.method), func(t *testing.T) {
			if got := tc.method.Valid(); got != tc.valid {
				t.Fatalf("expected %v, got %v", tc.valid, got)
			}
		})
	}
}

func TestCartLineKind(t *testing.T) {
	product := CartLine{ProductID: 1}
	if !product.IsProduct() || product.IsRecipe() {
		t.Fatalf("expected product line, got %+v", product)
	}

	recipe := CartLine{RecipeID: 2, WeightGrams: 200}
	if recipe.IsProduct() || !recipe.IsRecipe() {
		t.Fatalf("expected recipe line, got %+v", recipe)
	}
}

func TestPointsStatusValues(t *testing.T) {
	cases := []struct {
		status PointsStatus
		value  string
	}{
		{PointsNone, "NONE"},
		{PointsPending, "PENDING"},
		{PointsRetrying, "RETRYING"},
		{PointsCredited, "CREDITED"},
	}

	for _, tc := range cases {
		if string(tc.status) != tc.value {
			t.Fatalf("expected %s, got %s", tc.value, tc.status)
		}
	}
}
