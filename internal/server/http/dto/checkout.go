package dto

import (
	"github.com/shopspring/decimal"
)

// CartLineRequest is one cart entry. Exactly one of ProductID and RecipeID is set.
type CartLineRequest struct {
	ProductID   int64            `json:"product_id,omitempty" validate:"gte=0"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	RecipeID    int64            `json:"recipe_id,omitempty" validate:"gte=0"`
	WeightGrams float64          `json:"weight_grams,omitempty" validate:"gte=0"`
}

// CheckoutRequest is the payload for POST /api/checkout.
type CheckoutRequest struct {
	Lines         []CartLineRequest `json:"lines" validate:"required,min=1,dive"`
	MemberID      *int64            `json:"member_id,omitempty" validate:"omitnil,gt=0"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card wechat alipay member_balance"`
	QuotedTotal   *decimal.Decimal  `json:"quoted_total,omitempty"`
}

// CheckoutResponse wraps the committed order.
type CheckoutResponse struct {
	Order    OrderResponse `json:"order"`
	Attempts int           `json:"attempts"`
	Warnings []string      `json:"warnings,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Msg    string            `json:"msg,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Stock  *StockShortage    `json:"stock,omitempty"`
}

// StockShortage names the item that blocked a checkout.
type StockShortage struct {
	Kind      string          `json:"kind"`
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Unit      string          `json:"unit"`
}
