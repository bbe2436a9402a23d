package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/gopherpos/internal/domain/model"
)

// OrderLineResponse is a priced order line.
type OrderLineResponse struct {
	Kind        string              `json:"kind"`
	ProductID   int64               `json:"product_id,omitempty"`
	RecipeID    int64               `json:"recipe_id,omitempty"`
	Name        string              `json:"name"`
	Quantity    *decimal.Decimal    `json:"quantity,omitempty"`
	WeightGrams float64             `json:"weight_grams,omitempty"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	Amount      decimal.Decimal     `json:"amount"`
	Consumption []model.Consumption `json:"consumption,omitempty"`
}

// OrderResponse describes a persisted order.
type OrderResponse struct {
	Number        string              `json:"number"`
	MemberID      *int64              `json:"member_id,omitempty"`
	OperatorID    int64               `json:"operator_id"`
	Lines         []OrderLineResponse `json:"lines"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod string              `json:"payment_method"`
	PointsStatus  string              `json:"points_status"`
	PointsEarned  decimal.Decimal     `json:"points_earned"`
	CreatedAt     time.Time           `json:"created_at"`
}
