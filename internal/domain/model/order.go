package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod names the tender used to settle an order.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCard          PaymentMethod = "card"
	PaymentWeChat        PaymentMethod = "wechat"
	PaymentAlipay        PaymentMethod = "alipay"
	PaymentMemberBalance PaymentMethod = "member_balance"
)

// Valid reports whether the payment method is one the till accepts.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentWeChat, PaymentAlipay, PaymentMemberBalance:
		return true
	}
	return false
}

// PointsStatus tracks loyalty crediting for an order.
type PointsStatus string

const (
	PointsNone     PointsStatus = "NONE"
	PointsPending  PointsStatus = "PENDING"
	PointsRetrying PointsStatus = "RETRYING"
	PointsCredited PointsStatus = "CREDITED"
)

// LineKind distinguishes fixed-quantity products from weighed recipes.
type LineKind string

const (
	LineProduct LineKind = "product"
	LineRecipe  LineKind = "recipe"
)

// Order is the persisted result of one successful checkout.
type Order struct {
	ID            int64
	Number        string
	MemberID      *int64
	OperatorID    int64
	Lines         []OrderLine
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	PointsStatus  PointsStatus
	PointsEarned  decimal.Decimal
	CreatedAt     time.Time
}

// OrderLine is a priced snapshot of one cart line.
type OrderLine struct {
	Kind        LineKind
	ProductID   int64
	RecipeID    int64
	Name        string
	Quantity    decimal.Decimal
	WeightGrams float64
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Consumption []Consumption
}
