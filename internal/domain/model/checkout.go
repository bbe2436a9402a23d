package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is either a product line (ProductID, Quantity) or a recipe line
// (RecipeID, WeightGrams).
type CartLine struct {
	ProductID   int64
	Quantity    decimal.Decimal
	RecipeID    int64
	WeightGrams float64
}

// IsProduct reports whether the line refers to a product.
func (l CartLine) IsProduct() bool { return l.ProductID > 0 }

// IsRecipe reports whether the line refers to a recipe.
func (l CartLine) IsRecipe() bool { return l.RecipeID > 0 }

// CheckoutRequest is the inbound cart submitted by a till.
type CheckoutRequest struct {
	Lines         []CartLine
	MemberID      *int64
	PaymentMethod PaymentMethod
	OperatorID    int64
	QuotedTotal   *decimal.Decimal
}

// CheckoutResult wraps the committed order with non-fatal warnings.
type CheckoutResult struct {
	Order    *Order
	Attempts int
	Warnings []string
}

// CheckoutState is a step of a single checkout attempt.
type CheckoutState string

const (
	StateStart              CheckoutState = "START"
	StateIdentifierAssigned CheckoutState = "IDENTIFIER_ASSIGNED"
	StateStockValidated     CheckoutState = "STOCK_VALIDATED"
	StateStockApplied       CheckoutState = "STOCK_APPLIED"
	StateOrderPersisted     CheckoutState = "ORDER_PERSISTED"
	StateUsageLogged        CheckoutState = "USAGE_LOGGED"
	StatePointsAccrued      CheckoutState = "POINTS_ACCRUED"
	StateCommitted          CheckoutState = "COMMITTED"
	StateRetry              CheckoutState = "RETRY"
	StateFailed             CheckoutState = "FAILED"
)

// Consumption is the resolved use of one material by a recipe line.
type Consumption struct {
	MaterialID   int64           `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Grams        int64           `json:"grams"`
	Amount       decimal.Decimal `json:"amount"`
	Unit         string          `json:"unit"`
	Display      string          `json:"display"`
}

// InventoryAdjustment is one append-only stock ledger row.
type InventoryAdjustment struct {
	ID        int64
	Ref       StockRef
	Delta     decimal.Decimal
	Reason    string
	Remark    string
	CreatedAt time.Time
}

// RecipeUsage records which materials a recipe line consumed.
type RecipeUsage struct {
	ID          int64
	OrderID     int64
	RecipeID    int64
	WeightGrams float64
	Details     []Consumption
	CreatedAt   time.Time
}
