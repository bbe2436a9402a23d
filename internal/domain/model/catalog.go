package model

import "github.com/shopspring/decimal"

// StockKind tells which catalog table holds a stock quantity.
type StockKind string

const (
	StockMaterial StockKind = "material"
	StockProduct  StockKind = "product"
)

// StockRef points at a single stock-carrying catalog row.
type StockRef struct {
	Kind StockKind
	ID   int64
}

// Product is a fixed-price item sold by quantity.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock decimal.Decimal
	Unit  string
}

// Material is a raw ingredient whose stock is kept in its native unit.
// CustomRate holds grams per one unit for non-mass units such as bags.
type Material struct {
	ID         int64
	Name       string
	Stock      decimal.Decimal
	Unit       string
	CustomRate float64
}

// Recipe is sold by weight and consumes materials in fixed proportions.
type Recipe struct {
	ID          int64
	Name        string
	PricePerKg  decimal.Decimal
	Ingredients []Ingredient
}

// Ingredient is one material share of a recipe.
type Ingredient struct {
	MaterialID   int64
	MaterialName string
	Percentage   float64
	StockUnit    string
	CustomRate   float64
}

// Member is a loyalty customer. DiscountRate is a fraction of the subtotal.
type Member struct {
	ID           int64
	Name         string
	DiscountRate decimal.Decimal
	Points       decimal.Decimal
}
