// Package unit converts stock quantities between mass units and formats them
// the way receipts and stock sheets print them.
package unit

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
)

// Unit is a canonical mass unit.
type Unit string

const (
	Gram     Unit = "g"
	Kilogram Unit = "kg"
	Jin      Unit = "jin"
	Liang    Unit = "liang"
	Pound    Unit = "lb"
)

var gramsPer = map[Unit]float64{
	Gram:     1,
	Kilogram: 1000,
	Jin:      500,
	Liang:    50,
	Pound:    453.592,
}

var aliases = map[string]Unit{
	"g":         Gram,
	"gram":      Gram,
	"grams":     Gram,
	"克":         Gram,
	"kg":        Kilogram,
	"kilogram":  Kilogram,
	"kilograms": Kilogram,
	"千克":        Kilogram,
	"公斤":        Kilogram,
	"jin":       Jin,
	"catty":     Jin,
	"斤":         Jin,
	"liang":     Liang,
	"tael":      Liang,
	"两":         Liang,
	"lb":        Pound,
	"lbs":       Pound,
	"pound":     Pound,
	"pounds":    Pound,
	"磅":         Pound,
}

var labels = map[Unit]string{
	Gram:     "g",
	Kilogram: "kg",
	Jin:      "斤",
	Liang:    "两",
	Pound:    "lb",
}

// Parse resolves a unit name or alias to its canonical unit.
func Parse(name string) (Unit, bool) {
	u, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return u, ok
}

// rate returns grams per one unit. A positive customRate wins over the table.
func rate(name string, customRate float64) (float64, error) {
	if customRate > 0 {
		return customRate, nil
	}
	u, ok := Parse(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", domainErrors.ErrUnknownUnit, name)
	}
	return gramsPer[u], nil
}

// ToGrams converts value expressed in unit into grams.
func ToGrams(value float64, unit string, customRate float64) (float64, error) {
	r, err := rate(unit, customRate)
	if err != nil {
		return 0, err
	}
	return value * r, nil
}

// FromGrams converts grams into unit.
func FromGrams(grams float64, unit string, customRate float64) (float64, error) {
	r, err := rate(unit, customRate)
	if err != nil {
		return 0, err
	}
	return grams / r, nil
}

// Places is the number of decimals a quantity in unit is shown and stored
// with: two for kg and jin, none for grams, three for everything else.
func Places(unit string) int32 {
	u, _ := Parse(unit)
	switch u {
	case Kilogram, Jin:
		return 2
	case Gram:
		return 0
	default:
		return 3
	}
}

// Format rounds value half away from zero to the precision of unit.
func Format(value float64, unit string) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(Places(unit))
}

// Display renders value with the fixed number of decimals for unit.
func Display(value float64, unit string) string {
	return Format(value, unit).StringFixed(Places(unit))
}

// Label returns the short printed label for unit. Unknown units print as is.
func Label(unit string) string {
	if u, ok := Parse(unit); ok {
		return labels[u]
	}
	return strings.TrimSpace(unit)
}
