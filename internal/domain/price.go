package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// PriceDecimals es la cantidad de decimales implícitos en los precios del oráculo.
const PriceDecimals = 6

// Price es un precio entero en punto fijo con PriceDecimals decimales.
// 10_000_000 equivale a $10.00.
type Price int64

// Dollars convierte el precio a su valor decimal ($).
func (p Price) Dollars() decimal.Decimal {
	return decimal.New(int64(p), -PriceDecimals)
}

// String devuelve el valor entero, que es lo que espera el CLI del exchange.
func (p Price) String() string {
	return strconv.FormatInt(int64(p), 10)
}

// Label devuelve "10050000 ($10.05)" para logs y tablas.
func (p Price) Label() string {
	return p.String() + " ($" + p.Dollars().StringFixed(2) + ")"
}

// IsMultipleOf devuelve true si el precio cae exactamente en la grilla de ticks.
func (p Price) IsMultipleOf(tick Price) bool {
	if tick <= 0 {
		return false
	}
	return p%tick == 0
}

// ParsePrice convierte el precio devuelto por el oráculo (string entero,
// posiblemente con notación decimal "10050000.0") a Price.
// Rechaza valores no enteros o no positivos.
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, wrapInvalid("parse price %q: %v", s, err)
	}
	if !d.IsInteger() {
		return 0, wrapInvalid("price %q is not an integer", s)
	}
	if !d.IsPositive() {
		return 0, wrapInvalid("price %q is not positive", s)
	}
	return Price(d.IntPart()), nil
}

// PriceTable contiene los precios por defecto que se usan cuando el oráculo
// no responde. Fallback aplica a mercados sin entrada en Defaults.
type PriceTable struct {
	Defaults map[string]Price
	Fallback Price
}

// For devuelve el precio por defecto del mercado.
func (t PriceTable) For(marketID string) Price {
	if p, ok := t.Defaults[marketID]; ok {
		return p
	}
	return t.Fallback
}

func uitoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
