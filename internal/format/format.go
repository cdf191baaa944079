// Package format renders numbers the way a Brazilian reader expects:
// dot-grouped thousands, comma decimals, BRL currency.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// BRL renders a monetary value, e.g. 1234.5 -> "R$ 1.234,50".
func BRL(v float64) string {
	return printer.Sprintf("R$ %v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// Int renders a whole number with thousands grouping.
func Int(v int) string {
	return printer.Sprintf("%v", number.Decimal(v))
}

// Decimal renders v with up to max fraction digits.
func Decimal(v float64, max int) string {
	return printer.Sprintf("%v", number.Decimal(v,
		number.MaxFractionDigits(max),
	))
}

// Kg renders a weight with up to one decimal, e.g. "12.345,6 kg".
func Kg(v float64) string {
	return Decimal(v, 1) + " kg"
}

// Pct renders a percentage with one fixed decimal.
func Pct(v float64) string {
	return printer.Sprintf("%v%%", number.Decimal(v,
		number.MinFractionDigits(1),
		number.MaxFractionDigits(1),
	))
}

// SignedPct is Pct with an explicit plus sign on positive values, used
// for month-over-month variations.
func SignedPct(v float64) string {
	s := Pct(v)
	if v > 0 {
		return "+" + s
	}
	return s
}
