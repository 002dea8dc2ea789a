package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is the fixed display currency of the storefront.
const DefaultCurrency = "TND"

// epsilon nudges values off binary-representation boundaries before rounding,
// so e.g. 0.1+0.2 rounds to 0.30 and not 0.3000000000000000444.
const epsilon = 2.220446049250313e-16

// Round2 rounds to 2 decimal places (cents), half up.
func Round2(v float64) float64 {
	return math.Round((v+epsilon)*100) / 100
}

var frenchPrinter = message.NewPrinter(language.French)

// FormatTND renders a price the way the storefront displays it: French
// decimal formatting with two fraction digits, suffixed with the currency.
func FormatTND(v float64) string {
	return frenchPrinter.Sprintf("%v TND",
		number.Decimal(Round2(v), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
