// Package decimal holds money helpers: half-up cent rounding and the French
// number formats used by the exports.
package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// Round2 rounds to cents, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Cents converts an amount to integer cents
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FormatComma renders an amount with two decimals and a comma separator (1234,50)
func FormatComma(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatCommaOrEmpty is FormatComma, except zero renders as an empty string
func FormatCommaOrEmpty(d decimal.Decimal) string {
	if d.Round(2).IsZero() {
		return ""
	}
	return FormatComma(d)
}

// FormatRate renders a VAT rate without trailing zeros (17, 8.5)
func FormatRate(rate decimal.Decimal) string {
	return rate.Round(2).String()
}

// FormatRateComma renders a VAT rate with a comma separator (17, 8,5)
func FormatRateComma(rate decimal.Decimal) string {
	return strings.Replace(FormatRate(rate), ".", ",", 1)
}
