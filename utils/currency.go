package utils

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrencyBRL formats a value as Brazilian Real.
// Example: 1234.5 -> "R$ 1.234,50"
func FormatCurrencyBRL(amount float64) string {
	result := brl.Sprint(currency.Symbol(currency.BRL.Amount(math.Abs(amount))))
	if amount < 0 {
		return "-" + result
	}
	return result
}
