package scoring

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numPrinter = message.NewPrinter(language.AmericanEnglish)

// formatCount renders a count with thousands separators for signal strings.
func formatCount(n int64) string {
	return numPrinter.Sprintf("%d", n)
}

// formatMoney renders a currency amount with thousands separators.
func formatMoney(n int64) string {
	return numPrinter.Sprintf("$%d", n)
}
