package insurance

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatCost renders an amount as US dollars with grouping and two decimals,
// e.g. $12,345.67 or -$12.00.
func FormatCost(amount float64) string {
	rounded := math.Round(amount*100) / 100
	sign := ""
	if rounded < 0 {
		sign = "-"
	}
	return sign + "$" + usd.Sprint(number.Decimal(math.Abs(rounded), number.Scale(2)))
}
