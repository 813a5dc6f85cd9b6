package textutil

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatMoney renders amount for humans, e.g. "$ 1,234.50" for en/USD. Unknown currency codes
// fall back to "<CODE> 1234.50".
func FormatMoney(tag language.Tag, currencyCode string, amount decimal.Decimal) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	rounded := amount.Round(2)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return strings.TrimSpace(code + " " + rounded.StringFixed(2))
	}
	value, _ := rounded.Float64()
	p := message.NewPrinter(tag)
	return p.Sprintf("%v %v", currency.Symbol(unit), number.Decimal(value, number.Scale(2)))
}
