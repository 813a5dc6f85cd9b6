package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits exposed at the display boundary.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half-up to MoneyScale places. Amounts reaching this point are never negative.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyScale)
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(v decimal.Decimal) string {
	return v.StringFixed(MoneyScale)
}

// ParseMoney parses a decimal string, rejecting negative amounts.
func ParseMoney(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if v.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return v, nil
}

// ClampMoney bounds v to [lo, hi].
func ClampMoney(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// Percent returns base * pct / 100.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}
