package finance

import (
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns round(part/whole*100), or 0 when whole is not positive.
func Percent(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}
	return int(part.Mul(hundred).Div(whole).Round(0).IntPart())
}

// CappedPercent is Percent clamped to at most 100.
func CappedPercent(part, whole decimal.Decimal) int {
	return min(100, Percent(part, whole))
}

// maxZero returns d, or zero when d is negative.
func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func signed(tx models.Transaction) decimal.Decimal {
	if tx.Type == models.TypeIncome {
		return tx.Amount
	}
	return tx.Amount.Neg()
}

// FormatAmount renders d rounded to whole units with comma thousands separators.
func FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	digits := d.Abs().Round(0).StringFixed(0)

	var b strings.Builder
	if neg && digits != "0" {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatMoney prefixes FormatAmount with the currency symbol, e.g. "Rp 1,500,000".
func FormatMoney(currency string, d decimal.Decimal) string {
	symbol, ok := models.CurrencySymbols[currency]
	if !ok {
		symbol = currency
	}
	return symbol + " " + FormatAmount(d)
}
