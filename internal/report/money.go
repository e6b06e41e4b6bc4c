package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount with the currency's grapheme and grouping,
// for example "$1,234.50". Unknown currencies fall back to "1234.50 XYZ".
func FormatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return decimal.NewFromFloat(amount).StringFixed(2) + " " + currency
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

func usd(amount float64) string { return FormatMoney(amount, money.USD) }

func eur(amount float64) string { return FormatMoney(amount, money.EUR) }
