package shared

import (
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with two decimals and the currency symbol
// when one is known, e.g. "$50.00" or "50.00 CHF".
func FormatMoney(currency string, amount decimal.Decimal) string {
	v := amount.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "EUR":
		return "€" + v
	case "USD":
		return "$" + v
	case "GBP":
		return "£" + v
	case "TRY":
		return "₺" + v
	default:
		return v + " " + currency
	}
}

// FuncMap holds the helpers available to page templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money": FormatMoney,
	}
}
