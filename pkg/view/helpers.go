package view

import (
	"github.com/shopspring/decimal"

	"paylink.dev/app/templates/shared"
)

// Money formats an amount for display, e.g. "$50.00".
func Money(amount decimal.Decimal, currency string) string {
	return shared.FormatMoney(currency, amount)
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
