package payments

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Remote order statuses reported by the processor.
const (
	OrderCreated             = "CREATED"
	OrderSaved               = "SAVED"
	OrderApproved            = "APPROVED"
	OrderVoided              = "VOIDED"
	OrderCompleted           = "COMPLETED"
	OrderPayerActionRequired = "PAYER_ACTION_REQUIRED"
)

type OrderRequest struct {
	ReferenceID string
	Description string
	BrandName   string
	Amount      decimal.Decimal
	Currency    string
	ReturnURL   string
	CancelURL   string
}

type Order struct {
	ID          string
	Status      string
	ApprovalURL string
}

// Approvable reports whether the customer can still be sent to ApprovalURL.
func (o Order) Approvable() bool {
	if o.ApprovalURL == "" {
		return false
	}
	switch o.Status {
	case OrderCreated, OrderSaved, OrderApproved, OrderPayerActionRequired:
		return true
	}
	return false
}

type Capture struct {
	ID     string
	Status string
}

// Gateway is the processor contract. Orders are always full, immediate captures
// correlated by ReferenceID. CaptureOrder returns an error wrapping
// ErrOrderNotCapturable when the order was already captured, voided or rejected.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	CaptureOrder(ctx context.Context, orderID string) (Capture, error)
	FetchOrder(ctx context.Context, orderID string) (Order, error)
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string { return d.StringFixed(2) }

// NormalizeCurrency trims and upper-cases an ISO 4217 code.
func NormalizeCurrency(c string) string { return strings.ToUpper(strings.TrimSpace(c)) }
