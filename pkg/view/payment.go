package view

import (
	"time"

	"github.com/shopspring/decimal"

	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/modules/payments"
)

type PublicBrand struct {
	Name        string `json:"name"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Description string `json:"description,omitempty"`
}

// PublicPayment is what a customer may see; it carries no internal ids.
type PublicPayment struct {
	ReferenceID        string          `json:"referenceId"`
	CustomerName       string          `json:"customerName"`
	ServiceName        string          `json:"serviceName"`
	ServiceDescription string          `json:"serviceDescription,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Status             payments.Status `json:"status"`
	Brand              PublicBrand     `json:"brand"`
}

func NewPublicPayment(p *payments.Payment) PublicPayment {
	out := PublicPayment{
		ReferenceID:        p.ReferenceID,
		CustomerName:       p.CustomerName,
		ServiceName:        p.ServiceName,
		ServiceDescription: p.ServiceDescription,
		Amount:             p.Amount,
		Currency:           p.Currency,
		Status:             p.Status,
	}
	if p.Brand != nil {
		out.Brand = PublicBrand{Name: p.Brand.Name, LogoURL: p.Brand.LogoURL, Description: p.Brand.Description}
	}
	return out
}

// AgentPayment is the listing row shown to authenticated agents.
type AgentPayment struct {
	ID               string          `json:"id"`
	ReferenceID      string          `json:"referenceId"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail"`
	CustomerPhone    string          `json:"customerPhone,omitempty"`
	ServiceName      string          `json:"serviceName"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           payments.Status `json:"status"`
	ProcessorOrderID string          `json:"processorOrderId,omitempty"`
	BrandID          string          `json:"brandId"`
	BrandName        string          `json:"brandName"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func NewAgentPayment(p *payments.Payment) AgentPayment {
	out := AgentPayment{
		ID:               p.ID,
		ReferenceID:      p.ReferenceID,
		CustomerName:     p.CustomerName,
		CustomerEmail:    p.CustomerEmail,
		CustomerPhone:    p.CustomerPhone,
		ServiceName:      p.ServiceName,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           p.Status,
		ProcessorOrderID: p.OrderID(),
		BrandID:          p.BrandID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Brand != nil {
		out.BrandName = p.Brand.Name
	}
	return out
}

func NewAgentPayments(items []payments.Payment) []AgentPayment {
	out := make([]AgentPayment, 0, len(items))
	for i := range items {
		out = append(out, NewAgentPayment(&items[i]))
	}
	return out
}

type CreatedLink struct {
	ReferenceID string          `json:"referenceId"`
	PaymentURL  string          `json:"paymentUrl"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	BrandName   string          `json:"brandName"`
	OrderID     string          `json:"paypalOrderId"`
	ApprovalURL string          `json:"approvalUrl,omitempty"`
	Status      payments.Status `json:"status"`
}

func NewCreatedLink(r payments.CreateLinkResult) CreatedLink {
	return CreatedLink{
		ReferenceID: r.Payment.ReferenceID,
		PaymentURL:  r.PaymentURL,
		Amount:      r.Payment.Amount,
		Currency:    r.Payment.Currency,
		BrandName:   r.BrandName,
		OrderID:     r.OrderID,
		ApprovalURL: r.ApprovalURL,
		Status:      r.Payment.Status,
	}
}

type BrandRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
}

func NewBrandRef(b *brands.Brand) *BrandRef {
	if b == nil {
		return nil
	}
	return &BrandRef{ID: b.ID, Name: b.Name, LogoURL: b.LogoURL}
}
