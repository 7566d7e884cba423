package view

import (
	"time"

	"paylink.dev/app/internal/modules/contacts"
)

type ContactRequest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Country   string    `json:"country,omitempty"`
	Budget    string    `json:"budget,omitempty"`
	Services  string    `json:"services,omitempty"`
	Timeline  string    `json:"timeline,omitempty"`
	Status    string    `json:"status"`
	BrandID   string    `json:"brandId"`
	Brand     *BrandRef `json:"brand,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewContactRequest(c *contacts.ContactRequest) ContactRequest {
	return ContactRequest{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Message:   c.Message,
		Country:   c.Country,
		Budget:    c.Budget,
		Services:  c.Services,
		Timeline:  c.Timeline,
		Status:    c.Status,
		BrandID:   c.BrandID,
		Brand:     NewBrandRef(c.Brand),
		CreatedAt: c.CreatedAt,
	}
}

func NewContactRequests(items []contacts.ContactRequest) []ContactRequest {
	out := make([]ContactRequest, 0, len(items))
	for i := range items {
		out = append(out, NewContactRequest(&items[i]))
	}
	return out
}
