package contacts

import (
	"time"

	"paylink.dev/app/internal/modules/brands"
)

const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusClosed    = "closed"
)

func ValidStatus(s string) bool {
	return s == StatusNew || s == StatusContacted || s == StatusClosed
}

type ContactRequest struct {
	ID        string        `gorm:"type:char(36);primaryKey"`
	Name      string        `gorm:"type:varchar(191);not null"`
	Email     string        `gorm:"type:varchar(191);not null"`
	Phone     string        `gorm:"type:varchar(64);not null"`
	Message   string        `gorm:"type:text;not null"`
	Country   string        `gorm:"type:varchar(64)"`
	Budget    string        `gorm:"type:varchar(64)"`
	Services  string        `gorm:"type:varchar(255)"`
	Timeline  string        `gorm:"type:varchar(64)"`
	Status    string        `gorm:"type:varchar(16);not null;index:ix_contact_requests_status"`
	BrandID   string        `gorm:"type:char(36);not null;index:ix_contact_requests_brand_id"`
	Brand     *brands.Brand `gorm:"foreignKey:BrandID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt time.Time     `gorm:"not null;index:ix_contact_requests_created_at"`
	UpdatedAt time.Time     `gorm:"not null"`
}

func (ContactRequest) TableName() string { return "contact_requests" }
