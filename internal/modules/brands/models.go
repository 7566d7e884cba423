package brands

import "time"

type Brand struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(191);not null" json:"name"`
	LogoURL     string    `gorm:"type:varchar(512)" json:"logoUrl,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Email       string    `gorm:"type:varchar(191)" json:"email,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (Brand) TableName() string { return "brands" }
