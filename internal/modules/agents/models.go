package agents

import "time"

const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

type Agent struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(191);not null" json:"name"`
	Email        string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_agents_email" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(16);not null;default:agent" json:"role"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

func (Agent) TableName() string { return "agents" }
