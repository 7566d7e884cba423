// Package schema lists every persisted model in migration order.
package schema

import (
	"gorm.io/gorm"

	"paylink.dev/app/internal/modules/agents"
	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/modules/contacts"
	"paylink.dev/app/internal/modules/payments"
)

func Models() []any {
	out := []any{&brands.Brand{}, &agents.Agent{}, &contacts.ContactRequest{}}
	return append(out, payments.Models()...)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
