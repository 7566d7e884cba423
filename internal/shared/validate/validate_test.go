package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type charge struct {
	Email    string          `json:"customerEmail" validate:"required,email,max=191"`
	Amount   decimal.Decimal `json:"amount" validate:"money"`
	Currency string          `json:"currency" validate:"omitempty,len=3,alpha"`
}

func TestStruct(t *testing.T) {
	assert.Nil(t, Struct(charge{Email: "a@b.co", Amount: decimal.RequireFromString("10.50"), Currency: "USD"}))
	assert.Nil(t, Struct(charge{Email: "a@b.co", Amount: decimal.NewFromInt(1)}))

	fields := Struct(charge{Email: "nope", Amount: decimal.Zero, Currency: "US"})
	assert.Equal(t, "Enter a valid email address.", fields["customerEmail"])
	assert.Equal(t, Message("money", ""), fields["amount"])
	assert.Equal(t, "Must be exactly 3 characters.", fields["currency"])
}

func TestMoneyRejectsSubCent(t *testing.T) {
	fields := Struct(charge{Email: "a@b.co", Amount: decimal.RequireFromString("10.005")})
	assert.Contains(t, fields, "amount")

	fields = Struct(charge{Email: "a@b.co", Amount: decimal.RequireFromString("-3")})
	assert.Contains(t, fields, "amount")
}
