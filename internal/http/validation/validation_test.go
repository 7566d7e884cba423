package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `form:"role" validate:"omitempty,oneof=agent admin"`
}

func TestFromBindErrorUsesTags(t *testing.T) {
	in := loginBody{Email: "nope", Password: "short", Role: "root"}
	err := validator.New().Struct(in)
	require.Error(t, err)

	fields := FromBindError(err, &in)
	assert.Equal(t, "Enter a valid email address.", fields["email"])
	assert.Equal(t, "Must be at least 8 characters.", fields["password"])
	assert.Equal(t, "Must be one of: agent admin.", fields["role"])
}

func TestFromBindErrorOther(t *testing.T) {
	fields := FromBindError(errors.New("unexpected EOF"), &loginBody{})
	assert.Equal(t, FieldErrors{"_": "Request body is invalid."}, fields)
}
