// Package validate runs go-playground/validator over service inputs. Field
// errors are keyed by the json tag so they line up with request bodies.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	Configure(val)
	return val
}

// Configure names fields after their json tag, validates decimal.Decimal as
// its string form and adds the money tag.
func Configure(val *validator.Validate) {
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	val.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		return d.String()
	}, decimal.Decimal{})
	_ = val.RegisterValidation("money", money)
}

// money accepts a positive decimal with at most two fraction digits.
func money(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Round(2))
}

// Struct validates s and returns field -> message, or nil when s is valid.
func Struct(s any) map[string]string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"_": "Invalid input."}
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = Message(fe.Tag(), fe.Param())
	}
	return out
}

// Message is the user-facing text for a failed validator tag.
func Message(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Must be at least " + param + " characters."
	case "max":
		return "Must be at most " + param + " characters."
	case "len":
		return "Must be exactly " + param + " characters."
	case "alpha":
		return "Must contain letters only."
	case "oneof":
		return "Must be one of: " + param + "."
	case "money":
		return "Must be greater than zero with at most two decimals."
	default:
		return "Invalid value."
	}
}
