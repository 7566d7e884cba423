package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"paylink.dev/app/internal/shared/validate"
)

type FieldErrors map[string]string

var setup sync.Once

// Setup teaches gin's binding validator the money tag and decimal amounts.
func Setup() {
	setup.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validate.Configure(v)
		}
	})
}

// FromBindError turns a bind or validation error into field -> message.
// dst is the bound struct pointer; its json or form tags name the fields.
func FromBindError(err error, dst any) FieldErrors {
	out := FieldErrors{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			key := fieldKey(dst, fe.StructField())
			out[key] = validate.Message(fe.Tag(), fe.Param())
		}
		return out
	}

	out["_"] = "Request body is invalid."
	return out
}

func fieldKey(dst any, structField string) string {
	t := reflect.TypeOf(dst)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return strings.ToLower(structField)
	}

	f, ok := t.FieldByName(structField)
	if !ok {
		return strings.ToLower(structField)
	}
	for _, name := range []string{"json", "form"} {
		tag := f.Tag.Get(name)
		if i := strings.Index(tag, ","); i >= 0 {
			tag = tag[:i]
		}
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return strings.ToLower(structField)
}
