// Package validate re-applies the request rules declared in `binding`
// struct tags at the service boundary, so callers other than gin get the
// same checks.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is the first failing rule for one field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is returned by Struct when any rule fails.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Message
}

// Fields maps JSON field names to messages.
func (e Errors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

var (
	once sync.Once
	v    *validator.Validate
)

// Engine returns the shared validator. Tags are read from `binding` and
// field names from `json`.
func Engine() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		v.SetTagName("binding")
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// Struct validates s. Failures are returned as Errors.
func Struct(s interface{}) error {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// Translate converts a gin binding error into Errors when possible.
func Translate(err error) (Errors, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: jsonName(fe), Message: message(fe)})
	}
	return out, true
}

// gin's validator does not register the json name func; fall back to
// lower-casing the struct field.
func jsonName(fe validator.FieldError) string {
	f := fe.Field()
	if f == "" {
		return f
	}
	return toSnake(f)
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(toSnake(fe.Field()), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please fill in %s", field)
	case "email":
		return "Please enter a valid email address"
	case "min":
		if field == "password" {
			return fmt.Sprintf("Password should be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
