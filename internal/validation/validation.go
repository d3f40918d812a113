// internal/validation/validation.go

// Package validation wraps go-playground/validator so that stores and the gin
// binding layer report field errors under their JSON names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = New()

// New returns a validator that names fields by their json tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Configure(v)
	return v
}

// Configure makes v report json field names. It is applied to gin's binding
// engine as well.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
}

// Struct checks the `validate` tags of s.
func Struct(s any) error {
	return Describe(validate.Struct(s))
}

// Var checks a single value against tag; name labels the error.
func Var(name string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return errors.New(message(name, errs[0]))
	}
	return err
}

// Describe turns validator errors into a readable message naming the first
// failing field. Other errors are returned unchanged.
func Describe(err error) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, message(fe.Field(), fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}
