package store

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/go-playground/validator/v10"
)

// ValidationError reports client-side form problems. It is returned before any state changes.
type ValidationError struct {
	Form   string
	Fields map[string]string // json field name -> problem
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	slices.Sort(names)

	problems := make([]string, 0, len(names))
	for _, name := range names {
		problems = append(problems, name+" "+e.Fields[name])
	}
	return fmt.Sprintf("invalid %s: %s", e.Form, strings.Join(problems, ", "))
}

func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// checkForm validates v and converts failures into a [ValidationError].
func checkForm(v *validator.Validate, form string, value any) error {
	err := v.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	verr := &ValidationError{Form: form, Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fe.Field()] = describeTag(fe)
	}
	return verr
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

func invalidMediaType(t any) error {
	return fmt.Errorf("%w: unknown media type %q", shared.ErrInvalidArgument, t)
}
