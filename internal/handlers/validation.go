package handlers

import (
	"errors"
	"html"
	"reflect"
	"strings"

	"prospects/internal/services"

	"github.com/go-playground/validator/v10"
)

// requestValidator validates request structs and reports failing fields by
// their JSON names.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

// check returns a ValidationError listing every invalid field, or nil.
func (rv *requestValidator) check(req interface{}) error {
	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]string, 0, len(validationErrors))
	seen := make(map[string]bool, len(validationErrors))
	for _, e := range validationErrors {
		name := fieldPath(e.Namespace())
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	return services.NewValidationError(fields)
}

// fieldPath drops the struct name from a validator namespace
// ("SignupRequest.email" -> "email").
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// sanitize trims and HTML-escapes free text.
func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func invalidBody(err error) error {
	return &services.Error{
		Kind:    services.KindValidation,
		Message: "Invalid request body",
		Err:     err,
	}
}
