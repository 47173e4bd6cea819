package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"unit-recon/internal/core"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names so messages match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RequestError is returned when a request fails structural validation.
// It matches core.ErrInvalidInput.
type RequestError struct {
	Fields []string
}

func (e *RequestError) Error() string {
	return "invalid request: " + strings.Join(e.Fields, "; ")
}

func (e *RequestError) Unwrap() error {
	return core.ErrInvalidInput
}

// checkRequest validates req against its validate tags.
func checkRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	return &RequestError{Fields: formatValidationErrors(verrs)}
}

func formatValidationErrors(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required":
			out = append(out, field+" is required")
		case "required_without":
			out = append(out, field+" is required when "+fe.Param()+" is absent")
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "min":
			out = append(out, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return out
}

// FieldErrors returns the per-field messages of a request validation failure, or nil.
func FieldErrors(err error) []string {
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.Fields
	}
	return nil
}
