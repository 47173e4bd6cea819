package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidationFailed = errors.New("validation failed")
	ErrBulkLinkFailed   = errors.New("bulk link failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// Machine-readable error kinds surfaced to adapters.
const (
	KindNotFound           = "NOT_FOUND"
	KindConflict           = "CONFLICT"
	KindValidationFailed   = "VALIDATION_FAILED"
	KindPartialBulkFailure = "PARTIAL_BULK_FAILURE"
	KindInvalidInput       = "INVALID_INPUT"
	KindInternal           = "INTERNAL"
)

// ValidationError is returned when the linking validator rejects a pair.
// Result carries the validator's error list verbatim.
type ValidationError struct {
	Result *ValidationResult
}

func (e *ValidationError) Error() string {
	if e.Result == nil || len(e.Result.Errors) == 0 {
		return ErrValidationFailed.Error()
	}
	return "validation failed: " + strings.Join(e.Result.Errors, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// BulkLinkError reports the pair responsible for aborting a bulk link request.
// The batch has been rolled back when this error is returned.
type BulkLinkError struct {
	Index          int
	OrderUnitID    uuid.UUID
	DeliveryUnitID uuid.UUID
	Err            error
}

func (e *BulkLinkError) Error() string {
	return fmt.Sprintf("bulk link rolled back at pair %d (po unit %s, delivery unit %s): %v",
		e.Index, e.OrderUnitID, e.DeliveryUnitID, e.Err)
}

func (e *BulkLinkError) Unwrap() []error {
	return []error{ErrBulkLinkFailed, e.Err}
}

// ErrorKind classifies err into one of the Kind* constants.
func ErrorKind(err error) string {
	var bulk *BulkLinkError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &bulk):
		return KindPartialBulkFailure
	case errors.Is(err, ErrValidationFailed):
		return KindValidationFailed
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	}
	return KindInternal
}

// ErrorMessages returns the human-readable message list for err.
// Validation failures expand to the validator's individual errors.
func ErrorMessages(err error) []string {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Result != nil && len(verr.Result.Errors) > 0 {
		return append([]string(nil), verr.Result.Errors...)
	}
	return []string{err.Error()}
}

func notFound(what string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
