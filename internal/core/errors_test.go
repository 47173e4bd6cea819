package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"unit-recon/internal/core"
)

func TestErrorKind(t *testing.T) {
	verr := &core.ValidationError{Result: &core.ValidationResult{Errors: []string{"a", "b"}}}
	bulk := &core.BulkLinkError{Index: 1, OrderUnitID: uuid.New(), DeliveryUnitID: uuid.New(), Err: verr}

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("link x: %w", core.ErrNotFound), core.KindNotFound},
		{fmt.Errorf("wrapped: %w", core.ErrConflict), core.KindConflict},
		{verr, core.KindValidationFailed},
		{bulk, core.KindPartialBulkFailure},
		{fmt.Errorf("auto-link: %w", bulk), core.KindPartialBulkFailure},
		{core.ErrInvalidInput, core.KindInvalidInput},
		{errors.New("connection reset"), core.KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, core.ErrorKind(tt.err), "%v", tt.err)
	}

	assert.Equal(t, []string{"a", "b"}, core.ErrorMessages(verr))
	assert.Equal(t, []string{"a", "b"}, core.ErrorMessages(bulk), "bulk failures expose the pair's validation errors")
	assert.ErrorIs(t, bulk, core.ErrValidationFailed)
	assert.Nil(t, core.ErrorMessages(nil))
}
