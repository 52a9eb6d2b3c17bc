package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: fmt.Errorf("%w: name", ErrInvalidInput), want: "InvalidInput"},
		{err: ErrInvalidAmount, want: "InvalidAmount"},
		{err: fmt.Errorf("%w: 41 of 40", ErrInvalidAmount), want: "InvalidAmount"},
		{err: fmt.Errorf("wrap: %w", ErrInvalidWindow), want: "InvalidWindow"},
		{err: ErrNotFound, want: "NotFound"},
		{err: fmt.Errorf("%w: 100 patients", ErrFull), want: "Full"},
		{err: ErrEmpty, want: "Empty"},
		{err: ErrDuplicate, want: "Duplicate"},
		{err: ErrSingleElement, want: "SingleElement"},
		{err: errors.New("disk on fire"), want: "Internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err), "%v", tt.err)
	}
}

func TestVariantsWrapInvalidInput(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidAmount, ErrInvalidInput)
	assert.ErrorIs(t, ErrInvalidWindow, ErrInvalidInput)
	assert.NotErrorIs(t, ErrInvalidAmount, ErrInvalidWindow)
}
