package types

import (
	"errors"
	"fmt"
)

// ============================================================================
// Rejection taxonomy
// Every engine operation reports a failed precondition with one of these.
// None of them is fatal: callers print the reason and carry on.
// ============================================================================

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrFull          = errors.New("capacity reached")
	ErrEmpty         = errors.New("no records")
	ErrDuplicate     = errors.New("duplicate")
	ErrSingleElement = errors.New("only one record")

	// ErrInvalidAmount is an ErrInvalidInput for supply consumption.
	ErrInvalidAmount = fmt.Errorf("%w: amount", ErrInvalidInput)
	// ErrInvalidWindow is an ErrInvalidInput for shift windows.
	ErrInvalidWindow = fmt.Errorf("%w: shift window", ErrInvalidInput)
)

// Reason returns the taxonomy name of err, "" for nil and "Internal" for
// anything outside the taxonomy. The InvalidInput variants report their own
// name.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, ErrInvalidWindow):
		return "InvalidWindow"
	case errors.Is(err, ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrFull):
		return "Full"
	case errors.Is(err, ErrEmpty):
		return "Empty"
	case errors.Is(err, ErrDuplicate):
		return "Duplicate"
	case errors.Is(err, ErrSingleElement):
		return "SingleElement"
	default:
		return "Internal"
	}
}
