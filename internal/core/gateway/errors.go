package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks payloads the gateway refused.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Error wraps a failed gateway call with the operation that failed.
type Error struct {
	Op  string
	Err error
}

// Wrap returns nil for a nil err, otherwise an *Error for op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return err
	}
	return &Error{Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the short text shown to users.
func (e *Error) Message() string {
	if errors.Is(e.Err, ErrValidation) {
		return fmt.Sprintf("Could not %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("Could not %s. Please try again.", e.Op)
}

// UserMessage extracts a user-facing message from any error.
func UserMessage(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message()
	}
	return err.Error()
}
