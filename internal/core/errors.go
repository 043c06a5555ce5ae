package core

import (
	"errors"
	"fmt"
)

// Error taxonomy reported by every engine operation.
var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEmptyInput        = errors.New("empty input")
)

// OpError records the operation that failed and the underlying cause.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// WrapOp attaches op to err. A nil err stays nil and an existing OpError
// keeps its original operation.
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Err: err}
}

func InvalidParameterf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func DimensionMismatchf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDimensionMismatch, fmt.Sprintf(format, args...))
}

func EmptyInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrEmptyInput, fmt.Sprintf(format, args...))
}
