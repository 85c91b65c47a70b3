// Package repeterr defines the REPET error taxonomy: InvalidInput,
// DegenerateStructure and NumericOverflow. Modeled on the teacher
// repo's pkg/stream/common.StreamError — a typed error carrying a
// stable code, a message and an optional cause, unwrappable via the
// standard errors package.
package repeterr

import "fmt"

// Code identifies which branch of the failure taxonomy an Error belongs to.
type Code string

const (
	// CodeInvalidInput marks shape/type/range errors at the boundary:
	// empty signal, fs <= 0, signal shorter than one analysis window.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeDegenerateStructure marks a beat spectrogram or similarity
	// search that yielded no candidate period/index within the
	// configured search range.
	CodeDegenerateStructure Code = "DEGENERATE_STRUCTURE"

	// CodeNumericOverflow marks non-finite values detected in a result
	// that should be impossible given epsilon-regularized ratios.
	CodeNumericOverflow Code = "NUMERIC_OVERFLOW"
)

// Error is the REPET package's error type. It is always one of the
// three Codes above.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Code, so that
// errors.Is(err, repeterr.Invalid("")) style checks are unnecessary and
// callers instead write errors.Is(err, &repeterr.Error{Code: repeterr.CodeInvalidInput}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func new_(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Invalid builds a CodeInvalidInput error.
func Invalid(format string, args ...any) *Error {
	return new_(CodeInvalidInput, format, args...)
}

// Degenerate builds a CodeDegenerateStructure error.
func Degenerate(format string, args ...any) *Error {
	return new_(CodeDegenerateStructure, format, args...)
}

// Overflow builds a CodeNumericOverflow error.
func Overflow(format string, args ...any) *Error {
	return new_(CodeNumericOverflow, format, args...)
}

// IsCode reports whether err is a *Error with the given Code.
func IsCode(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
