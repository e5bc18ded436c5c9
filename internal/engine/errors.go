package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is the error a solve reports to its caller.
//
// Inside the engine, failures to match are plain nil results and invariant
// violations are panics. RuntimeError exists only at the boundary where a
// host runs a method (see method.Solve), so callers get an error value
// instead of a crash.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Method identifies the method being run.
	Method string

	// Input is the expression the method was run on, in plain format.
	Input string

	// Details contains additional context.
	Details map[string]string

	// Cause is the panic value or underlying error, when there is one.
	Cause error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNoTransformation indicates the method does not apply to the input.
	ErrCodeNoTransformation RuntimeErrorCode = "NO_TRANSFORMATION"

	// ErrCodeTooManyIterations indicates a loop exceeded Context.MaxIterations.
	ErrCodeTooManyIterations RuntimeErrorCode = "TOO_MANY_ITERATIONS"

	// ErrCodeInvariantViolation indicates a rule or pattern was misused.
	ErrCodeInvariantViolation RuntimeErrorCode = "INVARIANT_VIOLATION"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Method != "" && e.Input != "" {
		return fmt.Sprintf("%s: %s (method=%s, input=%s)", e.Code, e.Message, e.Method, e.Input)
	}
	if e.Method != "" {
		return fmt.Sprintf("%s: %s (method=%s)", e.Code, e.Message, e.Method)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// IsNoTransformation returns true if the method did not apply.
// Uses errors.As to handle wrapped errors.
func IsNoTransformation(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNoTransformation
	}
	return false
}

// IsIterationError returns true if a loop bound was exceeded.
// Matches both RuntimeError with ErrCodeTooManyIterations and TooManyIterationsError.
func IsIterationError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) && re.Code == ErrCodeTooManyIterations {
		return true
	}
	var te *TooManyIterationsError
	return errors.As(err, &te)
}

// IsInvariantViolation returns true if the solve panicked on misuse.
func IsInvariantViolation(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvariantViolation
	}
	return false
}

// NewNoTransformationError creates a RuntimeError for a method that did not apply.
func NewNoTransformationError(method, input string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNoTransformation,
		Message: "method does not apply",
		Method:  method,
		Input:   input,
	}
}

// NewIterationError creates a RuntimeError wrapping a TooManyIterationsError.
func NewIterationError(method, input string, cause *TooManyIterationsError) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTooManyIterations,
		Message: cause.Error(),
		Method:  method,
		Input:   input,
		Details: map[string]string{
			"loop":  cause.Loop,
			"limit": fmt.Sprintf("%d", cause.Limit),
		},
		Cause: cause,
	}
}

// NewInvariantError creates a RuntimeError for a recovered panic value.
func NewInvariantError(method, input string, recovered any) *RuntimeError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return &RuntimeError{
		Code:    ErrCodeInvariantViolation,
		Message: cause.Error(),
		Method:  method,
		Input:   input,
		Cause:   cause,
	}
}
