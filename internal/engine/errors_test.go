package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *RuntimeError
		want string
	}{
		{
			name: "method and input",
			err:  NewNoTransformationError("EvaluateSumOfIntegers", "x + 1"),
			want: "NO_TRANSFORMATION: method does not apply (method=EvaluateSumOfIntegers, input=x + 1)",
		},
		{
			name: "method only",
			err:  &RuntimeError{Code: ErrCodeInvariantViolation, Message: "boom", Method: "M"},
			want: "INVARIANT_VIOLATION: boom (method=M)",
		},
		{
			name: "bare",
			err:  &RuntimeError{Code: ErrCodeInvariantViolation, Message: "boom"},
			want: "INVARIANT_VIOLATION: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestRuntimeError_Helpers(t *testing.T) {
	noMatch := fmt.Errorf("solve: %w", NewNoTransformationError("M", "1"))
	assert.True(t, IsNoTransformation(noMatch))
	assert.False(t, IsIterationError(noMatch))
	assert.False(t, IsInvariantViolation(noMatch))

	iter := NewIterationError("M", "1", &TooManyIterationsError{Loop: "whilePossible", Iterations: 101, Limit: 100})
	assert.True(t, IsIterationError(iter))
	assert.Equal(t, "100", iter.Details["limit"])
	assert.True(t, IsTooManyIterationsError(iter), "cause should be reachable through Unwrap")

	inv := NewInvariantError("M", "1", "index out of range")
	assert.True(t, IsInvariantViolation(inv))
	assert.Equal(t, "index out of range", inv.Message)

	cause := errors.New("bad binding")
	assert.ErrorIs(t, NewInvariantError("M", "1", cause), cause)
}
