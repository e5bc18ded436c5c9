package engine

import (
	"errors"
	"fmt"
)

// IterationQuota counts the iterations of one loop and enforces
// Context.MaxIterations.
//
// Each loop run (one whilePossible, one strategy selection) owns its own
// IterationQuota. Exceeding the limit is an invariant violation of the rule
// set, not a normal outcome: Check panics with *TooManyIterationsError.
type IterationQuota struct {
	loop    string
	limit   int
	current int
}

// NewIterationQuota creates a quota for the named loop with the context's limit.
func NewIterationQuota(c *Context, loop string) *IterationQuota {
	return &IterationQuota{loop: loop, limit: c.MaxIterations()}
}

// Check counts one iteration and panics once the limit is exceeded.
func (q *IterationQuota) Check() {
	q.current++
	if q.current > q.limit {
		panic(&TooManyIterationsError{Loop: q.loop, Iterations: q.current, Limit: q.limit})
	}
}

// Current returns the iteration count.
func (q *IterationQuota) Current() int { return q.current }

// Limit returns the maximum number of iterations.
func (q *IterationQuota) Limit() int { return q.limit }

// TooManyIterationsError is the panic value of an exhausted IterationQuota.
type TooManyIterationsError struct {
	Loop       string // The loop that exceeded the quota
	Iterations int    // Number of iterations attempted
	Limit      int    // Maximum allowed iterations
}

// Error implements the error interface.
func (e *TooManyIterationsError) Error() string {
	return fmt.Sprintf("%s exceeded max iterations: %d > %d limit", e.Loop, e.Iterations, e.Limit)
}

// IsTooManyIterationsError returns true if the error is a TooManyIterationsError.
// Uses errors.As to handle wrapped errors.
func IsTooManyIterationsError(err error) bool {
	var te *TooManyIterationsError
	return errors.As(err, &te)
}
