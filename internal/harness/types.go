package harness

import (
	"fmt"

	"github.com/roach88/stepsolver/internal/steps"
)

// Result is the outcome of a scenario.
type Result struct {
	Scenario string `json:"scenario"`

	// Pass is true when every case passed.
	Pass  bool         `json:"pass"`
	Cases []CaseResult `json:"cases"`
}

// Failed returns the cases that did not pass.
func (r *Result) Failed() []CaseResult {
	var out []CaseResult
	for _, c := range r.Cases {
		if !c.Pass {
			out = append(out, c)
		}
	}
	return out
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`

	// Transformation is the solve result, nil when the method did not
	// apply or failed.
	Transformation *steps.Transformation `json:"-"`
}

func (c *CaseResult) addError(format string, args ...any) {
	c.Errors = append(c.Errors, fmt.Sprintf(format, args...))
	c.Pass = false
}
