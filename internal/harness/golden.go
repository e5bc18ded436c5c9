package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stepsolver/internal/ir"
	"github.com/roach88/stepsolver/internal/steps"
)

// GoldenDir is where golden traces are kept, relative to the test's
// package directory.
const GoldenDir = "testdata/golden"

// Trace renders t as indented canonical IR, followed by a newline.
// Keys are sorted, so the same transformation always renders the same.
func Trace(t *steps.Transformation) ([]byte, error) {
	data, err := ir.Marshal(ir.EncodeTransformation(t))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
}

// AssertGolden compares the trace of tr with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, tr *steps.Transformation) error {
	t.Helper()

	trace, err := Trace(tr)
	if err != nil {
		return err
	}
	newGoldie(t).Assert(t, name, trace)
	return nil
}

// RunWithGolden runs s, fails t for every failed case, and compares the
// trace of each case naming a golden file.
func RunWithGolden(t *testing.T, h *Harness, s *Scenario) error {
	t.Helper()

	for _, c := range s.Cases {
		cr := h.RunCase(c)
		for _, msg := range cr.Errors {
			t.Errorf("%s/%s: %s", s.Name, c.Name, msg)
		}
		if c.Golden == "" || cr.Transformation == nil {
			continue
		}
		if err := AssertGolden(t, c.Golden, cr.Transformation); err != nil {
			return fmt.Errorf("%s/%s: %w", s.Name, c.Name, err)
		}
	}
	return nil
}
