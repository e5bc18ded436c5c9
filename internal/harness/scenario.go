package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stepsolver/internal/syntax"
)

// Scenario is a named list of method cases.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `yaml:"name"`

	// Description says what the scenario checks.
	Description string `yaml:"description"`

	// Cases run in order. Each one gets its own Context.
	Cases []Case `yaml:"cases"`
}

// Case solves Input with the method registered as Method.
type Case struct {
	Name    string      `yaml:"name"`
	Method  string      `yaml:"method"`
	Input   string      `yaml:"input"`
	Context CaseContext `yaml:"context,omitempty"`
	Expect  Expect      `yaml:"expect"`

	// Golden names a file under testdata/golden holding the expected
	// transformation. Only used by RunWithGolden.
	Golden string `yaml:"golden,omitempty"`
}

// CaseContext builds the Context a case is solved in. Settings are
// applied on top of the preset.
type CaseContext struct {
	Preset            string            `yaml:"preset,omitempty"`
	SolutionVariables []string          `yaml:"solution_variables,omitempty"`
	Settings          map[string]string `yaml:"settings,omitempty"`
}

// Expect is what a case checks. Unset fields are not checked.
type Expect struct {
	// NoTransformation expects the method not to apply.
	NoTransformation bool `yaml:"no_transformation,omitempty"`

	// ToExpr is the expected result in the plain format.
	ToExpr string `yaml:"to_expr,omitempty"`

	// Steps is the expected number of top-level steps.
	Steps *int `yaml:"steps,omitempty"`

	// Explanation is the expected explanation key of the result.
	Explanation string `yaml:"explanation,omitempty"`
}

func (e Expect) empty() bool {
	return !e.NoTransformation && e.ToExpr == "" && e.Steps == nil && e.Explanation == ""
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(&c); err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func validateCase(c *Case) error {
	switch {
	case c.Name == "":
		return fmt.Errorf("name is required")
	case c.Method == "":
		return fmt.Errorf("method is required")
	case c.Input == "":
		return fmt.Errorf("input is required")
	}
	if _, err := syntax.Parse(c.Input); err != nil {
		return fmt.Errorf("input: %w", err)
	}

	e := c.Expect
	if e.empty() {
		return fmt.Errorf("expect must check something")
	}
	if e.NoTransformation && (e.ToExpr != "" || e.Steps != nil || e.Explanation != "" || c.Golden != "") {
		return fmt.Errorf("expect.no_transformation excludes the other expectations")
	}
	if e.ToExpr != "" {
		if _, err := syntax.Parse(e.ToExpr); err != nil {
			return fmt.Errorf("expect.to_expr: %w", err)
		}
	}
	if e.Steps != nil && *e.Steps < 0 {
		return fmt.Errorf("expect.steps must be non-negative")
	}
	return nil
}
