package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: sums
description: "Sums of integers"
cases:
  - name: two terms
    method: EvaluateSumOfIntegers
    input: "1 + 2"
    context:
      preset: Default
      solution_variables: [x]
      settings:
        BalancingMode: advanced
    expect:
      to_expr: "3"
      steps: 1
      explanation: IntegerArithmetic.EvaluateSumOfIntegers
    golden: two_terms
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "sums", s.Name)
	require.Len(t, s.Cases, 1)
	c := s.Cases[0]
	assert.Equal(t, "EvaluateSumOfIntegers", c.Method)
	assert.Equal(t, CaseContext{
		Preset:            "Default",
		SolutionVariables: []string{"x"},
		Settings:          map[string]string{"BalancingMode": "advanced"},
	}, c.Context)
	require.NotNil(t, c.Expect.Steps)
	assert.Equal(t, 1, *c.Expect.Steps)
	assert.Equal(t, "two_terms", c.Golden)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\ncases: [{name: a, method: M, input: '1', expect: {to_expr: '1'}}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: s\ncases: [{name: a, method: M, input: '1', expect: {to_expr: '1'}}]",
			wantErr: "description is required",
		},
		{
			name:    "no cases",
			yaml:    "name: s\ndescription: d\ncases: []",
			wantErr: "cases list is required",
		},
		{
			name:    "case without method",
			yaml:    "name: s\ndescription: d\ncases: [{name: a, input: '1', expect: {to_expr: '1'}}]",
			wantErr: "cases[0]: method is required",
		},
		{
			name:    "case without input",
			yaml:    "name: s\ndescription: d\ncases: [{name: a, method: M, expect: {to_expr: '1'}}]",
			wantErr: "cases[0]: input is required",
		},
		{
			name:    "bad input",
			yaml:    "name: s\ndescription: d\ncases: [{name: a, method: M, input: '1 +', expect: {to_expr: '1'}}]",
			wantErr: "cases[0]: input: syntax error at offset 3",
		},
		{
			name:    "bad expected result",
			yaml:    "name: s\ndescription: d\ncases: [{name: a, method: M, input: '1', expect: {to_expr: '(1'}}]",
			wantErr: "cases[0]: expect.to_expr: syntax error",
		},
		{
			name:    "nothing expected",
			yaml:    "name: s\ndescription: d\ncases: [{name: a, method: M, input: '1', expect: {}}]",
			wantErr: "cases[0]: expect must check something",
		},
		{
			name:    "no transformation with result",
			yaml:    "name: s\ndescription: d\ncases: [{name: a, method: M, input: '1', expect: {no_transformation: true, to_expr: '1'}}]",
			wantErr: "no_transformation excludes",
		},
		{
			name:    "negative steps",
			yaml:    "name: s\ndescription: d\ncases: [{name: a, method: M, input: '1', expect: {steps: -1}}]",
			wantErr: "expect.steps must be non-negative",
		},
		{
			name: "duplicate case",
			yaml: "name: s\ndescription: d\ncases:\n" +
				"  - {name: a, method: M, input: '1', expect: {to_expr: '1'}}\n" +
				"  - {name: a, method: M, input: '2', expect: {to_expr: '2'}}\n",
			wantErr: `cases[1]: duplicate case name "a"`,
		},
		{
			name:    "unknown field",
			yaml:    "name: s\ndescription: d\ncase: []",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "unknown expect field",
			yaml:    "name: s\ndescription: d\ncases: [{name: a, method: M, input: '1', expect: {result: '1'}}]",
			wantErr: "field result not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sums.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "sums", s.Name)
}

func TestLoadScenario_Errors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: s\n"), 0o644))
	_, err = LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "description is required")
}
