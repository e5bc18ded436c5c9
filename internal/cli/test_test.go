package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: sums
description: "Sums of integers"
cases:
  - name: two terms
    method: EvaluateSumOfIntegers
    input: "1 + 2"
    expect:
      to_expr: "3"
    golden: two_terms
  - name: linear
    method: SolveLinearEquation
    input: "2 * x + 3 = 7"
    context:
      solution_variables: [x]
    expect:
      to_expr: "SetSolution[x : {2}]"
`

const failingScenario = `name: wrong
description: "An expectation that does not hold"
cases:
  - name: bad sum
    method: EvaluateSumOfIntegers
    input: "1 + 2"
    expect:
      to_expr: "4"
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, nil, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := execute(t, nil, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find scenarios")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := execute(t, nil, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "sums.yaml", passingScenario)
	golden := filepath.Join(dir, "golden", "two_terms.golden")

	_, err := execute(t, nil, "test", path)
	require.Error(t, err, "the golden file does not exist yet")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, nil, "test", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   sums (2 cases)")
	require.FileExists(t, golden)

	out, err = execute(t, nil, "test", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, err = execute(t, nil, "test", path)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match")
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong.yaml", failingScenario)
	writeScenario(t, dir, "notes.txt", "not a scenario")

	out, err := execute(t, nil, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL wrong (1 cases)")
	assert.Contains(t, out, "bad sum: toExpr: expected 4, got 3")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong.yaml", failingScenario)
	writeScenario(t, dir, "linear.yaml", `name: linear
description: "One linear equation"
cases:
  - name: solve
    method: SolveLinearEquation
    input: "x + 1 = 3"
    context:
      solution_variables: [x]
    expect:
      to_expr: "SetSolution[x : {2}]"
`)

	out, err := execute(t, nil, "test", dir, "--filter", "lin*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	_, err = execute(t, nil, "test", dir, "--filter", "[")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong.yaml", failingScenario)
	writeScenario(t, dir, "broken.yaml", "name: broken\n")

	out, err := execute(t, nil, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string        `json:"status"`
		Data   TestResult    `json:"data"`
		Error  ResponseError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Failed)

	for _, s := range resp.Data.Scenarios {
		assert.False(t, s.Pass)
		assert.NotEmpty(t, s.Errors)
	}
}
