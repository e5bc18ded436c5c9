package cli

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var idLine = regexp.MustCompile(`(?m)^id: (\S+)$`)

func solveAndRecord(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, nil, append([]string{"solve", "--db", db}, args...)...)
	require.NoError(t, err)
	m := idLine.FindStringSubmatch(out)
	require.NotNil(t, m, out)
	return m[1]
}

func TestHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "solves.db")
	first := solveAndRecord(t, db, "EvaluateSumOfIntegers", "1 + 2")
	second := solveAndRecord(t, db, "SolveLinearEquation", "2 * x + 3 = 7", "--preset", "GMFriendly")
	require.NotEqual(t, first, second)

	out, err := execute(t, nil, "history", "--db", db)
	require.NoError(t, err)

	var entries []HistoryEntry
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].ID, "newest first")
	assert.Equal(t, "SolveLinearEquation", entries[0].Method)
	assert.Equal(t, "GMFriendly", entries[0].Preset)
	assert.Equal(t, first, entries[1].ID)
	assert.Equal(t, "1 + 2", entries[1].Input)
	assert.Len(t, entries[1].Hash, 64)

	t.Run("method filter", func(t *testing.T) {
		out, err := execute(t, nil, "history", "--db", db, "--method", "EvaluateSumOfIntegers", "--format", "json")
		require.NoError(t, err)
		data := decodeResponse(t, out).Data.([]any)
		require.Len(t, data, 1)
		assert.Equal(t, first, data[0].(map[string]any)["id"])
	})

	t.Run("limit", func(t *testing.T) {
		out, err := execute(t, nil, "history", "--db", db, "--limit", "1", "--format", "json")
		require.NoError(t, err)
		data := decodeResponse(t, out).Data.([]any)
		require.Len(t, data, 1)
		assert.Equal(t, second, data[0].(map[string]any)["id"])
	})

	t.Run("by hash", func(t *testing.T) {
		again := solveAndRecord(t, db, "EvaluateSumOfIntegers", "1 + 2")
		out, err := execute(t, nil, "history", "--db", db, "--hash", entries[1].Hash, "--format", "json")
		require.NoError(t, err)
		data := decodeResponse(t, out).Data.([]any)
		require.Len(t, data, 2)
		assert.Equal(t, first, data[0].(map[string]any)["id"], "oldest first")
		assert.Equal(t, again, data[1].(map[string]any)["id"])
	})

	t.Run("one solve", func(t *testing.T) {
		out, err := execute(t, nil, "history", "--db", db, first, "--format", "json")
		require.NoError(t, err)
		data := decodeResponse(t, out).Data.(map[string]any)
		assert.Equal(t, first, data["id"])
		result, ok := data["result"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Plan", result["type"])

		out, err = execute(t, nil, "history", "--db", db, first)
		require.NoError(t, err)
		assert.Contains(t, out, "result: {")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := execute(t, nil, "history", "--db", db, "missing")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}

func TestHistory_RequiresDB(t *testing.T) {
	_, err := execute(t, nil, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db is required")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "solves.db")
	out, err := execute(t, nil, "history", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
