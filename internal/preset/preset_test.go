package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepsolver/internal/engine"
)

func TestBuiltin(t *testing.T) {
	s := Builtin()
	assert.Equal(t, []string{"Default", "EUCurriculum", "GMFriendly", "GMFriendlyAdvanced", "USCurriculum"}, s.Names())

	def, ok := s.Lookup("Default")
	require.True(t, ok)
	assert.Empty(t, def.Settings)
	assert.Equal(t, "All settings at default value", def.Description)

	gm, ok := s.Lookup("GMFriendly")
	require.True(t, ok)
	assert.Equal(t, engine.BalancingNextTo, gm.Settings[engine.BalancingMode])
	assert.Equal(t, engine.True, gm.Settings[engine.MoveTermsOneByOne])
	assert.Len(t, gm.Settings, 9)

	advanced, ok := s.Lookup("GMFriendlyAdvanced")
	require.True(t, ok)
	assert.Equal(t, engine.BalancingAdvanced, advanced.Settings[engine.BalancingMode])
	assert.Len(t, advanced.Settings, 9)

	us, ok := s.Lookup("USCurriculum")
	require.True(t, ok)
	assert.Equal(t, engine.True, us.Settings[engine.SolveEquationsWithoutComputingTheDomain])

	_, ok = s.Lookup("Missing")
	assert.False(t, ok)
}

func TestPresetAppliesToContext(t *testing.T) {
	gm, ok := Builtin().Lookup("GMFriendly")
	require.True(t, ok)
	ctx := engine.NewContext(engine.WithPreset(gm))
	assert.True(t, ctx.IsSet(engine.MoveTermsOneByOne))
	assert.Equal(t, engine.BalancingNextTo, ctx.Get(engine.BalancingMode))
}

func TestCompile(t *testing.T) {
	src := `
presets: Classroom: {
	description: "Move one term at a time"
	settings: {MoveTermsOneByOne: "true", BalancingMode: "basic"}
}
presets: Plain: {
	description: "Nothing special"
	settings: {}
}
`
	presets, err := Compile("classroom.cue", []byte(src))
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "Classroom", presets[0].Name)
	assert.Equal(t, engine.Settings{
		engine.MoveTermsOneByOne: engine.True,
		engine.BalancingMode:     engine.BalancingBasic,
	}, presets[0].Settings)
	assert.Equal(t, "Plain", presets[1].Name)
}

func TestCompileEmptyFile(t *testing.T) {
	presets, err := Compile("empty.cue", nil)
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
		msg   string
	}{
		{
			"unknown setting",
			`presets: X: {description: "x", settings: {NoSuchSetting: "true"}}`,
			"presets.X.settings.NoSuchSetting",
			`unknown setting "NoSuchSetting"`,
		},
		{
			"invalid value",
			`presets: X: {description: "x", settings: {BalancingMode: "sideways"}}`,
			"presets.X.settings.BalancingMode",
			`invalid value "sideways" for setting BalancingMode`,
		},
		{"syntax error", `presets: X: {`, "cue", ""},
		{"missing description", `presets: X: {settings: {}}`, "cue", ""},
		{"unknown field", `presets: X: {description: "x", settings: {}, colour: "red"}`, "cue", ""},
		{"non-string value", `presets: X: {description: "x", settings: {MoveTermsOneByOne: true}}`, "cue", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("bad.cue", []byte(tt.src))
			var compileErr *CompileError
			require.ErrorAs(t, err, &compileErr)
			assert.Equal(t, tt.field, compileErr.Field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, compileErr.Message)
			}
		})
	}
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "presets.X", Message: "bad"}
	assert.Equal(t, "presets.X: bad", err.Error())

	_, compileErr := Compile("bad.cue", []byte(`presets: X: {description: "x", settings: {Nope: "true"}}`))
	require.Error(t, compileErr)
	assert.Contains(t, compileErr.Error(), "bad.cue:1:")
}

func TestLoadOverridesBuiltin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.cue")
	src := `
presets: Default: {
	description: "Decimals first"
	settings: {PreferDecimals: "true"}
}
presets: Mine: {
	description: "Advanced balancing"
	settings: {BalancingMode: "advanced"}
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())

	def, ok := s.Lookup("Default")
	require.True(t, ok)
	assert.Equal(t, engine.True, def.Settings[engine.PreferDecimals])

	builtinDefault, _ := Builtin().Lookup("Default")
	assert.Empty(t, builtinDefault.Settings)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
