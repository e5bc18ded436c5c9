package preset

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/stepsolver/internal/engine"
)

var (
	//go:embed schema.cue
	schemaSource []byte

	//go:embed presets.cue
	builtinSource []byte
)

// CompileError is a preset declaration error with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Set is a collection of presets by name.
type Set struct {
	presets map[string]engine.Preset
}

// Lookup returns the preset called name.
func (s *Set) Lookup(name string) (engine.Preset, bool) {
	p, ok := s.presets[name]
	return p, ok
}

// Names returns the preset names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len is the number of presets.
func (s *Set) Len() int { return len(s.presets) }

var builtin = sync.OnceValue(func() *Set {
	presets, err := Compile("presets.cue", builtinSource)
	if err != nil {
		panic(fmt.Sprintf("preset: embedded presets: %v", err))
	}
	s := &Set{presets: make(map[string]engine.Preset, len(presets))}
	for _, p := range presets {
		s.presets[p.Name] = p
	}
	return s
})

// Builtin returns the presets shipped with the solver.
func Builtin() *Set { return builtin() }

// Load returns the built-in presets extended by the presets declared in
// the CUE files at paths. A file preset replaces a built-in one of the
// same name.
func Load(paths ...string) (*Set, error) {
	s := &Set{presets: make(map[string]engine.Preset, Builtin().Len())}
	for name, p := range Builtin().presets {
		s.presets[name] = p
	}
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load presets: %w", err)
		}
		presets, err := Compile(path, src)
		if err != nil {
			return nil, err
		}
		for _, p := range presets {
			s.presets[p.Name] = p
		}
	}
	return s, nil
}

// Compile parses CUE source declaring presets and validates every
// setting name and value. Presets are returned in declaration order.
func Compile(filename string, src []byte) ([]engine.Preset, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	declared := v
	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.LookupPath(cue.ParsePath("presets")).Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []engine.Preset
	for iter.Next() {
		name := iter.Label()
		p, err := compilePreset(name, iter.Value(), declared.LookupPath(cue.MakePath(cue.Str("presets"), cue.Str(name))))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// compilePreset reads one preset. Positions are taken from declared, the
// preset as written before the schema was applied.
func compilePreset(name string, v, declared cue.Value) (engine.Preset, error) {
	description, err := v.LookupPath(cue.ParsePath("description")).String()
	if err != nil {
		return engine.Preset{}, formatCUEError(err)
	}
	p := engine.Preset{Name: name, Description: description, Settings: engine.Settings{}}

	iter, err := v.LookupPath(cue.ParsePath("settings")).Fields()
	if err != nil {
		return engine.Preset{}, formatCUEError(err)
	}
	for iter.Next() {
		field := fmt.Sprintf("presets.%s.settings.%s", name, iter.Label())
		pos := declared.LookupPath(cue.MakePath(cue.Str("settings"), cue.Str(iter.Label()))).Pos()
		setting, err := engine.ParseSetting(iter.Label())
		if err != nil {
			return engine.Preset{}, &CompileError{Field: field, Message: err.Error(), Pos: pos}
		}
		raw, err := iter.Value().String()
		if err != nil {
			return engine.Preset{}, formatCUEError(err)
		}
		value, err := setting.Value(raw)
		if err != nil {
			return engine.Preset{}, &CompileError{Field: field, Message: err.Error(), Pos: pos}
		}
		p.Settings[setting] = value
	}
	return p, nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &CompileError{Field: "cue", Message: first.Error()}
}
