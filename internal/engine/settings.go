package engine

import (
	"fmt"
	"slices"
	"sort"
)

// SettingValue is one of the values a SettingKind allows.
type SettingValue string

// SettingKind groups the values a setting may take and its default.
type SettingKind struct {
	Name    string
	Default SettingValue
	Values  []SettingValue
}

// Accepts reports whether v is one of the kind's values.
func (k *SettingKind) Accepts(v SettingValue) bool { return slices.Contains(k.Values, v) }

const (
	True  SettingValue = "true"
	False SettingValue = "false"

	BalancingBasic    SettingValue = "basic"
	BalancingAdvanced SettingValue = "advanced"
	BalancingNextTo   SettingValue = "nextTo"
)

var (
	BooleanKind = &SettingKind{Name: "boolean", Default: False, Values: []SettingValue{True, False}}

	BalancingModeKind = &SettingKind{
		Name:    "balancingMode",
		Default: BalancingBasic,
		Values:  []SettingValue{BalancingBasic, BalancingAdvanced, BalancingNextTo},
	}
)

// Setting names a solver behaviour that a Context can switch.
type Setting string

const (
	PreferDecimals                                      Setting = "PreferDecimals"
	DontAddClarifyingBrackets                           Setting = "DontAddClarifyingBrackets"
	MoveTermsOneByOne                                   Setting = "MoveTermsOneByOne"
	BalancingMode                                       Setting = "BalancingMode"
	QuickAddLikeFraction                                Setting = "QuickAddLikeFraction"
	QuickAddLikeTerms                                   Setting = "QuickAddLikeTerms"
	DontUseIdentitiesForExpanding                       Setting = "DontUseIdentitiesForExpanding"
	CommutativeReorderInSteps                           Setting = "CommutativeReorderInSteps"
	SolveEquationsWithoutComputingTheDomain             Setting = "SolveEquationsWithoutComputingTheDomain"
	ConvertRecurringDecimalsToFractionsUsingAlgorithm   Setting = "ConvertRecurringDecimalsToFractionsUsingAlgorithm"
	AddMixedNumbersWithoutConvertingToImproperFractions Setting = "AddMixedNumbersWithoutConvertingToImproperFractions"
	CopySumSignsWhenDistributing                        Setting = "CopySumSignsWhenDistributing"
	MultiplyFractionsAndNotFractionsDirectly            Setting = "MultiplyFractionsAndNotFractionsDirectly"
	EliminateNonZeroFactorByDividing                    Setting = "EliminateNonZeroFactorByDividing"
	SolveInequalitiesUsingTestPoints                    Setting = "SolveInequalitiesUsingTestPoints"
)

type settingDef struct {
	kind        *SettingKind
	description string
}

var settingDefs = map[Setting]settingDef{
	PreferDecimals:            {BooleanKind, "Use decimals instead of fractions whenever possible"},
	DontAddClarifyingBrackets: {BooleanKind, "Do not add clarifying brackets to ambiguous expressions"},
	MoveTermsOneByOne: {BooleanKind,
		"Move terms of an equation one by one instead of all at once"},
	BalancingMode: {BalancingModeKind,
		"How to balance an equation: 'basic' applies the inverse operation to both sides, " +
			"'advanced' cancels the terms directly, " +
			"'nextTo' keeps the inverse operation next to the original term when possible"},
	QuickAddLikeFraction: {BooleanKind, "Add like integer fractions, such as 1/5 + 2/5, in a single step"},
	QuickAddLikeTerms:    {BooleanKind, "Add like terms with integer coefficients, such as 2a + 3a, in a single step"},
	DontUseIdentitiesForExpanding: {BooleanKind,
		"Do not use identities such as (a + b)^2 = a^2 + 2ab + b^2 when expanding"},
	CommutativeReorderInSteps: {BooleanKind,
		"Reorder a product or polynomial one term at a time"},
	SolveEquationsWithoutComputingTheDomain: {BooleanKind,
		"Solve an equation without computing the domain first and check the solutions afterwards"},
	ConvertRecurringDecimalsToFractionsUsingAlgorithm: {BooleanKind,
		"Convert recurring decimals to fractions by solving an equation system instead of using the formula"},
	AddMixedNumbersWithoutConvertingToImproperFractions: {BooleanKind,
		"Add mixed numbers by splitting them into integers and fractions"},
	CopySumSignsWhenDistributing: {BooleanKind,
		"When distributing 5(x - 2), write 5*x - 5*2 rather than 5*x + 5*(-2)"},
	MultiplyFractionsAndNotFractionsDirectly: {BooleanKind,
		"Multiply 3*[x / 2] as [3x / 2] directly"},
	EliminateNonZeroFactorByDividing: {BooleanKind,
		"Simplify ab = 0 to b = 0 by dividing both sides by a instead of cancelling it"},
	SolveInequalitiesUsingTestPoints: {BooleanKind,
		"Use test points to check whether intervals satisfy the inequality to solve"},
}

// Settings maps settings to their chosen values.
type Settings map[Setting]SettingValue

// InvalidSettingError reports an unknown setting or a value outside its kind.
type InvalidSettingError struct {
	Setting string
	Value   string
}

func (e *InvalidSettingError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("unknown setting %q", e.Setting)
	}
	return fmt.Sprintf("invalid value %q for setting %s", e.Value, e.Setting)
}

// AllSettings returns every setting sorted by name.
func AllSettings() []Setting {
	out := make([]Setting, 0, len(settingDefs))
	for s := range settingDefs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseSetting resolves a setting name.
func ParseSetting(name string) (Setting, error) {
	s := Setting(name)
	if _, ok := settingDefs[s]; !ok {
		return "", &InvalidSettingError{Setting: name}
	}
	return s, nil
}

func (s Setting) def() settingDef {
	d, ok := settingDefs[s]
	if !ok {
		panic(fmt.Sprintf("engine: unknown setting %q", string(s)))
	}
	return d
}

func (s Setting) Kind() *SettingKind { return s.def().kind }

func (s Setting) Description() string { return s.def().description }

// Value validates name as a value of s.
func (s Setting) Value(name string) (SettingValue, error) {
	v := SettingValue(name)
	if !s.Kind().Accepts(v) {
		return "", &InvalidSettingError{Setting: string(s), Value: name}
	}
	return v, nil
}

// ParseSettings validates a name-to-value map.
func ParseSettings(raw map[string]string) (Settings, error) {
	out := make(Settings, len(raw))
	for name, value := range raw {
		s, err := ParseSetting(name)
		if err != nil {
			return nil, err
		}
		v, err := s.Value(value)
		if err != nil {
			return nil, err
		}
		out[s] = v
	}
	return out, nil
}

// Preset is a named bundle of settings.
type Preset struct {
	Name        string
	Description string
	Settings    Settings
}

// StrategySelectionMode decides which alternatives a strategy family returns.
type StrategySelectionMode int

const (
	// SelectAll returns every applicable strategy, best first.
	SelectAll StrategySelectionMode = iota
	// SelectHighestPriority returns only the best applicable strategy.
	SelectHighestPriority
	// SelectFirst returns the first strategy that applies.
	SelectFirst
)

var selectionModeNames = []string{"all", "highestPriority", "first"}

func (m StrategySelectionMode) String() string {
	if int(m) < len(selectionModeNames) {
		return selectionModeNames[m]
	}
	return fmt.Sprintf("StrategySelectionMode(%d)", int(m))
}

// ParseStrategySelectionMode accepts the names produced by String.
func ParseStrategySelectionMode(s string) (StrategySelectionMode, error) {
	i := slices.Index(selectionModeNames, s)
	if i < 0 {
		return 0, fmt.Errorf("unknown strategy selection mode %q", s)
	}
	return StrategySelectionMode(i), nil
}
