package method

import (
	"cmp"
	"math"
	"slices"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/steps"
)

// MaxPriority is the priority of the strategy a context prefers. It beats
// any declared priority.
const MaxPriority = math.MaxInt

// Strategy is one way of solving a problem, among the strategies of a
// family.
type Strategy struct {
	Family      string
	ID          string
	Priority    int
	Explanation steps.MetadataKey
	Steps       StepsProducer

	// Excludes lists the ids of the strategies of the family that must
	// not be applied alongside this one.
	Excludes []string
}

// IncompatibleWith reports whether s and other exclude each other. Either
// side may declare it.
func (s *Strategy) IncompatibleWith(other *Strategy) bool {
	if s.Family != other.Family {
		return false
	}
	return slices.Contains(s.Excludes, other.ID) || slices.Contains(other.Excludes, s.ID)
}

// String is "family.id".
func (s *Strategy) String() string { return s.Family + "." + s.ID }

func effectivePriority(ctx *engine.Context, s *Strategy) int {
	if id, ok := ctx.PreferredStrategy(s.Family); ok && id == s.ID {
		return MaxPriority
	}
	return s.Priority
}

// StrategyEntry is an entry of WhileStrategiesAvailableFirstOf.
type StrategyEntry interface {
	apply(r *strategyRound)
}

type strategyRound struct {
	b         *StepsBuilder
	remaining []*Strategy
	succeeded bool
}

func (r *strategyRound) tryStrategy(s *Strategy) {
	if r.succeeded || !slices.Contains(r.remaining, s) {
		return
	}
	ss := s.Steps.ProduceSteps(r.b.Context(), r.b.Expression())
	if ss == nil || !r.b.AddAlternative(s, ss) {
		return
	}
	r.remaining = slices.DeleteFunc(r.remaining, func(o *Strategy) bool {
		return o == s || o.IncompatibleWith(s)
	})
}

type strategyOption struct{ s *Strategy }

// StrategyOption tries a strategy, if it is still available. A strategy
// that applies is recorded as an alternative and becomes unavailable,
// together with the strategies incompatible with it.
func StrategyOption(s *Strategy) StrategyEntry { return &strategyOption{s} }

func (o *strategyOption) apply(r *strategyRound) { r.tryStrategy(o.s) }

type stepsOption struct{ p StepsProducer }

// StepsOption advances every strategy at once: when p applies, its steps
// are shared by the alternatives found afterwards and a new round starts.
func StepsOption(p StepsProducer) StrategyEntry { return &stepsOption{p} }

func (o *stepsOption) apply(r *strategyRound) {
	if r.succeeded {
		return
	}
	if ss := o.p.ProduceSteps(r.b.Context(), r.b.Expression()); ss != nil {
		r.b.AddSteps(ss)
		r.succeeded = true
	}
}

type fallback struct{ s *Strategy }

// Fallback tries a strategy only when no alternative was found yet.
func Fallback(s *Strategy) StrategyEntry { return &fallback{s} }

func (f *fallback) apply(r *strategyRound) {
	if r.succeeded || len(r.b.alternatives) > 0 {
		return
	}
	r.tryStrategy(f.s)
}

// StrategyFamily runs the strategies of a family, in rounds, until no
// more strategy applies. Each strategy that applies adds an alternative;
// the context's selection mode decides which alternatives are returned.
type StrategyFamily struct {
	family     string
	strategies []*Strategy
	entries    []StrategyEntry
}

// WhileStrategiesAvailableFirstOf builds a StrategyFamily over strategies,
// trying entries in order in each round.
func WhileStrategiesAvailableFirstOf(family string, strategies []*Strategy, entries ...StrategyEntry) *StrategyFamily {
	return &StrategyFamily{family: family, strategies: strategies, entries: entries}
}

func (f *StrategyFamily) Family() string { return f.family }

func (f *StrategyFamily) Run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	r := &strategyRound{b: NewStepsBuilder(ctx, sub, false), remaining: slices.Clone(f.strategies)}
	quota := engine.NewIterationQuota(ctx, "whileStrategiesAvailableFirstOf")
	priority := func(a *alternative) int { return effectivePriority(ctx, a.strategy) }

	for {
		quota.Check()
		for _, e := range f.entries {
			e.apply(r)
		}
		alts := r.b.alternatives
		failed := !r.succeeded

		if failed && len(alts) == 0 {
			return nil
		}
		if len(alts) > 0 {
			switch ctx.StrategySelectionMode() {
			case engine.SelectAll:
				if failed || len(r.remaining) == 0 {
					sorted := slices.Clone(alts)
					slices.SortStableFunc(sorted, func(a, b *alternative) int { return cmp.Compare(priority(b), priority(a)) })
					return makeAlternatives(sorted)
				}
			case engine.SelectHighestPriority:
				best := alts[0]
				for _, a := range alts[1:] {
					if priority(a) > priority(best) {
						best = a
					}
				}
				better := slices.ContainsFunc(r.remaining, func(s *Strategy) bool {
					return effectivePriority(ctx, s) > priority(best)
				})
				if failed || !better {
					return makeAlternatives([]*alternative{best})
				}
			case engine.SelectFirst:
				return makeAlternatives(alts[:1])
			}
		}
		r.succeeded = false
	}
}

func makeAlternatives(alts []*alternative) *steps.Transformation {
	main := alts[0]
	var secondary []*steps.Alternative
	for _, a := range alts[1:] {
		secondary = append(secondary, &steps.Alternative{
			Strategy:    a.strategy.String(),
			Explanation: steps.NewMetadata(a.strategy.Explanation),
			Steps:       a.steps,
		})
	}
	if len(main.steps) == 1 && main.steps[0].ExplanationKey() == main.strategy.Explanation {
		cp := *main.steps[0]
		cp.Alternatives = secondary
		return &cp
	}
	return &steps.Transformation{
		Type:         steps.TypePlan,
		FromExpr:     main.steps[0].FromExpr,
		ToExpr:       lastOf(main.steps).ToExpr,
		Steps:        main.steps,
		Alternatives: secondary,
		Explanation:  steps.NewMetadata(main.strategy.Explanation),
	}
}

func (f *StrategyFamily) MinDepth() int { return 0 }

func (f *StrategyFamily) TryExecute(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	return f.Run(ctx, sub)
}

func (f *StrategyFamily) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return single(f.TryExecute(ctx, sub))
}
