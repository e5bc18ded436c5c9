// Package method composes rules into solving procedures.
//
// A StepsProducer turns an expression into a chain of steps. Pipelines
// (Steps, OptionalSteps) run stages such as Apply, Optionally,
// WhilePossible and Deeply on a StepsBuilder. Plans and task sets wrap a
// producer into one transformation, and strategy families gather the
// results of competing strategies as alternatives.
//
// Producers never return errors: nil means "does not apply". Solve is the
// boundary where panics raised by misbehaving rule sets become
// *engine.RuntimeError values.
package method
