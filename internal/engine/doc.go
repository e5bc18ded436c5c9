// Package engine holds the state threaded through a solve.
//
// A Context carries the settings, numeric precision, solution variables,
// strategy preferences, label space, iteration bound and logger of one
// solve. Contexts are immutable; With returns modified copies that share
// the log nesting depth created by NewContext. The outcome cache used by
// UnlessPreviouslyFailed belongs to one Context and starts empty in every
// copy.
//
// Errors follow two regimes. Inside the engine, "does not apply" is a nil
// result and misuse is a panic with a typed value such as
// *TooManyIterationsError. RuntimeError is what a host sees after the
// method package recovers those panics at its boundary.
package engine
