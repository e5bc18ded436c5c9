// Package steps defines the results of applying rules and plans.
//
// A Transformation records a fromExpr, the toExpr it became, an
// explanation and, for plans and task sets, the sub-steps or tasks that
// produced it. Transformations are immutable once returned; producers
// build new values with the With methods.
package steps
