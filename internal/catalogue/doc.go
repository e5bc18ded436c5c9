// Package catalogue holds the rules, plans and strategies the solver
// ships with: integer and decimal arithmetic, bracket and sign
// normalisation, and linear and factored equations.
//
// Every method is a package-level *method.RunnerMethod. Register adds them
// to a method.Registry; rules are registered as hidden entries.
package catalogue
