// Package expr defines the immutable expression trees the solver rewrites.
//
// An Expression is an Operator, its operands and metadata (decorators,
// origin, label, name). The origin records where the node came from:
// Children are derived lazily through it, so every child of a root
// expression knows its Path, and a rewritten expression can report the
// PathMappings that relate it to its input.
//
// Expressions are safe to share between goroutines. Children are computed
// once per node.
package expr
