// Package pattern finds structural matches in expressions.
//
// A Pattern produces a lazy sequence of Matches. A Match is an immutable
// chain of bindings from patterns to subexpressions; a pattern that
// appears twice must bind Equiv expressions both times, which is how
// "a + a" is expressed. Rules read the bindings back through the Provider
// methods of the patterns they were built from.
//
// Sums and products are matched by NaryPattern, which assigns operand
// patterns to distinct operands, in order or in any order, exactly or
// with operands left over.
package pattern
