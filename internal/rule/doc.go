// Package rule applies single rewrites.
//
// A Rule pairs a pattern with a build function. Run tries the matches of
// the pattern in order and returns the first Transformation the build
// function produces. A nil result means the rule does not apply.
//
// The Builder given to a build function reads the match and creates the
// parts of the result with origins that record where they come from:
// Move keeps a bound expression, Introduce adds a new one, Transform and
// CombineTo compute a value from bound expressions, and so on.
package rule
