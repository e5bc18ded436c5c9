// Package syntax reads and writes expressions in the plain solver format,
// the text form used by the CLI, scenario files and stored traces.
//
//	2 * x + 3 = 7
//	[(-2) ^ 3] + [6 / 3]
//	SetSolution[x : {2, -3}]
//
// Parse keeps the input as written, so Format(Parse(s)) == s for any s
// that Format produced.
package syntax
