// Package testutil holds helpers shared by the tests of other packages:
// a stepping wall clock and quiet solve contexts.
package testutil
