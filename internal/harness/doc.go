// Package harness runs method scenarios against a method registry.
//
// A scenario is a YAML file listing cases. Each case solves one input with
// one method and checks the result:
//
//	name: integer_sums
//	description: "Sums of integers are evaluated left to right"
//	cases:
//	  - name: three terms
//	    method: EvaluateSumOfIntegers
//	    input: "1 + 2 + 3"
//	    expect:
//	      to_expr: "6"
//	      steps: 2
//	      explanation: IntegerArithmetic.EvaluateSumOfIntegers
//	  - name: linear equation, advanced
//	    method: SolveLinearEquation
//	    input: "2 * x + 3 = 7"
//	    context:
//	      preset: GMFriendlyAdvanced
//	      solution_variables: [x]
//	      settings:
//	        MoveTermsOneByOne: "true"
//	    expect:
//	      to_expr: "SetSolution[x : {2}]"
//	  - name: not a sum
//	    method: EvaluateSumOfIntegers
//	    input: "x"
//	    expect:
//	      no_transformation: true
//
// Inputs and expected results use the plain solver format read by package
// syntax. Expected results are compared after a parse and format round
// trip, so spacing does not matter.
//
// # Golden traces
//
// A case naming a golden file has its whole transformation compared, as
// indented canonical IR, with testdata/golden/<golden>.golden. To
// regenerate the files:
//
//	go test ./internal/harness -update
package harness
