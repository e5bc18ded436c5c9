// Command stepsolver solves expressions step by step with the methods of
// the catalogue.
//
// Usage:
//
//	stepsolver solve EvaluateArithmeticExpression "(1 + 2) * 3"
//	stepsolver solve SolveLinearEquation "2 * x + 3 = 7" --preset GMFriendly --db solves.db
//	stepsolver batch inputs.txt --format json
//	stepsolver test ./scenarios
//	stepsolver methods --all
//	stepsolver history --db solves.db
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/stepsolver/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "stepsolver:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
