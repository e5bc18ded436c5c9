package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	SolveFlags
	Jobs int
}

// BatchLine is one input of a batch file.
type BatchLine struct {
	Line   int
	Method string
	Input  string
}

// BatchResult is the outcome of a batch, in input order.
type BatchResult struct {
	Results []*SolveResult `json:"results"`
	Solved  int            `json:"solved"`
	Failed  int            `json:"failed"`
	Total   int            `json:"total"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Solve every line of a file",
		Long: `Solve the inputs of a batch file concurrently.

Each non-empty line holds a method id and an expression separated by
whitespace. Lines starting with # are comments. Use - to read standard
input. Results are printed in input order.

Exit codes:
  0 - Every input was solved
  1 - At least one method did not apply
  2 - Usage or internal error

Example file:
  # arithmetic
  EvaluateArithmeticExpression (1 + 2) * 3
  SolveLinearEquation 2 * x + 3 = 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	addSolveFlags(cmd, &opts.SolveFlags)
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of concurrent solves")

	return cmd
}

// ParseBatch reads the inputs of a batch file.
func ParseBatch(r io.Reader) ([]BatchLine, error) {
	var lines []BatchLine
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		sep := strings.IndexFunc(text, unicode.IsSpace)
		if sep < 0 {
			return nil, fmt.Errorf("line %d: expected <method> <expr>", n)
		}
		id, input := text[:sep], strings.TrimSpace(text[sep:])
		if input == "" {
			return nil, fmt.Errorf("line %d: expected <method> <expr>", n)
		}
		lines = append(lines, BatchLine{Line: n, Method: id, Input: input})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// solveAll solves lines with at most jobs concurrent solves. Every solve
// gets its own context; results keep the order of lines.
func (s *solver) solveAll(ctx context.Context, lines []BatchLine, jobs int) ([]*SolveResult, error) {
	results := make([]*SolveResult, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, line := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.solve(line.Method, line.Input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	lines, err := readBatch(path, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read batch", err)
	}
	s, err := opts.newSolver(opts.SolveFlags, opts.newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid context", err)
	}

	results, err := s.solveAll(cmd.Context(), lines, opts.Jobs)
	if err != nil {
		return WrapExitError(ExitCommandError, "batch interrupted", err)
	}

	if opts.Database != "" {
		st, err := opts.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		for _, r := range results {
			if r.failed() {
				continue
			}
			if err := r.record(cmd.Context(), st, opts.Preset); err != nil {
				return WrapExitError(ExitCommandError, "failed to record solve", err)
			}
		}
	}

	batch := BatchResult{Results: results, Total: len(results)}
	code := ExitSuccess
	for _, r := range results {
		if r.failed() {
			batch.Failed++
			code = max(code, r.exitCode())
		} else {
			batch.Solved++
		}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := out.Success(batch, func(w io.Writer) error { return writeBatchText(w, lines, batch) }); err != nil {
		return err
	}
	if code != ExitSuccess {
		return NewExitError(code, fmt.Sprintf("%d of %d inputs failed", batch.Failed, batch.Total))
	}
	return nil
}

func readBatch(path string, stdin io.Reader) ([]BatchLine, error) {
	if path == "-" {
		return ParseBatch(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseBatch(f)
}

func writeBatchText(w io.Writer, lines []BatchLine, batch BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, r := range batch.Results {
		result := r.Result
		if r.failed() {
			result = "error: " + r.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", lines[i].Line, r.Method, r.Input, result)
	}
	fmt.Fprintf(tw, "\n%d solved, %d failed, %d total\n", batch.Solved, batch.Failed, batch.Total)
	return tw.Flush()
}
