package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/ir"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/steps"
	"github.com/roach88/stepsolver/internal/store"
	"github.com/roach88/stepsolver/internal/syntax"
)

// Error codes of JSON error responses.
const (
	CodeSyntax           = "SYNTAX_ERROR"
	CodeUnknownMethod    = "UNKNOWN_METHOD"
	CodeNoTransformation = "NO_TRANSFORMATION"
	CodeInternal         = "INTERNAL_ERROR"
)

// SolveResult is the outcome of one solve.
type SolveResult struct {
	Method      string `json:"method"`
	Input       string `json:"input"`
	Result      string `json:"result,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Hash        string `json:"hash,omitempty"`
	// ID is the store id, set when the solve was recorded.
	ID             string          `json:"id,omitempty"`
	Transformation json.RawMessage `json:"transformation,omitempty"`

	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`

	transformation *steps.Transformation
}

func (r *SolveResult) failed() bool { return r.ErrorCode != "" }

func (r *SolveResult) exitCode() int {
	switch r.ErrorCode {
	case "":
		return ExitSuccess
	case CodeNoTransformation:
		return ExitFailure
	}
	return ExitCommandError
}

func (r *SolveResult) fail(code string, err error) *SolveResult {
	r.ErrorCode = code
	r.Error = err.Error()
	return r
}

// solver solves inputs with a fixed registry and base context.
type solver struct {
	registry *method.Registry
	base     []engine.Option
	flags    SolveFlags
	logger   *slog.Logger
}

func (o *RootOptions) newSolver(flags SolveFlags, logger *slog.Logger) (*solver, error) {
	base, err := o.contextOptions(flags)
	if err != nil {
		return nil, err
	}
	return &solver{registry: o.registry(), base: base, flags: flags, logger: logger}, nil
}

func (s *solver) solve(id, src string) *SolveResult {
	result := &SolveResult{Method: id, Input: src}
	input, err := syntax.Parse(src)
	if err != nil {
		return result.fail(CodeSyntax, err)
	}
	result.Input = syntax.Format(input)
	if _, ok := s.registry.Lookup(id); !ok {
		return result.fail(CodeUnknownMethod, fmt.Errorf("unknown method %q", id))
	}

	ctx := solveContext(s.base, s.flags, s.logger, input)
	t, err := s.registry.Run(ctx, id, input)
	switch {
	case engine.IsNoTransformation(err):
		return result.fail(CodeNoTransformation, err)
	case err != nil:
		return result.fail(CodeInternal, err)
	}

	encoded, err := ir.Marshal(ir.EncodeTransformation(t))
	if err != nil {
		return result.fail(CodeInternal, err)
	}
	result.transformation = t
	result.Result = syntax.Format(t.ToExpr)
	result.Explanation = string(t.ExplanationKey())
	result.Hash = ir.HashCanonical(encoded)
	result.Transformation = encoded
	return result
}

// record writes a successful solve to st and sets its id.
func (r *SolveResult) record(ctx context.Context, st *store.Store, presetName string) error {
	saved, err := st.WriteSolve(ctx, store.NewSolve{
		Method: r.Method,
		Input:  r.Input,
		Preset: presetName,
		Result: r.transformation,
	})
	if err != nil {
		return err
	}
	r.ID = saved.ID
	return nil
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	flags := SolveFlags{}

	cmd := &cobra.Command{
		Use:   "solve <method> <expr>",
		Short: "Solve one expression with a method",
		Long: `Solve an expression with a registered method and print the steps.

Without --vars, all variables of the expression are solved for. With --db
the solve is recorded in the solution store.

Exit codes:
  0 - The method applied
  1 - The method does not apply to the expression
  2 - Usage or internal error

Examples:
  stepsolver solve EvaluateArithmeticExpression "(1 + 2) * 3"
  stepsolver solve SolveLinearEquation "2 * x + 3 = 7" --preset GMFriendly
  stepsolver solve SolveLinearEquation "2 * x + 3 = 7" --settings BalancingMode=advanced`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(rootOpts, flags, args[0], args[1], cmd)
		},
	}

	addSolveFlags(cmd, &flags)
	return cmd
}

func addSolveFlags(cmd *cobra.Command, flags *SolveFlags) {
	cmd.Flags().StringSliceVar(&flags.Variables, "vars", nil, "solution variables (default: the variables of the input)")
	cmd.Flags().StringToStringVar(&flags.Settings, "settings", nil, "context settings, e.g. BalancingMode=advanced")
}

func runSolve(opts *RootOptions, flags SolveFlags, methodID, src string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	s, err := opts.newSolver(flags, opts.newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid context", err)
	}

	result := s.solve(methodID, src)
	if result.failed() {
		_ = out.Error(result.ErrorCode, result.Error)
		return NewExitError(result.exitCode(), result.Error)
	}

	if opts.Database != "" {
		st, err := opts.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := result.record(cmd.Context(), st, opts.Preset); err != nil {
			return WrapExitError(ExitCommandError, "failed to record solve", err)
		}
	}

	return out.Success(result, func(w io.Writer) error {
		return writeSolveText(w, result, opts.Verbose)
	})
}

func writeSolveText(w io.Writer, r *SolveResult, verbose bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.Method, r.Input)
	writeSteps(&b, r.transformation, 1, verbose)
	fmt.Fprintf(&b, "result: %s\n", r.Result)
	if r.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", r.ID)
	}
	if verbose {
		fmt.Fprintf(&b, "hash: %s\n", r.Hash)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeSteps prints the steps of t, one per line. Nested steps are only
// printed when verbose.
func writeSteps(b *strings.Builder, t *steps.Transformation, depth int, verbose bool) {
	indent := strings.Repeat("  ", depth)
	for _, s := range t.Steps {
		fmt.Fprintf(b, "%s-> %s", indent, s.ToExpr)
		if key := s.ExplanationKey(); key != "" {
			fmt.Fprintf(b, "  [%s]", key)
		}
		b.WriteByte('\n')
		if verbose {
			writeSteps(b, s, depth+1, verbose)
		}
	}
	for _, task := range t.Tasks {
		fmt.Fprintf(b, "%stask %s: %s", indent, task.ID, task.StartExpr)
		if task.Explanation != nil {
			fmt.Fprintf(b, "  [%s]", task.Explanation.Key)
		}
		b.WriteByte('\n')
		for _, s := range task.Steps {
			fmt.Fprintf(b, "%s  -> %s  [%s]\n", indent, s.ToExpr, s.ExplanationKey())
			if verbose {
				writeSteps(b, s, depth+2, verbose)
			}
		}
	}
}
