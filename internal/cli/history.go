package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/stepsolver/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Method string
	Hash   string
	Limit  int
}

// HistoryEntry is a recorded solve as printed by history.
type HistoryEntry struct {
	ID        string          `json:"id" yaml:"id"`
	Method    string          `json:"method" yaml:"method"`
	Input     string          `json:"input" yaml:"input"`
	Preset    string          `json:"preset,omitempty" yaml:"preset,omitempty"`
	Hash      string          `json:"hash" yaml:"hash"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	Result    json.RawMessage `json:"result,omitempty" yaml:"-"`
}

func newHistoryEntry(s *store.Solve, withResult bool) HistoryEntry {
	e := HistoryEntry{
		ID:        s.ID,
		Method:    s.Method,
		Input:     s.Input,
		Preset:    s.Preset,
		Hash:      s.ResultHash,
		CreatedAt: s.CreatedAt,
	}
	if withResult {
		e.Result = s.Result
	}
	return e
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show recorded solves",
		Long: `Show the solves recorded with solve --db, newest first.

With an id, the one solve is shown with its result. With --hash, the
solves that produced that result are shown, oldest first. Text output
is YAML.

Examples:
  stepsolver history --db solves.db
  stepsolver history --db solves.db --method SolveLinearEquation --limit 5
  stepsolver history --db solves.db 0192f3a4-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Method, "method", "", "only show solves of this method")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "only show solves with this result hash")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of solves (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var (
		data  any
		solve *store.Solve
	)
	switch {
	case len(args) == 1:
		solve, err = st.ReadSolve(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return WrapExitError(ExitFailure, "no such solve", err)
		}
		if err == nil {
			data = newHistoryEntry(solve, true)
		}
	case opts.Hash != "":
		var solves []*store.Solve
		solves, err = st.FindByHash(cmd.Context(), opts.Hash)
		data = historyEntries(solves)
	default:
		var solves []*store.Solve
		solves, err = st.ListSolves(cmd.Context(), opts.Method, opts.Limit)
		data = historyEntries(solves)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(data, func(w io.Writer) error {
		if err := writeYAML(w, data); err != nil {
			return err
		}
		if solve != nil {
			_, err := fmt.Fprintf(w, "result: %s\n", solve.Result)
			return err
		}
		return nil
	})
}

func historyEntries(solves []*store.Solve) []HistoryEntry {
	out := make([]HistoryEntry, len(solves))
	for i, s := range solves {
		out[i] = newHistoryEntry(s, false)
	}
	return out
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
