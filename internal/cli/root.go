package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/stepsolver/internal/method"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	Database    string
	Preset      string
	PresetsFile string

	// Registry overrides the catalogue (for testing).
	Registry *method.Registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the stepsolver CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stepsolver",
		Short: "Step-by-step solver for arithmetic and equations",
		Long: `stepsolver rewrites expressions with named methods and records every
step: the rule applied, its explanation key and how each part of the
result relates to the input.

Expressions use the plain solver format:
  1 + 2 + 3      (1 + 2) * 3      [x ^ 2]      [1 / 2]      2 * x + 3 = 7`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log solver steps to stderr")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Database, "db", "", "path to the SQLite solution store")
	flags.StringVar(&opts.Preset, "preset", "", "context preset to solve with")
	flags.StringVar(&opts.PresetsFile, "presets-file", "", "CUE file with extra presets")

	// Add subcommands
	cmd.AddCommand(NewSolveCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewMethodsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}
