package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/stepsolver/internal/method"
)

// MethodInfo describes a registered method.
type MethodInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden,omitempty"`
}

// NewMethodsCommand creates the methods command.
func NewMethodsCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List the registered methods",
		Long: `List the public methods of the registry, sorted by id.

With --all, the rules and plans the public methods are built from are
listed too. Any listed id can be passed to solve.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			methods := listMethods(rootOpts.registry(), all)
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(methods, func(w io.Writer) error { return writeMethodsText(w, methods) })
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include hidden rules and plans")
	return cmd
}

// listMethods returns the public methods, then with all the hidden ones,
// each group sorted by id.
func listMethods(r *method.Registry, all bool) []MethodInfo {
	var out []MethodInfo
	for _, e := range r.List() {
		out = append(out, MethodInfo{ID: e.ID, Description: e.Description})
	}
	if !all {
		return out
	}

	var hidden []MethodInfo
	for _, e := range r.All() {
		if e.Hidden {
			hidden = append(hidden, MethodInfo{ID: e.ID, Description: e.Description, Hidden: true})
		}
	}
	return append(out, hidden...)
}

func writeMethodsText(w io.Writer, methods []MethodInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, m := range methods {
		id := m.ID
		if m.Hidden {
			id += " (hidden)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", id, m.Description)
	}
	return tw.Flush()
}
