package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/efsm/internal/def"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Output string
}

// GraphResult is the JSON payload for the graph command.
type GraphResult struct {
	Machine string `json:"machine"`
	Dot     string `json:"dot"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <machine>",
		Short: "Export a machine as a dot graph",
		Long: `Export a CUE machine definition as a Graphviz dot graph.

Each transition renders as an edge from its source state labeled with the
triggering message. Terminal transitions point at the "_" sink.

Example:
  efsm graph ./machines/order.cue
  efsm graph ./machines/order.cue -o order.dot`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the graph to a file instead of stdout")

	return cmd
}

func runGraph(opts *GraphOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	d, err := def.Load(path)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load machine definition", err)
	}

	if errs := d.Validate(); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	dot, err := d.Graph()
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to compile machine", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(dot), 0o644); err != nil {
			_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write graph", err)
		}
		formatter.VerboseLog("Graph written to %s", opts.Output)
		if formatter.Format == "json" {
			return formatter.Success(GraphResult{Machine: d.Name, Dot: dot})
		}
		fmt.Fprintf(formatter.Writer, "✓ graph written to %s\n", opts.Output)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.Success(GraphResult{Machine: d.Name, Dot: dot})
	}

	// Raw dot on stdout so the output pipes straight into graphviz.
	fmt.Fprint(formatter.Writer, dot)
	return nil
}
