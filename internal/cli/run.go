package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/efsm/internal/harness"
	"github.com/roach88/efsm/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Token    string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario against a live engine",
		Long: `Run a YAML scenario against a live engine.

The scenario's machine definition is compiled into a transition table, the
declared automatons are created, and the flow of sends and passes executes
with a trace recorder attached. Expect clauses and assertions decide the
outcome: a failed scenario exits with code 1.

With --db, every dispatched transition is also persisted to a SQLite trace
database under the scenario's run token for later inspection with
"efsm trace".

Examples:
  efsm run ./scenarios/order_lifecycle.yaml
  efsm run ./scenarios/order_lifecycle.yaml --db ./efsm.db
  efsm run ./scenarios/order_lifecycle.yaml --token run-42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (optional)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "override the scenario's run token")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if opts.Token != "" {
		scenario.Token = opts.Token
	} else if scenario.Token == "" {
		// Unnamed runs still need a unique, time-sortable token in the store.
		scenario.Token = trace.UUIDv7Generator{}.Generate()
	}

	logger.Debug("scenario loaded",
		"name", scenario.Name,
		"machine", scenario.Machine,
		"automatons", len(scenario.Automatons),
		"steps", len(scenario.Steps),
	)

	result, events, err := harness.RunRecorded(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}
	logger.Debug("scenario executed", "passes", len(result.PassResults), "events", len(events))

	if opts.Database != "" {
		if err := persistTrace(cmd.Context(), opts.Database, events, logger); err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to persist trace", err)
		}
	}

	return outputRunResult(formatter, scenario, result)
}

// persistTrace writes recorder events to the SQLite trace store.
func persistTrace(ctx context.Context, path string, events []trace.Event, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing trace database", "error", closeErr)
		}
	}()

	if err := st.WriteAll(ctx, events); err != nil {
		return err
	}
	logger.Info("trace persisted", "path", path, "events", len(events))
	return nil
}

// outputRunResult renders the scenario outcome; failed scenarios exit 1.
func outputRunResult(formatter *OutputFormatter, scenario *harness.Scenario, result *harness.Result) error {
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		if !result.Pass {
			return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed with %d error(s)", scenario.Name, len(result.Errors)))
		}
		return nil
	}

	if result.Pass {
		fmt.Fprintf(formatter.Writer, "✓ %s\n", scenario.Name)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s\n", scenario.Name)
	}

	fmt.Fprintf(formatter.Writer, "  passes: %v\n", result.PassResults)
	for _, ev := range result.Trace {
		fmt.Fprintf(formatter.Writer, "  [%d] %s --%s--> %s\n", ev.Seq, ev.Pre, ev.Msg, ev.Post)
	}
	names := make([]string, 0, len(result.Finals))
	for name := range result.Finals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", name, result.Finals[name])
	}

	if !result.Pass {
		fmt.Fprintln(formatter.Writer)
		for _, msg := range result.Errors {
			fmt.Fprintf(formatter.Writer, "  %s\n", msg)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed with %d error(s)", scenario.Name, len(result.Errors)))
	}
	return nil
}
