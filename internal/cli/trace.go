package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/efsm/internal/def"
	"github.com/roach88/efsm/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Token    string
	Machine  string // optional - resolve state/message names
}

// TraceEventOut is one trace row with names resolved when a machine is given.
type TraceEventOut struct {
	Seq  int64  `json:"seq"`
	Pre  string `json:"pre"`
	Msg  string `json:"msg"`
	Post string `json:"post"`
}

// TraceResult holds the trace command output for one token.
type TraceResult struct {
	Token  string          `json:"token"`
	Events []TraceEventOut `json:"events"`
}

// TokenListResult holds the trace command output when listing tokens.
type TokenListResult struct {
	Tokens []string `json:"tokens"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect persisted run traces",
		Long: `Inspect traces persisted by "efsm run --db".

Without --token, lists the run tokens present in the database. With
--token, prints that run's transitions in dispatch order. States and
messages print as numeric table indices unless --machine points at the
definition the run used, in which case names are resolved.

Examples:
  efsm trace --db ./efsm.db
  efsm trace --db ./efsm.db --token run-42
  efsm trace --db ./efsm.db --token run-42 --machine ./machines/order.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "run token to dump")
	cmd.Flags().StringVar(&opts.Machine, "machine", "", "machine definition for name resolution")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := trace.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer st.Close()

	if opts.Token == "" {
		return outputTokenList(ctx, formatter, st)
	}
	return outputTokenTrace(ctx, formatter, st, opts)
}

func outputTokenList(ctx context.Context, formatter *OutputFormatter, st *trace.Store) error {
	tokens, err := st.Tokens(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list tokens", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(TokenListResult{Tokens: tokens})
	}

	if len(tokens) == 0 {
		fmt.Fprintln(formatter.Writer, "no traces recorded")
		return nil
	}
	for _, token := range tokens {
		fmt.Fprintln(formatter.Writer, token)
	}
	return nil
}

func outputTokenTrace(ctx context.Context, formatter *OutputFormatter, st *trace.Store, opts *TraceOptions) error {
	events, err := st.ReadEvents(ctx, opts.Token)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}
	if len(events) == 0 {
		_ = formatter.Error(ErrCodeDatabase, fmt.Sprintf("no trace for token %q", opts.Token), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("no trace for token %q", opts.Token))
	}

	var d *def.Definition
	if opts.Machine != "" {
		d, err = def.Load(opts.Machine)
		if err != nil {
			_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load machine definition", err)
		}
	}

	result := TraceResult{Token: opts.Token, Events: make([]TraceEventOut, 0, len(events))}
	for _, ev := range events {
		out := TraceEventOut{
			Seq:  ev.Seq,
			Pre:  fmt.Sprintf("%d", ev.Pre),
			Msg:  fmt.Sprintf("%d", ev.Msg),
			Post: fmt.Sprintf("%d", ev.Post),
		}
		if d != nil {
			out.Pre = d.StateName(ev.Pre)
			out.Msg = d.MsgName(ev.Msg)
			out.Post = d.StateName(ev.Post)
		}
		result.Events = append(result.Events, out)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "trace %s (%d events)\n", result.Token, len(result.Events))
	for _, ev := range result.Events {
		fmt.Fprintf(formatter.Writer, "  [%d] %s --%s--> %s\n", ev.Seq, ev.Pre, ev.Msg, ev.Post)
	}
	return nil
}
