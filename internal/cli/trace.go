package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/LucianoXu/diracoq/internal/prover"
	"github.com/LucianoXu/diracoq/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	SessionID string
	Digest    string
	Rule      string
}

// TraceCommand is one command of a session timeline.
type TraceCommand struct {
	Seq    int64  `json:"seq"`
	Depth  int    `json:"depth,omitempty"`
	Source string `json:"source"`
	OK     bool   `json:"ok"`
	Output string `json:"output,omitempty"`
}

// TraceDerivation is a stored normalization.
type TraceDerivation struct {
	Seq    int64               `json:"seq"`
	Input  string              `json:"input"`
	Result string              `json:"result"`
	Digest string              `json:"digest"`
	Rules  []string            `json:"rules"`
	Steps  []prover.StepRecord `json:"steps,omitempty"`
}

// TraceStats summarizes a session.
type TraceStats struct {
	Commands     int `json:"commands"`
	Failed       int `json:"failed"`
	Declarations int `json:"declarations"`
	Derivations  int `json:"derivations"`
}

// TraceResult is the JSON payload of the trace command.
type TraceResult struct {
	SessionID   string            `json:"session_id,omitempty"`
	Label       string            `json:"label,omitempty"`
	Digest      string            `json:"digest,omitempty"`
	Commands    []TraceCommand    `json:"commands,omitempty"`
	Derivations []TraceDerivation `json:"derivations"`
	Stats       *TraceStats       `json:"stats,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded derivations",
		Long: `Show what a recorded session did: its commands in order and the
rewriting steps of every Normalize and Trace.

With --digest, list the derivations with that digest across all
sessions instead. Two derivations share a digest when they rewrite the
same input to the same result by the same rules.

The output includes:
- Commands: every command with its depth inside groups and its outcome
- Derivations: input, normal form and rule sequence (steps with -v)
- Stats: summary counts for the session

Examples:
  diracoq trace --db ./diracoq.db --session 0190a6f2-...
  diracoq trace --db ./diracoq.db --session 0190a6f2-... --rule R_BETA_ARROW
  diracoq trace --db ./diracoq.db --digest 5c1e...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session to trace")
	cmd.Flags().StringVar(&opts.Digest, "digest", "", "find derivations by digest")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "only derivations that use this rule")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	if (opts.SessionID == "") == (opts.Digest == "") {
		return NewExitError(ExitCommandError, "exactly one of --session and --digest is required")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var result TraceResult
	if opts.Digest != "" {
		result, err = traceDigest(ctx, st, opts.Digest)
	} else {
		result, err = traceSession(ctx, st, opts.SessionID)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}
	result.Derivations = filterByRule(result.Derivations, opts.Rule)

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result, SessionID: result.SessionID})
	}
	outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
	return nil
}

func traceSession(ctx context.Context, st *store.Store, id string) (TraceResult, error) {
	state, err := st.GetSessionState(ctx, id)
	if err != nil {
		return TraceResult{}, err
	}
	return TraceResult{
		SessionID: id,
		Label:     state.Session.Label,
		Commands: lo.Map(state.Commands, func(c prover.CommandRecord, _ int) TraceCommand {
			return TraceCommand{Seq: c.Seq, Depth: c.Depth, Source: c.Source, OK: c.OK, Output: c.Output}
		}),
		Derivations: toTraceDerivations(state.Derivations),
		Stats: &TraceStats{
			Commands:     len(state.Commands),
			Failed:       state.Failed,
			Declarations: len(state.Declarations),
			Derivations:  len(state.Derivations),
		},
	}, nil
}

func traceDigest(ctx context.Context, st *store.Store, digest string) (TraceResult, error) {
	derivations, err := st.FindDerivations(ctx, digest)
	if err != nil {
		return TraceResult{}, err
	}
	return TraceResult{Digest: digest, Derivations: toTraceDerivations(derivations)}, nil
}

func toTraceDerivations(ds []prover.DerivationRecord) []TraceDerivation {
	return lo.Map(ds, func(d prover.DerivationRecord, _ int) TraceDerivation {
		return TraceDerivation{
			Seq:    d.Seq,
			Input:  d.Input,
			Result: d.Result,
			Digest: d.Digest,
			Rules:  lo.Map(d.Steps, func(s prover.StepRecord, _ int) string { return s.Rule }),
			Steps:  d.Steps,
		}
	})
}

func filterByRule(ds []TraceDerivation, rule string) []TraceDerivation {
	if rule == "" {
		return ds
	}
	return lo.Filter(ds, func(d TraceDerivation, _ int) bool {
		return lo.Contains(d.Rules, rule)
	})
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	if result.Digest != "" {
		fmt.Fprintf(w, "Derivations with digest: %s\n", result.Digest)
	} else {
		fmt.Fprintf(w, "Trace for Session: %s\n", result.SessionID)
		if result.Label != "" {
			fmt.Fprintf(w, "Label: %s\n", result.Label)
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "=== Commands ===")
		if len(result.Commands) == 0 {
			fmt.Fprintln(w, "  (no commands)")
		}
		for _, c := range result.Commands {
			fmt.Fprintf(w, "  [%d] %s%s %s\n", c.Seq, strings.Repeat("  ", c.Depth), c.Source, outcome(c.OK))
			if verbose && c.Output != "" {
				for _, line := range strings.Split(strings.TrimSuffix(c.Output, "\n"), "\n") {
					fmt.Fprintf(w, "       %s\n", line)
				}
			}
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Derivations ===")
	if len(result.Derivations) == 0 {
		fmt.Fprintln(w, "  (no derivations)")
	}
	for _, d := range result.Derivations {
		fmt.Fprintf(w, "  [%d] %s -> %s\n", d.Seq, d.Input, d.Result)
		if len(d.Rules) > 0 {
			fmt.Fprintf(w, "       Rules: %s\n", strings.Join(d.Rules, ", "))
		}
		if verbose {
			fmt.Fprintf(w, "       Digest: %s\n", d.Digest)
			for i, s := range d.Steps {
				fmt.Fprintf(w, "       %d. %s at %s: %s\n", i+1, s.Rule, s.Position, s.Final)
			}
		}
	}

	if result.Stats != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Stats ===")
		fmt.Fprintf(w, "  Commands:     %d (%d failed)\n", result.Stats.Commands, result.Stats.Failed)
		fmt.Fprintf(w, "  Declarations: %d\n", result.Stats.Declarations)
		fmt.Fprintf(w, "  Derivations:  %d\n", result.Stats.Derivations)
	}
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
