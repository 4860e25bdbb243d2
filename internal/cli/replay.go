package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LucianoXu/diracoq/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
}

// ReplayMismatch is one diverging command in the JSON output.
type ReplayMismatch struct {
	Seq      int64  `json:"seq"`
	Source   string `json:"source"`
	Missing  bool   `json:"missing,omitempty"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed,omitempty"`
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string           `json:"session_id"`
	Label         string           `json:"label,omitempty"`
	Commands      int              `json:"commands"`
	Failed        int              `json:"failed"`
	Derivations   int              `json:"derivations"`
	Deterministic bool             `json:"deterministic"`
	Mismatches    []ReplayMismatch `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run recorded sessions and verify determinism",
		Long: `Re-run the commands of recorded sessions against a fresh kernel and
compare every command's outcome and output with the recording.

Exit codes:
  0 - All sessions replayed identically
  1 - A replay diverged from its recording
  2 - Command error (database not found, etc.)

Examples:
  diracoq replay --db ./diracoq.db
  diracoq replay --db ./diracoq.db --session 0190a6f2-...
  diracoq replay --db ./diracoq.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var ids []string
	if opts.SessionID != "" {
		ids = []string{opts.SessionID}
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(ids)),
		TotalSessions:    len(ids),
		AllDeterministic: true,
	}
	if len(ids) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	logger := opts.newLogger(cmd.ErrOrStderr())
	for _, id := range ids {
		sr, err := replaySession(ctx, st, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		logger.Debug("session replayed", "id", id, "deterministic", sr.Deterministic)
		result.Sessions = append(result.Sessions, sr)
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

func replaySession(ctx context.Context, st *store.Store, id string) (ReplaySessionResult, error) {
	state, err := st.GetSessionState(ctx, id)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	replay, err := st.Replay(ctx, id)
	if err != nil {
		return ReplaySessionResult{}, err
	}

	sr := ReplaySessionResult{
		SessionID:     id,
		Label:         state.Session.Label,
		Commands:      len(state.Commands),
		Failed:        state.Failed,
		Derivations:   len(state.Derivations),
		Deterministic: replay.Deterministic(),
	}
	for _, m := range replay.Mismatches {
		sr.Mismatches = append(sr.Mismatches, ReplayMismatch{
			Seq:      m.Seq,
			Source:   m.Recorded.Source,
			Missing:  m.Missing,
			Recorded: m.Recorded.Output,
			Replayed: m.Replayed.Output,
		})
	}
	return sr, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{Code: "E_NONDETERMINISTIC", Message: "determinism verification failed"}
	}
	if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
		return err
	}
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, s.SessionID)
		if verbose && s.Label != "" {
			fmt.Fprintf(w, "  Label: %s\n", s.Label)
		}
		fmt.Fprintf(w, "  Commands: %d (%d failed), %d derivation(s)\n", s.Commands, s.Failed, s.Derivations)

		for _, m := range s.Mismatches {
			if m.Missing {
				fmt.Fprintf(w, "  [%d] %s: not replayed\n", m.Seq, m.Source)
				continue
			}
			fmt.Fprintf(w, "  [%d] %s: differs from recording\n", m.Seq, m.Source)
			if verbose {
				fmt.Fprintf(w, "       recorded: %q\n", strings.TrimSuffix(m.Recorded, "\n"))
				fmt.Fprintf(w, "       replayed: %q\n", strings.TrimSuffix(m.Replayed, "\n"))
			}
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
