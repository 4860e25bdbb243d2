package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	SessionOptions
	Quiet bool
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read prover commands interactively",
		Long: `Read prover commands from stdin and run each as soon as it is
complete. A command may span several lines; input is run once its
parentheses balance. Type Quit or send EOF to leave.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	opts.addTheoryFlags(cmd)
	opts.addRecordFlags(cmd)
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "do not print prompts")

	return cmd
}

const (
	promptFirst = "> "
	promptMore  = ". "
)

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	w := cmd.OutOrStdout()

	sess, err := openSession(ctx, &opts.SessionOptions, opts.newLogger(cmd.ErrOrStderr()), w)
	if err != nil {
		return err
	}
	defer sess.Close()

	prompt := func(p string) {
		if !opts.Quiet {
			fmt.Fprint(w, p)
		}
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	var pending strings.Builder
	depth := 0
	prompt(promptFirst)
	for scanner.Scan() {
		line := scanner.Text()
		if pending.Len() == 0 && strings.TrimSpace(line) == "Quit" {
			return nil
		}
		pending.WriteString(line)
		pending.WriteByte('\n')
		depth += parenBalance(line)

		if depth > 0 {
			prompt(promptMore)
			continue
		}
		if src := strings.TrimSpace(pending.String()); src != "" {
			sess.prover.ProcessSource(ctx, src)
		}
		pending.Reset()
		depth = 0
		prompt(promptFirst)
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	if src := strings.TrimSpace(pending.String()); src != "" {
		sess.prover.ProcessSource(ctx, src)
	}
	return nil
}

// parenBalance returns the number of '(' minus the number of ')' in s.
func parenBalance(s string) int {
	return strings.Count(s, "(") - strings.Count(s, ")")
}
