package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/LucianoXu/diracoq/internal/syntax"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SessionOptions
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	SessionID string `json:"session_id,omitempty"`
	Commands  int    `json:"commands"`
	Failed    int    `json:"failed"`
	Output    string `json:"output"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [script...]",
		Short: "Run prover scripts",
		Long: `Run files of prover commands such as Var, Def, Check, Normalize
and CheckEq. With no file, or "-", commands are read from stdin.

A failing command prints an error and the run continues. The exit code
is 1 if any command failed.

Examples:
  diracoq run basis.dirac
  diracoq run --theory ./theories --db ./diracoq.db proof.dirac
  echo 'Var(T Index) Check(KET(#0))' | diracoq run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(opts, args, cmd)
		},
	}

	opts.addTheoryFlags(cmd)
	opts.addRecordFlags(cmd)

	return cmd
}

func runScripts(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	ctx := context.Background()

	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var cmds []syntax.AST
	for _, path := range paths {
		src, err := readScript(cmd, path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read script", err)
		}
		parsed, err := syntax.ParseAll(src)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to parse %s", path), err)
		}
		cmds = append(cmds, parsed...)
	}

	var out io.Writer = cmd.OutOrStdout()
	var buf bytes.Buffer
	if opts.Format == "json" {
		out = &buf
	}

	sess, err := openSession(ctx, &opts.SessionOptions, opts.newLogger(cmd.ErrOrStderr()), out)
	if err != nil {
		return err
	}
	defer sess.Close()

	result := RunResult{SessionID: sess.ID(), Commands: len(cmds)}
	for _, c := range cmds {
		if !sess.prover.Process(ctx, c) {
			result.Failed++
		}
	}
	result.Output = buf.String()

	if opts.Format == "json" {
		status := "ok"
		var cliErr *CLIError
		if result.Failed > 0 {
			status = "error"
			cliErr = &CLIError{Code: "E_COMMAND_FAILED", Message: fmt.Sprintf("%d command(s) failed", result.Failed)}
		}
		if err := writeJSON(cmd.OutOrStdout(), CLIResponse{Status: status, Data: result, Error: cliErr, SessionID: result.SessionID}); err != nil {
			return err
		}
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d command(s) failed", result.Failed))
	}
	return nil
}

func readScript(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
