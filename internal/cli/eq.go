package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LucianoXu/diracoq/internal/kernel"
)

// EqOptions holds flags for the eq command.
type EqOptions struct {
	*RootOptions
	SessionOptions
}

// EqResult is the JSON payload of the eq command.
type EqResult struct {
	Left        string `json:"left"`
	Right       string `json:"right"`
	Equal       bool   `json:"equal"`
	LeftNormal  string `json:"left_normal"`
	RightNormal string `json:"right_normal"`
}

// NewEqCommand creates the eq command.
func NewEqCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EqOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eq <left> <right>",
		Short: "Decide whether two terms are equal",
		Long: `Typecheck two terms and decide judgmental equality: both sides are
normalized with every rule and compared up to renaming of bound
variables. The exit code is 1 when the terms differ.

Example:
  diracoq eq --theory ./theories 'ADJ(ADJ(k))' 'k'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEq(opts, args[0], args[1], cmd)
		},
	}

	opts.addTheoryFlags(cmd)

	return cmd
}

func runEq(opts *EqOptions, left, right string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sess, err := openSession(ctx, &opts.SessionOptions, opts.newLogger(cmd.ErrOrStderr()), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer sess.Close()
	k := sess.Kernel()

	a, _, err := parseTyped(k, left)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidTerm, err.Error(), map[string]string{"term": left})
		return WrapExitError(ExitCommandError, "invalid left term", err)
	}
	b, _, err := parseTyped(k, right)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidTerm, err.Error(), map[string]string{"term": right})
		return WrapExitError(ExitCommandError, "invalid right term", err)
	}

	equal, err := k.IsJudgementalEq(a, b)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "equality check failed", err)
	}

	mode := kernel.Mode{All: true, Canonical: true}
	na, _, err := k.Normalize(ctx, a, mode, nil)
	if err != nil {
		return WrapExitError(ExitFailure, "normalization failed", err)
	}
	nb, _, err := k.Normalize(ctx, b, mode, nil)
	if err != nil {
		return WrapExitError(ExitFailure, "normalization failed", err)
	}

	result := EqResult{
		Left:        k.Format(a),
		Right:       k.Format(b),
		Equal:       equal,
		LeftNormal:  k.Format(na),
		RightNormal: k.Format(nb),
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if equal {
			fmt.Fprintln(w, "equal")
		} else {
			fmt.Fprintln(w, "not equal")
		}
		fmt.Fprintf(w, "  %s\n  %s\n", result.LeftNormal, result.RightNormal)
	}

	if !equal {
		return NewExitError(ExitFailure, "terms are not equal")
	}
	return nil
}
