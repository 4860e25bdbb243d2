package cli

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/kernel"
)

// Rule set names accepted by --rules.
const (
	RulesCore = "core"
	RulesAll  = "all"
)

// ValidRuleSets lists the values of --rules.
var ValidRuleSets = []string{RulesCore, RulesAll}

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	SessionOptions
	Rules string
	Trace bool
}

// NormalizeResult is the JSON payload of the normalize command.
type NormalizeResult struct {
	Input      string   `json:"input"`
	Type       string   `json:"type"`
	NormalForm string   `json:"normal_form"`
	Rules      []string `json:"rules"`
	Trace      string   `json:"trace,omitempty"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <term>",
		Short: "Rewrite a term to normal form",
		Long: `Typecheck a term and rewrite it to normal form.

--rules core uses beta, eta, definition unfolding and the scalar rules.
--rules all adds the Dirac algebra. Commutative arguments are sorted
after rewriting.

Examples:
  diracoq normalize --theory ./theories 'ADJ(ADJ(KET(a)))'
  diracoq normalize --trace 'MULS(1 0)'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, args[0], cmd)
		},
	}

	opts.addTheoryFlags(cmd)
	cmd.Flags().StringVar(&opts.Rules, "rules", RulesAll, "rule set (core|all)")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print every rewriting step")

	return cmd
}

func runNormalize(opts *NormalizeOptions, src string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if !lo.Contains(ValidRuleSets, opts.Rules) {
		_ = formatter.Error(ErrCodeInvalidRules, fmt.Sprintf("invalid rule set %q: must be one of %v", opts.Rules, ValidRuleSets), nil)
		return NewExitError(ExitCommandError, "invalid rule set")
	}

	sess, err := openSession(ctx, &opts.SessionOptions, opts.newLogger(cmd.ErrOrStderr()), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer sess.Close()
	k := sess.Kernel()

	t, typ, err := parseTyped(k, src)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidTerm, err.Error(), map[string]string{"term": src})
		return WrapExitError(ExitCommandError, "invalid term", err)
	}

	var tr *engine.Trace
	if opts.Trace {
		tr = &engine.Trace{}
	}
	mode := kernel.Mode{All: opts.Rules == RulesAll, Canonical: true}
	nf, _, err := k.Normalize(ctx, t, mode, tr)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "normalization failed", err)
	}
	formatter.VerboseLog("normalized %s in %d step(s)", src, tr.Len())

	result := NormalizeResult{
		Input:      k.Format(t),
		Type:       k.Format(typ),
		NormalForm: k.Format(nf),
		Rules:      []string{},
	}
	if tr != nil {
		result.Rules = tr.Rules()
		result.Trace = engine.FormatTrace(k.Printer(), tr)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	w := cmd.OutOrStdout()
	if result.Trace != "" {
		fmt.Fprintln(w, result.Trace)
	}
	if opts.Trace {
		fmt.Fprintf(w, "Normal form: %s\n", result.NormalForm)
		return nil
	}
	fmt.Fprintln(w, result.NormalForm)
	return nil
}

// parseTyped parses src and computes its type.
func parseTyped(k *kernel.Kernel, src string) (ir.Term, ir.Term, error) {
	t, err := k.Parse(src)
	if err != nil {
		return ir.NoTerm, ir.NoTerm, err
	}
	typ, err := k.CalcType(t)
	if err != nil {
		return ir.NoTerm, ir.NoTerm, err
	}
	return t, typ, nil
}
