package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/LucianoXu/diracoq/internal/compiler"
	"github.com/LucianoXu/diracoq/internal/syntax"
)

// NewTheoryCommand creates the theory command and its subcommands.
func NewTheoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theory",
		Short: "Compile and validate CUE theory files",
		Long: `Work with theories: named lists of declarations and checks written
in CUE. A path is either one .cue file or a directory holding one CUE
package.`,
	}
	cmd.AddCommand(newTheoryCompileCommand(rootOpts))
	cmd.AddCommand(newTheoryValidateCommand(rootOpts))
	return cmd
}

// TheoryCompileOptions holds flags for theory compile.
type TheoryCompileOptions struct {
	*RootOptions
	OutputFile string
}

// CompiledTheory is one theory in the JSON output of theory compile.
type CompiledTheory struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Uses        []string `json:"uses,omitempty"`
	Commands    []string `json:"commands"`
}

// CompileResult is the JSON payload of theory compile.
type CompileResult struct {
	Theories []CompiledTheory `json:"theories"`
	Stats    CompileStats     `json:"stats"`
}

// CompileStats counts what was compiled.
type CompileStats struct {
	Files    int `json:"files"`
	Theories int `json:"theories"`
	Decls    int `json:"decls"`
	Checks   int `json:"checks"`
}

func newTheoryCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TheoryCompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Compile theories into a prover script",
		Long: `Compile theories into prover commands, in dependency order. The
output is a script that diracoq run accepts.

Examples:
  diracoq theory compile ./theories
  diracoq theory compile ./theories -o theories.dirac
  diracoq theory compile qubit.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheoryCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "write the script to a file")

	return cmd
}

func runTheoryCompile(opts *TheoryCompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, errs := LoadTheories(path, LoadModeCollectAll)
	if len(errs) > 0 {
		return outputLoadErrors(formatter, errs)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, path)

	result := CompileResult{Theories: []CompiledTheory{}, Stats: CompileStats{Files: loaded.FileCount}}
	var script strings.Builder
	for _, th := range loaded.Theories {
		cmds, err := th.Commands()
		if err != nil {
			return outputLoadErrors(formatter, []error{convertCompileError(err, ErrCodeGeneric)})
		}
		formatter.VerboseLog("Compiled theory %s: %d command(s)", th.Name, len(cmds))
		lines := lo.Map(cmds, func(c syntax.AST, _ int) string { return c.String() })
		for _, l := range lines {
			script.WriteString(l)
			script.WriteByte('\n')
		}
		result.Theories = append(result.Theories, CompiledTheory{
			Name:        th.Name,
			Description: th.Description,
			Uses:        th.Uses,
			Commands:    lines,
		})
		result.Stats.Theories++
		result.Stats.Decls += len(th.Decls)
		result.Stats.Checks += len(th.Checks)
	}

	if opts.OutputFile != "" {
		if err := os.WriteFile(opts.OutputFile, []byte(script.String()), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	w := cmd.OutOrStdout()
	if opts.OutputFile == "" {
		fmt.Fprint(w, script.String())
		return nil
	}
	fmt.Fprintf(w, "✓ Compiled %d theory(ies) (%d declarations, %d checks) to %s\n",
		result.Stats.Theories, result.Stats.Decls, result.Stats.Checks, opts.OutputFile)
	return nil
}

// outputLoadErrors reports load errors and returns the matching exit
// error.
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	details := lo.Map(errs, func(err error, _ int) map[string]any {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			d := map[string]any{"code": loadErr.Code, "message": loadErr.Message}
			if loadErr.Pos.IsValid() {
				d["line"] = loadErr.Pos.Line()
			}
			return d
		}
		return map[string]any{"code": ErrCodeGeneric, "message": err.Error()}
	})

	if formatter.JSON() {
		_ = formatter.Error(details[0]["code"].(string), fmt.Sprintf("%d error(s) loading theories", len(errs)), details)
	} else {
		for _, err := range errs {
			fmt.Fprintf(formatter.Writer, "Error: %v\n", err)
		}
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("%d error(s) loading theories", len(errs)))
}

// ValidationResult is the JSON payload of theory validate.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Theories int                        `json:"theories"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

func newTheoryValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check theories without running them",
		Long: `Check theories for malformed declarations, duplicate names, terms
that do not parse, unknown or cyclic uses. Typing is not checked; run
the theories for that.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheoryValidate(rootOpts, args[0], cmd)
		},
	}
}

func runTheoryValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, errs := LoadTheories(path, LoadModeCollectAll)
	if loaded == nil {
		return outputLoadErrors(formatter, errs)
	}

	var problems []compiler.ValidationError
	for _, err := range errs {
		problems = append(problems, toValidationError(err))
	}
	for _, th := range loaded.Theories {
		formatter.VerboseLog("Validating theory: %s", th.Name)
		problems = append(problems, compiler.Validate(th)...)
	}

	result := ValidationResult{
		Valid:    len(problems) == 0,
		Theories: len(loaded.Theories),
		Errors:   problems,
	}

	if formatter.JSON() {
		if result.Valid {
			if err := formatter.Success(result); err != nil {
				return err
			}
		} else if err := formatter.Error(problems[0].Code, fmt.Sprintf("%d validation error(s)", len(problems)), problems); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, p := range problems {
			fmt.Fprintf(w, "✗ %s\n", p.Error())
		}
		if result.Valid {
			fmt.Fprintf(w, "✓ %d theory(ies) valid\n", result.Theories)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(problems)))
	}
	return nil
}

func toValidationError(err error) compiler.ValidationError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return compiler.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    loadErr.Pos.Line(),
		}
	}
	return compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric}
}
