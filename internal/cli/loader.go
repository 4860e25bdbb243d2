package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/LucianoXu/diracoq/internal/compiler"
)

// LoadMode controls how errors are handled while loading theories.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult holds the theories found at a path, in dependency order.
type LoadResult struct {
	Theories  []*compiler.Theory
	CUEValue  cue.Value
	FileCount int
}

// LoadError is a theory loading failure with a CLI error code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes shared by the CLI commands. E101-E106 come from
// compiler.Validate.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No CUE files found
	ErrCodeLoadFailed   = "E004" // CUE load failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeInvalidTerm  = "E008" // Term does not parse or typecheck
	ErrCodeInvalidRules = "E009" // Unknown --rules value
	ErrCodeInvalidDecl  = "E010" // Malformed declaration entry
	ErrCodeInvalidCheck = "E011" // Malformed check entry

	ErrCodeUnknownUse = "E107" // uses names a theory that is not loaded
	ErrCodeCycle      = "E108" // theories use each other
)

// LoadTheories loads and compiles the theories at path, a .cue file or a
// directory holding one CUE package. In LoadModeCollectAll every theory
// is compiled even after one fails, and ordering is skipped when any did.
func LoadTheories(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("theory path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing theory path: %v", err)}}
	}

	count := 1
	if info.IsDir() {
		files, err := FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(files) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
		}
		count = len(files)
	}

	value, err := compiler.Build(path)
	if err != nil {
		code := ErrCodeBuildFailed
		if info.IsDir() {
			code = ErrCodeLoadFailed
		}
		return nil, []error{convertCompileError(err, code)}
	}

	result := &LoadResult{CUEValue: value, FileCount: count}
	var errs []error

	root := value.LookupPath(cue.ParsePath("theory"))
	if root.Exists() {
		iter, err := root.Fields()
		if err != nil {
			return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating theories: %v", err)}}
		}
		for iter.Next() {
			th, err := compiler.CompileTheory(iter.Value())
			if err != nil {
				errs = append(errs, convertCompileError(err, ErrCodeGeneric))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Theories = append(result.Theories, th)
		}
	}

	if len(result.Theories) == 0 && len(errs) == 0 {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: "no theories found"}}
	}
	if len(errs) > 0 {
		return result, errs
	}

	ordered, err := compiler.Order(result.Theories)
	if err != nil {
		return result, []error{convertOrderError(err)}
	}
	result.Theories = ordered
	return result, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError keeps the CUE position of a compiler.CompileError
// and gives other errors the fallback code.
func convertCompileError(err error, fallback string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field, fallback),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: fallback, Message: err.Error()}
}

func convertOrderError(err error) *LoadError {
	var cycle *compiler.CycleError
	if errors.As(err, &cycle) {
		return &LoadError{Code: ErrCodeCycle, Message: err.Error()}
	}
	var unknown *compiler.UnknownTheoryError
	if errors.As(err, &unknown) {
		return &LoadError{Code: ErrCodeUnknownUse, Message: err.Error()}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// MapFieldToErrorCode maps the field of a compiler.CompileError to an
// error code.
func MapFieldToErrorCode(field, fallback string) string {
	switch field {
	case "cue":
		return ErrCodeBuildFailed
	case "decls", "type", "term":
		return ErrCodeInvalidDecl
	case "checks", "eq":
		return ErrCodeInvalidCheck
	}
	// Terms that fail to parse are reported as theory.<name>.<list>[<i>].
	if strings.HasPrefix(field, "theory.") && strings.HasSuffix(field, "]") {
		return compiler.ErrInvalidTerm
	}
	return fallback
}
