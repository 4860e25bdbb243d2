// Package compiler turns CUE theory files into prover commands.
//
// A theory is a named list of declarations followed by checks:
//
//	theory: Qubit: {
//		description: "computational basis of one qubit"
//		uses: ["Base"]
//		decls: [
//			{var: "a", type: "Basis(Qbit)"},
//			{def: "k0", term: "KET(#0)"},
//			{def: "k1", term: "KET(#1)", type: "KType(Qbit)"},
//		]
//		checks: [
//			{type: "k0", expect: "KType(Qbit)"},
//			{eq: ["ADJ(BRA(#0))", "k0"]},
//			{normalize: "ADD(k0 0K(Qbit))"},
//		]
//	}
//
// Terms are strings in prefix syntax. Compilation parses them, so a
// malformed term is reported with the CUE position of its field.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/LucianoXu/diracoq/internal/syntax"
)

// Theory is a compiled theory.
type Theory struct {
	Name        string
	Description string
	Uses        []string
	Decls       []Decl
	Checks      []Check
	Pos         token.Pos
}

// Decl is an assumption (Term empty) or a definition (Type optional).
type Decl struct {
	Name string
	Term string
	Type string
	Pos  token.Pos
}

// IsDef reports whether d is a definition.
func (d Decl) IsDef() bool {
	return d.Term != ""
}

// CheckKind selects the prover command a check compiles to.
type CheckKind string

const (
	CheckType      CheckKind = "type"
	CheckEq        CheckKind = "eq"
	CheckNormalize CheckKind = "normalize"
	CheckTrace     CheckKind = "trace"
)

// Check is one assertion about the theory. Right is the expected type for
// CheckType (optional) and the second term for CheckEq.
type Check struct {
	Kind  CheckKind
	Left  string
	Right string
	Pos   token.Pos
}

// CompileTheories compiles every field under "theory" in v, in source
// order.
func CompileTheories(v cue.Value) ([]*Theory, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	root := v.LookupPath(cue.ParsePath("theory"))
	if !root.Exists() {
		return nil, nil
	}
	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []*Theory
	for iter.Next() {
		th, err := CompileTheory(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, th)
	}
	return out, nil
}

// CompileTheory parses one theory struct. The theory is named after the
// last selector of v's path.
func CompileTheory(v cue.Value) (*Theory, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	th := &Theory{Pos: v.Pos()}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		th.Name = sels[len(sels)-1].String()
	}

	var err error
	if th.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}
	if th.Uses, err = stringList(v, "uses"); err != nil {
		return nil, err
	}
	if th.Decls, err = parseDecls(v); err != nil {
		return nil, err
	}
	if th.Checks, err = parseChecks(v); err != nil {
		return nil, err
	}
	return th, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseDecls(v cue.Value) ([]Decl, error) {
	f := v.LookupPath(cue.ParsePath("decls"))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var decls []Decl
	for iter.Next() {
		d, err := parseDecl(iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// parseDecl reads {var: name, type: T} or {def: name, term: t, type?: T}.
func parseDecl(v cue.Value) (Decl, error) {
	d := Decl{Pos: v.Pos()}
	name, err := optionalString(v, "var")
	if err != nil {
		return d, err
	}
	def, err := optionalString(v, "def")
	if err != nil {
		return d, err
	}
	if d.Type, err = optionalString(v, "type"); err != nil {
		return d, err
	}
	if d.Term, err = optionalString(v, "term"); err != nil {
		return d, err
	}

	switch {
	case name != "" && def != "":
		return d, &CompileError{Field: "decls", Message: "a declaration has either var or def, not both", Pos: d.Pos}
	case name != "":
		if d.Type == "" {
			return d, &CompileError{Field: "type", Message: fmt.Sprintf("assumption %s needs a type", name), Pos: d.Pos}
		}
		if d.Term != "" {
			return d, &CompileError{Field: "term", Message: fmt.Sprintf("assumption %s cannot have a term", name), Pos: d.Pos}
		}
		d.Name = name
	case def != "":
		if d.Term == "" {
			return d, &CompileError{Field: "term", Message: fmt.Sprintf("definition %s needs a term", def), Pos: d.Pos}
		}
		d.Name = def
	default:
		return d, &CompileError{Field: "decls", Message: "a declaration needs var or def", Pos: d.Pos}
	}
	return d, nil
}

func parseChecks(v cue.Value) ([]Check, error) {
	f := v.LookupPath(cue.ParsePath("checks"))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var checks []Check
	for iter.Next() {
		c, err := parseCheck(iter.Value())
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}

func parseCheck(v cue.Value) (Check, error) {
	c := Check{Pos: v.Pos()}

	if eq := v.LookupPath(cue.ParsePath("eq")); eq.Exists() {
		pair, err := stringList(v, "eq")
		if err != nil {
			return c, err
		}
		if len(pair) != 2 {
			return c, &CompileError{Field: "eq", Message: fmt.Sprintf("expected 2 terms, got %d", len(pair)), Pos: eq.Pos()}
		}
		c.Kind, c.Left, c.Right = CheckEq, pair[0], pair[1]
		return c, nil
	}

	for _, kind := range []CheckKind{CheckType, CheckNormalize, CheckTrace} {
		s, err := optionalString(v, string(kind))
		if err != nil {
			return c, err
		}
		if s == "" {
			continue
		}
		c.Kind, c.Left = kind, s
		if kind == CheckType {
			if c.Right, err = optionalString(v, "expect"); err != nil {
				return c, err
			}
		}
		return c, nil
	}
	return c, &CompileError{Field: "checks", Message: "a check needs one of type, eq, normalize or trace", Pos: c.Pos}
}

// Commands renders the theory as prover commands: the declarations in
// order, then the checks.
func (th *Theory) Commands() ([]syntax.AST, error) {
	var cmds []syntax.AST
	for i, d := range th.Decls {
		field := fmt.Sprintf("theory.%s.decls[%d]", th.Name, i)
		cmd := syntax.AST{Head: "Var", Pos: syntax.Pos{Line: d.Pos.Line(), Col: d.Pos.Column()}}
		args := []string{d.Type}
		if d.IsDef() {
			cmd.Head = "Def"
			args = []string{d.Term}
			if d.Type != "" {
				args = append(args, d.Type)
			}
		}
		children, err := parseTerms(field, d.Pos, args...)
		if err != nil {
			return nil, err
		}
		cmd.Children = append([]syntax.AST{{Head: d.Name}}, children...)
		cmds = append(cmds, cmd)
	}

	for i, c := range th.Checks {
		field := fmt.Sprintf("theory.%s.checks[%d]", th.Name, i)
		args := []string{c.Left}
		if c.Right != "" {
			args = append(args, c.Right)
		}
		children, err := parseTerms(field, c.Pos, args...)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, syntax.AST{
			Head:     c.Kind.command(),
			Children: children,
			Pos:      syntax.Pos{Line: c.Pos.Line(), Col: c.Pos.Column()},
		})
	}
	return cmds, nil
}

func (k CheckKind) command() string {
	switch k {
	case CheckType:
		return "Check"
	case CheckEq:
		return "CheckEq"
	case CheckNormalize:
		return "Normalize"
	default:
		return "Trace"
	}
}

func parseTerms(field string, pos token.Pos, srcs ...string) ([]syntax.AST, error) {
	out := make([]syntax.AST, len(srcs))
	for i, src := range srcs {
		a, err := syntax.Parse(src)
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: pos}
		}
		out[i] = a
	}
	return out, nil
}

// CompileError is a theory that cannot be compiled.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
