package kernel

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// Declaration is the type of a symbol and, for definitions, its value.
type Declaration struct {
	Value    ir.Term
	Type     ir.Term
	HasValue bool
}

// IsDef reports whether the declaration carries a value.
func (d Declaration) IsDef() bool {
	return d.HasValue
}

// Binding is a declaration attached to a symbol.
type Binding struct {
	Symbol int
	Declaration
}

// Env returns the environment bindings, oldest first.
func (k *Kernel) Env() []Binding {
	out := make([]Binding, 0, k.env.Len())
	itr := k.env.Iterator()
	for !itr.Done() {
		_, v := itr.Next()
		out = append(out, v.(Binding))
	}
	return out
}

// Context returns the context bindings, outermost first.
func (k *Kernel) Context() []Binding {
	return append([]Binding(nil), k.ctx...)
}

// ContextSize returns the number of bound variables in scope.
func (k *Kernel) ContextSize() int {
	return len(k.ctx)
}

// FindInEnv looks sym up in the environment only.
func (k *Kernel) FindInEnv(sym int) (Declaration, bool) {
	itr := k.env.Iterator()
	for !itr.Done() {
		_, v := itr.Next()
		if b := v.(Binding); b.Symbol == sym {
			return b.Declaration, true
		}
	}
	return Declaration{}, false
}

// FindDec looks sym up in the context, innermost first, and then in the
// environment.
func (k *Kernel) FindDec(sym int) (Declaration, bool) {
	for i := len(k.ctx) - 1; i >= 0; i-- {
		if k.ctx[i].Symbol == sym {
			return k.ctx[i].Declaration, true
		}
	}
	return k.FindInEnv(sym)
}

func (k *Kernel) symbolName(sym int) string {
	return k.sig.Name(sym)
}

func (k *Kernel) checkFresh(sym int) error {
	name := k.symbolName(sym)
	if k.sig.IsReserved(sym) {
		return &DeclarationError{
			Code:    ErrCodeReservedSymbol,
			Symbol:  name,
			Message: fmt.Sprintf("The symbol '%s' is reserved.", name),
		}
	}
	if _, ok := k.FindInEnv(sym); ok {
		return &DeclarationError{
			Code:    ErrCodeAlreadyDeclared,
			Symbol:  name,
			Message: fmt.Sprintf("The symbol '%s' is already in the environment.", name),
		}
	}
	return nil
}

// isSort reports whether t is the atom Index or the atom Type.
func (k *Kernel) isSort(t ir.Term) bool {
	return k.bank.IsAtom(t) && (k.bank.Head(t) == k.s.Index || k.bank.Head(t) == k.s.Type)
}

// Assum declares name with the given type. The type must be Index, Type or
// a well-typed type.
func (k *Kernel) Assum(name string, typ ir.Term) error {
	sym := k.sig.Register(name)
	if err := k.checkFresh(sym); err != nil {
		return err
	}
	if !k.isSort(typ) {
		ok, err := k.IsType(typ)
		if err != nil {
			return fmt.Errorf("assum %s: %w", name, err)
		}
		if !ok {
			return &DeclarationError{
				Code:    ErrCodeInvalidType,
				Symbol:  name,
				Message: fmt.Sprintf("The type of the symbol '%s' is not a well-typed type.", name),
			}
		}
	}
	k.env = k.env.Append(Binding{Symbol: sym, Declaration: Declaration{Value: ir.NoTerm, Type: typ}})
	k.logger.Debug("assumed", "symbol", name, "type", k.Format(typ))
	return nil
}

// Def declares name as an abbreviation for term. When typ is non-nil the
// term must check against it; otherwise the computed type is recorded.
// Definitions are only allowed with an empty context.
func (k *Kernel) Def(name string, term ir.Term, typ *ir.Term) error {
	sym := k.sig.Register(name)
	if k.sig.IsReserved(sym) {
		return k.checkFresh(sym)
	}
	if len(k.ctx) != 0 {
		return &DeclarationError{
			Code:    ErrCodeContextNotEmpty,
			Symbol:  name,
			Message: "The context is not empty.",
		}
	}
	if err := k.checkFresh(sym); err != nil {
		return err
	}

	deduced, err := k.CalcType(term)
	if err != nil {
		return fmt.Errorf("def %s: %w", name, err)
	}
	if !k.isSort(deduced) {
		ok, err := k.IsType(deduced)
		if err != nil {
			return fmt.Errorf("def %s: %w", name, err)
		}
		if !ok {
			return &DeclarationError{
				Code:    ErrCodeInvalidType,
				Symbol:  name,
				Message: fmt.Sprintf("The term '%s' is not well-typed.", k.Format(term)),
			}
		}
	}

	declared := deduced
	if typ != nil {
		ok, err := k.IsJudgementalEq(deduced, *typ)
		if err != nil {
			return fmt.Errorf("def %s: %w", name, err)
		}
		if !ok {
			return &DeclarationError{
				Code:   ErrCodeInvalidType,
				Symbol: name,
				Message: fmt.Sprintf("The term '%s' is not well-typed with the type '%s'.",
					k.Format(term), k.Format(*typ)),
			}
		}
		declared = *typ
	}

	k.env = k.env.Append(Binding{Symbol: sym, Declaration: Declaration{Value: term, Type: declared, HasValue: true}})
	k.logger.Debug("defined", "symbol", name, "type", k.Format(declared))
	return nil
}

// EnvPop removes the most recent environment binding.
func (k *Kernel) EnvPop() error {
	n := k.env.Len()
	if n == 0 {
		return &DeclarationError{Code: ErrCodeEmptyEnv, Message: "The environment is empty."}
	}
	if n == 1 {
		k.env = immutable.NewList()
	} else {
		k.env = k.env.Slice(0, n-1)
	}
	return nil
}

// ContextPush binds name with the given type in the context. The type must
// be Index or a well-typed type.
func (k *Kernel) ContextPush(name string, typ ir.Term) error {
	return k.pushContext(k.sig.Register(name), typ)
}

func (k *Kernel) pushContext(sym int, typ ir.Term) error {
	if !engine.MatchAtom(k.bank, typ, k.s.Index) {
		ok, err := k.IsType(typ)
		if err != nil {
			return err
		}
		if !ok {
			return &DeclarationError{
				Code:    ErrCodeInvalidBinderType,
				Symbol:  k.symbolName(sym),
				Message: fmt.Sprintf("The term '%s' is not a valid type for bound index.", k.Format(typ)),
			}
		}
	}
	k.ctx = append(k.ctx, Binding{Symbol: sym, Declaration: Declaration{Value: ir.NoTerm, Type: typ}})
	return nil
}

// ContextPop removes the innermost context binding.
func (k *Kernel) ContextPop() error {
	if len(k.ctx) == 0 {
		return &DeclarationError{Code: ErrCodeEmptyContext, Message: "The context is empty."}
	}
	k.ctx = k.ctx[:len(k.ctx)-1]
	return nil
}

func (k *Kernel) formatBinding(sb *strings.Builder, b Binding) {
	sb.WriteString(k.symbolName(b.Symbol))
	if b.IsDef() {
		sb.WriteString(" := ")
		sb.WriteString(k.Format(b.Value))
	}
	sb.WriteString(" : ")
	sb.WriteString(k.Format(b.Type))
	sb.WriteByte('\n')
}

// EnvToString renders the environment, one binding per line.
func (k *Kernel) EnvToString() string {
	var sb strings.Builder
	for _, b := range k.Env() {
		k.formatBinding(&sb, b)
	}
	return sb.String()
}

// ContextToString renders the context in the same format as EnvToString.
func (k *Kernel) ContextToString() string {
	var sb strings.Builder
	for _, b := range k.ctx {
		k.formatBinding(&sb, b)
	}
	return sb.String()
}

// DeclarationToString renders a single symbol as "name := value : type" or
// "name : type".
func (k *Kernel) DeclarationToString(sym int, d Declaration) string {
	var sb strings.Builder
	k.formatBinding(&sb, Binding{Symbol: sym, Declaration: d})
	return strings.TrimSuffix(sb.String(), "\n")
}
