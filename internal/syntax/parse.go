package syntax

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ParseError reports malformed input with its location.
type ParseError struct {
	Pos     Pos
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// IsParseError returns true if err wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

type token struct {
	text string
	pos  Pos
}

func isDelim(r rune) bool {
	switch r {
	case '(', ')', '[', ']', ',':
		return true
	}
	return unicode.IsSpace(r)
}

// scan splits src into identifiers and brackets. Commas are separators and
// never produce tokens.
func scan(src string) []token {
	var toks []token
	line, col := 1, 1
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\n':
			line++
			col = 1
			i++
		case unicode.IsSpace(r) || r == ',':
			col++
			i++
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case r == '(' || r == ')' || r == '[' || r == ']':
			toks = append(toks, token{text: string(r), pos: Pos{line, col}})
			col++
			i++
		default:
			start := i
			for i < len(runes) && !isDelim(runes[i]) && !(runes[i] == '/' && i+1 < len(runes) && runes[i+1] == '/') {
				i++
			}
			toks = append(toks, token{text: string(runes[start:i]), pos: Pos{line, col}})
			col += i - start
		}
	}
	return toks
}

func closing(open string) string {
	if open == "[" {
		return "]"
	}
	return ")"
}

type parser struct {
	toks []token
	next int
	end  Pos
}

func (p *parser) done() bool {
	return p.next >= len(p.toks)
}

func (p *parser) peek() token {
	return p.toks[p.next]
}

func (p *parser) errorf(pos Pos, format string, args ...any) error {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseTerm() (AST, error) {
	if p.done() {
		return AST{}, p.errorf(p.end, "unexpected end of input")
	}
	tok := p.peek()
	switch tok.text {
	case "(", ")", "[", "]":
		return AST{}, p.errorf(tok.pos, "unexpected %q, expected identifier", tok.text)
	}
	p.next++
	node := AST{Head: tok.text, Pos: tok.pos}

	if p.done() {
		return node, nil
	}
	open := p.peek()
	if open.text != "(" && open.text != "[" {
		return node, nil
	}
	p.next++
	want := closing(open.text)
	for {
		if p.done() {
			return AST{}, p.errorf(p.end, "expected %q to close %q at %s", want, open.text, open.pos)
		}
		if t := p.peek(); t.text == ")" || t.text == "]" {
			if t.text != want {
				return AST{}, p.errorf(t.pos, "mismatched %q, expected %q", t.text, want)
			}
			p.next++
			return node, nil
		}
		child, err := p.parseTerm()
		if err != nil {
			return AST{}, err
		}
		node.Children = append(node.Children, child)
	}
}

func newParser(src string) *parser {
	lines := strings.Split(src, "\n")
	last := lines[len(lines)-1]
	return &parser{
		toks: scan(src),
		end:  Pos{Line: len(lines), Col: len([]rune(last)) + 1},
	}
}

// Parse reads exactly one term from src.
func Parse(src string) (AST, error) {
	p := newParser(src)
	node, err := p.parseTerm()
	if err != nil {
		return AST{}, err
	}
	if !p.done() {
		tok := p.peek()
		return AST{}, p.errorf(tok.pos, "unexpected %q after term", tok.text)
	}
	return node, nil
}

// ParseAll reads a sequence of terms, e.g. the commands of a script.
func ParseAll(src string) ([]AST, error) {
	p := newParser(src)
	var out []AST
	for !p.done() {
		node, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}
