package ir

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Signature is the symbol registry: it maps names to integer head ids and
// records which variant each head builds.
//
// Names are NFC-normalized before interning, so visually identical
// identifiers from different sources resolve to the same id. Ids below the
// reserved watermark (see MarkReserved) belong to the calculus itself.
type Signature struct {
	names    []string
	ids      map[string]int
	kinds    map[int]Kind
	reserved int
}

// NewSignature creates an empty registry.
func NewSignature() *Signature {
	return &Signature{
		ids:   make(map[string]int),
		kinds: make(map[int]Kind),
	}
}

// Register returns the id for name, allocating one on first use.
func (s *Signature) Register(name string) int {
	name = norm.NFC.String(name)
	if id, ok := s.ids[name]; ok {
		return id
	}
	id := len(s.names)
	s.names = append(s.names, name)
	s.ids[name] = id
	return id
}

// Declare registers name and fixes the variant its terms are built with.
func (s *Signature) Declare(name string, kind Kind) int {
	id := s.Register(name)
	s.kinds[id] = kind
	return id
}

// MarkReserved makes every symbol registered so far reserved.
func (s *Signature) MarkReserved() {
	s.reserved = len(s.names)
}

// Lookup returns the id for name without registering it.
func (s *Signature) Lookup(name string) (int, bool) {
	id, ok := s.ids[norm.NFC.String(name)]
	return id, ok
}

// MustLookup is Lookup for names known to be registered.
func (s *Signature) MustLookup(name string) int {
	id, ok := s.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("ir: symbol %q is not registered", name))
	}
	return id
}

// Name returns the printable name of id.
func (s *Signature) Name(id int) string {
	if id < 0 || id >= len(s.names) {
		return fmt.Sprintf("?%d", id)
	}
	return s.names[id]
}

// IsReserved reports whether id was registered before MarkReserved.
func (s *Signature) IsReserved(id int) bool {
	return id >= 0 && id < s.reserved
}

// KindOf returns the variant for id; undeclared symbols are ordered.
func (s *Signature) KindOf(id int) Kind {
	if k, ok := s.kinds[id]; ok {
		return k
	}
	return KindOrdered
}

// Len returns the number of registered symbols.
func (s *Signature) Len() int {
	return len(s.names)
}
