package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainTerm       = "diracoq/term/v1"
	DomainDerivation = "diracoq/derivation/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest hashes the canonical JSON encoding of v under domain.
func Digest(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// TermDigest returns a content address for t that depends only on symbol
// names and structure, not on handles or registration order.
func (p Printer) TermDigest(t Term) string {
	d, err := Digest(DomainTerm, p.Export(t))
	if err != nil {
		// Export only produces strings, ints, slices and maps.
		panic(fmt.Sprintf("ir: TermDigest: %v", err))
	}
	return d
}
