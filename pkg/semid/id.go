// Package semid parses, synthesizes, and validates the engine's
// semantic identifiers: human-readable unique IDs of the form
// "Name.TypeAbbr.Counter" (e.g. "ValidateInput.FN.001" or
// "Hub.FN.a1b2c3").
//
// Name sanitization follows the reference engine's character-filtering
// idiom (strip to an allow-list rather than a validating regex); the
// random suffix is drawn from crypto/rand, matching the reference
// engine's key-generation code rather than math/rand.
package semid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/archlens/sysmodel/pkg/ontology"
)

// maxNameLength caps the sanitized name portion of a generated ID.
const maxNameLength = 50

// counterBase36Len is the length of the random counter suffix.
const counterBase36Len = 6

// maxGenerateAttempts bounds collision retries before IDExhaustion.
const maxGenerateAttempts = 100

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Extracted holds the pieces recovered from a semantic ID.
type Extracted struct {
	Name string
	Kind ontology.NodeKind
}

// Extract splits a semantic ID on its first two dots, looks up the
// type abbreviation against reg, and returns the node's name and kind.
// It fails with ErrMalformedSemanticID when the format is wrong or the
// abbreviation is unknown.
func Extract(reg *ontology.Registry, id string) (Extracted, error) {
	first := strings.IndexByte(id, '.')
	if first < 0 {
		return Extracted{}, fmt.Errorf("%w: %q has no dots", ErrMalformedSemanticID, id)
	}
	rest := id[first+1:]
	second := strings.IndexByte(rest, '.')
	if second < 0 {
		return Extracted{}, fmt.Errorf("%w: %q has only one dot", ErrMalformedSemanticID, id)
	}

	name := id[:first]
	abbrev := rest[:second]
	if name == "" || abbrev == "" {
		return Extracted{}, fmt.Errorf("%w: %q has an empty name or abbreviation", ErrMalformedSemanticID, id)
	}

	kind, ok := reg.AbbreviationToKind(abbrev)
	if !ok {
		return Extracted{}, fmt.Errorf("%w: %q has unknown abbreviation %q", ErrMalformedSemanticID, id, abbrev)
	}

	return Extracted{Name: name, Kind: kind}, nil
}

// Generate sanitizes name, produces "{sanitized}.{abbrev}.{random6}",
// and retries on collision against existing up to 100 times. It fails
// with ErrIDExhaustion if every attempt collides, or
// ErrMalformedSemanticID if kind has no registered abbreviation.
func Generate(reg *ontology.Registry, name string, kind ontology.NodeKind, existing map[string]struct{}) (string, error) {
	abbrev, ok := reg.KindToAbbreviation(kind)
	if !ok {
		return "", fmt.Errorf("%w: kind %q has no abbreviation", ErrMalformedSemanticID, kind)
	}

	sanitized := sanitizeName(name)
	if sanitized == "" {
		return "", fmt.Errorf("%w: name %q sanitizes to empty string", ErrMalformedSemanticID, name)
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		suffix, err := randomBase36(counterBase36Len)
		if err != nil {
			return "", fmt.Errorf("semid: generating random suffix: %w", err)
		}
		id := fmt.Sprintf("%s.%s.%s", sanitized, abbrev, suffix)
		if _, collides := existing[id]; !collides {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: exhausted %d attempts for name %q kind %q",
		ErrIDExhaustion, maxGenerateAttempts, name, kind)
}

// EdgeID computes an edge's composite identity. Edges have no
// semantic ID of their own; this is the authoritative key used by the
// graph store to detect duplicates.
func EdgeID(src string, kind ontology.EdgeKind, tgt string) string {
	return fmt.Sprintf("%s-%s-%s", src, kind, tgt)
}

// sanitizeName strips name to [A-Za-z0-9_+] and caps it at
// maxNameLength characters, mirroring the reference engine's
// apoc/text allow-list character filtering rather than a validating
// regular expression.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '+':
			b.WriteRune(r)
		}
		if b.Len() >= maxNameLength {
			break
		}
	}
	return b.String()
}

func randomBase36(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = base36Alphabet[idx.Int64()]
	}
	return string(out), nil
}
