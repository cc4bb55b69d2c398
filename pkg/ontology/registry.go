package ontology

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Registry is the load-once, read-only view of an ontology document.
// It is safe to share by reference across any number of concurrent
// readers; nothing in Registry is mutated after Load returns.
type Registry struct {
	doc Document

	abbrevToKind map[string]NodeKind
	kindToAbbrev map[NodeKind]string
	nestingEdges map[EdgeKind]bool
	connections  map[connKey]bool
	wildcardConn map[EdgeKind]bool
	rules        []RuleDef
	idPattern    *regexp.Regexp
}

// Load parses an ontology document (YAML) from r and builds a Registry.
// It fails with ErrConfigInvalid when the document is malformed or
// references an unknown kind, or when its version exceeds
// MaxSupportedVersion.
func Load(r io.Reader) (*Registry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading document: %v", ErrConfigInvalid, err)
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing document: %v", ErrConfigInvalid, err)
	}

	return build(doc)
}

// LoadDefault returns a Registry built from the engine's built-in
// default ontology document, used when no explicit document is
// supplied (CLI fixtures, unit tests).
func LoadDefault() *Registry {
	reg, err := build(defaultDocument())
	if err != nil {
		// The built-in document is a compile-time constant covered by
		// TestDefaultDocumentIsValid; a failure here is a programming error.
		panic(fmt.Sprintf("ontology: built-in default document is invalid: %v", err))
	}
	return reg
}

func build(doc Document) (*Registry, error) {
	if doc.Version > MaxSupportedVersion {
		return nil, fmt.Errorf("%w: document version %d exceeds supported version %d",
			ErrConfigInvalid, doc.Version, MaxSupportedVersion)
	}
	if len(doc.NodeTypes) == 0 {
		return nil, fmt.Errorf("%w: document declares no nodeTypes", ErrConfigInvalid)
	}

	reg := &Registry{
		doc:          doc,
		abbrevToKind: make(map[string]NodeKind, len(doc.NodeTypes)),
		kindToAbbrev: make(map[NodeKind]string, len(doc.NodeTypes)),
		nestingEdges: make(map[EdgeKind]bool, len(doc.NestingEdgeTypes)),
		connections:  make(map[connKey]bool),
		wildcardConn: make(map[EdgeKind]bool),
	}

	for kind, def := range doc.NodeTypes {
		if def.Abbrev == "" {
			return nil, fmt.Errorf("%w: node kind %q has no abbreviation", ErrConfigInvalid, kind)
		}
		if existing, ok := reg.abbrevToKind[def.Abbrev]; ok && existing != kind {
			return nil, fmt.Errorf("%w: abbreviation %q reused by both %q and %q",
				ErrConfigInvalid, def.Abbrev, existing, kind)
		}
		reg.abbrevToKind[def.Abbrev] = kind
		reg.kindToAbbrev[kind] = def.Abbrev
	}

	for _, k := range doc.NestingEdgeTypes {
		if _, ok := doc.EdgeTypes[k]; !ok {
			return nil, fmt.Errorf("%w: nestingEdgeTypes references unknown edge kind %q", ErrConfigInvalid, k)
		}
		reg.nestingEdges[k] = true
	}

	for edgeKind, def := range doc.EdgeTypes {
		for _, conn := range def.ValidConnections {
			if conn.Src != wildcard {
				if _, ok := doc.NodeTypes[conn.Src]; !ok {
					return nil, fmt.Errorf("%w: edge %q validConnections references unknown source kind %q",
						ErrConfigInvalid, edgeKind, conn.Src)
				}
			}
			if conn.Tgt != wildcard {
				if _, ok := doc.NodeTypes[conn.Tgt]; !ok {
					return nil, fmt.Errorf("%w: edge %q validConnections references unknown target kind %q",
						ErrConfigInvalid, edgeKind, conn.Tgt)
				}
			}
			if conn.Src == wildcard && conn.Tgt == wildcard {
				reg.wildcardConn[edgeKind] = true
				continue
			}
			reg.connections[connKey{edge: edgeKind, src: conn.Src, tgt: conn.Tgt}] = true
		}
	}

	reg.rules = append([]RuleDef(nil), doc.ValidationRules...)

	pattern := doc.SemanticIDFormat
	if pattern == "" {
		pattern = `^[A-Za-z0-9_+]{1,50}\.[A-Za-z]{2}\.[A-Za-z0-9]{1,}$`
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: semanticIdFormat does not compile: %v", ErrConfigInvalid, err)
	}
	reg.idPattern = re

	return reg, nil
}

// AbbreviationToKind maps a two-letter type abbreviation to its node
// kind. ok is false for an unknown abbreviation.
func (r *Registry) AbbreviationToKind(abbrev string) (kind NodeKind, ok bool) {
	kind, ok = r.abbrevToKind[abbrev]
	return kind, ok
}

// KindToAbbreviation maps a node kind to its two-letter type
// abbreviation. ok is false for an unknown kind.
func (r *Registry) KindToAbbreviation(kind NodeKind) (abbrev string, ok bool) {
	abbrev, ok = r.kindToAbbrev[kind]
	return abbrev, ok
}

// IsNestingEdge reports whether edge kind k belongs to the nesting set
// (compose, satisfy, allocate by default).
func (r *Registry) IsNestingEdge(k EdgeKind) bool {
	return r.nestingEdges[k]
}

// ValidConnection reports whether an edge of kind edgeKind is permitted
// to run from a node of kind src to a node of kind tgt.
func (r *Registry) ValidConnection(src NodeKind, edgeKind EdgeKind, tgt NodeKind) bool {
	if r.wildcardConn[edgeKind] {
		return true
	}
	return r.connections[connKey{edge: edgeKind, src: src, tgt: tgt}]
}

// RuleCatalog returns the configured rule catalog. The returned slice
// is a copy; mutating it does not affect the Registry.
func (r *Registry) RuleCatalog() []RuleDef {
	return append([]RuleDef(nil), r.rules...)
}

// SemanticIDPattern returns the compiled regular expression describing
// legal semantic IDs.
func (r *Registry) SemanticIDPattern() *regexp.Regexp {
	return r.idPattern
}

// ZoomLevels returns the configured zoom levels (e.g. L0..L4).
func (r *Registry) ZoomLevels() []string {
	return append([]string(nil), r.doc.ZoomLevels...)
}

// NodeKinds returns every node kind declared by the document.
func (r *Registry) NodeKinds() []NodeKind {
	kinds := make([]NodeKind, 0, len(r.kindToAbbrev))
	for k := range r.kindToAbbrev {
		kinds = append(kinds, k)
	}
	return kinds
}
