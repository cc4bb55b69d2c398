// Package graph implements the in-memory graph store (§3, §4.3): a
// mapping of semantic ID to Node and composite key to Edge, versioned,
// exclusively owned by the session embedding it.
//
// Internally this mirrors the reference engine's MemoryEngine: a
// sync.RWMutex-guarded pair of maps plus secondary indexes kept
// consistent with the primary maps, with deep-copy accessors so
// callers cannot mutate store-owned state through a returned pointer.
package graph

import (
	"time"

	"github.com/archlens/sysmodel/pkg/ontology"
)

// Position is a node's optional rendered location, set either by a
// layout engine or carried through from a diff document's x/y
// attributes.
type Position struct {
	X float64
	Y float64
}

// Attributes is the node attribute side-table (§9 design note): sparse,
// kind-specific fields represented as typed optional values rather
// than a free-form string map, so the rule evaluator can enforce
// numeric ranges without reflection. Extra carries anything outside
// the first-class set, the same escape hatch the reference engine's
// Node.Properties map[string]any provides.
type Attributes struct {
	// Volatility is a FUNC-only scalar in [0,1] estimating expected
	// rate of change.
	Volatility *float64
	// DataType, Pattern, Validation are FLOW/SCHEMA-oriented free text.
	DataType   string
	Pattern    string
	Validation string
	// Zoom is one of the ontology's declared zoom levels.
	Zoom string
	// Extra holds attributes the engine does not model as first-class
	// fields (forward-compatible with ontology documents that add new
	// recognized attribute names).
	Extra map[string]any
}

// Clone returns a deep copy of a, safe to hand to a caller without
// aliasing Extra.
func (a Attributes) Clone() Attributes {
	out := a
	if a.Volatility != nil {
		v := *a.Volatility
		out.Volatility = &v
	}
	if a.Extra != nil {
		out.Extra = make(map[string]any, len(a.Extra))
		for k, v := range a.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Node is a graph vertex. ID equals its semantic ID; invariant 1 (§3)
// requires Kind to match the type-abbreviation encoded in ID, and
// invariant 2 requires the portion of ID before the first dot to equal
// Name.
type Node struct {
	ID          string
	Kind        ontology.NodeKind
	Name        string
	Description string
	WorkspaceID string
	SystemID    string
	Attributes  Attributes
	Position    *Position
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Attributes = n.Attributes.Clone()
	if n.Position != nil {
		pos := *n.Position
		out.Position = &pos
	}
	return &out
}

// Edge is a graph relationship. Edges carry no semantic ID; their
// identity is the composite key Source-Kind-Target (§3), computed by
// pkg/semid.EdgeID and stored as ID for fast lookup.
type Edge struct {
	ID          string
	Kind        ontology.EdgeKind
	Source      string
	Target      string
	WorkspaceID string
	SystemID    string
	Label       string
}

// Clone returns a shallow copy of e (Edge has no nested mutable state).
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	out := *e
	return &out
}

// NodePatch carries the subset of Node fields UpdateNode may replace.
// The semantic ID and Kind are immutable (§4.3) and are never part of
// a patch.
type NodePatch struct {
	Name        *string
	Description *string
	Attributes  *Attributes
	Position    *Position
}
