package view

import (
	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// Occurrence is one position a node appears at in a spec-view's
// nesting traversal. A node with multiple nesting parents produces
// one Occurrence per parent; exactly one is Primary.
type Occurrence struct {
	NodeID    string
	ParentID  string // "" for a root occurrence
	Depth     int
	IsPrimary bool
}

// SpecViewOccurrences computes the spec view's multi-occurrence
// expansion (§4.6): BFS from the roots (nodes with no incoming
// nesting edge), first encounter of a node is primary and is
// expanded, every later encounter is a reference that does not
// expand further. A frontier queue (not recursion) makes circular
// nesting chains terminate without error rather than blowing the
// stack; maxDepth <= 0 means unlimited.
func SpecViewOccurrences(store *graph.Store, nestingKinds []ontology.EdgeKind, maxDepth int) []Occurrence {
	var out []Occurrence
	primarySeen := make(map[string]bool)

	type frontierEntry struct {
		nodeID string
		depth  int
	}
	var queue []frontierEntry
	for _, root := range store.Roots(nestingKinds) {
		queue = append(queue, frontierEntry{nodeID: root.ID, depth: 0})
		primarySeen[root.ID] = true
		out = append(out, Occurrence{NodeID: root.ID, Depth: 0, IsPrimary: true})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}

		for _, child := range store.Children(cur.nodeID, nestingKinds) {
			depth := cur.depth + 1
			if primarySeen[child.ID] {
				out = append(out, Occurrence{NodeID: child.ID, ParentID: cur.nodeID, Depth: depth, IsPrimary: false})
				continue
			}
			primarySeen[child.ID] = true
			out = append(out, Occurrence{NodeID: child.ID, ParentID: cur.nodeID, Depth: depth, IsPrimary: true})
			queue = append(queue, frontierEntry{nodeID: child.ID, depth: depth})
		}
	}

	return out
}
