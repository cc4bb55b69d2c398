package graph

import "github.com/archlens/sysmodel/pkg/ontology"

// IncidentEdges returns every edge touching nodeID as either source or
// target.
func (s *Store) IncidentEdges(nodeID string) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]*Edge, 0)
	for key := range s.outgoingEdges[nodeID] {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s.edges[key].Clone())
	}
	for key := range s.incomingEdges[nodeID] {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s.edges[key].Clone())
	}
	return out
}

// OutgoingEdges returns edges with nodeID as source, optionally
// restricted to kinds (all kinds when kinds is empty).
func (s *Store) OutgoingEdges(nodeID string, kinds ...ontology.EdgeKind) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allow := kindSet(kinds)
	out := make([]*Edge, 0)
	for key := range s.outgoingEdges[nodeID] {
		edge := s.edges[key]
		if allow != nil && !allow[edge.Kind] {
			continue
		}
		out = append(out, edge.Clone())
	}
	return out
}

// IncomingEdges returns edges with nodeID as target, optionally
// restricted to kinds.
func (s *Store) IncomingEdges(nodeID string, kinds ...ontology.EdgeKind) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allow := kindSet(kinds)
	out := make([]*Edge, 0)
	for key := range s.incomingEdges[nodeID] {
		edge := s.edges[key]
		if allow != nil && !allow[edge.Kind] {
			continue
		}
		out = append(out, edge.Clone())
	}
	return out
}

// NodesByKind returns every node of the given kind.
func (s *Store) NodesByKind(kind ontology.NodeKind) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, 0, len(s.nodesByKind[kind]))
	for id := range s.nodesByKind[kind] {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Children returns the nodes reached from parentID by any edge whose
// kind is in nestingKinds.
func (s *Store) Children(parentID string, nestingKinds []ontology.EdgeKind) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allow := kindSet(nestingKinds)
	out := make([]*Node, 0)
	for key := range s.outgoingEdges[parentID] {
		edge := s.edges[key]
		if allow != nil && !allow[edge.Kind] {
			continue
		}
		if n, ok := s.nodes[edge.Target]; ok {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Roots returns every node with no incoming edge whose kind is in
// nestingKinds — the entry points for a nesting traversal.
func (s *Store) Roots(nestingKinds []ontology.EdgeKind) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allow := kindSet(nestingKinds)
	out := make([]*Node, 0)
	for id, node := range s.nodes {
		hasNestingParent := false
		for key := range s.incomingEdges[id] {
			edge := s.edges[key]
			if allow == nil || allow[edge.Kind] {
				hasNestingParent = true
				break
			}
		}
		if !hasNestingParent {
			out = append(out, node.Clone())
		}
	}
	return out
}

func kindSet(kinds []ontology.EdgeKind) map[ontology.EdgeKind]bool {
	if len(kinds) == 0 {
		return nil
	}
	m := make(map[ontology.EdgeKind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}
