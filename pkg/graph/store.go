package graph

import (
	"fmt"
	"sync"
	"time"

	"github.com/archlens/sysmodel/pkg/ontology"
	"github.com/archlens/sysmodel/pkg/semid"
)

// Store is a thread-safe, versioned, in-memory graph. It owns its
// nodes and edges exclusively (§4.3); views and layouts borrow
// read-only projections derived from it but never mutate it directly.
//
// Every successful mutation increments Version and marks the affected
// identifiers dirty for the persistence collaborator (§4.3, §6).
type Store struct {
	mu sync.RWMutex

	reg         *ontology.Registry
	workspaceID string
	systemID    string

	nodes map[string]*Node
	edges map[string]*Edge

	nodesByKind   map[ontology.NodeKind]map[string]struct{}
	outgoingEdges map[string]map[string]struct{} // nodeID -> edge composite keys
	incomingEdges map[string]map[string]struct{}

	version          uint64
	lastSavedVersion uint64
	lastModified     time.Time

	dirtyNodes map[string]struct{}
	dirtyEdges map[string]struct{}
}

// New creates an empty Store bound to reg, workspaceID, and systemID.
func New(reg *ontology.Registry, workspaceID, systemID string) *Store {
	return &Store{
		reg:           reg,
		workspaceID:   workspaceID,
		systemID:      systemID,
		nodes:         make(map[string]*Node),
		edges:         make(map[string]*Edge),
		nodesByKind:   make(map[ontology.NodeKind]map[string]struct{}),
		outgoingEdges: make(map[string]map[string]struct{}),
		incomingEdges: make(map[string]map[string]struct{}),
		dirtyNodes:    make(map[string]struct{}),
		dirtyEdges:    make(map[string]struct{}),
	}
}

// Registry returns the ontology registry the store validates against.
func (s *Store) Registry() *ontology.Registry { return s.reg }

// WorkspaceID returns the store's workspace identifier.
func (s *Store) WorkspaceID() string { return s.workspaceID }

// SystemID returns the store's system identifier.
func (s *Store) SystemID() string { return s.systemID }

// Version returns the current monotonic mutation counter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LastModified returns the timestamp of the most recent mutation.
func (s *Store) LastModified() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastModified
}

func (s *Store) bump(dirtyNodeID, dirtyEdgeID string) {
	s.version++
	s.lastModified = time.Now()
	if dirtyNodeID != "" {
		s.dirtyNodes[dirtyNodeID] = struct{}{}
	}
	if dirtyEdgeID != "" {
		s.dirtyEdges[dirtyEdgeID] = struct{}{}
	}
}

// AddNode inserts node. It fails with ErrDuplicateID if the semantic ID
// is already present, and ErrKindMismatch if the ID's abbreviation does
// not match node.Kind (invariant 1, §3).
func (s *Store) AddNode(node *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, node.ID)
	}

	ext, err := semid.Extract(s.reg, node.ID)
	if err != nil {
		return err
	}
	if ext.Kind != node.Kind {
		return fmt.Errorf("%w: id %q implies kind %q but node has kind %q",
			ErrKindMismatch, node.ID, ext.Kind, node.Kind)
	}

	stored := node.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = stored.CreatedAt

	s.nodes[stored.ID] = stored
	if s.nodesByKind[stored.Kind] == nil {
		s.nodesByKind[stored.Kind] = make(map[string]struct{})
	}
	s.nodesByKind[stored.Kind][stored.ID] = struct{}{}
	s.outgoingEdges[stored.ID] = make(map[string]struct{})
	s.incomingEdges[stored.ID] = make(map[string]struct{})

	s.bump(stored.ID, "")
	return nil
}

// RemoveNode deletes node id and cascades to remove every incident
// edge. A no-op if the node does not exist.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return
	}

	for edgeID := range s.outgoingEdges[id] {
		s.removeEdgeByKeyLocked(edgeID)
	}
	for edgeID := range s.incomingEdges[id] {
		s.removeEdgeByKeyLocked(edgeID)
	}

	delete(s.nodes, id)
	delete(s.nodesByKind[node.Kind], id)
	delete(s.outgoingEdges, id)
	delete(s.incomingEdges, id)

	s.bump(id, "")
}

// UpdateNode replaces the fields named in patch. The semantic ID and
// kind are immutable and are not part of NodePatch.
func (s *Store) UpdateNode(id string, patch NodePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	if patch.Name != nil {
		node.Name = *patch.Name
	}
	if patch.Description != nil {
		node.Description = *patch.Description
	}
	if patch.Attributes != nil {
		node.Attributes = patch.Attributes.Clone()
	}
	if patch.Position != nil {
		pos := *patch.Position
		node.Position = &pos
	}
	node.UpdatedAt = time.Now()

	s.bump(id, "")
	return nil
}

// AddEdge inserts edge, computing its composite key from Source, Kind,
// Target. It fails with ErrDuplicateEdge if the key exists,
// ErrDanglingEdge if either endpoint is missing, ErrInvalidConnection
// if the endpoint kinds are disallowed, or ErrCircularCompose if a
// compose edge would close a cycle (invariant 6).
func (s *Store) AddEdge(edge *Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := semid.EdgeID(edge.Source, edge.Kind, edge.Target)
	if _, exists := s.edges[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateEdge, key)
	}

	srcNode, srcOK := s.nodes[edge.Source]
	tgtNode, tgtOK := s.nodes[edge.Target]
	if !srcOK || !tgtOK {
		return fmt.Errorf("%w: %q", ErrDanglingEdge, key)
	}

	if !s.reg.ValidConnection(srcNode.Kind, edge.Kind, tgtNode.Kind) {
		return fmt.Errorf("%w: %s -%s-> %s", ErrInvalidConnection, srcNode.Kind, edge.Kind, tgtNode.Kind)
	}

	if edge.Kind == ontology.EdgeCompose && s.reachesLocked(edge.Target, edge.Source, ontology.EdgeCompose) {
		return fmt.Errorf("%w: %s -> %s", ErrCircularCompose, edge.Source, edge.Target)
	}

	stored := edge.Clone()
	stored.ID = key
	s.edges[key] = stored
	s.outgoingEdges[edge.Source][key] = struct{}{}
	s.incomingEdges[edge.Target][key] = struct{}{}

	s.bump("", key)
	return nil
}

// RemoveEdge deletes the edge identified by (src, kind, tgt). A no-op
// if the edge does not exist.
func (s *Store) RemoveEdge(src string, kind ontology.EdgeKind, tgt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := semid.EdgeID(src, kind, tgt)
	if _, ok := s.edges[key]; !ok {
		return
	}
	s.removeEdgeByKeyLocked(key)
	s.bump("", key)
}

func (s *Store) removeEdgeByKeyLocked(key string) {
	edge, ok := s.edges[key]
	if !ok {
		return
	}
	delete(s.edges, key)
	if m, ok := s.outgoingEdges[edge.Source]; ok {
		delete(m, key)
	}
	if m, ok := s.incomingEdges[edge.Target]; ok {
		delete(m, key)
	}
}

// reachesLocked reports whether a path of kind-typed edges leads from
// start to target. Used to reject a compose edge that would close a
// cycle before it is ever inserted. Callers must hold s.mu.
func (s *Store) reachesLocked(start, target string, kind ontology.EdgeKind) bool {
	if start == target {
		return true
	}
	visited := map[string]struct{}{start: {}}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for edgeKey := range s.outgoingEdges[cur] {
			edge := s.edges[edgeKey]
			if edge.Kind != kind {
				continue
			}
			if edge.Target == target {
				return true
			}
			if _, seen := visited[edge.Target]; seen {
				continue
			}
			visited[edge.Target] = struct{}{}
			queue = append(queue, edge.Target)
		}
	}
	return false
}

// GetNode returns a deep copy of the node with id, or ErrNodeNotFound.
func (s *Store) GetNode(id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return node.Clone(), nil
}

// GetEdge returns a deep copy of the edge (src, kind, tgt), or an
// error if it does not exist.
func (s *Store) GetEdge(src string, kind ontology.EdgeKind, tgt string) (*Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := semid.EdgeID(src, kind, tgt)
	edge, ok := s.edges[key]
	if !ok {
		return nil, fmt.Errorf("graph: edge %q not found", key)
	}
	return edge.Clone(), nil
}

// AllNodes returns a deep copy of every node, in insertion order is
// not guaranteed by this accessor (see pkg/diffcodec for
// insertion-ordered serialization).
func (s *Store) AllNodes() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	return out
}

// AllEdges returns a deep copy of every edge.
func (s *Store) AllEdges() []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e.Clone())
	}
	return out
}

// DirtyNodes returns the semantic IDs of nodes mutated since the last
// ClearDirty, for the persistence collaborator's incremental save.
func (s *Store) DirtyNodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.dirtyNodes))
	for id := range s.dirtyNodes {
		out = append(out, id)
	}
	return out
}

// DirtyEdges returns the composite keys of edges mutated since the
// last ClearDirty.
func (s *Store) DirtyEdges() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.dirtyEdges))
	for id := range s.dirtyEdges {
		out = append(out, id)
	}
	return out
}

// ClearDirty resets the dirty sets and records the current version as
// the last-saved version, called by the persistence collaborator after
// a successful save.
func (s *Store) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirtyNodes = make(map[string]struct{})
	s.dirtyEdges = make(map[string]struct{})
	s.lastSavedVersion = s.version
}

// LastSavedVersion returns the version recorded at the last ClearDirty call.
func (s *Store) LastSavedVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSavedVersion
}

// Clone returns an independent Store sharing the same registry,
// workspace, and system ID, populated with deep copies of every node
// and edge. The clone shares no map state with s: mutating one never
// affects the other. Used by diffcodec's rehearse-then-replay apply
// and by the optimizer's architecture variants, both of which need a
// private scratch copy of a live graph.
func (s *Store) Clone() *Store {
	clone := New(s.Registry(), s.WorkspaceID(), s.SystemID())
	for _, n := range s.AllNodes() {
		_ = clone.AddNode(n)
	}
	for _, e := range s.AllEdges() {
		_ = clone.AddEdge(e)
	}
	return clone
}
