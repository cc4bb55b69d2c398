package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/archlens/sysmodel/pkg/graph"
)

// graphKey scopes MemoryStore's maps by workspace and system, mirroring
// how graph.Store itself is bound to exactly one (workspaceID,
// systemID) pair.
type graphKey struct {
	workspaceID string
	systemID    string
}

// MemoryStore is a thread-safe, in-process Store implementation for
// fixtures and tests, grounded on the reference engine's MemoryEngine:
// plain maps guarded by a single RWMutex, with every accessor returning
// a deep copy so callers cannot mutate store-owned state through a
// returned pointer.
type MemoryStore struct {
	mu       sync.RWMutex
	graphs   map[graphKey]map[string]*graph.Node
	edges    map[graphKey]map[string]*graph.Edge
	sessions map[string]*Session
	closed   bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		graphs:   make(map[graphKey]map[string]*graph.Node),
		edges:    make(map[graphKey]map[string]*graph.Edge),
		sessions: make(map[string]*Session),
	}
}

// LoadGraph returns deep copies of every node and edge saved for
// (workspaceID, systemID), or two empty slices if nothing was ever saved.
func (m *MemoryStore) LoadGraph(ctx context.Context, workspaceID, systemID string) ([]*graph.Node, []*graph.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, nil, ErrClosed
	}

	key := graphKey{workspaceID, systemID}

	nodes := make([]*graph.Node, 0, len(m.graphs[key]))
	for _, n := range m.graphs[key] {
		nodes = append(nodes, n.Clone())
	}

	edges := make([]*graph.Edge, 0, len(m.edges[key]))
	for _, e := range m.edges[key] {
		edges = append(edges, e.Clone())
	}

	return nodes, edges, nil
}

// SaveGraph upserts dirtyNodes and dirtyEdges for (workspaceID,
// systemID) and reports how many of each were written. It does not
// itself remove records: a node or edge removed from the live
// graph.Store is simply never re-offered to SaveGraph and so lingers
// here until the caller issues an equivalent deletion (see DESIGN.md).
func (m *MemoryStore) SaveGraph(ctx context.Context, workspaceID, systemID string, dirtyNodes []*graph.Node, dirtyEdges []*graph.Edge) (PersistedCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return PersistedCounts{}, ErrClosed
	}

	key := graphKey{workspaceID, systemID}
	if m.graphs[key] == nil {
		m.graphs[key] = make(map[string]*graph.Node)
	}
	if m.edges[key] == nil {
		m.edges[key] = make(map[string]*graph.Edge)
	}

	counts := PersistedCounts{}
	for _, n := range dirtyNodes {
		if n == nil {
			continue
		}
		m.graphs[key][n.ID] = n.Clone()
		counts.Nodes++
	}
	for _, e := range dirtyEdges {
		if e == nil {
			continue
		}
		m.edges[key][e.ID] = e.Clone()
		counts.Edges++
	}

	return counts, nil
}

// LoadSession returns the session record for userID.
func (m *MemoryStore) LoadSession(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

// SaveSession persists session, keyed by session.UserID.
func (m *MemoryStore) SaveSession(ctx context.Context, session *Session) error {
	if session == nil || session.UserID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	copied := *session
	if copied.UpdatedAt.IsZero() {
		copied.UpdatedAt = time.Now()
	}
	m.sessions[session.UserID] = &copied
	return nil
}

// Close marks the store closed. Idempotent, like MemoryEngine.Close.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
