// Package persistence implements the storage collaborator (§4.3, §6):
// the core graph engine consumes loadGraph/saveGraph plus a single
// session record, never a query language, and never touches a
// storage driver directly. This mirrors the reference engine's
// pkg/storage split between MemoryEngine and BadgerEngine behind one
// Engine interface, adapted from Neo4j-style label/property storage to
// this engine's semantic-ID graph.Node/graph.Edge model.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/archlens/sysmodel/pkg/graph"
)

// Errors returned by Store implementations, following the reference
// engine's per-package sentinel convention (pkg/storage, pkg/encryption).
var (
	ErrNotFound      = errors.New("persistence: not found")
	ErrInvalidID     = errors.New("persistence: invalid id")
	ErrClosed        = errors.New("persistence: store is closed")
	ErrAlreadyExists = errors.New("persistence: already exists")
)

// Session is the engine's single piece of durable UI state (§6): which
// user, workspace, system, and chat thread are currently active. The
// core reads and writes it as one record, never as separate fields.
type Session struct {
	UserID         string
	WorkspaceID    string
	ActiveSystemID string
	ChatID         string
	UpdatedAt      time.Time
}

// PersistedCounts reports how many nodes and edges a SaveGraph call
// actually wrote, so a caller can distinguish a no-op save (nothing
// dirty) from a save that silently dropped records.
type PersistedCounts struct {
	Nodes int
	Edges int
}

// Store is the persistence collaborator's contract (§6): load a
// graph's full node/edge set, save only what changed since the last
// save, and read/write the session record. Every method is scoped by
// workspace and system ID except the session, which is scoped by user.
//
// Implementations: MemoryStore (fixtures and tests), BadgerStore
// (durable, disk-backed), and EncryptedStore (a decorator wrapping
// either one with AES-256-GCM encryption of the text fields).
type Store interface {
	// LoadGraph returns every node and edge persisted for
	// (workspaceID, systemID). An empty, never-saved graph returns
	// two empty slices and no error.
	LoadGraph(ctx context.Context, workspaceID, systemID string) ([]*graph.Node, []*graph.Edge, error)

	// SaveGraph persists dirtyNodes and dirtyEdges for (workspaceID,
	// systemID) in a single transaction and returns how many of each
	// were written. Callers pass graph.Store.DirtyNodes/DirtyEdges'
	// IDs resolved to the live nodes/edges via GetNode/GetEdge; a nil
	// node or edge (already deleted from the live store) is skipped,
	// not an error. SaveGraph never deletes persisted records.
	SaveGraph(ctx context.Context, workspaceID, systemID string, dirtyNodes []*graph.Node, dirtyEdges []*graph.Edge) (PersistedCounts, error)

	// LoadSession returns the session record for userID, or
	// ErrNotFound if none has ever been saved.
	LoadSession(ctx context.Context, userID string) (*Session, error)

	// SaveSession persists session as a single record keyed by
	// session.UserID.
	SaveSession(ctx context.Context, session *Session) error

	// Close releases any resources the store holds open.
	Close() error
}
