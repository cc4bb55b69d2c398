package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// Key prefixes, following the reference engine's BadgerEngine
// single-byte prefix scheme (pkg/storage/badger.go), extended with a
// workspace/system scope segment since one BadgerStore durably holds
// every workspace's every system, not one engine per graph.
const (
	prefixNode    = byte(0x01) // node:wsID\x00sysID\x00nodeID -> Node
	prefixEdge    = byte(0x02) // edge:wsID\x00sysID\x00edgeID -> Edge
	prefixSession = byte(0x03) // session:userID -> Session
)

// BadgerOptions configures the BadgerStore, mirroring the reference
// engine's BadgerOptions (pkg/storage/badger.go).
type BadgerOptions struct {
	// DataDir is the directory for storing data files.
	DataDir string

	// InMemory runs BadgerDB in memory-only mode (tests).
	InMemory bool

	// SyncWrites forces fsync after each write.
	SyncWrites bool

	// Logger overrides Badger's default logger; nil silences it.
	Logger badger.Logger

	// LowMemory is accepted for parity with the reference engine's
	// options; NewBadgerStoreWithOptions applies its memory-constrained
	// settings whether or not this is set.
	LowMemory bool
}

// BadgerStore is the durable, disk-backed Store implementation.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB store rooted at dataDir.
func NewBadgerStore(dataDir string) (*BadgerStore, error) {
	return NewBadgerStoreWithOptions(BadgerOptions{DataDir: dataDir})
}

// NewBadgerStoreInMemory opens an in-memory BadgerDB, for tests that
// want BadgerStore's exact transaction semantics without disk I/O.
func NewBadgerStoreInMemory() (*BadgerStore, error) {
	return NewBadgerStoreWithOptions(BadgerOptions{InMemory: true})
}

// NewBadgerStoreWithOptions opens BadgerDB with full control over its
// tuning, applying the same low-memory overrides as the reference
// engine's BadgerEngine regardless of opts.LowMemory: these settings
// are safe defaults for the single-process deployments this engine
// targets (§6), not an opt-in tier.
func NewBadgerStoreWithOptions(opts BadgerOptions) (*BadgerStore, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger)
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("persistence: opening badger: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func graphPrefix(workspaceID, systemID string) []byte {
	key := make([]byte, 0, len(workspaceID)+len(systemID)+2)
	key = append(key, []byte(workspaceID)...)
	key = append(key, 0x00)
	key = append(key, []byte(systemID)...)
	key = append(key, 0x00)
	return key
}

func nodeKey(workspaceID, systemID, nodeID string) []byte {
	key := []byte{prefixNode}
	key = append(key, graphPrefix(workspaceID, systemID)...)
	return append(key, []byte(nodeID)...)
}

func nodeScanPrefix(workspaceID, systemID string) []byte {
	return append([]byte{prefixNode}, graphPrefix(workspaceID, systemID)...)
}

func edgeKey(workspaceID, systemID, edgeID string) []byte {
	key := []byte{prefixEdge}
	key = append(key, graphPrefix(workspaceID, systemID)...)
	return append(key, []byte(edgeID)...)
}

func edgeScanPrefix(workspaceID, systemID string) []byte {
	return append([]byte{prefixEdge}, graphPrefix(workspaceID, systemID)...)
}

func sessionKey(userID string) []byte {
	return append([]byte{prefixSession}, []byte(userID)...)
}

// serializableNode is the JSON-serializable form of graph.Node,
// following the reference engine's serializableNode/serializableEdge
// shadow-struct pattern (pkg/storage/badger.go) so time.Time and the
// kind/pointer fields round-trip predictably through Badger's byte values.
type serializableNode struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	WorkspaceID string         `json:"workspaceId"`
	SystemID    string         `json:"systemId"`
	Volatility  *float64       `json:"volatility,omitempty"`
	DataType    string         `json:"dataType,omitempty"`
	Pattern     string         `json:"pattern,omitempty"`
	Validation  string         `json:"validation,omitempty"`
	Zoom        string         `json:"zoom,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	PosX        *float64       `json:"posX,omitempty"`
	PosY        *float64       `json:"posY,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
	UpdatedAt   int64          `json:"updatedAt"`
}

type serializableEdge struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	WorkspaceID string `json:"workspaceId"`
	SystemID    string `json:"systemId"`
	Label       string `json:"label,omitempty"`
}

type serializableSession struct {
	UserID         string `json:"userId"`
	WorkspaceID    string `json:"workspaceId"`
	ActiveSystemID string `json:"activeSystemId"`
	ChatID         string `json:"chatId"`
	UpdatedAt      int64  `json:"updatedAt"`
}

func encodeNode(n *graph.Node) ([]byte, error) {
	sn := serializableNode{
		ID:          n.ID,
		Kind:        string(n.Kind),
		Name:        n.Name,
		Description: n.Description,
		WorkspaceID: n.WorkspaceID,
		SystemID:    n.SystemID,
		Volatility:  n.Attributes.Volatility,
		DataType:    n.Attributes.DataType,
		Pattern:     n.Attributes.Pattern,
		Validation:  n.Attributes.Validation,
		Zoom:        n.Attributes.Zoom,
		Extra:       n.Attributes.Extra,
		CreatedAt:   n.CreatedAt.Unix(),
		UpdatedAt:   n.UpdatedAt.Unix(),
	}
	if n.Position != nil {
		sn.PosX, sn.PosY = &n.Position.X, &n.Position.Y
	}
	return json.Marshal(sn)
}

func decodeNode(data []byte) (*graph.Node, error) {
	var sn serializableNode
	if err := json.Unmarshal(data, &sn); err != nil {
		return nil, err
	}
	n := &graph.Node{
		ID:          sn.ID,
		Kind:        ontology.NodeKind(sn.Kind),
		Name:        sn.Name,
		Description: sn.Description,
		WorkspaceID: sn.WorkspaceID,
		SystemID:    sn.SystemID,
		Attributes: graph.Attributes{
			Volatility: sn.Volatility,
			DataType:   sn.DataType,
			Pattern:    sn.Pattern,
			Validation: sn.Validation,
			Zoom:       sn.Zoom,
			Extra:      sn.Extra,
		},
		CreatedAt: unixToTime(sn.CreatedAt),
		UpdatedAt: unixToTime(sn.UpdatedAt),
	}
	if sn.PosX != nil && sn.PosY != nil {
		n.Position = &graph.Position{X: *sn.PosX, Y: *sn.PosY}
	}
	return n, nil
}

func encodeEdge(e *graph.Edge) ([]byte, error) {
	se := serializableEdge{
		ID:          e.ID,
		Kind:        string(e.Kind),
		Source:      e.Source,
		Target:      e.Target,
		WorkspaceID: e.WorkspaceID,
		SystemID:    e.SystemID,
		Label:       e.Label,
	}
	return json.Marshal(se)
}

func decodeEdge(data []byte) (*graph.Edge, error) {
	var se serializableEdge
	if err := json.Unmarshal(data, &se); err != nil {
		return nil, err
	}
	return &graph.Edge{
		ID:          se.ID,
		Kind:        ontology.EdgeKind(se.Kind),
		Source:      se.Source,
		Target:      se.Target,
		WorkspaceID: se.WorkspaceID,
		SystemID:    se.SystemID,
		Label:       se.Label,
	}, nil
}

func encodeSession(s *Session) ([]byte, error) {
	return json.Marshal(serializableSession{
		UserID:         s.UserID,
		WorkspaceID:    s.WorkspaceID,
		ActiveSystemID: s.ActiveSystemID,
		ChatID:         s.ChatID,
		UpdatedAt:      s.UpdatedAt.Unix(),
	})
}

func decodeSession(data []byte) (*Session, error) {
	var ss serializableSession
	if err := json.Unmarshal(data, &ss); err != nil {
		return nil, err
	}
	return &Session{
		UserID:         ss.UserID,
		WorkspaceID:    ss.WorkspaceID,
		ActiveSystemID: ss.ActiveSystemID,
		ChatID:         ss.ChatID,
		UpdatedAt:      unixToTime(ss.UpdatedAt),
	}, nil
}

func unixToTime(unix int64) time.Time {
	if unix <= 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}

// LoadGraph reads every node and edge for (workspaceID, systemID) in a
// single read-only transaction (§5).
func (b *BadgerStore) LoadGraph(ctx context.Context, workspaceID, systemID string) ([]*graph.Node, []*graph.Edge, error) {
	var nodes []*graph.Node
	var edges []*graph.Edge

	err := b.db.View(func(txn *badger.Txn) error {
		nodePrefix := nodeScanPrefix(workspaceID, systemID)
		nit := txn.NewIterator(badger.DefaultIteratorOptions)
		defer nit.Close()
		for nit.Seek(nodePrefix); nit.ValidForPrefix(nodePrefix); nit.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := nit.Item().Value(func(val []byte) error {
				n, err := decodeNode(val)
				if err != nil {
					return err
				}
				nodes = append(nodes, n)
				return nil
			}); err != nil {
				return fmt.Errorf("persistence: decoding node: %w", err)
			}
		}

		edgePrefix := edgeScanPrefix(workspaceID, systemID)
		eit := txn.NewIterator(badger.DefaultIteratorOptions)
		defer eit.Close()
		for eit.Seek(edgePrefix); eit.ValidForPrefix(edgePrefix); eit.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := eit.Item().Value(func(val []byte) error {
				e, err := decodeEdge(val)
				if err != nil {
					return err
				}
				edges = append(edges, e)
				return nil
			}); err != nil {
				return fmt.Errorf("persistence: decoding edge: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if nodes == nil {
		nodes = []*graph.Node{}
	}
	if edges == nil {
		edges = []*graph.Edge{}
	}
	return nodes, edges, nil
}

// SaveGraph writes dirtyNodes and dirtyEdges for (workspaceID,
// systemID) in a single Badger transaction (§5), matching the
// reference engine's BadgerEngine.BulkCreateNodes/BulkCreateEdges
// all-or-nothing shape. As with MemoryStore, this upserts; it does not
// infer deletions (see DESIGN.md).
func (b *BadgerStore) SaveGraph(ctx context.Context, workspaceID, systemID string, dirtyNodes []*graph.Node, dirtyEdges []*graph.Edge) (PersistedCounts, error) {
	counts := PersistedCounts{}

	err := b.db.Update(func(txn *badger.Txn) error {
		for _, n := range dirtyNodes {
			if n == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := encodeNode(n)
			if err != nil {
				return fmt.Errorf("persistence: encoding node %q: %w", n.ID, err)
			}
			if err := txn.Set(nodeKey(workspaceID, systemID, n.ID), data); err != nil {
				return err
			}
			counts.Nodes++
		}

		for _, e := range dirtyEdges {
			if e == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := encodeEdge(e)
			if err != nil {
				return fmt.Errorf("persistence: encoding edge %q: %w", e.ID, err)
			}
			if err := txn.Set(edgeKey(workspaceID, systemID, e.ID), data); err != nil {
				return err
			}
			counts.Edges++
		}

		return nil
	})
	if err != nil {
		return PersistedCounts{}, err
	}
	return counts, nil
}

// LoadSession reads the session record for userID.
func (b *BadgerStore) LoadSession(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrInvalidID
	}

	var session *Session
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(userID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decodeErr error
			session, decodeErr = decodeSession(val)
			return decodeErr
		})
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SaveSession writes session as a single record keyed by session.UserID.
func (b *BadgerStore) SaveSession(ctx context.Context, session *Session) error {
	if session == nil || session.UserID == "" {
		return ErrInvalidID
	}

	toSave := *session
	if toSave.UpdatedAt.IsZero() {
		toSave.UpdatedAt = time.Now()
	}

	return b.db.Update(func(txn *badger.Txn) error {
		data, err := encodeSession(&toSave)
		if err != nil {
			return fmt.Errorf("persistence: encoding session %q: %w", session.UserID, err)
		}
		return txn.Set(sessionKey(session.UserID), data)
	})
}

// Close closes the underlying BadgerDB handle.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

var _ Store = (*BadgerStore)(nil)
