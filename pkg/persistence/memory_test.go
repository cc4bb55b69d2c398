package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

func TestMemoryStoreLoadGraphEmptyIsNotError(t *testing.T) {
	s := NewMemoryStore()
	nodes, edges, err := s.LoadGraph(context.Background(), "ws1", "sys1")
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestMemoryStoreSaveThenLoadRoundTrips(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	node := &graph.Node{ID: "Checkout.MOD.001", Kind: ontology.KindModule, Name: "Checkout", WorkspaceID: "ws1", SystemID: "sys1"}
	edge := &graph.Edge{ID: "a-compose-b", Kind: ontology.EdgeCompose, Source: "a", Target: "b", WorkspaceID: "ws1", SystemID: "sys1"}

	counts, err := s.SaveGraph(ctx, "ws1", "sys1", []*graph.Node{node}, []*graph.Edge{edge})
	require.NoError(t, err)
	assert.Equal(t, PersistedCounts{Nodes: 1, Edges: 1}, counts)

	nodes, edges, err := s.LoadGraph(ctx, "ws1", "sys1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Len(t, edges, 1)
	assert.Equal(t, "Checkout", nodes[0].Name)
	assert.Equal(t, "a-compose-b", edges[0].ID)
}

func TestMemoryStoreScopesGraphsByWorkspaceAndSystem(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	node := &graph.Node{ID: "X.MOD.001", Kind: ontology.KindModule, Name: "X"}
	_, err := s.SaveGraph(ctx, "ws1", "sysA", []*graph.Node{node}, nil)
	require.NoError(t, err)

	nodes, _, err := s.LoadGraph(ctx, "ws1", "sysB")
	require.NoError(t, err)
	assert.Empty(t, nodes, "a different system under the same workspace sees no nodes")
}

func TestMemoryStoreSaveGraphSkipsNilEntries(t *testing.T) {
	s := NewMemoryStore()
	counts, err := s.SaveGraph(context.Background(), "ws1", "sys1", []*graph.Node{nil}, []*graph.Edge{nil})
	require.NoError(t, err)
	assert.Equal(t, PersistedCounts{}, counts)
}

func TestMemoryStoreSessionRoundTrips(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.LoadSession(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	session := &Session{UserID: "user-1", WorkspaceID: "ws1", ActiveSystemID: "sys1", ChatID: "chat-1"}
	require.NoError(t, s.SaveSession(ctx, session))

	loaded, err := s.LoadSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ws1", loaded.WorkspaceID)
	assert.Equal(t, "chat-1", loaded.ChatID)
	assert.False(t, loaded.UpdatedAt.IsZero(), "SaveSession stamps UpdatedAt when the caller leaves it zero")
}

func TestMemoryStoreRejectsOperationsAfterClose(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, _, err := s.LoadGraph(context.Background(), "ws1", "sys1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryStoreSaveSessionRejectsEmptyUserID(t *testing.T) {
	s := NewMemoryStore()
	err := s.SaveSession(context.Background(), &Session{UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidID)
}
