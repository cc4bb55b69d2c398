package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := NewBadgerStoreInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStoreSaveThenLoadRoundTrips(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	node := &graph.Node{
		ID: "Checkout.MOD.001", Kind: ontology.KindModule, Name: "Checkout",
		Description: "checkout flow", WorkspaceID: "ws1", SystemID: "sys1",
		Attributes: graph.Attributes{DataType: "json"},
	}
	edge := &graph.Edge{ID: "a-allocate-b", Kind: ontology.EdgeAllocate, Source: "a", Target: "b", WorkspaceID: "ws1", SystemID: "sys1"}

	counts, err := s.SaveGraph(ctx, "ws1", "sys1", []*graph.Node{node}, []*graph.Edge{edge})
	require.NoError(t, err)
	assert.Equal(t, PersistedCounts{Nodes: 1, Edges: 1}, counts)

	nodes, edges, err := s.LoadGraph(ctx, "ws1", "sys1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Len(t, edges, 1)
	assert.Equal(t, "Checkout", nodes[0].Name)
	assert.Equal(t, "checkout flow", nodes[0].Description)
	assert.Equal(t, "json", nodes[0].Attributes.DataType)
	assert.Equal(t, ontology.KindModule, nodes[0].Kind)
	assert.Equal(t, ontology.EdgeAllocate, edges[0].Kind)
}

func TestBadgerStoreScopesGraphsByWorkspaceAndSystem(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	nodeA := &graph.Node{ID: "A.MOD.001", Kind: ontology.KindModule, Name: "A"}
	nodeB := &graph.Node{ID: "B.MOD.001", Kind: ontology.KindModule, Name: "B"}

	_, err := s.SaveGraph(ctx, "ws1", "sysA", []*graph.Node{nodeA}, nil)
	require.NoError(t, err)
	_, err = s.SaveGraph(ctx, "ws1", "sysB", []*graph.Node{nodeB}, nil)
	require.NoError(t, err)

	nodesA, _, err := s.LoadGraph(ctx, "ws1", "sysA")
	require.NoError(t, err)
	require.Len(t, nodesA, 1)
	assert.Equal(t, "A", nodesA[0].Name)
}

func TestBadgerStoreSessionRoundTrips(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	_, err := s.LoadSession(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	session := &Session{UserID: "user-1", WorkspaceID: "ws1", ActiveSystemID: "sys1", ChatID: "chat-1"}
	require.NoError(t, s.SaveSession(ctx, session))

	loaded, err := s.LoadSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "chat-1", loaded.ChatID)
}

func TestBadgerStoreSaveGraphOverwritesExistingNode(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	node := &graph.Node{ID: "X.MOD.001", Kind: ontology.KindModule, Name: "X-v1"}
	_, err := s.SaveGraph(ctx, "ws1", "sys1", []*graph.Node{node}, nil)
	require.NoError(t, err)

	updated := &graph.Node{ID: "X.MOD.001", Kind: ontology.KindModule, Name: "X-v2"}
	_, err = s.SaveGraph(ctx, "ws1", "sys1", []*graph.Node{updated}, nil)
	require.NoError(t, err)

	nodes, _, err := s.LoadGraph(ctx, "ws1", "sys1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "X-v2", nodes[0].Name)
}
