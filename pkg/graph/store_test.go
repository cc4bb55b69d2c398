package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/sysmodel/pkg/ontology"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(ontology.LoadDefault(), "ws1", "sys1")
}

func TestAddNodeRejectsDuplicate(t *testing.T) {
	s := newTestStore(t)
	n := &Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "Food ordering app"}
	require.NoError(t, s.AddNode(n))

	err := s.AddNode(n)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestAddNodeRejectsKindMismatch(t *testing.T) {
	s := newTestStore(t)
	n := &Node{ID: "FoodApp.SY.001", Kind: ontology.KindUseCase, Name: "FoodApp", Description: "x"}
	err := s.AddNode(n)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestRemoveNodeCascadesEdges(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	require.NoError(t, s.AddNode(&Node{ID: "OrderFood.UC.001", Kind: ontology.KindUseCase, Name: "OrderFood", Description: "d"}))
	require.NoError(t, s.AddEdge(&Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "OrderFood.UC.001"}))

	s.RemoveNode("OrderFood.UC.001")

	_, err := s.GetEdge("FoodApp.SY.001", ontology.EdgeCompose, "OrderFood.UC.001")
	assert.Error(t, err)
	assert.Empty(t, s.IncidentEdges("FoodApp.SY.001"))
}

func TestAddEdgeRejectsDangling(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	err := s.AddEdge(&Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "Missing.UC.001"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDanglingEdge)
}

func TestAddEdgeRejectsInvalidConnection(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	require.NoError(t, s.AddNode(&Node{ID: "OrderFood.UC.001", Kind: ontology.KindUseCase, Name: "OrderFood", Description: "d"}))

	// UC -compose-> SYS is not a legal direction in the default ontology.
	err := s.AddEdge(&Edge{Kind: ontology.EdgeCompose, Source: "OrderFood.UC.001", Target: "FoodApp.SY.001"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConnection)
}

func TestAddEdgeRejectsDuplicateComposite(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	require.NoError(t, s.AddNode(&Node{ID: "OrderFood.UC.001", Kind: ontology.KindUseCase, Name: "OrderFood", Description: "d"}))

	edge := &Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "OrderFood.UC.001"}
	require.NoError(t, s.AddEdge(edge))

	versionBefore := s.Version()
	err := s.AddEdge(edge)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEdge)
	assert.Equal(t, versionBefore, s.Version())
}

func TestAddEdgeRejectsCircularCompose(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "A.FN.001", Kind: ontology.KindFunc, Name: "A", Description: "d"}))
	require.NoError(t, s.AddNode(&Node{ID: "B.FN.002", Kind: ontology.KindFunc, Name: "B", Description: "d"}))
	require.NoError(t, s.AddEdge(&Edge{Kind: ontology.EdgeCompose, Source: "A.FN.001", Target: "B.FN.002"}))

	err := s.AddEdge(&Edge{Kind: ontology.EdgeCompose, Source: "B.FN.002", Target: "A.FN.001"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularCompose)
}

func TestVersionIncrementsOnEverySuccessfulMutation(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, uint64(0), s.Version())

	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	assert.Equal(t, uint64(1), s.Version())

	require.NoError(t, s.AddNode(&Node{ID: "OrderFood.UC.001", Kind: ontology.KindUseCase, Name: "OrderFood", Description: "d"}))
	assert.Equal(t, uint64(2), s.Version())

	require.NoError(t, s.AddEdge(&Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "OrderFood.UC.001"}))
	assert.Equal(t, uint64(3), s.Version())
}

func TestRootsAndChildren(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	require.NoError(t, s.AddNode(&Node{ID: "OrderFood.UC.001", Kind: ontology.KindUseCase, Name: "OrderFood", Description: "d"}))
	require.NoError(t, s.AddEdge(&Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "OrderFood.UC.001"}))

	nesting := []ontology.EdgeKind{ontology.EdgeCompose}
	roots := s.Roots(nesting)
	require.Len(t, roots, 1)
	assert.Equal(t, "FoodApp.SY.001", roots[0].ID)

	children := s.Children("FoodApp.SY.001", nesting)
	require.Len(t, children, 1)
	assert.Equal(t, "OrderFood.UC.001", children[0].ID)
}

func TestUpdateNodeKeepsIDAndKindImmutable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))

	newName := "RenamedApp"
	require.NoError(t, s.UpdateNode("FoodApp.SY.001", NodePatch{Name: &newName}))

	node, err := s.GetNode("FoodApp.SY.001")
	require.NoError(t, err)
	assert.Equal(t, "RenamedApp", node.Name)
	assert.Equal(t, "FoodApp.SY.001", node.ID)
	assert.Equal(t, ontology.KindSystem, node.Kind)
}

func TestDirtyTrackingAndClear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	assert.Len(t, s.DirtyNodes(), 1)

	s.ClearDirty()
	assert.Empty(t, s.DirtyNodes())
	assert.Equal(t, s.Version(), s.LastSavedVersion())
}

func TestGetNodeReturnsDeepCopy(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(&Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))

	node, err := s.GetNode("FoodApp.SY.001")
	require.NoError(t, err)
	node.Name = "Mutated"

	again, err := s.GetNode("FoodApp.SY.001")
	require.NoError(t, err)
	assert.Equal(t, "FoodApp", again.Name)
}
