package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

func buildSample(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "Order.FN.001", Kind: ontology.KindFunc, Name: "Order", Description: "d"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "In.FL.001", Kind: ontology.KindFlow, Name: "In", Description: "d"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "Out.FL.002", Kind: ontology.KindFlow, Name: "Out", Description: "d"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "Order.FN.001"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeIO, Source: "In.FL.001", Target: "Order.FN.001"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeIO, Source: "Order.FN.001", Target: "Out.FL.002"}))
	return s
}

func TestLayoutFilterRetainsFlowsRegardlessOfInclude(t *testing.T) {
	s := buildSample(t)
	fg := LayoutFilter(s, View{IncludeNodeKinds: []ontology.NodeKind{ontology.KindSystem, ontology.KindFunc}})

	kinds := make(map[ontology.NodeKind]int)
	for _, n := range fg.Nodes {
		kinds[n.Kind]++
	}
	assert.Equal(t, 2, kinds[ontology.KindFlow], "FLOW nodes survive layout filtering even when not included")
}

func TestLayoutFilterDropsEdgesWithMissingEndpoint(t *testing.T) {
	s := buildSample(t)
	fg := LayoutFilter(s, View{IncludeNodeKinds: []ontology.NodeKind{ontology.KindSystem}})

	for _, e := range fg.Edges {
		assert.NotEqual(t, ontology.EdgeIO, e.Kind, "io edges to a dropped FUNC should not survive")
	}
}

func TestRenderFilterHidesFlowAsPortNotBox(t *testing.T) {
	s := buildSample(t)
	fg := LayoutFilter(s, View{})
	visible, hiddenFlows := RenderFilter(fg, RenderLayer{HideNodes: []string{"In.FL.001"}})

	for _, n := range visible.Nodes {
		assert.NotEqual(t, "In.FL.001", n.ID)
	}
	assert.Contains(t, hiddenFlows, "In.FL.001")
}

func TestRenderFilterShowOverridesHide(t *testing.T) {
	s := buildSample(t)
	fg := LayoutFilter(s, View{})
	visible, hiddenFlows := RenderFilter(fg, RenderLayer{HideNodes: []string{"In.FL.001"}, ShowNodes: []string{"In.FL.001"}})

	found := false
	for _, n := range visible.Nodes {
		if n.ID == "In.FL.001" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Empty(t, hiddenFlows)
}

func TestSpecViewOccurrencesMarksFirstEncounterPrimary(t *testing.T) {
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "A.FN.001", Kind: ontology.KindFunc, Name: "A", Description: "d"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "B.FN.002", Kind: ontology.KindFunc, Name: "B", Description: "d"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "Shared.FN.003", Kind: ontology.KindFunc, Name: "Shared", Description: "d"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "A.FN.001"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "B.FN.002"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeCompose, Source: "A.FN.001", Target: "Shared.FN.003"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeCompose, Source: "B.FN.002", Target: "Shared.FN.003"}))

	occ := SpecViewOccurrences(s, []ontology.EdgeKind{ontology.EdgeCompose}, 0)

	var sharedOccurrences []Occurrence
	for _, o := range occ {
		if o.NodeID == "Shared.FN.003" {
			sharedOccurrences = append(sharedOccurrences, o)
		}
	}
	require.Len(t, sharedOccurrences, 2)
	primaryCount := 0
	for _, o := range sharedOccurrences {
		if o.IsPrimary {
			primaryCount++
		}
	}
	assert.Equal(t, 1, primaryCount)
}

func TestSpecViewOccurrencesMaxDepthClamp(t *testing.T) {
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp", Description: "d"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "A.FN.001", Kind: ontology.KindFunc, Name: "A", Description: "d"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "B.FN.002", Kind: ontology.KindFunc, Name: "B", Description: "d"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeCompose, Source: "FoodApp.SY.001", Target: "A.FN.001"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeCompose, Source: "A.FN.001", Target: "B.FN.002"}))

	occ := SpecViewOccurrences(s, []ontology.EdgeKind{ontology.EdgeCompose}, 1)
	for _, o := range occ {
		assert.NotEqual(t, "B.FN.002", o.NodeID, "depth-1 clamp should not reach B")
	}
}

func TestExtractPortsOrdersByFlowName(t *testing.T) {
	s := buildSample(t)
	ports := ExtractPorts(s)
	ps := ports["Order.FN.001"]
	require.Len(t, ps.Inputs, 1)
	assert.Equal(t, "In.FL.001", ps.Inputs[0].FlowID)
	require.Len(t, ps.Outputs, 1)
	assert.Equal(t, "Out.FL.002", ps.Outputs[0].FlowID)
}
