package view

import (
	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// LayoutFilter retains only nodes whose kind is in view's include set
// and edges whose kind is in view's include set and whose endpoints
// both survive. FLOW nodes are always retained regardless of
// view.IncludeNodeKinds, so a render filter downstream can still
// derive ports for a FLOW that is hidden at render time (§4.6).
func LayoutFilter(store *graph.Store, v View) FilteredGraph {
	nodeAllow := kindSet(v.IncludeNodeKinds)
	edgeAllow := edgeKindSet(v.IncludeEdgeKinds)

	retained := make(map[string]bool)
	var nodes []*Node
	for _, n := range store.AllNodes() {
		if n.Kind == ontology.KindFlow || nodeAllow == nil || nodeAllow[n.Kind] {
			retained[n.ID] = true
			nodes = append(nodes, &Node{ID: n.ID, Kind: n.Kind, Name: n.Name})
		}
	}

	var edges []*graph.Edge
	for _, e := range store.AllEdges() {
		if edgeAllow != nil && !edgeAllow[e.Kind] {
			continue
		}
		if !retained[e.Source] || !retained[e.Target] {
			continue
		}
		edges = append(edges, e)
	}

	out := FilteredGraph{Nodes: nodes}
	for _, e := range edges {
		out.Edges = append(out.Edges, &Edge{ID: e.ID, Kind: e.Kind, Source: e.Source, Target: e.Target})
	}
	return out
}

// RenderFilter applies layer's show/hide overrides to a
// layout-filtered graph. A hidden FLOW node is dropped from the
// visible node set and instead reported in hiddenFlows, for the
// caller to render as a port label rather than a box (§4.6).
func RenderFilter(layout FilteredGraph, layer RenderLayer) (visible FilteredGraph, hiddenFlowIDs []string) {
	hideNode := toSet(layer.HideNodes)
	showNode := toSet(layer.ShowNodes)
	hideEdge := toSet(layer.HideEdges)
	showEdge := toSet(layer.ShowEdges)

	for _, n := range layout.Nodes {
		hidden := hideNode[n.ID] && !showNode[n.ID]
		if hidden {
			if n.Kind == ontology.KindFlow {
				hiddenFlowIDs = append(hiddenFlowIDs, n.ID)
			}
			continue
		}
		visible.Nodes = append(visible.Nodes, n)
	}

	visibleNode := make(map[string]bool, len(visible.Nodes))
	for _, n := range visible.Nodes {
		visibleNode[n.ID] = true
	}

	for _, e := range layout.Edges {
		hidden := hideEdge[e.ID] && !showEdge[e.ID]
		if hidden || !visibleNode[e.Source] || !visibleNode[e.Target] {
			continue
		}
		visible.Edges = append(visible.Edges, e)
	}

	return visible, hiddenFlowIDs
}

func kindSet(kinds []ontology.NodeKind) map[ontology.NodeKind]bool {
	if len(kinds) == 0 {
		return nil
	}
	m := make(map[ontology.NodeKind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

func edgeKindSet(kinds []ontology.EdgeKind) map[ontology.EdgeKind]bool {
	if len(kinds) == 0 {
		return nil
	}
	m := make(map[ontology.EdgeKind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
