// Package view implements the view filter and port extractor (§4.6):
// a two-stage projection from the full graph store down to what one
// view renders, plus spec-view multi-occurrence and io-edge port
// derivation.
package view

import "github.com/archlens/sysmodel/pkg/ontology"

// View declares what a layout pass operates on.
type View struct {
	IncludeNodeKinds []ontology.NodeKind
	IncludeEdgeKinds []ontology.EdgeKind
	LayoutAlgorithm  string
	Parameters       map[string]any
}

// RenderLayer declares the render-time show/hide overrides applied on
// top of a layout-filtered graph, by node/edge ID.
type RenderLayer struct {
	ShowNodes []string
	HideNodes []string
	ShowEdges []string
	HideEdges []string
}

// FilteredGraph is a read-only projection of a graph.Store: a subset
// of nodes and edges, never a mutable view onto the store itself.
type FilteredGraph struct {
	Nodes []*Node
	Edges []*Edge
}

// Node is a filtered node instance; ID carries through the store's
// semantic ID.
type Node struct {
	ID   string
	Kind ontology.NodeKind
	Name string
}

// Edge is a filtered edge instance.
type Edge struct {
	ID     string
	Kind   ontology.EdgeKind
	Source string
	Target string
}
