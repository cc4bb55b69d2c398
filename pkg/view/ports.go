package view

import (
	"sort"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// Port is one derived input or output on a FUNC or ACTOR node.
type Port struct {
	FlowID    string
	FlowName  string
	Direction string // "input" or "output"
}

// PortSet is the derived ports for one node.
type PortSet struct {
	Inputs  []Port
	Outputs []Port
}

// ExtractPorts walks every io edge in store exactly once and derives
// ports for every FUNC/ACTOR node: `FLOW -io-> X` becomes an input on
// X, `X -io-> FLOW` becomes an output on X (§4.6). Ports are ordered
// by FLOW name for stable layout.
func ExtractPorts(store *graph.Store) map[string]PortSet {
	out := make(map[string]PortSet)

	for _, e := range store.AllEdges() {
		if e.Kind != ontology.EdgeIO {
			continue
		}
		srcNode, srcErr := store.GetNode(e.Source)
		tgtNode, tgtErr := store.GetNode(e.Target)
		if srcErr != nil || tgtErr != nil {
			continue
		}

		if srcNode.Kind == ontology.KindFlow {
			ps := out[e.Target]
			ps.Inputs = append(ps.Inputs, Port{FlowID: srcNode.ID, FlowName: srcNode.Name, Direction: "input"})
			out[e.Target] = ps
			continue
		}
		if tgtNode.Kind == ontology.KindFlow {
			ps := out[e.Source]
			ps.Outputs = append(ps.Outputs, Port{FlowID: tgtNode.ID, FlowName: tgtNode.Name, Direction: "output"})
			out[e.Source] = ps
		}
	}

	for id, ps := range out {
		sort.Slice(ps.Inputs, func(i, j int) bool { return ps.Inputs[i].FlowName < ps.Inputs[j].FlowName })
		sort.Slice(ps.Outputs, func(i, j int) bool { return ps.Outputs[i].FlowName < ps.Outputs[j].FlowName })
		out[id] = ps
	}

	return out
}
