package layout

import (
	"sort"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// SugiyamaParams configures the layered engine.
type SugiyamaParams struct {
	EdgeKinds        []ontology.EdgeKind
	LayerConstraints map[string]int // node ID -> pinned layer index
	LayerGap         float64
	NodeGap          float64
}

func (p SugiyamaParams) withDefaults() SugiyamaParams {
	if p.LayerGap <= 0 {
		p.LayerGap = 120
	}
	if p.NodeGap <= 0 {
		p.NodeGap = 60
	}
	return p
}

// Sugiyama assigns each node a layer by longest path from a source
// (a node with no incoming edge of the considered kinds), applies any
// pinned LayerConstraints on top, then runs a single barycenter pass
// per layer (ordering each layer by the mean position of its
// predecessors in the previous layer) to reduce edge crossings (§4.7).
// This is a single pass, not the iterative median heuristic: good
// enough for the node counts this engine targets, and deterministic.
func Sugiyama(store *graph.Store, params SugiyamaParams, budget Budget) (Result, error) {
	p := params.withDefaults()
	ctx, cancel := budget.context()
	defer cancel()

	nodes := store.AllNodes()
	preds := make(map[string][]string)
	succs := make(map[string][]string)
	for _, n := range nodes {
		preds[n.ID] = nil
		succs[n.ID] = nil
	}
	for _, e := range store.AllEdges() {
		if !containsEdgeKind(p.EdgeKinds, e.Kind) {
			continue
		}
		succs[e.Source] = append(succs[e.Source], e.Target)
		preds[e.Target] = append(preds[e.Target], e.Source)
	}

	layer := longestPathLayers(nodes, preds)
	for id, pin := range p.LayerConstraints {
		if _, ok := layer[id]; ok {
			layer[id] = pin
		}
	}

	select {
	case <-ctx.Done():
		return partial(nil, "sugiyama"), ErrLayoutTimeout
	default:
	}

	byLayer := make(map[int][]string)
	maxLayer := 0
	for _, n := range nodes {
		l := layer[n.ID]
		byLayer[l] = append(byLayer[l], n.ID)
		if l > maxLayer {
			maxLayer = l
		}
	}
	for l := range byLayer {
		sort.Strings(byLayer[l])
	}

	positions := make(map[string]Position, len(nodes))
	for l := 0; l <= maxLayer; l++ {
		ids := byLayer[l]
		if l > 0 {
			ids = barycenterOrder(ids, preds, positions)
		}
		for i, id := range ids {
			positions[id] = Position{X: float64(i) * p.NodeGap, Y: float64(l) * p.LayerGap}
		}
	}

	return Result{Positions: positions, Bounds: boundsOf(positions), Algorithm: "sugiyama"}, nil
}

func containsEdgeKind(kinds []ontology.EdgeKind, k ontology.EdgeKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// longestPathLayers assigns layer(n) = 1 + max(layer(p)) over every
// predecessor p, processed in Kahn order so every predecessor is
// resolved before its successors; a node with no predecessors lands
// on layer 0.
func longestPathLayers(nodes []*graph.Node, preds map[string][]string) map[string]int {
	inDegree := make(map[string]int, len(nodes))
	succs := make(map[string][]string, len(nodes))
	for id, ps := range preds {
		inDegree[id] = len(ps)
		for _, p := range ps {
			succs[p] = append(succs[p], id)
		}
	}

	layer := make(map[string]int, len(nodes))
	var queue []string
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	sort.Strings(ids)
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
			layer[id] = 0
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, succ := range succs[cur] {
			if layer[cur]+1 > layer[succ] {
				layer[succ] = layer[cur] + 1
			}
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}
	return layer
}

// barycenterOrder reorders one layer's nodes by the mean X of their
// already-placed predecessors; nodes with no placed predecessor keep
// their relative order at the end.
func barycenterOrder(ids []string, preds map[string][]string, placed map[string]Position) []string {
	type scored struct {
		id    string
		value float64
		has   bool
	}
	rows := make([]scored, len(ids))
	for i, id := range ids {
		sum, n := 0.0, 0
		for _, p := range preds[id] {
			if pos, ok := placed[p]; ok {
				sum += pos.X
				n++
			}
		}
		if n > 0 {
			rows[i] = scored{id: id, value: sum / float64(n), has: true}
		} else {
			rows[i] = scored{id: id, value: 0, has: false}
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].has != rows[j].has {
			return rows[i].has
		}
		return rows[i].value < rows[j].value
	})
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}
