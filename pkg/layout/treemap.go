package layout

import (
	"sort"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// TreemapParams configures the squarified treemap engine.
type TreemapParams struct {
	NestingKinds []ontology.EdgeKind
	Width        float64
	Height       float64
	// TargetAspectRatio is the packing target from §4.7; the golden
	// ratio by default.
	TargetAspectRatio float64
}

func (p TreemapParams) withDefaults() TreemapParams {
	if p.Width <= 0 {
		p.Width = 1000
	}
	if p.Height <= 0 {
		p.Height = 1000
	}
	if p.TargetAspectRatio <= 0 {
		p.TargetAspectRatio = 1.618
	}
	return p
}

type rect struct{ x, y, w, h float64 }

type treemapNode struct {
	id       string
	weight   float64
	children []*treemapNode
}

// Treemap packs every root of the nesting forest into Width x Height,
// then recurses into each container packing its children within the
// parent's allotted rect, using the squarified algorithm (Bruls et
// al.): children are sorted by weight descending and rows are grown
// greedily, closing a row once adding the next child would worsen the
// row's worst aspect ratio versus TargetAspectRatio (§4.7). A leaf's
// weight is 1; a container's weight is the sum of its children's
// weights, so containers are sized by descendant leaf count. Positions
// reports each node's rect center.
func Treemap(store *graph.Store, params TreemapParams, budget Budget) (Result, error) {
	p := params.withDefaults()
	ctx, cancel := budget.context()
	defer cancel()

	roots := store.Roots(p.NestingKinds)
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })

	forest := make([]*treemapNode, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, buildTreemapTree(store, r.ID, p.NestingKinds))
	}

	select {
	case <-ctx.Done():
		return partial(nil, "treemap"), ErrLayoutTimeout
	default:
	}

	positions := make(map[string]Position)
	rootRects := squarify(forest, rect{0, 0, p.Width, p.Height}, p.TargetAspectRatio)
	for _, n := range forest {
		layoutTreemapNode(n, rootRects[n.id], p, positions)
	}

	return Result{Positions: positions, Bounds: boundsOf(positions), Algorithm: "treemap"}, nil
}

func buildTreemapTree(store *graph.Store, id string, nestingKinds []ontology.EdgeKind) *treemapNode {
	children := store.Children(id, nestingKinds)
	n := &treemapNode{id: id}
	if len(children) == 0 {
		n.weight = 1
		return n
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	for _, c := range children {
		child := buildTreemapTree(store, c.ID, nestingKinds)
		n.children = append(n.children, child)
		n.weight += child.weight
	}
	return n
}

func layoutTreemapNode(n *treemapNode, r rect, p TreemapParams, out map[string]Position) {
	out[n.id] = Position{X: r.x + r.w/2, Y: r.y + r.h/2}
	if len(n.children) == 0 {
		return
	}
	childRects := squarify(n.children, r, p.TargetAspectRatio)
	for _, c := range n.children {
		layoutTreemapNode(c, childRects[c.id], p, out)
	}
}

// squarify lays out nodes within container, sorted by weight
// descending, growing rows greedily and flushing a row once adding
// the next item would worsen its worst aspect ratio against target.
// Returns each node's assigned rect keyed by ID.
func squarify(nodes []*treemapNode, container rect, target float64) map[string]rect {
	out := make(map[string]rect, len(nodes))
	total := 0.0
	for _, n := range nodes {
		total += n.weight
	}
	if total <= 0 {
		return out
	}

	ordered := append([]*treemapNode(nil), nodes...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].weight > ordered[j].weight })

	remaining := container
	var row []*treemapNode
	idx := 0
	for idx < len(ordered) {
		candidate := append(append([]*treemapNode(nil), row...), ordered[idx])
		if len(row) == 0 || worstAspect(candidate, total, remaining, target) <= worstAspect(row, total, remaining, target) {
			row = candidate
			idx++
			continue
		}
		remaining = layoutRow(row, total, remaining, out)
		row = nil
	}
	if len(row) > 0 {
		layoutRow(row, total, remaining, out)
	}
	return out
}

// worstAspect returns the worst (largest) deviation from target among
// the width/height ratios the rects in row would produce if laid out
// now against container; a ratio equal to target deviates by 1.
func worstAspect(row []*treemapNode, total float64, container rect, target float64) float64 {
	if len(row) == 0 {
		return 0
	}
	rowWeight := 0.0
	for _, n := range row {
		rowWeight += n.weight
	}
	area := container.w * container.h
	horizontal := container.w >= container.h
	var sideLength float64
	if horizontal {
		sideLength = rowWeight / total * area / container.h
	} else {
		sideLength = rowWeight / total * area / container.w
	}

	worst := 0.0
	for _, n := range row {
		share := n.weight / rowWeight
		itemArea := rowWeight / total * area * share
		var w, h float64
		if horizontal {
			h = sideLength
			w = itemArea / h
		} else {
			w = sideLength
			h = itemArea / w
		}
		ratio := w / h
		deviation := ratio / target
		if deviation < 1 {
			deviation = 1 / deviation
		}
		if deviation > worst {
			worst = deviation
		}
	}
	return worst
}

// layoutRow places one completed row's rects along container's
// shorter side and returns the container remainder.
func layoutRow(row []*treemapNode, total float64, container rect, out map[string]rect) rect {
	rowWeight := 0.0
	for _, n := range row {
		rowWeight += n.weight
	}
	area := container.w * container.h
	horizontal := container.w >= container.h

	if horizontal {
		sideLength := rowWeight / total * area / container.h
		cursor := container.y
		for _, n := range row {
			share := n.weight / rowWeight
			h := container.h * share
			out[n.id] = rect{container.x, cursor, sideLength, h}
			cursor += h
		}
		return rect{container.x + sideLength, container.y, container.w - sideLength, container.h}
	}

	sideLength := rowWeight / total * area / container.w
	cursor := container.x
	for _, n := range row {
		share := n.weight / rowWeight
		w := container.w * share
		out[n.id] = rect{cursor, container.y, w, sideLength}
		cursor += w
	}
	return rect{container.x, container.y + sideLength, container.w, container.h - sideLength}
}
