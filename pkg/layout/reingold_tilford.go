package layout

import (
	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// Orientation is the direction a Reingold-Tilford tree grows in.
type Orientation string

const (
	TopDown   Orientation = "top-down"
	LeftRight Orientation = "left-right"
	BottomUp  Orientation = "bottom-up"
	RightLeft Orientation = "right-left"
)

// TreeParams configures the Reingold-Tilford engine.
type TreeParams struct {
	NestingKinds []ontology.EdgeKind
	Orientation  Orientation
	SiblingGap   float64
	LevelGap     float64
	ForestGap    float64
}

func (p TreeParams) withDefaults() TreeParams {
	if p.Orientation == "" {
		p.Orientation = TopDown
	}
	if p.SiblingGap <= 0 {
		p.SiblingGap = 40
	}
	if p.LevelGap <= 0 {
		p.LevelGap = 80
	}
	if p.ForestGap <= 0 {
		p.ForestGap = 80
	}
	return p
}

type treeNode struct {
	id       string
	depth    int
	children []*treeNode
	x        float64 // provisional position along the sibling axis
}

// ReingoldTilford places a rooted forest of compose-nesting edges using
// the classic two-pass algorithm: a postorder pass centers each parent
// over the mean of its children's provisional positions, then a
// preorder pass converts (sibling-axis, depth) pairs into the
// orientation's actual (x, y) coordinates. Forests are placed side by
// side separated by ForestGap (§4.7).
func ReingoldTilford(store *graph.Store, params TreeParams, budget Budget) (Result, error) {
	p := params.withDefaults()
	ctx, cancel := budget.context()
	defer cancel()

	roots := store.Roots(p.NestingKinds)
	forest := make([]*treeNode, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, buildTree(store, r.ID, 0, p.NestingKinds))
	}

	select {
	case <-ctx.Done():
		return partial(nil, "reingold-tilford"), ErrLayoutTimeout
	default:
	}

	cursor := 0.0
	for _, root := range forest {
		assignProvisional(root, &cursor, p.SiblingGap)
		cursor += p.ForestGap
	}

	select {
	case <-ctx.Done():
		return partial(nil, "reingold-tilford"), ErrLayoutTimeout
	default:
	}

	positions := make(map[string]Position)
	for _, root := range forest {
		collectPositions(root, p, positions)
	}

	return Result{Positions: positions, Bounds: boundsOf(positions), Algorithm: "reingold-tilford"}, nil
}

func buildTree(store *graph.Store, id string, depth int, nestingKinds []ontology.EdgeKind) *treeNode {
	n := &treeNode{id: id, depth: depth}
	for _, c := range store.Children(id, nestingKinds) {
		n.children = append(n.children, buildTree(store, c.ID, depth+1, nestingKinds))
	}
	return n
}

// assignProvisional is the postorder pass: leaves consume the cursor
// directly, one SiblingGap apart; a parent is centered over the mean
// of its children's provisional x.
func assignProvisional(n *treeNode, cursor *float64, siblingGap float64) {
	if len(n.children) == 0 {
		n.x = *cursor
		*cursor += siblingGap
		return
	}
	for _, c := range n.children {
		assignProvisional(c, cursor, siblingGap)
	}
	sum := 0.0
	for _, c := range n.children {
		sum += c.x
	}
	n.x = sum / float64(len(n.children))
}

// collectPositions is the preorder pass converting (x, depth) into
// actual coordinates per orientation.
func collectPositions(n *treeNode, p TreeParams, out map[string]Position) {
	sibling := n.x
	level := float64(n.depth) * p.LevelGap
	switch p.Orientation {
	case LeftRight:
		out[n.id] = Position{X: level, Y: sibling}
	case BottomUp:
		out[n.id] = Position{X: sibling, Y: -level}
	case RightLeft:
		out[n.id] = Position{X: -level, Y: sibling}
	default: // TopDown
		out[n.id] = Position{X: sibling, Y: level}
	}
	for _, c := range n.children {
		collectPositions(c, p, out)
	}
}

func partial(positions map[string]Position, algorithm string) Result {
	if positions == nil {
		positions = map[string]Position{}
	}
	return Result{Positions: positions, Bounds: boundsOf(positions), Algorithm: algorithm}
}
