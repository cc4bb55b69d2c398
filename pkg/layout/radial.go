package layout

import (
	"math"
	"sort"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// RadialParams configures the radial engine.
type RadialParams struct {
	// CenterID pins the center node; empty picks the first USE_CASE
	// node in store by ID, the spec's default (§4.7).
	CenterID string
	RingGap  float64
}

func (p RadialParams) withDefaults() RadialParams {
	if p.RingGap <= 0 {
		p.RingGap = 100
	}
	return p
}

// Radial places store's nodes on concentric rings by undirected
// distance (any edge kind, either direction) from a center node —
// a use case by default. Each successive ring holds that ring's
// parents, actors, and requirements, spaced evenly around the circle;
// nodes never visited from the center (disconnected) are placed on
// one final overflow ring.
func Radial(store *graph.Store, params RadialParams, budget Budget) (Result, error) {
	p := params.withDefaults()
	ctx, cancel := budget.context()
	defer cancel()

	center := p.CenterID
	if center == "" {
		for _, n := range store.NodesByKind(ontology.KindUseCase) {
			if center == "" || n.ID < center {
				center = n.ID
			}
		}
	}
	if center == "" {
		return Result{Positions: map[string]Position{}, Algorithm: "radial"}, nil
	}

	dist := map[string]int{center: 0}
	queue := []string{center}
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return partial(radialPositions(dist, p), "radial"), ErrLayoutTimeout
		default:
		}
		cur := queue[0]
		queue = queue[1:]
		for _, e := range store.IncidentEdges(cur) {
			next := e.Target
			if next == cur {
				next = e.Source
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}

	overflowRing := 0
	for _, d := range dist {
		if d > overflowRing {
			overflowRing = d
		}
	}
	overflowRing++

	maxRing := 0
	for _, n := range store.AllNodes() {
		if _, ok := dist[n.ID]; !ok {
			dist[n.ID] = overflowRing
		}
		if dist[n.ID] > maxRing {
			maxRing = dist[n.ID]
		}
	}

	positions := radialPositions(dist, p)
	return Result{Positions: positions, Bounds: boundsOf(positions), Algorithm: "radial"}, nil
}

func radialPositions(dist map[string]int, p RadialParams) map[string]Position {
	byRing := make(map[int][]string)
	for id, d := range dist {
		byRing[d] = append(byRing[d], id)
	}
	positions := make(map[string]Position, len(dist))
	for ring, ids := range byRing {
		sort.Strings(ids)
		if ring == 0 {
			positions[ids[0]] = Position{X: 0, Y: 0}
			continue
		}
		radius := float64(ring) * p.RingGap
		n := len(ids)
		for i, id := range ids {
			theta := 2 * math.Pi * float64(i) / float64(n)
			positions[id] = Position{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
		}
	}
	return positions
}
