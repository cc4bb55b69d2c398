package optimizer

import (
	"math"

	"github.com/archlens/sysmodel/apoc/scoring"
)

// Front is a bounded set of non-dominated variants (§4.8), default
// capacity 5. Insertion evicts the least-diverse member once capacity
// is exceeded.
type Front struct {
	Capacity int
	variants []*Variant
}

// NewFront returns an empty Front with the given capacity; capacity <=
// 0 falls back to the spec's default of 5.
func NewFront(capacity int) *Front {
	if capacity <= 0 {
		capacity = 5
	}
	return &Front{Capacity: capacity}
}

// Variants returns the front's current members.
func (f *Front) Variants() []*Variant {
	return append([]*Variant(nil), f.variants...)
}

// Dominates reports whether a dominates b: no worse on every
// component and strictly better on at least one.
func Dominates(a, b ScoreComponents) bool {
	av, bv := a.Vector(), b.Vector()
	betterSomewhere := false
	for i := range av {
		if av[i] < bv[i] {
			return false
		}
		if av[i] > bv[i] {
			betterSomewhere = true
		}
	}
	return betterSomewhere
}

// Add inserts candidate into the front if it is not dominated by any
// existing member. Existing members candidate dominates are removed.
// If the front is still over capacity after insertion, the member with
// the smallest crowding distance is evicted. Returns whether candidate
// was admitted.
func (f *Front) Add(candidate *Variant) bool {
	for _, v := range f.variants {
		if Dominates(v.Components, candidate.Components) {
			return false
		}
	}

	kept := f.variants[:0:0]
	for _, v := range f.variants {
		if !Dominates(candidate.Components, v.Components) {
			kept = append(kept, v)
		}
	}
	kept = append(kept, candidate)
	f.variants = kept

	for len(f.variants) > f.Capacity {
		f.evictLeastCrowded()
	}
	return true
}

func (f *Front) evictLeastCrowded() {
	distances := crowdingDistances(f.variants)
	worst := 0
	for i, d := range distances {
		if d < distances[worst] {
			worst = i
		}
	}
	f.variants = append(f.variants[:worst], f.variants[worst+1:]...)
}

// crowdingDistances computes, per variant, the sum over components of
// the range-normalized gap to its nearest neighbor on that component;
// boundary points (min or max on a component) get infinity so the
// front's extremes are never evicted ahead of interior points (§4.8).
// Components are range-normalized with apoc/scoring.Normalize before
// the per-axis gap is measured, the same min-max rescaling idiom
// apoc/scoring already provides for raw score vectors.
func crowdingDistances(variants []*Variant) []float64 {
	n := len(variants)
	distances := make([]float64, n)
	if n == 0 {
		return distances
	}
	if n <= 2 {
		for i := range distances {
			distances[i] = math.Inf(1)
		}
		return distances
	}

	numComponents := len(variants[0].Components.Vector())
	for axis := 0; axis < numComponents; axis++ {
		raw := make([]float64, n)
		for i, v := range variants {
			raw[i] = v.Components.Vector()[axis]
		}
		normalized := scoring.Normalize(raw)

		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sortByValue(order, normalized)

		distances[order[0]] = math.Inf(1)
		distances[order[n-1]] = math.Inf(1)
		for rank := 1; rank < n-1; rank++ {
			i := order[rank]
			if distances[i] == math.Inf(1) {
				continue
			}
			gap := math.Min(normalized[i]-normalized[order[rank-1]], normalized[order[rank+1]]-normalized[i])
			distances[i] += gap
		}
	}
	return distances
}

func sortByValue(order []int, values []float64) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && values[order[j-1]] > values[order[j]]; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
}
