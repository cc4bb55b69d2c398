package optimizer

import (
	"github.com/archlens/sysmodel/apoc/scoring"
	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
	"github.com/archlens/sysmodel/pkg/rules"
)

// ComputeScores evaluates all six score components against store
// under cfg (§4.8).
func ComputeScores(store *graph.Store, cfg ScoreConfig) ScoreComponents {
	return ScoreComponents{
		Conformance:  conformanceScore(store, cfg),
		Cohesion:     cohesionScore(store, cfg),
		Coupling:     couplingScore(store, cfg),
		Volatility:   volatilityScore(store, cfg),
		Traceability: traceabilityScore(store, cfg),
		Connectivity: connectivityScore(store),
	}
}

// conformanceScore implements `1 - min(1, Σ (hard? hardW : softW) *
// perViolationFactor * count)`, counts taken from the full rule
// catalog's verdict against store.
func conformanceScore(store *graph.Store, cfg ScoreConfig) float64 {
	result := rules.Evaluate(store, ontology.PhaseAll)
	sum := float64(result.ErrorCount)*cfg.HardViolationWeight*cfg.PerViolationFactor +
		float64(result.WarningCount)*cfg.SoftViolationWeight*cfg.PerViolationFactor
	if sum > 1 {
		sum = 1
	}
	return 1 - sum
}

// cohesionScore penalizes each MOD whose allocated FUNC count falls
// outside [MinFuncPerMod, MaxFuncPerMod], growing the penalty linearly
// with distance from the nearest bound via the same clamped linear
// ramp apoc/scoring.Pareto already provides, with an oversize MOD
// penalized 1.5x an equally-distant undersize one (§4.8).
func cohesionScore(store *graph.Store, cfg ScoreConfig) float64 {
	counts := funcsPerMod(store)
	if len(counts) == 0 {
		return 1
	}
	total := 0.0
	for _, n := range counts {
		switch {
		case n < cfg.MinFuncPerMod:
			under := float64(cfg.MinFuncPerMod - n)
			total += scoring.Pareto(0, under, float64(cfg.MinFuncPerMod), 1)
		case n > cfg.MaxFuncPerMod:
			over := float64(n - cfg.MaxFuncPerMod)
			total += scoring.Pareto(0, over, float64(cfg.MinFuncPerMod), 1.5)
		}
	}
	avg := total / float64(len(counts))
	if avg > 1 {
		avg = 1
	}
	return 1 - avg
}

// couplingScore penalizes each MOD whose io fan-out (io edges whose
// FLOW also touches a FUNC allocated to a different MOD) exceeds
// MaxFanOut, growing linearly with the excess.
func couplingScore(store *graph.Store, cfg ScoreConfig) float64 {
	funcMod := funcModMap(store)
	if len(funcMod) == 0 {
		return 1
	}

	flowFuncs := make(map[string]map[string]bool)
	for _, e := range store.AllEdges() {
		if e.Kind != ontology.EdgeIO {
			continue
		}
		flowID, funcID := ioFlowAndFunc(store, e)
		if flowID == "" {
			continue
		}
		if flowFuncs[flowID] == nil {
			flowFuncs[flowID] = make(map[string]bool)
		}
		flowFuncs[flowID][funcID] = true
	}

	fanOut := make(map[string]int)
	for _, funcs := range flowFuncs {
		mods := make(map[string]bool)
		for f := range funcs {
			if m, ok := funcMod[f]; ok {
				mods[m] = true
			}
		}
		if len(mods) < 2 {
			continue
		}
		for m := range mods {
			fanOut[m] += len(mods) - 1
		}
	}

	modsSeen := make(map[string]bool)
	for _, m := range funcMod {
		modsSeen[m] = true
	}
	if len(modsSeen) == 0 {
		return 1
	}

	total := 0.0
	for m := range modsSeen {
		excess := fanOut[m] - cfg.MaxFanOut
		if excess > 0 {
			total += scoring.Pareto(0, float64(excess), float64(cfg.MaxFanOut), 1)
		}
	}
	avg := total / float64(len(modsSeen))
	if avg > 1 {
		avg = 1
	}
	return 1 - avg
}

// volatilityScore penalizes each MOD that mixes a high-volatility FUNC
// (Attributes.Volatility >= VolatilityHighThreshold) with a low one.
func volatilityScore(store *graph.Store, cfg ScoreConfig) float64 {
	modFuncs := make(map[string][]*graph.Node)
	for _, e := range store.AllEdges() {
		if e.Kind != ontology.EdgeAllocate {
			continue
		}
		n, err := store.GetNode(e.Source)
		if err != nil {
			continue
		}
		modFuncs[e.Target] = append(modFuncs[e.Target], n)
	}
	if len(modFuncs) == 0 {
		return 1
	}

	mixed := 0
	for _, funcs := range modFuncs {
		hasHigh, hasLow := false, false
		for _, f := range funcs {
			v := 0.0
			if f.Attributes.Volatility != nil {
				v = *f.Attributes.Volatility
			}
			if v >= cfg.VolatilityHighThreshold {
				hasHigh = true
			} else {
				hasLow = true
			}
		}
		if hasHigh && hasLow {
			mixed++
		}
	}
	return 1 - float64(mixed)/float64(len(modFuncs))
}

// traceabilityScore is the weighted mean of REQ coverage (fraction of
// REQs satisfied by some node) and test coverage (fraction of REQs
// verified by some TEST).
func traceabilityScore(store *graph.Store, cfg ScoreConfig) float64 {
	reqs := store.NodesByKind(ontology.KindRequirement)
	if len(reqs) == 0 {
		return 1
	}

	satisfied := make(map[string]bool)
	verified := make(map[string]bool)
	for _, e := range store.AllEdges() {
		switch e.Kind {
		case ontology.EdgeSatisfy:
			satisfied[e.Target] = true
		case ontology.EdgeVerify:
			verified[e.Target] = true
		}
	}

	satisfiedCount, verifiedCount := 0, 0
	for _, r := range reqs {
		if satisfied[r.ID] {
			satisfiedCount++
		}
		if verified[r.ID] {
			verifiedCount++
		}
	}

	reqCoverage := float64(satisfiedCount) / float64(len(reqs))
	testCoverage := float64(verifiedCount) / float64(len(reqs))
	return reqCoverage*cfg.TraceabilityReqWeight + testCoverage*(1-cfg.TraceabilityReqWeight)
}

// connectivityScore is the fraction of FUNCs with at least one io edge.
func connectivityScore(store *graph.Store) float64 {
	funcs := store.NodesByKind(ontology.KindFunc)
	if len(funcs) == 0 {
		return 1
	}
	connected := 0
	for _, f := range funcs {
		if len(store.OutgoingEdges(f.ID, ontology.EdgeIO)) > 0 || len(store.IncomingEdges(f.ID, ontology.EdgeIO)) > 0 {
			connected++
		}
	}
	return float64(connected) / float64(len(funcs))
}

// funcsPerMod returns, for every MOD with at least one allocated FUNC,
// the count of FUNCs allocated to it.
func funcsPerMod(store *graph.Store) map[string]int {
	out := make(map[string]int)
	for _, e := range store.AllEdges() {
		if e.Kind == ontology.EdgeAllocate {
			out[e.Target]++
		}
	}
	return out
}

// funcModMap returns, for every allocated FUNC, the ID of the MOD it
// is allocated to.
func funcModMap(store *graph.Store) map[string]string {
	out := make(map[string]string)
	for _, e := range store.AllEdges() {
		if e.Kind == ontology.EdgeAllocate {
			out[e.Source] = e.Target
		}
	}
	return out
}

// ioFlowAndFunc normalizes an io edge into its (FLOW, FUNC) pair
// regardless of which endpoint is the FLOW.
func ioFlowAndFunc(store *graph.Store, e *graph.Edge) (flowID, funcID string) {
	src, err := store.GetNode(e.Source)
	if err != nil {
		return "", ""
	}
	tgt, err := store.GetNode(e.Target)
	if err != nil {
		return "", ""
	}
	if src.Kind == ontology.KindFlow && tgt.Kind == ontology.KindFunc {
		return src.ID, tgt.ID
	}
	if tgt.Kind == ontology.KindFlow && src.Kind == ontology.KindFunc {
		return tgt.ID, src.ID
	}
	return "", ""
}
