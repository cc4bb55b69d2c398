package rules

import (
	"github.com/archlens/sysmodel/pkg/convert"
	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// --- Phase 1: requirements ---

func ruleUCSatisfiesReq(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.NodesByKind(ontology.KindUseCase) {
		if len(store.OutgoingEdges(n.ID, ontology.EdgeSatisfy)) == 0 {
			out = append(out, violationf(rule, []string{n.ID}, "use case %s has no satisfy edge to a requirement", n.ID))
		}
	}
	return out
}

// ruleNFRLinkedFromSys checks nodes explicitly flagged as
// non-functional (Attributes.Extra["requirementType"] == "nfr") have
// a direct compose edge from a SYS node. Requirements without that
// flag are out of scope for this rule (§9 open question: the spec
// does not define how NFRs are distinguished from functional
// requirements on the wire, so the flag is this engine's choice).
func ruleNFRLinkedFromSys(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.NodesByKind(ontology.KindRequirement) {
		if n.Attributes.Extra == nil || n.Attributes.Extra["requirementType"] != "nfr" {
			continue
		}
		linked := false
		for _, e := range store.IncomingEdges(n.ID, ontology.EdgeCompose) {
			src, err := store.GetNode(e.Source)
			if err == nil && src.Kind == ontology.KindSystem {
				linked = true
				break
			}
		}
		if !linked {
			out = append(out, violationf(rule, []string{n.ID}, "non-functional requirement %s is not linked SYS -> REQ", n.ID))
		}
	}
	return out
}

// --- Phase 2: logical ---

func topLevelOfKind(store *graph.Store, kind ontology.NodeKind) map[string][]*graph.Node {
	out := make(map[string][]*graph.Node)
	for _, sys := range store.NodesByKind(ontology.KindSystem) {
		out[sys.ID] = filterKind(store.Children(sys.ID, []ontology.EdgeKind{ontology.EdgeCompose}), kind)
	}
	return out
}

func filterKind(nodes []*graph.Node, kind ontology.NodeKind) []*graph.Node {
	var out []*graph.Node
	for _, n := range nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func millersLawRange(rule ontology.RuleDef) (min, max int) {
	min, max = 5, 9
	if v, ok := convert.ToFloat64(rule.Params["min"]); ok {
		min = int(v)
	}
	if v, ok := convert.ToFloat64(rule.Params["max"]); ok {
		max = int(v)
	}
	return min, max
}

func ruleMillersLawFunc(store *graph.Store, rule ontology.RuleDef) []Violation {
	min, max := millersLawRange(rule)
	var out []Violation
	for sysID, funcs := range topLevelOfKind(store, ontology.KindFunc) {
		if len(funcs) < min || len(funcs) > max {
			out = append(out, violationf(rule, []string{sysID}, "system %s has %d top-level FUNC nodes, want %d-%d", sysID, len(funcs), min, max))
		}
	}
	return out
}

func ruleFuncSatisfiesReq(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.NodesByKind(ontology.KindFunc) {
		if len(store.OutgoingEdges(n.ID, ontology.EdgeSatisfy)) == 0 {
			out = append(out, violationf(rule, []string{n.ID}, "func %s has no satisfy edge to a requirement", n.ID))
		}
	}
	return out
}

func ruleFuncHasIO(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.NodesByKind(ontology.KindFunc) {
		in := store.IncomingEdges(n.ID, ontology.EdgeIO)
		outEdges := store.OutgoingEdges(n.ID, ontology.EdgeIO)
		if len(in) == 0 || len(outEdges) == 0 {
			out = append(out, violationf(rule, []string{n.ID}, "func %s lacks an input flow, an output flow, or both", n.ID))
		}
	}
	return out
}

func ruleFlowHasIO(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.NodesByKind(ontology.KindFlow) {
		in := store.IncomingEdges(n.ID, ontology.EdgeIO)
		outEdges := store.OutgoingEdges(n.ID, ontology.EdgeIO)
		if len(in) == 0 || len(outEdges) == 0 {
			out = append(out, violationf(rule, []string{n.ID}, "flow %s lacks an io edge in, out, or both", n.ID))
		}
	}
	return out
}

func ruleFchainActorBoundary(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, chain := range store.NodesByKind(ontology.KindFuncChain) {
		members := subtreeMembers(store, chain.ID)
		hasIn, hasOut := false, false
		for id := range members {
			node, err := store.GetNode(id)
			if err != nil || node.Kind != ontology.KindActor {
				continue
			}
			for _, e := range store.OutgoingEdges(id, ontology.EdgeIO) {
				if _, ok := members[e.Target]; ok {
					hasIn = true
				}
			}
			for _, e := range store.IncomingEdges(id, ontology.EdgeIO) {
				if _, ok := members[e.Source]; ok {
					hasOut = true
				}
			}
		}
		if !hasIn || !hasOut {
			out = append(out, violationf(rule, []string{chain.ID}, "func chain %s lacks an ACTOR->FLOW path, a FLOW->ACTOR path, or both", chain.ID))
		}
	}
	return out
}

// subtreeMembers returns every node (including root) reachable from
// root by compose edges, BFS with an explicit frontier queue (§4.4
// traversal idiom) so a malformed cyclic document cannot recurse
// forever.
func subtreeMembers(store *graph.Store, root string) map[string]struct{} {
	members := map[string]struct{}{root: {}}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range store.Children(cur, []ontology.EdgeKind{ontology.EdgeCompose}) {
			if _, seen := members[child.ID]; seen {
				continue
			}
			members[child.ID] = struct{}{}
			queue = append(queue, child.ID)
		}
	}
	return members
}

func ruleWhiteboxIsolation(store *graph.Store, rule ontology.RuleDef) []Violation {
	parents := parentMap(store)
	var out []Violation
	for _, flow := range store.NodesByKind(ontology.KindFlow) {
		flowParent := parents[flow.ID]
		for _, e := range store.IncidentEdges(flow.ID) {
			if e.Kind != ontology.EdgeIO {
				continue
			}
			var funcID string
			if e.Source == flow.ID {
				funcID = e.Target
			} else {
				funcID = e.Source
			}
			node, err := store.GetNode(funcID)
			if err != nil || node.Kind != ontology.KindFunc {
				continue
			}
			funcParent := parents[funcID]
			if flowParent == funcParent {
				continue // sibling: same whitebox
			}
			if flowParent == parents[funcParent] {
				continue // parent-level flow
			}
			out = append(out, violationf(rule, []string{funcID, flow.ID},
				"io edge between %s and %s crosses a whitebox boundary", funcID, flow.ID))
		}
	}
	return out
}

func ruleVolatileFuncIsolation(store *graph.Store, rule ontology.RuleDef) []Violation {
	threshold := 0.7
	maxDependents := 2
	if v, ok := convert.ToFloat64(rule.Params["threshold"]); ok {
		threshold = v
	}
	if v, ok := convert.ToFloat64(rule.Params["maxDependents"]); ok {
		maxDependents = int(v)
	}

	var out []Violation
	for _, n := range store.NodesByKind(ontology.KindFunc) {
		if n.Attributes.Volatility == nil || *n.Attributes.Volatility < threshold {
			continue
		}
		deps := dependents(store, n.ID)
		if len(deps) > maxDependents {
			out = append(out, violationf(rule, append([]string{n.ID}, deps...),
				"volatile func %s (volatility %.2f) has %d dependents, want at most %d",
				n.ID, *n.Attributes.Volatility, len(deps), maxDependents))
		}
	}
	return out
}

// --- Phase 3: physical ---

func ruleMillersLawMod(store *graph.Store, rule ontology.RuleDef) []Violation {
	min, max := millersLawRange(rule)
	var out []Violation
	for sysID, mods := range topLevelOfKind(store, ontology.KindModule) {
		if len(mods) < min || len(mods) > max {
			out = append(out, violationf(rule, []string{sysID}, "system %s has %d top-level MOD nodes, want %d-%d", sysID, len(mods), min, max))
		}
	}
	return out
}

func ruleFuncAllocatedOnce(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.NodesByKind(ontology.KindFunc) {
		allocations := store.OutgoingEdges(n.ID, ontology.EdgeAllocate)
		if len(allocations) != 1 {
			out = append(out, violationf(rule, []string{n.ID}, "func %s is allocated to %d modules, want exactly 1", n.ID, len(allocations)))
		}
	}
	return out
}

// --- Phase 4: verification ---

func ruleReqVerified(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.NodesByKind(ontology.KindRequirement) {
		if len(store.IncomingEdges(n.ID, ontology.EdgeVerify)) == 0 {
			out = append(out, violationf(rule, []string{n.ID}, "requirement %s has no verify edge from a test", n.ID))
		}
	}
	return out
}
