package optimizer

import (
	"sort"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
	"github.com/archlens/sysmodel/pkg/semid"
)

// OperatorFunc takes a variant and the violation that suggested it,
// and returns a new variant with the move applied, or ok=false if the
// move does not apply to this violation's affected nodes.
type OperatorFunc func(v *Variant, violation Violation) (*Variant, bool)

// Violation mirrors rules.Violation's fields the operators need,
// avoiding a rules import cycle risk and letting search.go build one
// from either a rules.Violation or a synthetic one in tests.
type Violation struct {
	RuleID      string
	AffectedIDs []string
}

// operatorRegistry maps an operator name to its implementation.
var operatorRegistry = map[string]OperatorFunc{
	"split_mod":        SplitMod,
	"merge_mods":       MergeMods,
	"relocate_func":    RelocateFunc,
	"extract_volatile": ExtractVolatile,
	"add_allocate":     AddAllocate,
	"add_verify":       AddVerify,
}

// defaultOperatorByRule falls back to an operator when a rule has no
// SuggestedOperator of its own (§4.8 step 2).
var defaultOperatorByRule = map[string]string{
	"millers_law_mod":         "split_mod",
	"func_allocated_once":     "add_allocate",
	"volatile_func_isolation": "extract_volatile",
	"req_verified":            "add_verify",
}

// OperatorFor resolves the operator a violation should try: its own
// SuggestedOperator if set, else the default-operator table keyed by
// rule ID, else none.
func OperatorFor(ruleID, suggestedOperator string) (OperatorFunc, bool) {
	name := suggestedOperator
	if name == "" {
		name = defaultOperatorByRule[ruleID]
	}
	if name == "" {
		return nil, false
	}
	fn, ok := operatorRegistry[name]
	return fn, ok
}

// SplitMod splits the oversized MOD named in violation.AffectedIDs
// into two MODs: its allocated FUNCs are sorted by ID, the first
// len/2 stay, and the rest are reallocated to a new MOD. io
// connectivity between the FUNCs is not considered.
func SplitMod(v *Variant, violation Violation) (*Variant, bool) {
	if len(violation.AffectedIDs) == 0 {
		return nil, false
	}
	modID := violation.AffectedIDs[0]
	out := &Variant{Store: v.Store.Clone()}

	funcs := allocatedFuncs(out.Store, modID)
	if len(funcs) < 2 {
		return nil, false
	}
	sort.Strings(funcs)

	half := len(funcs) / 2
	firstHalf := funcs[:half]
	secondHalf := funcs[half:]

	newModID := modID + "_split"
	modNode, err := out.Store.GetNode(modID)
	if err != nil {
		return nil, false
	}
	if err := out.Store.AddNode(&graph.Node{
		ID: newModID, Kind: ontology.KindModule, Name: modNode.Name + "Split",
		Description: "split from " + modID, WorkspaceID: modNode.WorkspaceID, SystemID: modNode.SystemID,
	}); err != nil {
		return nil, false
	}

	for _, f := range secondHalf {
		out.Store.RemoveEdge(f, ontology.EdgeAllocate, modID)
		if err := out.Store.AddEdge(&graph.Edge{Kind: ontology.EdgeAllocate, Source: f, Target: newModID}); err != nil {
			return nil, false
		}
	}
	_ = firstHalf

	return out, true
}

// MergeMods combines the two undersized MODs named in
// violation.AffectedIDs, reallocating the second's FUNCs to the first
// and removing the second. The combined FUNC count is not checked
// against the MOD size range.
func MergeMods(v *Variant, violation Violation) (*Variant, bool) {
	if len(violation.AffectedIDs) < 2 {
		return nil, false
	}
	keepID, dropID := violation.AffectedIDs[0], violation.AffectedIDs[1]
	out := &Variant{Store: v.Store.Clone()}

	dropFuncs := allocatedFuncs(out.Store, dropID)
	for _, f := range dropFuncs {
		out.Store.RemoveEdge(f, ontology.EdgeAllocate, dropID)
		if err := out.Store.AddEdge(&graph.Edge{Kind: ontology.EdgeAllocate, Source: f, Target: keepID}); err != nil {
			return nil, false
		}
	}
	out.Store.RemoveNode(dropID)
	return out, true
}

// RelocateFunc moves the FUNC named in violation.AffectedIDs[0] from
// its current MOD to the MOD of another FUNC that shares one of its
// io-connected FLOWs. The first such MOD found is used; which one that
// is when several qualify is not defined.
func RelocateFunc(v *Variant, violation Violation) (*Variant, bool) {
	if len(violation.AffectedIDs) == 0 {
		return nil, false
	}
	funcID := violation.AffectedIDs[0]
	out := &Variant{Store: v.Store.Clone()}

	funcMod := funcModMap(out.Store)
	currentMod, allocated := funcMod[funcID]
	if !allocated {
		return nil, false
	}

	targetMod := ""
	for _, e := range out.Store.AllEdges() {
		if e.Kind != ontology.EdgeIO {
			continue
		}
		flowID, fID := ioFlowAndFunc(out.Store, e)
		if flowID == "" || fID != funcID {
			continue
		}
		for _, other := range out.Store.IncidentEdges(flowID) {
			otherFlow, otherFunc := ioFlowAndFunc(out.Store, other)
			if otherFlow == "" || otherFunc == funcID {
				continue
			}
			if m, ok := funcMod[otherFunc]; ok && m != currentMod {
				targetMod = m
				break
			}
		}
		if targetMod != "" {
			break
		}
	}
	if targetMod == "" {
		return nil, false
	}

	out.Store.RemoveEdge(funcID, ontology.EdgeAllocate, currentMod)
	if err := out.Store.AddEdge(&graph.Edge{Kind: ontology.EdgeAllocate, Source: funcID, Target: targetMod}); err != nil {
		return nil, false
	}
	return out, true
}

// ExtractVolatile moves the high-volatility FUNC named in
// violation.AffectedIDs[0] into a newly created, dedicated MOD.
func ExtractVolatile(v *Variant, violation Violation) (*Variant, bool) {
	if len(violation.AffectedIDs) == 0 {
		return nil, false
	}
	funcID := violation.AffectedIDs[0]
	out := &Variant{Store: v.Store.Clone()}

	funcNode, err := out.Store.GetNode(funcID)
	if err != nil {
		return nil, false
	}

	newModID, err := semid.Generate(out.Store.Registry(), funcNode.Name+"Isolated", ontology.KindModule, existingIDs(out.Store))
	if err != nil {
		return nil, false
	}
	if err := out.Store.AddNode(&graph.Node{
		ID: newModID, Kind: ontology.KindModule, Name: funcNode.Name + "Isolated",
		Description: "dedicated module for volatile " + funcID,
		WorkspaceID: funcNode.WorkspaceID, SystemID: funcNode.SystemID,
	}); err != nil {
		return nil, false
	}

	if funcMod, ok := funcModMap(out.Store)[funcID]; ok {
		out.Store.RemoveEdge(funcID, ontology.EdgeAllocate, funcMod)
	}
	if err := out.Store.AddEdge(&graph.Edge{Kind: ontology.EdgeAllocate, Source: funcID, Target: newModID}); err != nil {
		return nil, false
	}
	return out, true
}

// AddAllocate allocates the unallocated FUNC named in
// violation.AffectedIDs[0] to whichever existing MOD has the fewest
// FUNCs, the simplest best-fit policy absent any other signal.
func AddAllocate(v *Variant, violation Violation) (*Variant, bool) {
	if len(violation.AffectedIDs) == 0 {
		return nil, false
	}
	funcID := violation.AffectedIDs[0]
	out := &Variant{Store: v.Store.Clone()}

	mods := out.Store.NodesByKind(ontology.KindModule)
	if len(mods) == 0 {
		return nil, false
	}
	counts := funcsPerMod(out.Store)
	best := mods[0].ID
	for _, m := range mods[1:] {
		if counts[m.ID] < counts[best] {
			best = m.ID
		}
	}

	if err := out.Store.AddEdge(&graph.Edge{Kind: ontology.EdgeAllocate, Source: funcID, Target: best}); err != nil {
		return nil, false
	}
	return out, true
}

// AddVerify creates a TEST node verifying the uncovered REQ named in
// violation.AffectedIDs[0].
func AddVerify(v *Variant, violation Violation) (*Variant, bool) {
	if len(violation.AffectedIDs) == 0 {
		return nil, false
	}
	reqID := violation.AffectedIDs[0]
	out := &Variant{Store: v.Store.Clone()}

	reqNode, err := out.Store.GetNode(reqID)
	if err != nil {
		return nil, false
	}

	testID, err := semid.Generate(out.Store.Registry(), "Verify"+reqNode.Name, ontology.KindTest, existingIDs(out.Store))
	if err != nil {
		return nil, false
	}
	if err := out.Store.AddNode(&graph.Node{
		ID: testID, Kind: ontology.KindTest, Name: "Verify" + reqNode.Name,
		Description: "covers " + reqID, WorkspaceID: reqNode.WorkspaceID, SystemID: reqNode.SystemID,
	}); err != nil {
		return nil, false
	}
	if err := out.Store.AddEdge(&graph.Edge{Kind: ontology.EdgeVerify, Source: testID, Target: reqID}); err != nil {
		return nil, false
	}
	return out, true
}

func allocatedFuncs(store *graph.Store, modID string) []string {
	var out []string
	for _, e := range store.AllEdges() {
		if e.Kind == ontology.EdgeAllocate && e.Target == modID {
			out = append(out, e.Source)
		}
	}
	return out
}

// existingIDs builds the collision set semid.Generate needs from
// store's current nodes.
func existingIDs(store *graph.Store) map[string]struct{} {
	nodes := store.AllNodes()
	out := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		out[n.ID] = struct{}{}
	}
	return out
}
