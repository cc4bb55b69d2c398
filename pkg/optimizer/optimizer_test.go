package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

func floatPtr(f float64) *float64 { return &f }

// buildOversizedMod builds a MOD allocated ten FUNCs, well past
// DefaultScoreConfig's MaxFuncPerMod of 9.
func buildOversizedMod(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "Checkout.MD.001", Kind: ontology.KindModule, Name: "Checkout"}))
	for i := 0; i < 10; i++ {
		id := string(rune('A'+i)) + ".FN.00" + string(rune('0'+i))
		require.NoError(t, s.AddNode(&graph.Node{ID: id, Kind: ontology.KindFunc, Name: string(rune('A' + i))}))
		require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeAllocate, Source: id, Target: "Checkout.MD.001"}))
	}
	return s
}

func TestCohesionScorePenalizesOversizedModule(t *testing.T) {
	s := buildOversizedMod(t)
	cfg := DefaultScoreConfig()
	score := cohesionScore(s, cfg)
	assert.Less(t, score, 1.0)
}

func TestConnectivityScoreCountsIOCoverage(t *testing.T) {
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "Order.FN.001", Kind: ontology.KindFunc, Name: "Order"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "Ship.FN.002", Kind: ontology.KindFunc, Name: "Ship"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "In.FL.001", Kind: ontology.KindFlow, Name: "In"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeIO, Source: "In.FL.001", Target: "Order.FN.001"}))

	score := connectivityScore(s)
	assert.InDelta(t, 0.5, score, 1e-9, "only Order has an io edge, Ship has none")
}

func TestVolatilityScorePenalizesMixedModule(t *testing.T) {
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "Checkout.MD.001", Kind: ontology.KindModule, Name: "Checkout"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "Stable.FN.001", Kind: ontology.KindFunc, Name: "Stable",
		Attributes: graph.Attributes{Volatility: floatPtr(0.1)}}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "Volatile.FN.002", Kind: ontology.KindFunc, Name: "Volatile",
		Attributes: graph.Attributes{Volatility: floatPtr(0.9)}}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeAllocate, Source: "Stable.FN.001", Target: "Checkout.MD.001"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeAllocate, Source: "Volatile.FN.002", Target: "Checkout.MD.001"}))

	cfg := DefaultScoreConfig()
	score := volatilityScore(s, cfg)
	assert.Equal(t, 0.0, score, "one mixed module out of one scores zero")
}

func TestTraceabilityScoreWeightsSatisfyAndVerify(t *testing.T) {
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "Req.RQ.001", Kind: ontology.KindRequirement, Name: "Req"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "Order.FN.001", Kind: ontology.KindFunc, Name: "Order"}))
	require.NoError(t, s.AddEdge(&graph.Edge{Kind: ontology.EdgeSatisfy, Source: "Order.FN.001", Target: "Req.RQ.001"}))

	cfg := DefaultScoreConfig()
	score := traceabilityScore(s, cfg)
	assert.InDelta(t, 0.5, score, 1e-9, "satisfied but unverified, weighted mean lands at the satisfy weight")
}

func TestDominatesRequiresNoWorseAndOneStrictlyBetter(t *testing.T) {
	a := ScoreComponents{Conformance: 1, Cohesion: 1, Coupling: 1, Volatility: 1, Traceability: 1, Connectivity: 1}
	b := ScoreComponents{Conformance: 0.5, Cohesion: 1, Coupling: 1, Volatility: 1, Traceability: 1, Connectivity: 1}
	assert.True(t, Dominates(a, b))
	assert.False(t, Dominates(b, a))
	assert.False(t, Dominates(a, a), "equal vectors do not dominate each other")
}

func TestFrontAddRejectsDominatedCandidate(t *testing.T) {
	front := NewFront(5)
	strong := &Variant{Components: ScoreComponents{Conformance: 1, Cohesion: 1, Coupling: 1, Volatility: 1, Traceability: 1, Connectivity: 1}}
	weak := &Variant{Components: ScoreComponents{Conformance: 0.2, Cohesion: 0.2, Coupling: 0.2, Volatility: 0.2, Traceability: 0.2, Connectivity: 0.2}}

	assert.True(t, front.Add(strong))
	assert.False(t, front.Add(weak), "weak is dominated by strong on every axis")
	assert.Len(t, front.Variants(), 1)
}

func TestFrontAddRemovesMembersCandidateDominates(t *testing.T) {
	front := NewFront(5)
	weak := &Variant{Components: ScoreComponents{Conformance: 0.2, Cohesion: 0.2, Coupling: 0.2, Volatility: 0.2, Traceability: 0.2, Connectivity: 0.2}}
	strong := &Variant{Components: ScoreComponents{Conformance: 1, Cohesion: 1, Coupling: 1, Volatility: 1, Traceability: 1, Connectivity: 1}}

	assert.True(t, front.Add(weak))
	assert.True(t, front.Add(strong))
	assert.Len(t, front.Variants(), 1, "strong dominates weak, so weak is evicted on insert")
}

func TestFrontEvictsLeastCrowdedOverCapacity(t *testing.T) {
	front := NewFront(2)
	mkVariant := func(c float64) *Variant {
		return &Variant{Components: ScoreComponents{Conformance: c, Cohesion: 1 - c, Coupling: 0.5, Volatility: 0.5, Traceability: 0.5, Connectivity: 0.5}}
	}
	require.True(t, front.Add(mkVariant(0.1)))
	require.True(t, front.Add(mkVariant(0.9)))
	front.Add(mkVariant(0.5))
	assert.LessOrEqual(t, len(front.Variants()), 2)
}

func TestAddAllocateAssignsUnallocatedFunc(t *testing.T) {
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "Checkout.MD.001", Kind: ontology.KindModule, Name: "Checkout"}))
	require.NoError(t, s.AddNode(&graph.Node{ID: "Loose.FN.001", Kind: ontology.KindFunc, Name: "Loose"}))

	v := &Variant{Store: s}
	out, ok := AddAllocate(v, Violation{RuleID: "func_allocated_once", AffectedIDs: []string{"Loose.FN.001"}})
	require.True(t, ok)

	edges := out.Store.OutgoingEdges("Loose.FN.001", ontology.EdgeAllocate)
	require.Len(t, edges, 1)
	assert.Equal(t, "Checkout.MD.001", edges[0].Target)
}

func TestAddVerifyCreatesTestForUncoveredReq(t *testing.T) {
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "Req.RQ.001", Kind: ontology.KindRequirement, Name: "Req"}))

	v := &Variant{Store: s}
	out, ok := AddVerify(v, Violation{RuleID: "req_verified", AffectedIDs: []string{"Req.RQ.001"}})
	require.True(t, ok)

	tests := out.Store.NodesByKind(ontology.KindTest)
	require.Len(t, tests, 1)
	verifyEdges := out.Store.OutgoingEdges(tests[0].ID, ontology.EdgeVerify)
	require.Len(t, verifyEdges, 1)
	assert.Equal(t, "Req.RQ.001", verifyEdges[0].Target)
}

func TestSplitModDividesOversizedModule(t *testing.T) {
	s := buildOversizedMod(t)
	v := &Variant{Store: s}
	out, ok := SplitMod(v, Violation{RuleID: "millers_law_mod", AffectedIDs: []string{"Checkout.MD.001"}})
	require.True(t, ok)

	mods := out.Store.NodesByKind(ontology.KindModule)
	assert.Len(t, mods, 2, "split produces one new module alongside the original")
}

func TestOperatorForFallsBackToDefaultTable(t *testing.T) {
	fn, ok := OperatorFor("millers_law_mod", "")
	assert.True(t, ok)
	assert.NotNil(t, fn)
}

func TestOperatorForPrefersSuggestedOperator(t *testing.T) {
	fn, ok := OperatorFor("some_rule", "add_verify")
	assert.True(t, ok)
	assert.NotNil(t, fn)
}

func TestSearchStopsWhenNoOperatorApplies(t *testing.T) {
	s := graph.New(ontology.LoadDefault(), "ws1", "sys1")
	require.NoError(t, s.AddNode(&graph.Node{ID: "FoodApp.SY.001", Kind: ontology.KindSystem, Name: "FoodApp"}))

	params := DefaultSearchParams()
	params.MaxIterations = 5
	report := Search(s, params)
	assert.NotNil(t, report.Front)
	assert.GreaterOrEqual(t, report.Iterations, 0)
}

func TestSearchRespectsMaxIterations(t *testing.T) {
	s := buildOversizedMod(t)
	params := DefaultSearchParams()
	params.MaxIterations = 3
	report := Search(s, params)
	assert.LessOrEqual(t, report.Iterations, 3)
}

func TestHarnessRunReportsPassFail(t *testing.T) {
	h := NewHarness(ontology.LoadDefault())
	h.AddTestCase(TestCase{
		Name:      "empty-system",
		GraphText: "## NODES\n+ FoodApp.SY.001 | root system\n",
		Params:    DefaultSearchParams(),
	})

	result, err := h.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalTests)
}

func TestScalarRenormalizesAcrossWeights(t *testing.T) {
	c := ScoreComponents{Conformance: 1, Cohesion: 0, Coupling: 0, Volatility: 0, Traceability: 0, Connectivity: 0}
	w := ScoreWeights{Conformance: 2, Cohesion: 1, Coupling: 1, Volatility: 1, Traceability: 1, Connectivity: 1}
	assert.InDelta(t, 2.0/7.0, c.Scalar(w), 1e-9)
}
