// Package optimizer implements the multi-objective optimizer (§4.8):
// architecture variants scored on six components, a bounded
// Pareto front of non-dominated variants, a small set of graph-move
// operators keyed by the rule ID that suggests them, and a
// violation-guided local search loop that accepts only improving or
// non-dominated candidates.
package optimizer

import "github.com/archlens/sysmodel/pkg/graph"

// ScoreWeights weights the six score components before they are
// combined into one scalar. Weights are renormalized at scoring time
// so they need not sum to 1.
type ScoreWeights struct {
	Conformance  float64
	Cohesion     float64
	Coupling     float64
	Volatility   float64
	Traceability float64
	Connectivity float64
}

// DefaultWeights gives every component equal say.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{
		Conformance:  1,
		Cohesion:     1,
		Coupling:     1,
		Volatility:   1,
		Traceability: 1,
		Connectivity: 1,
	}
}

// ScoreConfig carries the tunable thresholds the six components read;
// all are declared centrally and retunable without a code change
// (§4.8's "all weights, thresholds, and factors are declared
// centrally").
type ScoreConfig struct {
	Weights ScoreWeights

	MinFuncPerMod int
	MaxFuncPerMod int
	MaxFanOut     int

	VolatilityHighThreshold float64

	// TraceabilityReqWeight weights REQ coverage against test coverage
	// in the traceability component's weighted mean; TEST coverage
	// gets 1-TraceabilityReqWeight.
	TraceabilityReqWeight float64

	// HardViolationWeight and SoftViolationWeight scale the
	// conformance component's per-violation factor by severity.
	HardViolationWeight float64
	SoftViolationWeight float64
	// PerViolationFactor is the conformance formula's
	// perViolationFactor (§4.8).
	PerViolationFactor float64
}

// DefaultScoreConfig mirrors the thresholds already declared in the
// ontology's rule catalog (millers_law_mod's min/max, the
// volatile_func_isolation threshold) so the optimizer's scoring and
// the rule evaluator's verdicts stay consistent by default.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		Weights:                 DefaultWeights(),
		MinFuncPerMod:           5,
		MaxFuncPerMod:           9,
		MaxFanOut:               5,
		VolatilityHighThreshold: 0.7,
		TraceabilityReqWeight:   0.5,
		HardViolationWeight:     1.0,
		SoftViolationWeight:     0.3,
		PerViolationFactor:      0.1,
	}
}

// ScoreComponents is the six-component score vector, every component
// in [0,1] where higher is better.
type ScoreComponents struct {
	Conformance  float64
	Cohesion     float64
	Coupling     float64
	Volatility   float64
	Traceability float64
	Connectivity float64
}

// Vector returns c as a plain slice in a fixed component order, for
// use with distance/normalization utilities that operate on []float64.
func (c ScoreComponents) Vector() []float64 {
	return []float64{c.Conformance, c.Cohesion, c.Coupling, c.Volatility, c.Traceability, c.Connectivity}
}

// Scalar combines components into one weighted mean using weights,
// renormalized so the result stays in [0,1] regardless of how weights
// are scaled.
func (c ScoreComponents) Scalar(w ScoreWeights) float64 {
	total := w.Conformance + w.Cohesion + w.Coupling + w.Volatility + w.Traceability + w.Connectivity
	if total <= 0 {
		return 0
	}
	sum := c.Conformance*w.Conformance +
		c.Cohesion*w.Cohesion +
		c.Coupling*w.Coupling +
		c.Volatility*w.Volatility +
		c.Traceability*w.Traceability +
		c.Connectivity*w.Connectivity
	return sum / total
}

// Variant is an independent architecture copy plus its derived score
// (§4.8). Variant never shares map state with the store it was cloned
// from or with any sibling variant.
type Variant struct {
	Store      *graph.Store
	Components ScoreComponents
	Scalar     float64
}

// NewVariant clones source and scores the clone under cfg. The
// original store is never touched.
func NewVariant(source *graph.Store, cfg ScoreConfig) *Variant {
	clone := source.Clone()
	components := ComputeScores(clone, cfg)
	return &Variant{Store: clone, Components: components, Scalar: components.Scalar(cfg.Weights)}
}

// Rescore recomputes v's components and scalar in place, after an
// operator has mutated v.Store.
func (v *Variant) Rescore(cfg ScoreConfig) {
	v.Components = ComputeScores(v.Store, cfg)
	v.Scalar = v.Components.Scalar(cfg.Weights)
}
