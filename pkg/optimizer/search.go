package optimizer

import (
	"math/rand"
	"reflect"
	"time"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
	"github.com/archlens/sysmodel/pkg/rules"
)

// SearchParams bounds one run of the violation-guided local search.
type SearchParams struct {
	MaxIterations   int
	WallClockBudget time.Duration
	ParetoCapacity  int
	RandomSeed      int64
	Score           ScoreConfig
}

// DefaultSearchParams mirrors config.OptimizerConfig's own defaults so
// a caller who never touches config still gets a sane run.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		MaxIterations:   200,
		WallClockBudget: 30 * time.Second,
		ParetoCapacity:  5,
		RandomSeed:      1,
		Score:           DefaultScoreConfig(),
	}
}

// Step records one accepted or rejected move for SearchReport.Steps.
type Step struct {
	Iteration int
	RuleID    string
	Operator  string
	Accepted  bool
	Scalar    float64
}

// SearchReport is Search's full account of a run: the final front, the
// move-by-move history, and why it stopped.
type SearchReport struct {
	Front      *Front
	Steps      []Step
	Iterations int
	StopReason string
}

const (
	stopNoImprovingMove = "no improving move found"
	stopMaxIterations   = "max iterations reached"
	stopWallClock       = "wall-clock budget exhausted"
)

// Search runs the violation-guided local search (§4.8): each iteration
// evaluates the current best variant's violations, tries each one's
// suggested (or default) operator, and keeps the first resulting
// variant that the Pareto front admits and whose scalar score is no
// lower than the current variant's. The walk is deterministic under a
// fixed RandomSeed — the only randomness is which violation's operator
// is tried first each iteration, to avoid always attacking violations
// in the same evaluator order.
func Search(source *graph.Store, params SearchParams) SearchReport {
	front := NewFront(params.ParetoCapacity)
	seed := NewVariant(source, params.Score)
	front.Add(seed)

	rng := rand.New(rand.NewSource(params.RandomSeed))
	deadline := time.Now().Add(params.WallClockBudget)

	report := SearchReport{Front: front}
	current := seed

	for iter := 0; iter < params.MaxIterations; iter++ {
		report.Iterations = iter + 1
		if time.Now().After(deadline) {
			report.StopReason = stopWallClock
			return report
		}

		result := rules.Evaluate(current.Store, ontology.PhaseAll)
		if len(result.Violations) == 0 {
			report.StopReason = stopNoImprovingMove
			return report
		}

		order := rng.Perm(len(result.Violations))
		improved := false

		for _, idx := range order {
			v := result.Violations[idx]
			fn, ok := OperatorFor(v.RuleID, v.SuggestedOperator)
			if !ok {
				continue
			}
			candidate, ok := fn(current, Violation{RuleID: v.RuleID, AffectedIDs: v.AffectedIDs})
			if !ok {
				continue
			}
			candidate.Rescore(params.Score)

			admitted := front.Add(candidate)
			step := Step{Iteration: iter, RuleID: v.RuleID, Operator: operatorName(fn), Accepted: admitted, Scalar: candidate.Scalar}
			report.Steps = append(report.Steps, step)

			if admitted && candidate.Scalar >= current.Scalar {
				current = candidate
				improved = true
				break
			}
		}

		if !improved {
			report.StopReason = stopNoImprovingMove
			return report
		}
	}

	report.StopReason = stopMaxIterations
	return report
}

// operatorName recovers an operator's registry name for reporting,
// since OperatorFunc values carry no name of their own.
func operatorName(fn OperatorFunc) string {
	for name, candidate := range operatorRegistry {
		if funcsEqual(candidate, fn) {
			return name
		}
	}
	return "unknown"
}

// funcsEqual compares two OperatorFunc values by identity. Go forbids
// comparing funcs with ==; reflect.ValueOf(...).Pointer() is the
// standard workaround for registry lookups like this one.
func funcsEqual(a, b OperatorFunc) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
