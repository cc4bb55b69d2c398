package rules

import (
	"fmt"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// ruleFunc evaluates one catalog rule against store, returning the
// violations it finds.
type ruleFunc func(store *graph.Store, rule ontology.RuleDef) []Violation

// Evaluate runs every catalog rule applicable to phase (PhaseAll rules
// always apply; a specific phase additionally pulls in that phase's
// own rules) and scores the result per §4.5.
func Evaluate(store *graph.Store, phase ontology.Phase) Result {
	reg := store.Registry()
	catalog := reg.RuleCatalog()

	var result Result
	var penalty float64
	fatalHit := false
	nodeCount := len(store.AllNodes())

	for _, rule := range catalog {
		if phase != ontology.PhaseAll && rule.Phase != ontology.PhaseAll && rule.Phase != phase {
			continue
		}
		fn, ok := registry[rule.ID]
		if !ok {
			continue
		}
		for _, v := range fn(store, rule) {
			result.Violations = append(result.Violations, v)
			switch v.Severity {
			case ontology.SeverityHard:
				result.ErrorCount++
				penalty += 1.0
				if rule.Fatal {
					fatalHit = true
				}
			default:
				result.WarningCount++
				penalty += rule.Weight
			}
		}
	}

	switch {
	case fatalHit:
		result.RewardScore = 0
	case nodeCount == 0:
		// An empty graph has nothing to violate.
		result.RewardScore = 1
	default:
		score := 1 - penalty/float64(nodeCount)
		if score < 0 {
			score = 0
		}
		result.RewardScore = score
	}

	return result
}

// parentMap returns, for every node with an incoming nesting edge,
// the ID of its compose-parent. Built by a single pass over all
// edges rather than per-node queries.
func parentMap(store *graph.Store) map[string]string {
	out := make(map[string]string)
	for _, e := range store.AllEdges() {
		if e.Kind == ontology.EdgeCompose {
			out[e.Target] = e.Source
		}
	}
	return out
}

// dependents returns the distinct set of node IDs with any edge
// targeting id.
func dependents(store *graph.Store, id string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range store.IncidentEdges(id) {
		var other string
		if e.Target == id {
			other = e.Source
		} else {
			continue
		}
		if other == id {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	return out
}

func violationf(rule ontology.RuleDef, affected []string, format string, args ...any) Violation {
	return Violation{
		RuleID:            rule.ID,
		Severity:          rule.Severity,
		AffectedIDs:       affected,
		HumanMessage:      fmt.Sprintf(format, args...),
		SuggestedOperator: rule.SuggestedOperator,
	}
}
