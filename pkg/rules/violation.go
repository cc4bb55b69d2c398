// Package rules implements the rule evaluator (§4.5): it walks a
// graph store against the ontology's rule catalog and produces a
// scored violation report gating the system's phase transitions.
package rules

import "github.com/archlens/sysmodel/pkg/ontology"

// Violation is one instance of a rule failing against the graph.
type Violation struct {
	RuleID            string
	Severity          ontology.Severity
	AffectedIDs       []string
	HumanMessage      string
	SuggestedOperator string
	SuggestedFix      string
}

// Result is the evaluator's report for one run.
type Result struct {
	Violations   []Violation
	ErrorCount   int
	WarningCount int
	RewardScore  float64
}

// GateReady reports whether the graph is ready to leave the evaluated
// phase: zero hard (error-severity) violations.
func (r Result) GateReady() bool {
	return r.ErrorCount == 0
}
