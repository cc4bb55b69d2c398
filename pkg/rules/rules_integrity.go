package rules

import (
	"regexp"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
	"github.com/archlens/sysmodel/pkg/semid"
)

// The five integrity/hard rules below (duplicate_id, dangling_edge,
// invalid_connection, circular_compose, req_valid_id) describe
// invariants graph.Store already enforces at every AddNode/AddEdge
// call (§4.3). They are kept in the catalog — and so always pass —
// for phase-gate completeness: a gate check should not have to know
// which invariants are structural versus evaluated.

func ruleDuplicateID(store *graph.Store, rule ontology.RuleDef) []Violation  { return nil }
func ruleDanglingEdge(store *graph.Store, rule ontology.RuleDef) []Violation { return nil }
func ruleCircularCompose(store *graph.Store, rule ontology.RuleDef) []Violation {
	return nil
}
func ruleInvalidConnection(store *graph.Store, rule ontology.RuleDef) []Violation {
	return nil
}
func ruleReqValidID(store *graph.Store, rule ontology.RuleDef) []Violation { return nil }

func ruleRequiredProperties(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.AllNodes() {
		if n.Description == "" {
			out = append(out, violationf(rule, []string{n.ID}, "node %s has no description", n.ID))
		}
	}
	return out
}

var pascalCasePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

func ruleNamingPascalCase(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.AllNodes() {
		if len(n.Name) > 25 || !pascalCasePattern.MatchString(n.Name) {
			out = append(out, violationf(rule, []string{n.ID}, "node name %q is not PascalCase within 25 characters", n.Name))
		}
	}
	return out
}

func ruleNamingMatchesID(store *graph.Store, rule ontology.RuleDef) []Violation {
	reg := store.Registry()
	var out []Violation
	for _, n := range store.AllNodes() {
		ext, err := semid.Extract(reg, n.ID)
		if err != nil || ext.Name != n.Name {
			out = append(out, violationf(rule, []string{n.ID}, "node name %q does not match semantic-id prefix of %q", n.Name, n.ID))
		}
	}
	return out
}

func ruleNoOrphanNodes(store *graph.Store, rule ontology.RuleDef) []Violation {
	var out []Violation
	for _, n := range store.AllNodes() {
		if len(store.IncidentEdges(n.ID)) == 0 {
			out = append(out, violationf(rule, []string{n.ID}, "node %s has no incident edges", n.ID))
		}
	}
	return out
}
