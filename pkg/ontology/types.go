// Package ontology loads and exposes the single ontology configuration
// document that defines the engine's typed node/edge kinds, which edge
// kinds nest a hierarchy, the valid-connection table, and the rule
// catalog consumed by pkg/rules.
//
// The ontology is load-once and read-only thereafter (§9 design notes:
// "no shared singleton mutable registry" — callers own their own
// *Registry value and may share it by reference across any number of
// concurrent readers without locking).
package ontology

// NodeKind identifies one of the ten first-class node types.
type NodeKind string

// Node kinds, per the data model.
const (
	KindSystem      NodeKind = "SYS"
	KindUseCase     NodeKind = "UC"
	KindActor       NodeKind = "ACTOR"
	KindFuncChain   NodeKind = "FCHAIN"
	KindFunc        NodeKind = "FUNC"
	KindFlow        NodeKind = "FLOW"
	KindRequirement NodeKind = "REQ"
	KindTest        NodeKind = "TEST"
	KindModule      NodeKind = "MOD"
	KindSchema      NodeKind = "SCHEMA"
)

// EdgeKind identifies one of the six first-class edge types.
type EdgeKind string

// Edge kinds, per the data model.
const (
	EdgeCompose  EdgeKind = "compose"
	EdgeIO       EdgeKind = "io"
	EdgeSatisfy  EdgeKind = "satisfy"
	EdgeVerify   EdgeKind = "verify"
	EdgeAllocate EdgeKind = "allocate"
	EdgeRelation EdgeKind = "relation"
)

// Severity classifies a rule's blocking behavior.
type Severity string

// Severities a rule may carry.
const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// Phase groups rules by the workflow gate they belong to.
type Phase string

// Phases, per §4.5.
const (
	PhaseRequirements Phase = "phase1_requirements"
	PhaseLogical      Phase = "phase2_logical"
	PhasePhysical     Phase = "phase3_physical"
	PhaseVerification Phase = "phase4_verification"
	PhaseAll          Phase = "all"
)

// connKey is the lookup key for the valid-connection table: an edge
// kind paired with the ordered (source, target) node-kind pair.
type connKey struct {
	edge EdgeKind
	src  NodeKind
	tgt  NodeKind
}

// wildcard matches any node kind in a valid-connection entry.
const wildcard NodeKind = "*"

// NodeTypeDef describes one entry of the ontology document's nodeTypes map.
type NodeTypeDef struct {
	Abbrev string `yaml:"abbrev"`
}

// ConnectionDef describes one legal (source kind, target kind) pair for
// an edge kind.
type ConnectionDef struct {
	Src NodeKind `yaml:"src"`
	Tgt NodeKind `yaml:"tgt"`
}

// EdgeTypeDef describes one entry of the ontology document's edgeTypes map.
type EdgeTypeDef struct {
	IsNesting         bool            `yaml:"isNesting"`
	ValidConnections  []ConnectionDef `yaml:"validConnections"`
	VisualStyle       string          `yaml:"visualStyle"`
}

// RuleParams holds the optional, rule-specific parameter block. Keys
// are rule-defined; the evaluator type-asserts the values it expects.
type RuleParams map[string]any

// RuleDef describes one entry of the ontology document's rule catalog.
type RuleDef struct {
	ID          string     `yaml:"id"`
	Phase       Phase      `yaml:"phase"`
	Severity    Severity   `yaml:"severity"`
	Weight      float64    `yaml:"weight"`
	Description string     `yaml:"description"`
	Fatal       bool       `yaml:"fatal"`
	Params      RuleParams `yaml:"params,omitempty"`
	// SuggestedOperator names the optimizer move operator this rule's
	// violations should route to by default (§4.5/§4.8). Empty when the
	// rule has no natural single operator.
	SuggestedOperator string `yaml:"suggestedOperator,omitempty"`
}

// DecisionTree is carried opaquely for higher-level advisors; the core
// engine does not interpret its contents.
type DecisionTree struct {
	ID    string         `yaml:"id"`
	Nodes map[string]any `yaml:"nodes"`
}

// Document is the on-disk shape of the ontology configuration.
type Document struct {
	Version          int                    `yaml:"version"`
	NodeTypes        map[NodeKind]NodeTypeDef `yaml:"nodeTypes"`
	EdgeTypes        map[EdgeKind]EdgeTypeDef `yaml:"edgeTypes"`
	NestingEdgeTypes []EdgeKind             `yaml:"nestingEdgeTypes"`
	ZoomLevels       []string               `yaml:"zoomLevels"`
	SemanticIDFormat string                 `yaml:"semanticIdFormat"`
	ValidationRules  []RuleDef              `yaml:"validationRules"`
	DecisionTrees    []DecisionTree         `yaml:"decisionTrees"`
}

// MaxSupportedVersion is the highest document version this registry
// knows how to interpret. A version bump above this is ConfigInvalid.
const MaxSupportedVersion = 1
