package ontology

// defaultDocument is the engine's built-in ontology, used when no
// explicit configuration document is supplied. It declares the ten
// node kinds, six edge kinds, the nesting-edge subset, and the rule
// catalog described in spec §3-4.5.
func defaultDocument() Document {
	return Document{
		Version: 1,
		NodeTypes: map[NodeKind]NodeTypeDef{
			KindSystem:      {Abbrev: "SY"},
			KindUseCase:     {Abbrev: "UC"},
			KindActor:       {Abbrev: "AC"},
			KindFuncChain:   {Abbrev: "FC"},
			KindFunc:        {Abbrev: "FN"},
			KindFlow:        {Abbrev: "FL"},
			KindRequirement: {Abbrev: "RQ"},
			KindTest:        {Abbrev: "TS"},
			KindModule:      {Abbrev: "MD"},
			KindSchema:      {Abbrev: "SC"},
		},
		EdgeTypes: map[EdgeKind]EdgeTypeDef{
			EdgeCompose: {
				IsNesting: true,
				ValidConnections: []ConnectionDef{
					{Src: KindSystem, Tgt: KindUseCase},
					{Src: KindSystem, Tgt: KindFunc},
					{Src: KindSystem, Tgt: KindActor},
					{Src: KindSystem, Tgt: KindModule},
					{Src: KindUseCase, Tgt: KindFuncChain},
					{Src: KindFuncChain, Tgt: KindFunc},
					{Src: KindFuncChain, Tgt: KindActor},
					{Src: KindFuncChain, Tgt: KindFlow},
					{Src: KindFunc, Tgt: KindFunc},
					{Src: KindFunc, Tgt: KindFlow},
					{Src: KindModule, Tgt: KindModule},
					{Src: KindSystem, Tgt: KindRequirement},
					{Src: KindRequirement, Tgt: KindRequirement},
				},
			},
			EdgeIO: {
				IsNesting: false,
				ValidConnections: []ConnectionDef{
					{Src: KindFlow, Tgt: KindFunc},
					{Src: KindFunc, Tgt: KindFlow},
					{Src: KindFlow, Tgt: KindActor},
					{Src: KindActor, Tgt: KindFlow},
				},
			},
			EdgeSatisfy: {
				IsNesting: true,
				ValidConnections: []ConnectionDef{
					{Src: KindUseCase, Tgt: KindRequirement},
					{Src: KindFunc, Tgt: KindRequirement},
					{Src: KindModule, Tgt: KindRequirement},
				},
			},
			EdgeVerify: {
				IsNesting: false,
				ValidConnections: []ConnectionDef{
					{Src: KindTest, Tgt: KindRequirement},
				},
			},
			EdgeAllocate: {
				IsNesting: true,
				ValidConnections: []ConnectionDef{
					{Src: KindFunc, Tgt: KindModule},
				},
			},
			EdgeRelation: {
				IsNesting:        false,
				ValidConnections: []ConnectionDef{{Src: wildcard, Tgt: wildcard}},
			},
		},
		NestingEdgeTypes: []EdgeKind{EdgeCompose, EdgeSatisfy, EdgeAllocate},
		ZoomLevels:       []string{"L0", "L1", "L2", "L3", "L4"},
		SemanticIDFormat: `^[A-Za-z0-9_+]{1,50}\.[A-Za-z]{2}\.[A-Za-z0-9]{1,}$`,
		ValidationRules:  defaultRules(),
	}
}

func defaultRules() []RuleDef {
	return []RuleDef{
		// Integrity / hard
		{ID: "required_properties", Phase: PhaseAll, Severity: SeverityHard, Weight: 1.0, Fatal: false,
			Description: "every node carries its required properties"},
		{ID: "duplicate_id", Phase: PhaseAll, Severity: SeverityHard, Weight: 1.0, Fatal: true,
			Description: "no two nodes share a semantic ID"},
		{ID: "dangling_edge", Phase: PhaseAll, Severity: SeverityHard, Weight: 1.0, Fatal: true,
			Description: "every edge endpoint exists"},
		{ID: "invalid_connection", Phase: PhaseAll, Severity: SeverityHard, Weight: 1.0, Fatal: false,
			Description: "edge endpoint kinds are legal for the edge kind"},
		{ID: "circular_compose", Phase: PhaseAll, Severity: SeverityHard, Weight: 1.0, Fatal: true,
			Description: "no circular compose chains"},

		// Naming
		{ID: "naming_pascal_case", Phase: PhaseAll, Severity: SeveritySoft, Weight: 0.2,
			Description: "node name is PascalCase and at most 25 characters"},
		{ID: "naming_matches_id", Phase: PhaseAll, Severity: SeverityHard, Weight: 1.0,
			Description: "node name matches its semantic-ID prefix"},

		// Phase 1
		{ID: "req_valid_id", Phase: PhaseRequirements, Severity: SeverityHard, Weight: 1.0,
			Description: "every REQ has a valid semantic ID"},
		{ID: "uc_satisfies_req", Phase: PhaseRequirements, Severity: SeveritySoft, Weight: 0.3,
			Description: "every UC should have a satisfy edge to a REQ"},
		{ID: "nfr_linked_from_sys", Phase: PhaseRequirements, Severity: SeveritySoft, Weight: 0.3,
			Description: "non-functional requirements are linked SYS -> REQ"},

		// Phase 2
		{ID: "millers_law_func", Phase: PhaseLogical, Severity: SeveritySoft, Weight: 0.3,
			Description: "5-9 top-level FUNC nodes under SYS", Params: RuleParams{"min": 5, "max": 9}},
		{ID: "func_satisfies_req", Phase: PhaseLogical, Severity: SeveritySoft, Weight: 0.3,
			Description: "every FUNC has a satisfy edge to a REQ"},
		{ID: "func_has_io", Phase: PhaseLogical, Severity: SeverityHard, Weight: 0.5,
			Description: "every FUNC has at least one input flow and one output flow"},
		{ID: "flow_has_io", Phase: PhaseLogical, Severity: SeverityHard, Weight: 0.5,
			Description: "every FLOW has an io edge in and an io edge out"},
		{ID: "fchain_actor_boundary", Phase: PhaseLogical, Severity: SeveritySoft, Weight: 0.4,
			Description: "every FCHAIN contains an ACTOR->FLOW path and a FLOW->ACTOR path"},
		{ID: "whitebox_isolation", Phase: PhaseLogical, Severity: SeverityHard, Weight: 0.6,
			Description: "nested FUNCs communicate only within their parent whitebox or via parent-level FLOWs"},
		{ID: "volatile_func_isolation", Phase: PhaseLogical, Severity: SeveritySoft, Weight: 0.4,
			Description:       "FUNCs with volatility >= 0.7 have at most two dependents",
			Params:            RuleParams{"threshold": 0.7, "maxDependents": 2},
			SuggestedOperator: "extract_volatile"},

		// Phase 3
		{ID: "millers_law_mod", Phase: PhasePhysical, Severity: SeveritySoft, Weight: 0.3,
			Description:       "5-9 top-level MOD nodes", Params: RuleParams{"min": 5, "max": 9},
			SuggestedOperator: "split_mod"},
		{ID: "func_allocated_once", Phase: PhasePhysical, Severity: SeverityHard, Weight: 0.5,
			Description:       "every FUNC is allocated to exactly one MOD",
			SuggestedOperator: "add_allocate"},

		// Phase 4
		{ID: "req_verified", Phase: PhaseVerification, Severity: SeveritySoft, Weight: 0.3,
			Description:       "every REQ has a verify edge from a TEST",
			SuggestedOperator: "add_verify"},
		{ID: "no_orphan_nodes", Phase: PhaseVerification, Severity: SeveritySoft, Weight: 0.2,
			Description: "no node is disconnected from every edge"},
	}
}
