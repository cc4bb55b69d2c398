package rules

// registry dispatches a catalog rule ID to its evaluation function.
// A rule ID with no entry here is silently skipped by Evaluate —
// this lets an ontology document introduce new rule IDs without a
// code change at the cost of those rules not yet being enforced,
// matching the reference engine's posture of shipping built-in
// defaults alongside a loadable, partially-overridable catalog.
var registry = map[string]ruleFunc{
	"required_properties": ruleRequiredProperties,
	"duplicate_id":         ruleDuplicateID,
	"dangling_edge":        ruleDanglingEdge,
	"invalid_connection":   ruleInvalidConnection,
	"circular_compose":     ruleCircularCompose,

	"naming_pascal_case": ruleNamingPascalCase,
	"naming_matches_id":  ruleNamingMatchesID,

	"req_valid_id":       ruleReqValidID,
	"uc_satisfies_req":   ruleUCSatisfiesReq,
	"nfr_linked_from_sys": ruleNFRLinkedFromSys,

	"millers_law_func":        ruleMillersLawFunc,
	"func_satisfies_req":      ruleFuncSatisfiesReq,
	"func_has_io":             ruleFuncHasIO,
	"flow_has_io":             ruleFlowHasIO,
	"fchain_actor_boundary":   ruleFchainActorBoundary,
	"whitebox_isolation":      ruleWhiteboxIsolation,
	"volatile_func_isolation": ruleVolatileFuncIsolation,

	"millers_law_mod":     ruleMillersLawMod,
	"func_allocated_once": ruleFuncAllocatedOnce,

	"req_verified":    ruleReqVerified,
	"no_orphan_nodes": ruleNoOrphanNodes,
}
