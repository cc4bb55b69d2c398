package diffcodec

import "github.com/archlens/sysmodel/pkg/ontology"

// arrowToKind recognizes both the short and long arrow spellings;
// serialization always emits the short form (§4.4 "short is canonical
// output").
var arrowToKind = map[string]ontology.EdgeKind{
	"-cp->":       ontology.EdgeCompose,
	"-compose->":  ontology.EdgeCompose,
	"-io->":       ontology.EdgeIO,
	"-sat->":      ontology.EdgeSatisfy,
	"-satisfy->":  ontology.EdgeSatisfy,
	"-ver->":      ontology.EdgeVerify,
	"-verify->":   ontology.EdgeVerify,
	"-alc->":      ontology.EdgeAllocate,
	"-allocate->": ontology.EdgeAllocate,
	"-rel->":      ontology.EdgeRelation,
	"-relation->": ontology.EdgeRelation,
}

// canonicalArrow is the short-form arrow the serializer emits for each
// edge kind.
var canonicalArrow = map[ontology.EdgeKind]string{
	ontology.EdgeCompose:  "-cp->",
	ontology.EdgeIO:       "-io->",
	ontology.EdgeSatisfy:  "-sat->",
	ontology.EdgeVerify:   "-ver->",
	ontology.EdgeAllocate: "-alc->",
	ontology.EdgeRelation: "-rel->",
}
