package ontology

import "errors"

// ErrConfigInvalid is returned when the ontology document is
// unparseable or internally inconsistent (unknown kind referenced,
// unsupported version, malformed regex).
var ErrConfigInvalid = errors.New("ontology: config invalid")
