package semid

import "errors"

// ErrMalformedSemanticID is returned when a semantic ID does not match
// "{name}.{TypeAbbr}.{counter}" or references an unknown abbreviation.
var ErrMalformedSemanticID = errors.New("semid: malformed semantic id")

// ErrIDExhaustion is returned when Generate exhausts its collision
// retry budget.
var ErrIDExhaustion = errors.New("semid: id generation exhausted retries")
