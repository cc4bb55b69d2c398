package graph

import "errors"

// Errors raised by Store mutations (§4.3, §7). Structural mistakes
// that would corrupt the in-memory model reject the whole batch;
// callers should check with errors.Is against these sentinels.
var (
	ErrDuplicateID       = errors.New("graph: duplicate semantic id")
	ErrDuplicateEdge     = errors.New("graph: duplicate edge composite key")
	ErrDanglingEdge      = errors.New("graph: edge references a missing endpoint")
	ErrInvalidConnection = errors.New("graph: endpoint kinds not permitted for edge kind")
	ErrCircularCompose   = errors.New("graph: compose edge would create a cycle")
	ErrNodeNotFound      = errors.New("graph: node not found")
	ErrKindMismatch      = errors.New("graph: node kind does not match semantic id abbreviation")
)
