// Package diffcodec parses and serializes the engine's compact,
// line-oriented graph wire format (§4.4): full-graph documents and
// incremental `<operations>` diffs, both over the same `## Nodes` /
// `## Edges` grammar.
//
// Node name and kind are never carried on the wire — they are always
// recovered from the semantic ID via pkg/semid, so a diff line can
// never invent a name the ID does not already encode.
package diffcodec

// OpKind is the action a line in a diff document requests.
type OpKind int

const (
	// OpAdd adds a node/edge, or updates it if the ID already exists
	// ("last writer wins").
	OpAdd OpKind = iota
	// OpRemove deletes a node/edge.
	OpRemove
)

func (k OpKind) String() string {
	if k == OpRemove {
		return "remove"
	}
	return "add"
}

// NodeOp is one parsed `## Nodes` line.
type NodeOp struct {
	Action      OpKind
	ID          string
	Description string
	Attrs       map[string]any
}

// EdgeOp is one parsed `## Edges` line. Targets holds every target on
// a 1:N fan-out line; a plain 1:1 line has len(Targets) == 1.
type EdgeOp struct {
	Action  OpKind
	Source  string
	Kind    string
	Targets []string
}

// ViewContext is the optional `## View-Context` / `<view_context>` block.
type ViewContext struct {
	Type string
}

// BaseSnapshot is the `<base_snapshot>SystemID@version</base_snapshot>`
// line anchoring a diff document to the state it was computed against.
type BaseSnapshot struct {
	SystemID string
	Version  uint64
}

// MalformedLine records a line the parser could not interpret as an
// operation. The parser counts these rather than aborting (§4.4
// parser contract).
type MalformedLine struct {
	LineNumber int
	Text       string
	Reason     string
}

// Document is the parsed form of either a full-graph dump or an
// incremental diff. IsDiff distinguishes the two; BaseSnapshot is only
// populated for diffs.
type Document struct {
	IsDiff       bool
	SystemID     string
	WorkspaceID  string
	BaseSnapshot *BaseSnapshot
	ViewContext  *ViewContext

	Nodes []NodeOp
	Edges []EdgeOp

	Malformed []MalformedLine
	Warnings  []string
}
