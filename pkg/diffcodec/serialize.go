package diffcodec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// DocumentFromStore builds a full-graph Document snapshot of store,
// with nodes ordered by CreatedAt (insertion order, §4.4 "nodes
// sorted by insertion order (stable)") and edges grouped by (source,
// kind) for compact fan-out serialization.
func DocumentFromStore(store *graph.Store) *Document {
	nodes := store.AllNodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].ID < nodes[j].ID
		}
		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})

	doc := &Document{
		SystemID:    store.SystemID(),
		WorkspaceID: store.WorkspaceID(),
	}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, NodeOp{
			Action:      OpAdd,
			ID:          n.ID,
			Description: n.Description,
			Attrs:       nodeAttrMap(n),
		})
	}

	type group struct {
		source string
		kind   ontology.EdgeKind
	}
	byGroup := make(map[group][]string)
	var order []group
	for _, e := range store.AllEdges() {
		g := group{source: e.Source, kind: e.Kind}
		if _, ok := byGroup[g]; !ok {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], e.Target)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].source != order[j].source {
			return order[i].source < order[j].source
		}
		return order[i].kind < order[j].kind
	})
	for _, g := range order {
		targets := byGroup[g]
		sort.Strings(targets)
		doc.Edges = append(doc.Edges, EdgeOp{Action: OpAdd, Source: g.source, Kind: string(g.kind), Targets: targets})
	}

	return doc
}

// nodeAttrMap converts a node's typed Attributes/Position into the
// generic map NodeOp carries, the inverse of attributesFromMap and
// positionFromMap.
func nodeAttrMap(n *graph.Node) map[string]any {
	out := make(map[string]any)
	if n.Position != nil {
		out["x"] = n.Position.X
		out["y"] = n.Position.Y
	}
	if n.Attributes.Zoom != "" {
		out["zoom"] = n.Attributes.Zoom
	}
	if n.Attributes.Volatility != nil {
		out["volatility"] = *n.Attributes.Volatility
	}
	if n.Attributes.DataType != "" {
		out["dataType"] = n.Attributes.DataType
	}
	if n.Attributes.Pattern != "" {
		out["pattern"] = n.Attributes.Pattern
	}
	if n.Attributes.Validation != "" {
		out["validation"] = n.Attributes.Validation
	}
	for k, v := range n.Attributes.Extra {
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// orderedAttrKeys is the canonical emission order for first-class
// attribute names; anything else (Extra) follows, sorted.
var orderedAttrKeys = []string{"x", "y", "zoom", "volatility", "dataType", "pattern", "validation"}

func attrPairs(attrs map[string]any) [][2]string {
	if len(attrs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(attrs))
	var pairs [][2]string
	for _, k := range orderedAttrKeys {
		v, ok := attrs[k]
		if !ok {
			continue
		}
		seen[k] = true
		pairs = append(pairs, [2]string{k, formatAttrValue(v)})
	}
	extra := make(map[string]any)
	for k, v := range attrs {
		if !seen[k] {
			extra[k] = v
		}
	}
	pairs = append(pairs, formatExtra(extra)...)
	return pairs
}

func formatAttrValue(v any) string {
	switch val := v.(type) {
	case float64:
		return formatNumber(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Serialize renders doc in canonical compact-diff form. A full-graph
// document (IsDiff == false) omits the `<operations>` envelope and
// "+"/"-" prefixes; a diff document always wraps in the envelope and
// always emits an explicit prefix, regardless of whether the parsed
// input line carried one — implicit-add is a parser tolerance, not a
// serializer option (§4.4).
func Serialize(doc *Document) string {
	var b strings.Builder

	if doc.SystemID != "" {
		fmt.Fprintf(&b, "# System ID: %s\n", doc.SystemID)
	}
	if doc.WorkspaceID != "" {
		fmt.Fprintf(&b, "# Workspace ID: %s\n", doc.WorkspaceID)
	}

	if doc.IsDiff {
		b.WriteString("<operations>\n")
		if doc.BaseSnapshot != nil {
			fmt.Fprintf(&b, "<base_snapshot>%s@%d</base_snapshot>\n", doc.BaseSnapshot.SystemID, doc.BaseSnapshot.Version)
		}
	}

	if doc.ViewContext != nil {
		b.WriteString("## View-Context\n")
		fmt.Fprintf(&b, "Type: %s\n", doc.ViewContext.Type)
	}

	b.WriteString("## Nodes\n")
	for _, n := range doc.Nodes {
		writeNodeLine(&b, doc.IsDiff, n)
	}

	b.WriteString("## Edges\n")
	for _, e := range doc.Edges {
		writeEdgeLine(&b, doc.IsDiff, e)
	}

	if doc.IsDiff {
		b.WriteString("</operations>\n")
	}

	return b.String()
}

func writeNodeLine(b *strings.Builder, isDiff bool, n NodeOp) {
	if isDiff {
		if n.Action == OpRemove {
			b.WriteString("-")
		} else {
			b.WriteString("+")
		}
	}
	b.WriteString(n.ID)
	if n.Action == OpRemove && n.Description == "" && len(n.Attrs) == 0 {
		b.WriteString("\n")
		return
	}
	b.WriteString("|")
	b.WriteString(n.Description)
	if pairs := attrPairs(n.Attrs); len(pairs) > 0 {
		b.WriteString(" [")
		b.WriteString(formatAttrs(pairs))
		b.WriteString("]")
	}
	b.WriteString("\n")
}

func writeEdgeLine(b *strings.Builder, isDiff bool, e EdgeOp) {
	if isDiff {
		if e.Action == OpRemove {
			b.WriteString("-")
		} else {
			b.WriteString("+")
		}
	}
	arrow := canonicalArrow[ontology.EdgeKind(e.Kind)]
	fmt.Fprintf(b, "%s %s %s\n", e.Source, arrow, strings.Join(e.Targets, ", "))
}
