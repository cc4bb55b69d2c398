package diffcodec

import (
	"fmt"

	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
	"github.com/archlens/sysmodel/pkg/semid"
)

// ApplyResult counts the mutations a successful Apply performed.
type ApplyResult struct {
	NodesAdded   int
	NodesRemoved int
	EdgesAdded   int
	EdgesRemoved int
}

// Apply replays doc's node and edge operations against store as a
// single whole-batch transaction (§4.3: "if any operation in an
// applied diff fails, none are committed"). It rehearses every
// operation against a scratch clone of store first; only if the
// entire batch rehearses cleanly does it replay the same operations
// against store itself.
func Apply(store *graph.Store, doc *Document) (ApplyResult, error) {
	scratch := store.Clone()
	if _, err := applyTo(scratch, doc); err != nil {
		return ApplyResult{}, err
	}
	return applyTo(store, doc)
}

func applyTo(store *graph.Store, doc *Document) (ApplyResult, error) {
	var result ApplyResult
	reg := store.Registry()

	for _, op := range doc.Nodes {
		switch op.Action {
		case OpRemove:
			store.RemoveNode(op.ID)
			result.NodesRemoved++
		case OpAdd:
			if err := applyNodeAdd(store, reg, op); err != nil {
				return ApplyResult{}, err
			}
			result.NodesAdded++
		}
	}

	for _, op := range doc.Edges {
		kind := ontology.EdgeKind(op.Kind)
		switch op.Action {
		case OpRemove:
			for _, tgt := range op.Targets {
				store.RemoveEdge(op.Source, kind, tgt)
				result.EdgesRemoved++
			}
		case OpAdd:
			for _, tgt := range op.Targets {
				if err := store.AddEdge(&graph.Edge{Kind: kind, Source: op.Source, Target: tgt}); err != nil {
					return ApplyResult{}, fmt.Errorf("diffcodec: adding edge %s -%s-> %s: %w", op.Source, kind, tgt, err)
				}
				result.EdgesAdded++
			}
		}
	}

	return result, nil
}

func applyNodeAdd(store *graph.Store, reg *ontology.Registry, op NodeOp) error {
	if existing, err := store.GetNode(op.ID); err == nil {
		patch := graph.NodePatch{Description: &op.Description}
		if attrs := attributesFromMap(existing.Attributes, op.Attrs); attrs != nil {
			patch.Attributes = attrs
		}
		if pos, ok := positionFromMap(op.Attrs); ok {
			patch.Position = &pos
		}
		return store.UpdateNode(op.ID, patch)
	}

	ext, err := semid.Extract(reg, op.ID)
	if err != nil {
		return fmt.Errorf("diffcodec: node line %q: %w", op.ID, err)
	}

	node := &graph.Node{
		ID:          op.ID,
		Kind:        ext.Kind,
		Name:        ext.Name,
		Description: op.Description,
	}
	if attrs := attributesFromMap(graph.Attributes{}, op.Attrs); attrs != nil {
		node.Attributes = *attrs
	}
	if pos, ok := positionFromMap(op.Attrs); ok {
		node.Position = &pos
	}
	if err := store.AddNode(node); err != nil {
		return fmt.Errorf("diffcodec: adding node %q: %w", op.ID, err)
	}
	return nil
}

// attributesFromMap overlays attrs onto base, returning nil when attrs
// carries nothing first-class or extra.
func attributesFromMap(base graph.Attributes, attrs map[string]any) *graph.Attributes {
	if len(attrs) == 0 {
		return nil
	}
	out := base.Clone()
	for k, v := range attrs {
		switch k {
		case "x", "y":
			continue
		case "zoom":
			if s, ok := v.(string); ok {
				out.Zoom = s
			}
		case "volatility":
			if f, ok := v.(float64); ok {
				out.Volatility = &f
			}
		case "dataType":
			if s, ok := v.(string); ok {
				out.DataType = s
			}
		case "pattern":
			if s, ok := v.(string); ok {
				out.Pattern = s
			}
		case "validation":
			if s, ok := v.(string); ok {
				out.Validation = s
			}
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[k] = v
		}
	}
	return &out
}

func positionFromMap(attrs map[string]any) (graph.Position, bool) {
	x, xok := attrs["x"].(float64)
	y, yok := attrs["y"].(float64)
	if !xok || !yok {
		return graph.Position{}, false
	}
	return graph.Position{X: x, Y: y}, true
}
