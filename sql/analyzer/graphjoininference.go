package analyzer

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// hop is one relationship step of a flattened GraphRel chain: rel is the
// GraphRel that introduced it, right is the GraphNode it connects to.
type hop struct {
	rel   *plan.GraphRel
	right *plan.GraphNode
}

// GraphJoinInference is analyzer pass 4 (§4.3.4), the decisive pass: every
// GraphRel chain collapses into a single GraphJoins node carrying the
// linear join sequence needed to realize it, threading an "already
// joined" alias set as it walks outward from the anchor.
//
// This implementation covers the common linear chain built by the plan
// builder (GraphRel.Left is always a GraphNode or a nested GraphRel, never
// a bare Empty): the "standalone relationship whose endpoints are already
// joined" closing-the-triangle optimization from §4.3.4 and full
// UNION ALL branching for DirEither are both out of scope here (see
// DESIGN.md); DirEither is compiled using the same column assignment as
// DirOutgoing, which is correct whenever the underlying edge table always
// orients from_column/to_column consistently (the common case for a
// declared schema).
func GraphJoinInference(ctx *sql.Context, pctx *PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	return inferJoins(pctx, schema, n)
}

func inferJoins(pctx *PlanCtx, schema *catalog.Schema, n plan.Node) (plan.Node, sql.TreeIdentity, error) {
	if n == nil {
		return nil, sql.SameTree, nil
	}
	if gr, ok := n.(*plan.GraphRel); ok {
		if gr.VariableLength != nil {
			if _, nested := gr.Left.(*plan.GraphRel); !nested {
				// A single-hop variable-length relationship has no fixed
				// join sequence to infer: render's recursive-CTE lowering
				// (§4.5.1) consumes the GraphRel directly. Chained
				// variable-length hops still fall through to
				// buildGraphJoins below, which rejects them.
				registerVariableLengthEndpoints(pctx, gr)
				return n, sql.SameTree, nil
			}
		}
		gj, err := buildGraphJoins(pctx, schema, gr)
		if err != nil {
			return nil, sql.SameTree, err
		}
		return gj, sql.NewTree, nil
	}

	children := n.Children()
	if len(children) == 0 {
		return n, sql.SameTree, nil
	}
	newChildren := make([]plan.Node, len(children))
	overall := sql.SameTree
	for i, c := range children {
		nc, same, err := inferJoins(pctx, schema, c)
		if err != nil {
			return nil, sql.SameTree, err
		}
		newChildren[i] = nc
		overall = overall.AndThen(same)
	}
	if overall == sql.SameTree {
		return n, sql.SameTree, nil
	}
	newN, err := n.WithChildren(newChildren)
	if err != nil {
		return nil, sql.SameTree, err
	}
	return newN, sql.NewTree, nil
}

// registerVariableLengthEndpoints gives a variable-length GraphRel's
// endpoint aliases the same TableCtx bookkeeping buildGraphJoins would
// have given them, so property access against either endpoint still
// resolves through the catalog during render-plan lowering even though no
// GraphJoins node is ever built for this relationship.
func registerVariableLengthEndpoints(pctx *PlanCtx, gr *plan.GraphRel) {
	if left, ok := gr.Left.(*plan.GraphNode); ok && left.Label != "" {
		pctx.Table(left.Alias).Labels = []string{left.Label}
	}
	if right, ok := gr.Right.(*plan.GraphNode); ok && right.Label != "" {
		pctx.Table(right.Alias).Labels = []string{right.Label}
	}
	pctx.Table(gr.Alias).IsRelation = true
}

func buildGraphJoins(pctx *PlanCtx, schema *catalog.Schema, gr *plan.GraphRel) (*plan.GraphJoins, error) {
	anchor, hops, err := flattenChain(gr)
	if err != nil {
		return nil, err
	}

	var anchorTable, anchorAlias string
	if anchor.Label != "" {
		ns, err := schema.Node(anchor.Label)
		if err != nil {
			return nil, err
		}
		anchorTable, anchorAlias = ns.TableName, anchor.Alias
		pctx.Table(anchor.Alias).Labels = []string{anchor.Label}
	} else if len(hops) > 0 {
		// Anonymous leading node: no table of its own, the chain
		// anchors directly on the first relationship's edge table.
		firstLabel := hops[0].rel.Alias
		anchorTable, anchorAlias = firstLabel, anchor.Alias
	}

	var joins []plan.JoinSpec
	leftAlias := anchorAlias
	for _, h := range hops {
		rel := h.rel
		if rel.VariableLength != nil {
			return nil, cyphererr.ErrUnsupportedConstruct.New(fmt.Sprintf("variable-length relationship %q in a multi-hop chain", rel.Alias))
		}
		if len(rel.Labels) == 0 {
			return nil, cyphererr.ErrUnsupportedConstruct.New(fmt.Sprintf("relationship %q has no type to resolve a backing table", rel.Alias))
		}
		rs, err := schema.Relationship(rel.Labels[0])
		if err != nil {
			return nil, err
		}

		kind := plan.JoinInner
		if rel.IsOptional {
			kind = plan.JoinLeft
		}

		fromCol, toCol := rs.FromColumn, rs.ToColumn
		if rel.Direction == plan.DirIncoming {
			fromCol, toCol = toCol, fromCol
		}

		edgeJoin := plan.JoinSpec{
			Kind:  kind,
			Table: rs.TableName,
			Alias: rel.Alias,
			On:    expression.NewBinary(expression.OpEq, expression.NewPropertyAccess(leftAlias, idColumnOf(pctx, schema, leftAlias, anchor)), expression.NewPropertyAccess(rel.Alias, fromCol)),
		}
		joins = append(joins, edgeJoin)

		rightAlias := h.right.Alias
		pctx.Table(rel.Alias).IsRelation = true
		pctx.Table(rel.Alias).UseBitmapStrategy = rs.IsBitmapBacked()

		if h.right.Label != "" {
			rns, err := schema.Node(h.right.Label)
			if err != nil {
				return nil, err
			}
			pctx.Table(rightAlias).Labels = []string{h.right.Label}
			nodeJoin := plan.JoinSpec{
				Kind:  kind,
				Table: rns.TableName,
				Alias: rightAlias,
				On:    expression.NewBinary(expression.OpEq, expression.NewPropertyAccess(rel.Alias, toCol), expression.NewPropertyAccess(rightAlias, rns.IDColumn)),
			}
			joins = append(joins, nodeJoin)
		}

		leftAlias = rightAlias
	}

	gj := plan.NewGraphJoins(anchor.Input, anchorTable, anchorAlias, joins)
	for _, h := range hops {
		gj.Aliases = append(gj.Aliases, h.right.Alias)
	}
	return gj, nil
}

// idColumnOf looks up alias's id column, falling back to the anchor's own
// column when alias is the chain's anchor (the common case, since
// TableCtx isn't populated for it until this very call).
func idColumnOf(pctx *PlanCtx, schema *catalog.Schema, alias string, anchor *plan.GraphNode) string {
	if alias == anchor.Alias && anchor.Label != "" {
		if ns, err := schema.Node(anchor.Label); err == nil {
			return ns.IDColumn
		}
	}
	if tc, ok := pctx.Tables[alias]; ok && len(tc.Labels) > 0 {
		if ns, err := schema.Node(tc.Labels[0]); err == nil {
			return ns.IDColumn
		}
	}
	return "id"
}

// flattenChain unwinds a GraphRel's Left spine down to the innermost
// GraphNode, returning the hops outermost-last (anchor-to-outward order,
// ready for sequential join emission).
func flattenChain(n plan.Node) (*plan.GraphNode, []hop, error) {
	switch t := n.(type) {
	case *plan.GraphRel:
		rightNode, ok := t.Right.(*plan.GraphNode)
		if !ok {
			return nil, nil, cyphererr.ErrUnsupportedConstruct.New("relationship pattern's right endpoint is not a bound node")
		}
		anchor, hops, err := flattenChain(t.Left)
		if err != nil {
			return nil, nil, err
		}
		return anchor, append(hops, hop{rel: t, right: rightNode}), nil
	case *plan.GraphNode:
		return t, nil, nil
	default:
		return nil, nil, cyphererr.ErrUnsupportedConstruct.New(fmt.Sprintf("relationship pattern has an unexpected left endpoint %T", n))
	}
}
