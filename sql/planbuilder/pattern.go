package planbuilder

import (
	"github.com/brahmand-sql/cyphersql/cypher/ast"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// buildPathPattern lowers one comma-element of a MATCH into a GraphNode/
// GraphRel chain, per §4.2: anonymous nodes and denormalized labels lower
// to Empty, and property patterns become filter conjuncts returned
// alongside the tree rather than attached to it directly (the caller
// decides whether they join the clause's WHERE or stand alone).
func (b *PlanBuilder) buildPathPattern(sc *scope, pp *ast.PathPattern, optional bool) (plan.Node, []expression.Expression, error) {
	var filters []expression.Expression

	cur, prevAlias, err := b.buildNodePattern(sc, pp.Nodes[0], &filters)
	if err != nil {
		return nil, nil, err
	}

	for i, rel := range pp.Rels {
		rightNode, rightAlias, err := b.buildNodePattern(sc, pp.Nodes[i+1], &filters)
		if err != nil {
			return nil, nil, err
		}

		relAlias := rel.Variable
		if relAlias == "" {
			relAlias = b.nextAlias("r")
		}
		center, relLabel, err := b.buildRelCenter(sc, rel, relAlias, &filters)
		if err != nil {
			return nil, nil, err
		}
		if err := sc.bind(relAlias, varRel, relLabel); err != nil {
			return nil, nil, err
		}

		gr := plan.NewGraphRel(relAlias, cur, center, rightNode, convertDirection(rel.Direction))
		gr.Labels = rel.Types
		gr.VariableLength = convertVarLength(rel.VarLength)
		gr.ShortestPath = convertShortest(rel.Shortest)
		gr.IsOptional = optional
		gr.LeftConn = prevAlias
		gr.RightConn = rightAlias

		cur = gr
		prevAlias = rightAlias
	}

	if pp.Variable != "" {
		if err := sc.bind(pp.Variable, varPath, ""); err != nil {
			return nil, nil, err
		}
	}
	return cur, filters, nil
}

// buildNodePattern lowers one `(alias:Label {props})` element, registering
// alias in sc and returning the GraphNode wrapping its physical scan (or
// Empty for an anonymous or denormalized label).
func (b *PlanBuilder) buildNodePattern(sc *scope, np *ast.NodePattern, filters *[]expression.Expression) (plan.Node, string, error) {
	alias := np.Variable
	if alias == "" {
		alias = b.nextAlias("n")
	}

	var label string
	var input plan.Node = plan.NewEmpty()
	if len(np.Labels) > 0 {
		label = np.Labels[0]
		ns, err := b.schema.Node(label)
		if err != nil {
			return nil, "", err
		}
		if !ns.Denormalized {
			input = plan.NewViewScan(ns.TableName, alias, ns.IDColumn)
		}
	}
	if err := sc.bind(alias, varNode, label); err != nil {
		return nil, "", err
	}

	for _, pp := range np.Properties {
		val, err := b.buildExpr(sc, pp.Value)
		if err != nil {
			return nil, "", err
		}
		*filters = append(*filters, expression.NewBinary(expression.OpEq, expression.NewPropertyAccess(alias, pp.Key), val))
	}
	return plan.NewGraphNode(alias, label, input), alias, nil
}

// buildRelCenter lowers the relationship's own scan: the first declared
// type names the backing table (multiple OR'd types, `[:A|B]`, are
// recorded on GraphRel.Labels but only the first selects a table; widening
// to a per-type UNION is not implemented, see DESIGN.md).
func (b *PlanBuilder) buildRelCenter(sc *scope, rel *ast.RelPattern, alias string, filters *[]expression.Expression) (plan.Node, string, error) {
	if len(rel.Types) == 0 {
		return plan.NewEmpty(), "", nil
	}
	typeLabel := rel.Types[0]
	rs, err := b.schema.Relationship(typeLabel)
	if err != nil {
		return nil, "", err
	}
	vs := plan.NewViewScan(rs.TableName, alias, "")
	vs.FromIDColumn = rs.FromColumn
	vs.ToIDColumn = rs.ToColumn

	for _, pp := range rel.Properties {
		val, err := b.buildExpr(sc, pp.Value)
		if err != nil {
			return nil, "", err
		}
		*filters = append(*filters, expression.NewBinary(expression.OpEq, expression.NewPropertyAccess(alias, pp.Key), val))
	}
	return vs, typeLabel, nil
}

func convertDirection(d ast.RelDirection) plan.Direction {
	switch d {
	case ast.DirOutgoing:
		return plan.DirOutgoing
	case ast.DirIncoming:
		return plan.DirIncoming
	default:
		return plan.DirEither
	}
}

// convertVarLength applies §4.1's bare-`*` edge case: no bounds at all
// means 1..unbounded, not 0..unbounded.
func convertVarLength(vl *ast.VariableLength) *plan.VariableLength {
	if vl == nil {
		return nil
	}
	min := vl.Min
	if !vl.MinSet {
		min = 1
	}
	max := -1
	if vl.MaxSet {
		max = vl.Max
	}
	return &plan.VariableLength{Min: min, Max: max}
}

func convertShortest(k ast.ShortestPathKind) plan.ShortestPathMode {
	switch k {
	case ast.ShortestPathSingle:
		return plan.ShortestPathSingle
	case ast.ShortestPathAll:
		return plan.ShortestPathAll
	default:
		return plan.ShortestPathNone
	}
}
