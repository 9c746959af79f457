package render

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// lowerVariableLengthSource compiles a single-hop `*min..max` GraphRel into
// a recursive CTE, per §4.5.1: a base case seeding one-edge paths and a
// recursive case extending by one edge per round, guarded by a strictly
// decreasing depth bound and a `NOT has(path, next)` cycle check. Chained
// variable-length hops (`(a)-[*]->(b)-[*]->(c)`) are out of scope here —
// GraphJoinInference only leaves a GraphRel uncollapsed when it is the
// pattern's sole relationship.
func (l *lowerer) lowerVariableLengthSource(rp *RenderPlan, g *plan.GraphRel) error {
	vl := g.VariableLength
	if vl == nil {
		return cyphererr.ErrInternalInvariant.New("lowerVariableLengthSource called on a fixed-length GraphRel")
	}
	if len(g.Labels) == 0 {
		return cyphererr.ErrUnrepresentable.New("variable-length relationship with no type label")
	}
	rs, err := l.schema.Relationship(g.Labels[0])
	if err != nil {
		return err
	}

	cteName := l.pctx.NextSyntheticName("vlp_" + g.Alias)
	body := varLengthBaseSQL(rs, g.Direction) + "\nUNION ALL\n" + varLengthRecursiveSQL(cteName, rs, g.Direction, vl.Max)
	rp.CTEs = append(rp.CTEs, CTE{Name: cteName, Recursive: true, Raw: body})
	if vl.Max >= 0 && vl.Max > rp.MaxRecursiveDepth {
		rp.MaxRecursiveDepth = vl.Max
	}

	source := cteName
	if g.ShortestPath != plan.ShortestPathNone {
		source = l.lowerShortestPathFilter(rp, cteName, g.ShortestPath)
	}
	rp.From = FromClause{Table: source, Alias: g.Alias}

	min := vl.Min
	if min < 1 {
		min = 1
	}
	bound := expression.NewBinary(expression.OpGte, expression.NewColumn(g.Alias, "depth"), expression.NewLiteral(min))
	if vl.Max >= 0 {
		bound = expression.NewBinary(expression.OpAnd, bound,
			expression.NewBinary(expression.OpLte, expression.NewColumn(g.Alias, "depth"), expression.NewLiteral(vl.Max)))
	}
	rp.Where = andExpr(rp.Where, bound)

	if err := l.joinEndpoint(rp, g.Left, expression.NewColumn(g.Alias, "start_id")); err != nil {
		return err
	}
	if err := l.joinEndpoint(rp, g.Right, expression.NewColumn(g.Alias, "end_id")); err != nil {
		return err
	}
	l.aliasMap[g.Alias] = expression.NewColumn(g.Alias, "path")
	return nil
}

// lowerShortestPathFilter adds the minimum-depth-per-pair CTE shortestPath
// semantics require, and, for the single-path variant, a further "pick one
// representative" CTE; it returns the name the outer FROM should use.
func (l *lowerer) lowerShortestPathFilter(rp *RenderPlan, cteName string, mode plan.ShortestPathMode) string {
	minName := l.pctx.NextSyntheticName(cteName + "_min")
	rp.CTEs = append(rp.CTEs, CTE{Name: minName, Raw: fmt.Sprintf(
		"SELECT t.start_id, t.end_id, t.path, t.depth FROM %s AS t WHERE t.depth = (SELECT min(t2.depth) FROM %s AS t2 WHERE t2.start_id = t.start_id AND t2.end_id = t.end_id)",
		cteName, cteName)})
	if mode != plan.ShortestPathSingle {
		return minName
	}
	oneName := l.pctx.NextSyntheticName(cteName + "_one")
	rp.CTEs = append(rp.CTEs, CTE{Name: oneName, Raw: fmt.Sprintf(
		"SELECT * FROM %s LIMIT 1 BY start_id, end_id", minName)})
	return oneName
}

// joinEndpoint joins the physical node table for a pattern endpoint (when
// it names a concrete label) against idCol, so ordinary property access on
// that endpoint's alias resolves the same way it would against any other
// scan.
func (l *lowerer) joinEndpoint(rp *RenderPlan, n plan.Node, idCol expression.Expression) error {
	alias, label := graphRelEndpoint(n)
	if alias == "" || label == "" {
		return nil
	}
	ns, err := l.schema.Node(label)
	if err != nil {
		return err
	}
	rp.Joins = append(rp.Joins, Join{
		Kind:  JoinInner,
		Table: ns.TableName,
		Alias: alias,
		On:    expression.NewBinary(expression.OpEq, expression.NewColumn(alias, ns.IDColumn), idCol),
	})
	return nil
}

func graphRelEndpoint(n plan.Node) (alias, label string) {
	switch t := n.(type) {
	case *plan.GraphNode:
		return t.Alias, t.Label
	default:
		return "", ""
	}
}

func varLengthBaseSQL(rs *catalog.RelationshipSchema, dir plan.Direction) string {
	if dir == plan.DirEither {
		return varLengthBaseSQL(rs, plan.DirOutgoing) + "\nUNION ALL\n" + varLengthBaseSQL(rs, plan.DirIncoming)
	}
	from, to := rs.FromColumn, rs.ToColumn
	if dir == plan.DirIncoming {
		from, to = to, from
	}
	return fmt.Sprintf("SELECT %s AS start_id, %s AS end_id, [%s] AS path, 1 AS depth FROM %s",
		from, to, to, rs.TableName)
}

func varLengthRecursiveSQL(cteName string, rs *catalog.RelationshipSchema, dir plan.Direction, max int) string {
	if dir == plan.DirEither {
		return varLengthRecursiveSQL(cteName, rs, plan.DirOutgoing, max) + "\nUNION ALL\n" + varLengthRecursiveSQL(cteName, rs, plan.DirIncoming, max)
	}
	from, to := rs.FromColumn, rs.ToColumn
	if dir == plan.DirIncoming {
		from, to = to, from
	}
	depthGuard := ""
	if max >= 0 {
		depthGuard = fmt.Sprintf(" AND prev.depth < %d", max)
	}
	return fmt.Sprintf(
		"SELECT prev.start_id, e.%s AS end_id, arrayPushBack(prev.path, e.%s) AS path, prev.depth + 1 AS depth\n"+
			"FROM %s AS prev\n"+
			"JOIN %s AS e ON prev.end_id = e.%s\n"+
			"WHERE NOT has(prev.path, e.%s)%s",
		to, to, cteName, rs.TableName, from, to, depthGuard)
}
