package render

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/function"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/analyzer"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// Lower turns an analyzed-and-optimized Logical Plan into a RenderPlan,
// per §4.5 of SPEC_FULL.md. It is the sole entry point of this package,
// matching the one-function-per-pass-group shape the analyzer and
// optimizer packages already establish for their own Analyze/Optimize
// entry points.
func Lower(ctx *sql.Context, pctx *analyzer.PlanCtx, schema *catalog.Schema, n plan.Node) (*RenderPlan, error) {
	span, ctx := ctx.Span("render.Lower")
	defer span.Finish()
	l := &lowerer{ctx: ctx, pctx: pctx, schema: schema, aliasMap: map[string]expression.Expression{}}
	return l.lowerTop(n)
}

// lowerer carries the read-only schema/PlanCtx every lowering step needs,
// plus aliasMap: a handful of bare-name bindings (PageRank's YIELD names,
// chiefly) that have no TableCtx entry of their own because no analyzer
// pass ever bound them into scope.
type lowerer struct {
	ctx      *sql.Context
	pctx     *analyzer.PlanCtx
	schema   *catalog.Schema
	aliasMap map[string]expression.Expression
}

func (l *lowerer) lowerTop(n plan.Node) (*RenderPlan, error) {
	if u, ok := n.(*plan.Union); ok {
		inputs := make([]*RenderPlan, len(u.Inputs))
		for i, in := range u.Inputs {
			rp, err := l.lowerTop(in)
			if err != nil {
				return nil, err
			}
			inputs[i] = rp
		}
		return &RenderPlan{Set: &SetOp{All: u.All, Inputs: inputs}}, nil
	}
	return l.lowerSelect(n)
}

// lowerSelect peels the outer Limit/Skip/OrderBy/Projection stack a single
// query part's plan always carries (per sql/planbuilder's buildReturn:
// `Limit(Skip(OrderBy(Projection(...))))`, any of which may be absent) and
// lowers the Projection's Input as this RenderPlan's row source.
func (l *lowerer) lowerSelect(n plan.Node) (*RenderPlan, error) {
	rp := &RenderPlan{}
	cur := n
	for {
		switch t := cur.(type) {
		case *plan.Limit:
			e, err := l.lowerExpr(t.Count)
			if err != nil {
				return nil, err
			}
			rp.Limit = e
			cur = t.Input
			continue
		case *plan.Skip:
			e, err := l.lowerExpr(t.Count)
			if err != nil {
				return nil, err
			}
			rp.Skip = e
			cur = t.Input
			continue
		case *plan.OrderBy:
			for _, f := range t.Fields {
				e, err := l.lowerExpr(f.Expr)
				if err != nil {
					return nil, err
				}
				rp.OrderBy = append(rp.OrderBy, OrderTerm{Expr: e, Descending: f.Descending})
			}
			cur = t.Input
			continue
		}
		break
	}

	proj, ok := cur.(*plan.Projection)
	if !ok {
		return nil, cyphererr.ErrInternalInvariant.New(fmt.Sprintf("render: expected a Projection at the query root, got %T", cur))
	}
	if err := l.lowerFrom(rp, proj.Input); err != nil {
		return nil, err
	}
	rp.Distinct = proj.Distinct
	for _, it := range proj.Items {
		e, err := l.lowerExpr(it.Expr)
		if err != nil {
			return nil, err
		}
		rp.Columns = append(rp.Columns, OutputColumn{Expr: e, Alias: it.Alias})
	}
	return rp, nil
}

// lowerFrom lowers n, the plan beneath a Projection/WithClause, filling in
// rp's FROM/JOIN/WHERE/GROUP BY fields. It recurses down through every
// wrapper stage before assigning FromClause, so Columns (lowered by the
// caller afterward) can resolve against aliasMap entries a leaf source
// (PageRank, a variable-length path) may have just populated.
func (l *lowerer) lowerFrom(rp *RenderPlan, n plan.Node) error {
	switch t := n.(type) {
	case *plan.GroupBy:
		if err := l.lowerFrom(rp, t.Input); err != nil {
			return err
		}
		for _, k := range t.Keys {
			e, err := l.lowerExpr(k)
			if err != nil {
				return err
			}
			rp.GroupBy = append(rp.GroupBy, e)
		}
		if t.Having != nil {
			h, err := l.lowerExpr(t.Having)
			if err != nil {
				return err
			}
			rp.Having = h
		}
		return nil

	case *plan.Filter:
		if err := l.lowerFrom(rp, t.Input); err != nil {
			return err
		}
		pred, err := l.lowerExpr(t.Predicate)
		if err != nil {
			return err
		}
		rp.Where = andExpr(rp.Where, pred)
		return nil

	case *plan.WithClause:
		return l.lowerWithClause(rp, t)

	case *plan.GraphJoins:
		return l.lowerGraphJoins(rp, t)

	case *plan.CartesianProduct:
		return l.lowerCartesian(rp, t)

	case *plan.GraphNode:
		return l.lowerGraphNodeSource(rp, t)

	case *plan.GraphRel:
		return l.lowerVariableLengthSource(rp, t)

	case *plan.Unwind:
		return l.lowerUnwind(rp, t)

	case *plan.Cte:
		return l.lowerCteSource(rp, t)

	case *plan.PageRank:
		return l.lowerPageRankSource(rp, t)

	case *plan.ViewScan:
		rp.From = FromClause{Table: t.SourceTable, Alias: t.Alias, Final: t.UseFinal}
		return nil

	case *plan.Empty, nil:
		return nil

	default:
		return cyphererr.ErrUnrepresentable.New(fmt.Sprintf("%T", n))
	}
}

// lowerWithClause always promotes a WITH barrier to a structured CTE (the
// other §4.5 option, inlining it as a FROM-clause subquery, is never
// chosen here — see DESIGN.md's render entry for why a single fixed
// strategy was picked over reference-counting exported names).
func (l *lowerer) lowerWithClause(rp *RenderPlan, wc *plan.WithClause) error {
	inner := &RenderPlan{Distinct: wc.Distinct}
	if err := l.lowerFrom(inner, wc.Input); err != nil {
		return err
	}
	for i, it := range wc.Items {
		e, err := l.lowerExpr(it.Expr)
		if err != nil {
			return err
		}
		inner.Columns = append(inner.Columns, OutputColumn{Expr: e, Alias: withItemName(wc, it, i)})
	}
	for _, f := range wc.OrderBy {
		e, err := l.lowerExpr(f.Expr)
		if err != nil {
			return err
		}
		inner.OrderBy = append(inner.OrderBy, OrderTerm{Expr: e, Descending: f.Descending})
	}
	if wc.Skip != nil {
		e, err := l.lowerExpr(wc.Skip)
		if err != nil {
			return err
		}
		inner.Skip = e
	}
	if wc.Limit != nil {
		e, err := l.lowerExpr(wc.Limit)
		if err != nil {
			return err
		}
		inner.Limit = e
	}
	if wc.Where != nil {
		w, err := l.lowerExpr(wc.Where)
		if err != nil {
			return err
		}
		inner.Where = andExpr(inner.Where, w)
	}

	rp.CTEs = append(rp.CTEs, inner.CTEs...)
	inner.CTEs = nil
	rp.CTEs = append(rp.CTEs, CTE{Name: wc.Name, Plan: inner})
	rp.From = FromClause{Table: wc.Name, Alias: wc.Name}
	return nil
}

// withItemName picks a WITH item's exported column name: its own alias if
// explicit, falling back to the barrier's recorded ExportedAliases (the
// two are built in lockstep by the plan builder and ScopeSplitter).
func withItemName(wc *plan.WithClause, it plan.ProjectionItem, idx int) string {
	if it.Alias != "" {
		return it.Alias
	}
	if idx < len(wc.ExportedAliases) {
		return wc.ExportedAliases[idx]
	}
	return it.Expr.String()
}

func (l *lowerer) lowerGraphJoins(rp *RenderPlan, gj *plan.GraphJoins) error {
	if err := l.lowerAnchorInput(rp, gj); err != nil {
		return err
	}
	for _, j := range gj.Joins {
		on, err := l.lowerExpr(j.On)
		if err != nil {
			return err
		}
		kind := JoinInner
		if j.Kind == plan.JoinLeft {
			kind = JoinLeft
		}
		rp.Joins = append(rp.Joins, Join{Kind: kind, Table: j.Table, Alias: j.Alias, On: on})
	}
	return nil
}

// lowerAnchorInput resolves a GraphJoins' Input down to the anchor's
// physical scan, folding any Filter FilterIntoGraphRel wrapped around it
// into rp.Where, and falling back to the already-resolved AnchorTable
// string when Input is a bare Empty (an anonymous leading node with no
// table of its own, per graphjoininference.go).
func (l *lowerer) lowerAnchorInput(rp *RenderPlan, gj *plan.GraphJoins) error {
	n := gj.Input
	for {
		f, ok := n.(*plan.Filter)
		if !ok {
			break
		}
		pred, err := l.lowerExpr(f.Predicate)
		if err != nil {
			return err
		}
		rp.Where = andExpr(rp.Where, pred)
		n = f.Input
	}
	switch t := n.(type) {
	case *plan.ViewScan:
		rp.From = FromClause{Table: t.SourceTable, Alias: gj.AnchorAlias, Final: t.UseFinal}
	case *plan.Empty, nil:
		rp.From = FromClause{Table: gj.AnchorTable, Alias: gj.AnchorAlias}
	default:
		return cyphererr.ErrUnrepresentable.New(fmt.Sprintf("graph join anchor input %T", n))
	}
	return nil
}

// lowerCartesian lowers each side of a comma pattern independently and
// joins them into a single flat FROM/JOIN list: the promoted side (if
// CartesianJoinExtraction found a straddling conjunct) becomes a keyed
// JOIN...ON, an untouched one degrades to CROSS JOIN per §4.6.
func (l *lowerer) lowerCartesian(rp *RenderPlan, cp *plan.CartesianProduct) error {
	left := &RenderPlan{}
	if err := l.lowerFrom(left, cp.Left); err != nil {
		return err
	}
	right := &RenderPlan{}
	if err := l.lowerFrom(right, cp.Right); err != nil {
		return err
	}

	rp.CTEs = append(rp.CTEs, left.CTEs...)
	rp.CTEs = append(rp.CTEs, right.CTEs...)
	rp.From = left.From
	rp.Joins = append(rp.Joins, left.Joins...)

	kind := JoinCross
	var on expression.Expression
	if cp.JoinCondition != nil {
		e, err := l.lowerExpr(cp.JoinCondition)
		if err != nil {
			return err
		}
		on = e
		kind = JoinInner
	}
	if cp.IsOptional {
		kind = JoinLeft
	}
	rp.Joins = append(rp.Joins, Join{Kind: kind, Table: right.From.Table, Alias: right.From.Alias, On: on})
	rp.Joins = append(rp.Joins, right.Joins...)
	rp.Where = andExpr(rp.Where, andExpr(left.Where, right.Where))
	return nil
}

// lowerGraphNodeSource handles a standalone node pattern that
// GraphJoinInference never touched (it only collapses GraphRel chains, so a
// lone `MATCH (p:Label)` with no relationship never gets a TableCtx entry
// from that pass either). Registering Labels here, before the caller lowers
// the Projection's own items, gives resolveProperty the same catalog-backed
// column lookup a chain endpoint gets.
func (l *lowerer) lowerGraphNodeSource(rp *RenderPlan, gn *plan.GraphNode) error {
	if gn.Label != "" {
		l.pctx.Table(gn.Alias).Labels = []string{gn.Label}
	}
	n := gn.Input
	for {
		f, ok := n.(*plan.Filter)
		if !ok {
			break
		}
		pred, err := l.lowerExpr(f.Predicate)
		if err != nil {
			return err
		}
		rp.Where = andExpr(rp.Where, pred)
		n = f.Input
	}
	switch t := n.(type) {
	case *plan.ViewScan:
		rp.From = FromClause{Table: t.SourceTable, Alias: gn.Alias, Final: t.UseFinal}
	case *plan.Empty, nil:
		rp.From = FromClause{Table: gn.Label, Alias: gn.Alias}
	default:
		return cyphererr.ErrUnrepresentable.New(fmt.Sprintf("node scan input %T", n))
	}
	return nil
}

// lowerUnwind renders a surviving UNWIND (one CollectUnwindElimination
// didn't cancel) as a ClickHouse ARRAY JOIN against its list expression.
func (l *lowerer) lowerUnwind(rp *RenderPlan, uw *plan.Unwind) error {
	if err := l.lowerFrom(rp, uw.Input); err != nil {
		return err
	}
	list, err := l.lowerExpr(uw.List)
	if err != nil {
		return err
	}
	rp.Joins = append(rp.Joins, Join{Kind: JoinArray, Alias: uw.Alias, On: list})
	return nil
}

// lowerCteSource gives plan.Cte a render-time consumer: its Input lowers
// into its own structured CTE entry, named after c.Name, and the caller's
// FROM references it directly.
func (l *lowerer) lowerCteSource(rp *RenderPlan, c *plan.Cte) error {
	inner := &RenderPlan{}
	if err := l.lowerFrom(inner, c.Input); err != nil {
		return err
	}
	rp.CTEs = append(rp.CTEs, inner.CTEs...)
	inner.CTEs = nil
	rp.CTEs = append(rp.CTEs, CTE{Name: c.Name, Plan: inner})
	rp.From = FromClause{Table: c.Name, Alias: c.Name}
	return nil
}

// andExpr folds two optional WHERE fragments together, tolerating either
// side being nil.
func andExpr(a, b expression.Expression) expression.Expression {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return expression.NewBinary(expression.OpAnd, a, b)
}

// lowerExpr resolves every PropertyAccess/TableAlias leaf still left after
// the analyzer's VariableResolver ran, and rewrites every scalar/aggregate
// function call through the function registry (C9). It is the one place
// in this package that calls into sql/transform, since an expression tree
// has no analyzer-style Batch of its own.
func (l *lowerer) lowerExpr(e expression.Expression) (expression.Expression, error) {
	if e == nil {
		return nil, nil
	}
	out, _, err := transform.Expr(e, func(leaf expression.Expression) (expression.Expression, sql.TreeIdentity, error) {
		switch t := leaf.(type) {
		case *expression.InSubquery:
			inner, err := l.lowerSubqueryPlan(t.Plan)
			if err != nil {
				return nil, sql.SameTree, err
			}
			return &SubqueryExpr{Kind: SubqueryIn, Left: t.Left, Plan: inner}, sql.NewTree, nil

		case *expression.ExistsSubquery:
			inner, err := l.lowerSubqueryPlan(t.Plan)
			if err != nil {
				return nil, sql.SameTree, err
			}
			return &SubqueryExpr{Kind: SubqueryExists, Plan: inner}, sql.NewTree, nil

		case *expression.PropertyAccess:
			col, err := l.resolveProperty(t)
			if err != nil {
				return nil, sql.SameTree, err
			}
			return col, sql.NewTree, nil

		case *expression.TableAlias:
			if bound, ok := l.aliasMap[t.Name]; ok {
				return bound, sql.NewTree, nil
			}
			if tc, ok := l.pctx.Tables[t.Name]; ok {
				_ = tc
				return expression.NewColumn(t.Name, "*"), sql.NewTree, nil
			}
			return leaf, sql.SameTree, nil

		case *expression.ScalarFnCall:
			resolved, ok := function.ResolveScalar(t.Name, t.Args)
			if !ok {
				l.ctx.Warnf("unknown Cypher function %q passed through unresolved", t.Name)
				return leaf, sql.SameTree, nil
			}
			return resolved, sql.NewTree, nil

		case *expression.AggregateFnCall:
			target, ok := function.ResolveAggregate(t.Name)
			if !ok {
				l.ctx.Warnf("unknown Cypher aggregate %q passed through unresolved", t.Name)
				return leaf, sql.SameTree, nil
			}
			if target == t.Name {
				return leaf, sql.SameTree, nil
			}
			return expression.NewAggregateFnCall(target, t.Distinct, t.Args...), sql.NewTree, nil
		}
		return leaf, sql.SameTree, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resolveProperty expands a PropertyAccess against the catalog when its
// alias denotes a schema entity (node or relationship), and passes it
// through as a direct Column reference otherwise — VariableResolver
// already rewrote every CTE-column reference into a PropertyAccess whose
// Alias is the exporting CTE's own name and whose Property is the already-
// physical exported column name, so no second catalog lookup applies.
func (l *lowerer) resolveProperty(p *expression.PropertyAccess) (expression.Expression, error) {
	tc, ok := l.pctx.Tables[p.Alias]
	if !ok || len(tc.Labels) == 0 {
		return expression.NewColumn(p.Alias, p.Property), nil
	}
	if tc.IsRelation {
		rs, err := l.schema.Relationship(tc.Labels[0])
		if err != nil {
			return nil, err
		}
		col, ok := rs.Column(p.Property)
		if !ok {
			return nil, cyphererr.ErrPropertyNotFound.New(p.Property, tc.Labels[0], "")
		}
		return expression.NewColumn(p.Alias, col), nil
	}
	ns, err := l.schema.Node(tc.Labels[0])
	if err != nil {
		return nil, err
	}
	col, ok := ns.Column(p.Property)
	if !ok {
		return nil, cyphererr.ErrPropertyNotFound.New(p.Property, tc.Labels[0], "")
	}
	return expression.NewColumn(p.Alias, col), nil
}

// lowerSubqueryPlan lowers a correlated subquery's own plan.Node, sharing
// this lowerer's schema/pctx (the inner plan was resolved against the same
// PlanCtx by VariableResolver, so alias lookups stay consistent).
func (l *lowerer) lowerSubqueryPlan(p expression.PlanNode) (*RenderPlan, error) {
	node, ok := p.(plan.Node)
	if !ok {
		return nil, cyphererr.ErrUnrepresentable.New(fmt.Sprintf("subquery plan of type %T", p))
	}
	return l.lowerTop(node)
}
