package analyzer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// VariableResolver is analyzer pass 2 (§4.3.2). Unlike the other passes it
// cannot be expressed as a bottom-up transform.Node rewrite alone, because
// resolving a TableAlias needs the VariableScope accumulated by every
// clause *before* it, and a WithClause resets that scope for everything
// above it. resolveNode walks the plan once, bottom-up, threading the
// scope it builds as it goes and returning the (possibly narrower) scope
// visible to the node's parent.
func VariableResolver(ctx *sql.Context, pctx *PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	newN, _, same, err := resolveNode(ctx, pctx, newVariableScope(nil), n)
	return newN, same, err
}

func resolveNode(ctx *sql.Context, pctx *PlanCtx, scope *VariableScope, n plan.Node) (plan.Node, *VariableScope, sql.TreeIdentity, error) {
	switch t := n.(type) {
	case nil:
		return nil, scope, sql.SameTree, nil

	case *plan.ViewScan, *plan.Empty, *plan.PageRank:
		return n, scope, sql.SameTree, nil

	case *plan.GraphNode:
		input, scope, same, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		scope.bindSchemaEntity(t.Alias)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.GraphNode{Alias: t.Alias, Label: t.Label, Input: input}, scope, sql.NewTree, nil

	case *plan.GraphRel:
		left, scope, sameL, err := resolveNode(ctx, pctx, scope, t.Left)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		center, scope, sameC, err := resolveNode(ctx, pctx, scope, t.Center)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		right, scope, sameR, err := resolveNode(ctx, pctx, scope, t.Right)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		scope.bindSchemaEntity(t.Alias)
		same := sameL.AndThen(sameC).AndThen(sameR)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		cp := *t
		cp.Left, cp.Center, cp.Right = left, center, right
		return &cp, scope, sql.NewTree, nil

	case *plan.CartesianProduct:
		left, scope, sameL, err := resolveNode(ctx, pctx, scope, t.Left)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		right, scope, sameR, err := resolveNode(ctx, pctx, scope, t.Right)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		cond, sameJ, err := resolveOptExpr(ctx, pctx, scope, t.JoinCondition)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		same := sameL.AndThen(sameR).AndThen(sameJ)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		cp := *t
		cp.Left, cp.Right, cp.JoinCondition = left, right, cond
		return &cp, scope, sql.NewTree, nil

	case *plan.Filter:
		input, scope, sameI, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		pred, sameP, err := resolveExpr(ctx, pctx, scope, t.Predicate)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		same := sameI.AndThen(sameP)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.Filter{Predicate: pred, Input: input}, scope, sql.NewTree, nil

	case *plan.Projection:
		input, scope, sameI, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		items, sameIt, err := resolveProjectionItems(ctx, pctx, scope, t.Items)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		same := sameI.AndThen(sameIt)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.Projection{Items: items, Distinct: t.Distinct, Input: input}, scope, sql.NewTree, nil

	case *plan.WithClause:
		// Items/Where/Skip/Limit/OrderBy are evaluated against the scope
		// as of just before this barrier; everything above it only ever
		// sees the exported aliases (§3.6, "a WITH opens a new scope").
		input, innerScope, sameI, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		items, sameIt, err := resolveProjectionItems(ctx, pctx, innerScope, t.Items)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		orderBy, sameO, err := resolveSortFields(ctx, pctx, innerScope, t.OrderBy)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		skip, sameSk, err := resolveOptExpr(ctx, pctx, innerScope, t.Skip)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		limit, sameL, err := resolveOptExpr(ctx, pctx, innerScope, t.Limit)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		where, sameW, err := resolveOptExpr(ctx, pctx, innerScope, t.Where)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}

		outerScope := newVariableScope(nil)
		for _, alias := range t.ExportedAliases {
			outerScope.bindCteColumn(alias, t.Name, alias)
		}

		same := sameI.AndThen(sameIt).AndThen(sameO).AndThen(sameSk).AndThen(sameL).AndThen(sameW)
		if same == sql.SameTree {
			return t, outerScope, sql.SameTree, nil
		}
		cp := *t
		cp.Input, cp.Items, cp.OrderBy, cp.Skip, cp.Limit, cp.Where = input, items, orderBy, skip, limit, where
		return &cp, outerScope, sql.NewTree, nil

	case *plan.Unwind:
		input, scope, sameI, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		list, sameL, err := resolveExpr(ctx, pctx, scope, t.List)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		scope.bindSchemaEntity(t.Alias)
		same := sameI.AndThen(sameL)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.Unwind{List: list, Alias: t.Alias, Input: input}, scope, sql.NewTree, nil

	case *plan.OrderBy:
		input, scope, sameI, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		fields, sameF, err := resolveSortFields(ctx, pctx, scope, t.Fields)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		same := sameI.AndThen(sameF)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.OrderBy{Fields: fields, Input: input}, scope, sql.NewTree, nil

	case *plan.Skip:
		input, scope, sameI, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		count, sameC, err := resolveExpr(ctx, pctx, scope, t.Count)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		same := sameI.AndThen(sameC)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.Skip{Count: count, Input: input}, scope, sql.NewTree, nil

	case *plan.Limit:
		input, scope, sameI, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		count, sameC, err := resolveExpr(ctx, pctx, scope, t.Count)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		same := sameI.AndThen(sameC)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.Limit{Count: count, Input: input}, scope, sql.NewTree, nil

	case *plan.GroupBy:
		input, scope, sameI, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		keys := make([]expression.Expression, len(t.Keys))
		same := sameI
		for i, k := range t.Keys {
			nk, s, err := resolveExpr(ctx, pctx, scope, k)
			if err != nil {
				return nil, nil, sql.SameTree, err
			}
			keys[i] = nk
			same = same.AndThen(s)
		}
		having, sameH, err := resolveOptExpr(ctx, pctx, scope, t.Having)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		same = same.AndThen(sameH)
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.GroupBy{Keys: keys, Having: having, Input: input}, scope, sql.NewTree, nil

	case *plan.Cte:
		input, scope, same, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		return &plan.Cte{Name: t.Name, Input: input}, scope, sql.NewTree, nil

	case *plan.GraphJoins:
		input, scope, same, err := resolveNode(ctx, pctx, scope, t.Input)
		if err != nil {
			return nil, nil, sql.SameTree, err
		}
		if same == sql.SameTree {
			return t, scope, sql.SameTree, nil
		}
		cp := *t
		cp.Input = input
		return &cp, scope, sql.NewTree, nil

	case *plan.Union:
		inputs := make([]plan.Node, len(t.Inputs))
		same := sql.SameTree
		for i, in := range t.Inputs {
			ni, _, s, err := resolveNode(ctx, pctx, newVariableScope(nil), in)
			if err != nil {
				return nil, nil, sql.SameTree, err
			}
			inputs[i] = ni
			same = same.AndThen(s)
		}
		if same == sql.SameTree {
			return t, newVariableScope(nil), sql.SameTree, nil
		}
		return &plan.Union{Inputs: inputs, All: t.All}, newVariableScope(nil), sql.NewTree, nil

	default:
		return n, scope, sql.SameTree, nil
	}
}

func resolveProjectionItems(ctx *sql.Context, pctx *PlanCtx, scope *VariableScope, items []plan.ProjectionItem) ([]plan.ProjectionItem, sql.TreeIdentity, error) {
	out := make([]plan.ProjectionItem, len(items))
	same := sql.SameTree
	for i, it := range items {
		e, s, err := resolveExpr(ctx, pctx, scope, it.Expr)
		if err != nil {
			return nil, sql.SameTree, err
		}
		out[i] = plan.ProjectionItem{Expr: e, Alias: it.Alias}
		same = same.AndThen(s)
	}
	return out, same, nil
}

func resolveSortFields(ctx *sql.Context, pctx *PlanCtx, scope *VariableScope, fields []plan.SortField) ([]plan.SortField, sql.TreeIdentity, error) {
	out := make([]plan.SortField, len(fields))
	same := sql.SameTree
	for i, f := range fields {
		e, s, err := resolveExpr(ctx, pctx, scope, f.Expr)
		if err != nil {
			return nil, sql.SameTree, err
		}
		out[i] = plan.SortField{Expr: e, Descending: f.Descending}
		same = same.AndThen(s)
	}
	return out, same, nil
}

func resolveOptExpr(ctx *sql.Context, pctx *PlanCtx, scope *VariableScope, e expression.Expression) (expression.Expression, sql.TreeIdentity, error) {
	if e == nil {
		return nil, sql.SameTree, nil
	}
	return resolveExpr(ctx, pctx, scope, e)
}

// resolveExpr rewrites every TableAlias in e bottom-up: a CteColumn
// resolves to a PropertyAccess(cte, col); a SchemaEntity is left in place
// for render-plan lowering to expand; an unknown alias is left unchanged
// with a logged warning, tolerating legitimate forward references.
func resolveExpr(ctx *sql.Context, pctx *PlanCtx, scope *VariableScope, e expression.Expression) (expression.Expression, sql.TreeIdentity, error) {
	switch t := e.(type) {
	case *expression.InSubquery:
		left, sameL, err := resolveExpr(ctx, pctx, scope, t.Left)
		if err != nil {
			return nil, sql.SameTree, err
		}
		newPlan, samePlan, err := resolveSubqueryPlan(ctx, pctx, scope, t.Plan)
		if err != nil {
			return nil, sql.SameTree, err
		}
		same := sameL.AndThen(samePlan)
		if same == sql.SameTree {
			return t, sql.SameTree, nil
		}
		return &expression.InSubquery{Left: left, Plan: newPlan}, sql.NewTree, nil

	case *expression.ExistsSubquery:
		newPlan, same, err := resolveSubqueryPlan(ctx, pctx, scope, t.Plan)
		if err != nil {
			return nil, sql.SameTree, err
		}
		if same == sql.SameTree {
			return t, sql.SameTree, nil
		}
		return &expression.ExistsSubquery{Plan: newPlan}, sql.NewTree, nil
	}

	return transform.Expr(e, func(leaf expression.Expression) (expression.Expression, sql.TreeIdentity, error) {
		ta, ok := leaf.(*expression.TableAlias)
		if !ok {
			return leaf, sql.SameTree, nil
		}
		entry, found := scope.lookup(ta.Name)
		if !found {
			ctx.Warnf("variable %q could not be resolved in this scope (forward reference?)", ta.Name)
			return leaf, sql.SameTree, nil
		}
		switch entry.source {
		case SourceCteColumn:
			return expression.NewPropertyAccess(entry.cte, entry.column), sql.NewTree, nil
		default:
			return leaf, sql.SameTree, nil
		}
	})
}

// resolveSubqueryPlan recurses into a correlated subquery's own plan using
// the enclosing scope, so a shared alias is visible on both sides.
func resolveSubqueryPlan(ctx *sql.Context, pctx *PlanCtx, scope *VariableScope, p expression.PlanNode) (expression.PlanNode, sql.TreeIdentity, error) {
	node, ok := p.(plan.Node)
	if !ok {
		return p, sql.SameTree, nil
	}
	child := newVariableScope(scope)
	newNode, _, same, err := resolveNode(ctx, pctx, child, node)
	if err != nil {
		return nil, sql.SameTree, err
	}
	return newNode, same, nil
}
