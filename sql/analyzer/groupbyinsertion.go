package analyzer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// GroupByInsertion detects a Projection or WithClause carrying an
// AggregateFnCall in any of its items and installs a GroupBy between it
// and its current Input, per the GroupBy doc comment in sql/plan: "the
// aggregation stage, installed by the analyzer whenever a Projection or
// WithClause item contains an AggregateFnCall." Non-aggregate items
// become the grouping keys, matching standard implicit-GROUP-BY Cypher
// semantics. It is idempotent: a Projection/WithClause already sitting
// over a GroupBy is left alone.
func GroupByInsertion(ctx *sql.Context, pctx *PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	return transform.Node(n, func(node plan.Node) (plan.Node, sql.TreeIdentity, error) {
		switch t := node.(type) {
		case *plan.Projection:
			if _, ok := t.Input.(*plan.GroupBy); ok {
				return node, sql.SameTree, nil
			}
			keys, hasAgg := groupingKeys(itemExprs(t.Items))
			if !hasAgg {
				return node, sql.SameTree, nil
			}
			return &plan.Projection{Items: t.Items, Distinct: t.Distinct, Input: plan.NewGroupBy(keys, nil, t.Input)}, sql.NewTree, nil

		case *plan.WithClause:
			if _, ok := t.Input.(*plan.GroupBy); ok {
				return node, sql.SameTree, nil
			}
			keys, hasAgg := groupingKeys(itemExprs(t.Items))
			if !hasAgg {
				return node, sql.SameTree, nil
			}
			cp := *t
			cp.Input = plan.NewGroupBy(keys, nil, t.Input)
			return &cp, sql.NewTree, nil
		}
		return node, sql.SameTree, nil
	})
}

func itemExprs(items []plan.ProjectionItem) []expression.Expression {
	out := make([]expression.Expression, len(items))
	for i, it := range items {
		out[i] = it.Expr
	}
	return out
}

func groupingKeys(exprs []expression.Expression) ([]expression.Expression, bool) {
	var keys []expression.Expression
	hasAgg := false
	for _, e := range exprs {
		if containsAggregate(e) {
			hasAgg = true
			continue
		}
		keys = append(keys, e)
	}
	return keys, hasAgg
}

func containsAggregate(e expression.Expression) bool {
	found := false
	transform.InspectExpr(e, func(e expression.Expression) bool {
		if _, ok := e.(*expression.AggregateFnCall); ok {
			found = true
			return false
		}
		return true
	})
	return found
}
