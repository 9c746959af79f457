package analyzer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// FilterTagging is analyzer pass 3 (§4.3.3): every Filter conjunct whose
// free aliases are a singleton moves into that alias's TableCtx.Filters
// and is dropped from the Filter node; a conjunct touching more than one
// alias, or containing a correlated subquery, stays behind.
func FilterTagging(ctx *sql.Context, pctx *PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	return transform.Node(n, func(node plan.Node) (plan.Node, sql.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, sql.SameTree, nil
		}

		var remaining []expression.Expression
		moved := false
		for _, conjunct := range expression.SplitConjuncts(f.Predicate) {
			if containsSubquery(conjunct) {
				remaining = append(remaining, conjunct)
				continue
			}
			free := expression.FreeAliases(conjunct)
			if len(free) == 1 {
				for alias := range free {
					tc := pctx.Table(alias)
					tc.Filters = append(tc.Filters, conjunct)
				}
				moved = true
				continue
			}
			remaining = append(remaining, conjunct)
		}

		if !moved {
			return node, sql.SameTree, nil
		}
		if len(remaining) == 0 {
			return f.Input, sql.NewTree, nil
		}
		return plan.NewFilter(expression.NewAnd(remaining...), f.Input), sql.NewTree, nil
	})
}

func containsSubquery(e expression.Expression) bool {
	found := false
	transform.InspectExpr(e, func(e expression.Expression) bool {
		switch e.(type) {
		case *expression.ExistsSubquery, *expression.InSubquery:
			found = true
			return false
		}
		return true
	})
	return found
}
