package optimizer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/analyzer"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// CartesianJoinExtraction is optimizer pass 2 (§4.4.2): a Filter sitting
// directly over a CartesianProduct has its straddling conjuncts (ones
// whose free aliases touch both sides) promoted into the product's
// JoinCondition; conjuncts that stay on one side, or that carry a
// correlated subquery, are left behind in the Filter — never promoted,
// since the target dialect forbids a correlated subquery inside JOIN ON
// (§8, invariant 5).
func CartesianJoinExtraction(ctx *sql.Context, pctx *analyzer.PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	return transform.Node(n, func(node plan.Node) (plan.Node, sql.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, sql.SameTree, nil
		}
		cpNode, ok := f.Input.(*plan.CartesianProduct)
		if !ok {
			return node, sql.SameTree, nil
		}

		left := collectAliases(cpNode.Left)
		right := collectAliases(cpNode.Right)

		var joinConjuncts, remaining []expression.Expression
		moved := false
		for _, conjunct := range expression.SplitConjuncts(f.Predicate) {
			if containsSubquery(conjunct) {
				remaining = append(remaining, conjunct)
				continue
			}
			free := expression.FreeAliases(conjunct)
			if straddles(free, left, right) {
				joinConjuncts = append(joinConjuncts, conjunct)
				moved = true
				continue
			}
			remaining = append(remaining, conjunct)
		}
		if !moved {
			return node, sql.SameTree, nil
		}

		if cpNode.JoinCondition != nil {
			joinConjuncts = append([]expression.Expression{cpNode.JoinCondition}, joinConjuncts...)
		}
		ncp := *cpNode
		ncp.JoinCondition = expression.NewAnd(joinConjuncts...)

		if len(remaining) == 0 {
			return &ncp, sql.NewTree, nil
		}
		return plan.NewFilter(expression.NewAnd(remaining...), &ncp), sql.NewTree, nil
	})
}

func straddles(free, left, right map[string]bool) bool {
	hasLeft, hasRight := false, false
	for alias := range free {
		if left[alias] {
			hasLeft = true
		}
		if right[alias] {
			hasRight = true
		}
	}
	return hasLeft && hasRight
}

// collectAliases gathers every alias a subtree binds, so
// CartesianJoinExtraction can tell which side of the product a conjunct's
// free aliases fall on.
func collectAliases(n plan.Node) map[string]bool {
	out := map[string]bool{}
	transform.Inspect(n, func(node plan.Node) bool {
		switch t := node.(type) {
		case *plan.GraphNode:
			out[t.Alias] = true
		case *plan.GraphRel:
			out[t.Alias] = true
		case *plan.GraphJoins:
			out[t.AnchorAlias] = true
			for _, a := range t.Aliases {
				out[a] = true
			}
			for _, j := range t.Joins {
				out[j.Alias] = true
			}
		case *plan.Unwind:
			out[t.Alias] = true
		}
		return true
	})
	return out
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
