// Package optimizer implements the optimizer passes (C6) from
// SPEC_FULL.md §4.4: rewrites that run over the already-analyzed plan,
// consuming the PlanCtx analyzer.Analyze produced rather than
// re-deriving alias/filter bookkeeping from scratch.
package optimizer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/analyzer"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// FilterIntoScan is optimizer pass 1a (§4.4.1): a standalone GraphNode
// (one with no relationship, so GraphJoinInference never touched it)
// gets its alias's tagged filters wrapped directly around its Input scan.
func FilterIntoScan(ctx *sql.Context, pctx *analyzer.PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	return transform.Node(n, func(node plan.Node) (plan.Node, sql.TreeIdentity, error) {
		gn, ok := node.(*plan.GraphNode)
		if !ok {
			return node, sql.SameTree, nil
		}
		tc, ok := pctx.Tables[gn.Alias]
		if !ok || len(tc.Filters) == 0 {
			return node, sql.SameTree, nil
		}
		predicate := expression.NewAnd(tc.Filters...)
		tc.Filters = nil
		return plan.NewGraphNode(gn.Alias, gn.Label, plan.NewFilter(predicate, gn.Input)), sql.NewTree, nil
	})
}

// FilterIntoGraphRel is optimizer pass 1b (§4.4.1): once GraphJoinInference
// has collapsed a relationship chain into a GraphJoins node, its
// non-anchor aliases no longer have a scan node of their own to wrap —
// their tagged filters instead AND onto the matching JoinSpec.On, and the
// anchor alias's filters wrap its surviving Input scan exactly as
// FilterIntoScan does.
func FilterIntoGraphRel(ctx *sql.Context, pctx *analyzer.PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	return transform.Node(n, func(node plan.Node) (plan.Node, sql.TreeIdentity, error) {
		gj, ok := node.(*plan.GraphJoins)
		if !ok {
			return node, sql.SameTree, nil
		}
		changed := false
		cp := *gj

		if tc, ok := pctx.Tables[gj.AnchorAlias]; ok && len(tc.Filters) > 0 {
			cp.Input = plan.NewFilter(expression.NewAnd(tc.Filters...), cp.Input)
			tc.Filters = nil
			changed = true
		}

		joins := append([]plan.JoinSpec{}, gj.Joins...)
		for i, j := range joins {
			tc, ok := pctx.Tables[j.Alias]
			if !ok || len(tc.Filters) == 0 {
				continue
			}
			joins[i].On = expression.NewBinary(expression.OpAnd, j.On, expression.NewAnd(tc.Filters...))
			tc.Filters = nil
			changed = true
		}
		if !changed {
			return node, sql.SameTree, nil
		}
		cp.Joins = joins
		return &cp, sql.NewTree, nil
	})
}
