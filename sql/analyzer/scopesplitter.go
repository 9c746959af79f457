package analyzer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// ScopeSplitter is analyzer pass 1 (§4.3.1): it marks every WithClause
// with a unique synthetic CTE name and records the set of aliases live
// across that barrier, so render-plan lowering can turn each one into a
// named CTE plus a fresh outer SELECT.
func ScopeSplitter(ctx *sql.Context, pctx *PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	return transform.Node(n, func(node plan.Node) (plan.Node, sql.TreeIdentity, error) {
		wc, ok := node.(*plan.WithClause)
		if !ok || wc.Name != "" {
			return node, sql.SameTree, nil
		}
		cp := *wc
		cp.Name = pctx.NextSyntheticName("cte")
		pctx.BarrierAliases[cp.Name] = append([]string{}, wc.ExportedAliases...)
		return &cp, sql.NewTree, nil
	})
}
