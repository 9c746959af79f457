package analyzer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// DuplicateScanElimination is analyzer pass 5 (§4.3.5): when the same
// alias and label is bound by more than one pattern element (a repeated
// node variable across comma-separated patterns), only the first scan is
// kept; later occurrences collapse to Empty since the shared alias's
// identity is already established.
func DuplicateScanElimination(ctx *sql.Context, pctx *PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	seen := map[string]bool{}
	return transform.Node(n, func(node plan.Node) (plan.Node, sql.TreeIdentity, error) {
		gn, ok := node.(*plan.GraphNode)
		if !ok || gn.Label == "" {
			return node, sql.SameTree, nil
		}
		key := gn.Alias + ":" + gn.Label
		if !seen[key] {
			seen[key] = true
			return node, sql.SameTree, nil
		}
		if _, alreadyEmpty := gn.Input.(*plan.Empty); alreadyEmpty {
			return node, sql.SameTree, nil
		}
		return plan.NewGraphNode(gn.Alias, gn.Label, plan.NewEmpty()), sql.NewTree, nil
	})
}
