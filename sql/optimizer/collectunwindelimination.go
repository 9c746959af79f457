package optimizer

import (
	"strings"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/analyzer"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/transform"
)

// CollectUnwindElimination is optimizer pass 3 (§4.4.3): the idempotent
// round trip `WITH collect(x) AS xs ... UNWIND xs AS y` removes both
// stages. Only the canonical single-variable shape is recognized
// (`collect(<alias>)`, unwound into a bare alias) — anything else is left
// for a later round or for the generator to render literally.
//
// One match is collapsed per call; the surrounding Batch's fixpoint loop
// picks up any further occurrences on its next round, so a single
// renameFrom/renameTo pair per call never has to arbitrate between two
// simultaneous matches.
func CollectUnwindElimination(ctx *sql.Context, pctx *analyzer.PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error) {
	var renameFrom, renameTo string
	done := false

	replaced, same, err := transform.Node(n, func(node plan.Node) (plan.Node, sql.TreeIdentity, error) {
		if done {
			return node, sql.SameTree, nil
		}
		uw, ok := node.(*plan.Unwind)
		if !ok {
			return node, sql.SameTree, nil
		}
		newNode, from, to, ok := collapseCollectUnwind(uw)
		if !ok {
			return node, sql.SameTree, nil
		}
		done = true
		renameFrom, renameTo = from, to
		return newNode, sql.NewTree, nil
	})
	if err != nil {
		return nil, sql.SameTree, err
	}
	if same == sql.SameTree {
		return n, sql.SameTree, nil
	}

	// The UNWIND-bound name no longer exists; every reference to it
	// downstream (now upstream of the node we just rewrote, bottom-up)
	// resolves to the collect's own source alias instead.
	renamed, _, err := transform.Exprs(replaced, func(_ plan.Node, e expression.Expression) (expression.Expression, sql.TreeIdentity, error) {
		return transform.Expr(e, func(leaf expression.Expression) (expression.Expression, sql.TreeIdentity, error) {
			ta, ok := leaf.(*expression.TableAlias)
			if !ok || ta.Name != renameFrom {
				return leaf, sql.SameTree, nil
			}
			return expression.NewTableAlias(renameTo), sql.NewTree, nil
		})
	})
	if err != nil {
		return nil, sql.SameTree, err
	}
	return renamed, sql.NewTree, nil
}

// collapseCollectUnwind recognizes `Unwind{List: TableAlias(xs), Alias: y,
// Input: WithClause{..., xs: collect(x), ...}}` and returns its
// replacement, plus the (y -> x) rename the caller must apply tree-wide.
func collapseCollectUnwind(uw *plan.Unwind) (plan.Node, string, string, bool) {
	wc, ok := uw.Input.(*plan.WithClause)
	if !ok {
		return nil, "", "", false
	}
	listAlias, ok := uw.List.(*expression.TableAlias)
	if !ok {
		return nil, "", "", false
	}

	idx := -1
	for i, it := range wc.Items {
		if it.Alias == listAlias.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, "", "", false
	}
	agg, ok := wc.Items[idx].Expr.(*expression.AggregateFnCall)
	if !ok || !strings.EqualFold(agg.Name, "collect") || len(agg.Args) != 1 {
		return nil, "", "", false
	}
	sourceAlias, ok := agg.Args[0].(*expression.TableAlias)
	if !ok {
		return nil, "", "", false
	}

	if len(wc.Items) == 1 {
		if !agg.Distinct {
			return wc.Input, uw.Alias, sourceAlias.Name, true
		}
		distinctWc := plan.NewWithClause(
			[]plan.ProjectionItem{{Expr: expression.NewTableAlias(sourceAlias.Name), Alias: sourceAlias.Name}},
			wc.Input,
		)
		distinctWc.Distinct = true
		distinctWc.ExportedAliases = []string{sourceAlias.Name}
		return distinctWc, uw.Alias, sourceAlias.Name, true
	}

	cp := *wc
	items := append([]plan.ProjectionItem{}, wc.Items[:idx]...)
	items = append(items, wc.Items[idx+1:]...)
	cp.Items = items
	cp.ExportedAliases = promoteAlias(wc.ExportedAliases, listAlias.Name, sourceAlias.Name)
	return &cp, uw.Alias, sourceAlias.Name, true
}

func promoteAlias(aliases []string, oldName, newName string) []string {
	out := make([]string, 0, len(aliases)+1)
	replaced := false
	for _, a := range aliases {
		if a == oldName {
			out = append(out, newName)
			replaced = true
			continue
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, newName)
	}
	return out
}
