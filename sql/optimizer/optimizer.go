package optimizer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/analyzer"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// DefaultBatch is the fixed-order optimizer pass sequence from §4.4: the
// two filter-pushdown passes run before CartesianJoinExtraction so a
// conjunct already pushed onto a scan or a GraphJoins join condition
// isn't also considered for promotion into a CartesianProduct's join
// condition, and CollectUnwindElimination runs last since it only ever
// touches a WithClause/Unwind pair untouched by the others. The same
// bounded Batch driver the analyzer uses applies unchanged, since every
// optimizer pass here shares the analyzer.Rule signature.
func DefaultBatch() *analyzer.Batch {
	return analyzer.NewBatch(
		analyzer.RuleEntry{Name: "filter_into_scan", Fn: FilterIntoScan},
		analyzer.RuleEntry{Name: "filter_into_graph_rel", Fn: FilterIntoGraphRel},
		analyzer.RuleEntry{Name: "cartesian_join_extraction", Fn: CartesianJoinExtraction},
		analyzer.RuleEntry{Name: "collect_unwind_elimination", Fn: CollectUnwindElimination},
	)
}

// Optimize runs the default optimizer pipeline over n, reusing the
// PlanCtx an earlier analyzer.Analyze call produced.
func Optimize(ctx *sql.Context, pctx *analyzer.PlanCtx, schema *catalog.Schema, n plan.Node) (plan.Node, error) {
	span, ctx := ctx.Span("optimizer.Optimize")
	defer span.Finish()
	return DefaultBatch().Run(ctx, pctx, n, schema)
}
