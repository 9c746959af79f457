package analyzer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// DefaultBatch is the fixed-order pass sequence from §4.3: scopes split
// first so VariableResolver can see WITH barriers, filters tag onto
// tables before join inference needs them, GroupBy insertion runs before
// the join shape is finalized so it only ever sees plain Projection/
// WithClause items, and duplicate-scan elimination runs last since it
// must see the fully-formed GraphNode tree join inference produced.
func DefaultBatch() *Batch {
	return NewBatch(
		RuleEntry{Name: "scope_splitter", Fn: ScopeSplitter},
		RuleEntry{Name: "variable_resolver", Fn: VariableResolver},
		RuleEntry{Name: "filter_tagging", Fn: FilterTagging},
		RuleEntry{Name: "group_by_insertion", Fn: GroupByInsertion},
		RuleEntry{Name: "graph_join_inference", Fn: GraphJoinInference},
		RuleEntry{Name: "duplicate_scan_elimination", Fn: DuplicateScanElimination},
	)
}

// Analyze runs the default analyzer pipeline over n and returns the
// rewritten plan together with the PlanCtx accumulated along the way, for
// the optimizer and render-plan lowering stages to consume.
func Analyze(ctx *sql.Context, schema *catalog.Schema, n plan.Node) (plan.Node, *PlanCtx, error) {
	pctx := NewPlanCtx(schema)
	span, ctx := ctx.Span("analyzer.Analyze")
	defer span.Finish()

	out, err := DefaultBatch().Run(ctx, pctx, n, schema)
	if err != nil {
		return nil, nil, err
	}
	return out, pctx, nil
}
