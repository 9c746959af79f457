package analyzer

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// Rule is one analyzer pass, matching the teacher's own analyzer rule
// signature: it takes the compilation Context, the running PlanCtx, the
// plan root, and the active schema, and returns the (possibly rewritten)
// plan plus a TreeIdentity telling the driver whether anything changed.
type Rule func(ctx *sql.Context, pctx *PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, sql.TreeIdentity, error)

// RuleEntry pairs a Rule with a name for tracing/debugging, the same
// bookkeeping the teacher's analyzer.Rule struct carries alongside its
// RuleFunc.
type RuleEntry struct {
	Name string
	Fn   Rule
}

// Batch runs its rule list once per round, in order, up to maxIterations
// rounds, stopping as soon as a full round makes no change. This is the
// "bounded driver may iterate until quiescence" language from §4.3.
type Batch struct {
	rules         []RuleEntry
	maxIterations int
}

// defaultMaxIterations bounds every Batch so a non-monotonic rule can
// never hang compilation; SPEC_FULL.md's termination argument expects
// every individual rule to be idempotent or strictly decreasing, this is
// only the backstop.
const defaultMaxIterations = 8

// NewBatch builds a Batch from a fixed-order rule list.
func NewBatch(rules ...RuleEntry) *Batch {
	return &Batch{rules: rules, maxIterations: defaultMaxIterations}
}

// Run applies every rule in order, repeating the full rule list until a
// round changes nothing or maxIterations is reached. It checks ctx before
// each rule and returns ctx's error once ctx is cancelled.
func (b *Batch) Run(ctx *sql.Context, pctx *PlanCtx, n plan.Node, schema *catalog.Schema) (plan.Node, error) {
	for i := 0; i < b.maxIterations; i++ {
		round := sql.SameTree
		for _, r := range b.rules {
			if ctx.Cancelled() {
				return nil, ctx.Err()
			}
			span, rctx := ctx.Span(r.Name)
			next, same, err := r.Fn(rctx, pctx, n, schema)
			span.Finish()
			if err != nil {
				return nil, err
			}
			n = next
			round = round.AndThen(same)
		}
		if round == sql.SameTree {
			return n, nil
		}
	}
	return n, nil
}
