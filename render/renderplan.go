// Package render implements the Render Plan IR (C7) from SPEC_FULL.md
// §4.5: the lowering stage that turns an analyzed-and-optimized Logical
// Plan into the flatter, SQL-shaped tree sqlgen (C8) serializes directly.
// Grounded on the logical plan's own one-type-per-file layout in sql/plan,
// a RenderPlan carries no Cypher-specific concepts left: by the time a
// value of this type exists, every GraphNode/GraphRel/GraphJoins has been
// resolved down to physical table names and join conditions.
package render

import (
	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// JoinKind is the SQL join form a Join entry renders as.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinCross
	// JoinArray renders ClickHouse's ARRAY JOIN <expr> AS alias, the form
	// a surviving UNWIND lowers to once CollectUnwindElimination hasn't
	// already cancelled it against an adjacent collect().
	JoinArray
)

// FromClause is a render plan's single primary row source.
type FromClause struct {
	Table string
	Alias string
	Final bool
}

// Join is one joined row source following FromClause.
type Join struct {
	Kind  JoinKind
	Table string
	Alias string
	On    expression.Expression // nil for JoinCross and JoinArray's list operand carries the expression instead
}

// OutputColumn is one projected SELECT list entry.
type OutputColumn struct {
	Expr  expression.Expression
	Alias string
}

// OrderTerm is one ORDER BY term.
type OrderTerm struct {
	Expr       expression.Expression
	Descending bool
}

// CTE is one entry of a render plan's WITH list. A structured CTE carries
// its own nested RenderPlan (Plan); an opaque one carries pre-rendered SQL
// text directly (Raw), used for the hand-assembled recursive CTE bodies
// variable-length path and PageRank lowering build (§4.5.1, §4.5.2), which
// have no natural RenderPlan shape of their own.
type CTE struct {
	Name      string
	Recursive bool
	Plan      *RenderPlan
	Raw       string
}

// SetOp is a UNION / UNION ALL sequence of independently lowered branches.
type SetOp struct {
	All    bool
	Inputs []*RenderPlan
}

// RenderPlan is the lowered, SQL-shaped form of a compiled query (or of one
// structured CTE, or of one UNION branch). Set is non-nil exactly when this
// RenderPlan represents a UNION/UNION ALL sequence, in which case every
// other field except CTEs is unused.
type RenderPlan struct {
	CTEs              []CTE
	Set               *SetOp
	From              FromClause
	Joins             []Join
	Where             expression.Expression
	GroupBy           []expression.Expression
	Having            expression.Expression
	Distinct          bool
	Columns           []OutputColumn
	OrderBy           []OrderTerm
	Skip              expression.Expression
	Limit             expression.Expression
	// MaxRecursiveDepth is the finite upper bound sqlgen emits as a
	// trailing SETTINGS max_recursive_cte_evaluation_depth clause; zero
	// means no recursive CTE with a finite bound was lowered into this
	// plan (an unbounded `*min..` path carries no depth guard at all, and
	// sqlgen then takes the SETTINGS value from its own Config).
	MaxRecursiveDepth int
}

// HasRecursiveCTE reports whether any CTE in this plan (including nested
// structured ones) is flagged recursive, which decides WITH vs. WITH
// RECURSIVE at generation time.
func (r *RenderPlan) HasRecursiveCTE() bool {
	for _, c := range r.CTEs {
		if c.Recursive {
			return true
		}
		if c.Plan != nil && c.Plan.HasRecursiveCTE() {
			return true
		}
	}
	return false
}
