// Package analyzer implements the analyzer passes (C5) from SPEC_FULL.md
// §4.3: a fixed-order sequence of Rules, each rewriting the Logical Plan
// IR while threading a PlanCtx of per-alias scope information, grounded
// on the teacher's own sql/analyzer (a Rule list run to fixpoint by a
// bounded Batch, same TreeIdentity signal sql/transform already carries).
package analyzer

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// VarSource is what a bound alias actually denotes, per §3.6: a column
// exported by an enclosing WITH, a node/relationship schema entity, or a
// bind parameter.
type VarSource int

const (
	SourceUnknown VarSource = iota
	SourceCteColumn
	SourceSchemaEntity
	SourceParameter
)

// TypedVariable carries the extra bookkeeping a path variable needs: the
// endpoints and bounds of the GraphRel it names, so a later reference to
// `length(p)`/`nodes(p)` (or a bare shortestPath result) can be resolved
// without re-walking the tree.
type TypedVariable struct {
	Start        string
	End          string
	Relationship string
	MinLength    int
	MaxLength    int // -1 means unbounded
	IsShortest   bool
}

// TableCtx is the per-alias bookkeeping GraphJoinInference and
// FilterTagging accumulate, per §3.4.
type TableCtx struct {
	Alias             string
	Labels            []string
	IsRelation        bool
	IsExplicitlyNamed bool
	ConnectedLabels   []string
	Filters           []expression.Expression
	UseBitmapStrategy bool
	CteName           string
}

// PlanCtx is the mutable per-compilation state threaded through every
// analyzer pass, per §3.4. Analyze creates one per compilation, and it is
// never shared across compilations.
type PlanCtx struct {
	Schema    *catalog.Schema
	Tables    map[string]*TableCtx
	TypedVars map[string]*TypedVariable
	// BarrierAliases maps a WithClause's synthetic CTE name to the set of
	// aliases ScopeSplitter found live across that barrier.
	BarrierAliases map[string][]string
	aliasSeq       int
}

// NewPlanCtx returns an empty PlanCtx bound to schema.
func NewPlanCtx(schema *catalog.Schema) *PlanCtx {
	return &PlanCtx{
		Schema:         schema,
		Tables:         map[string]*TableCtx{},
		TypedVars:      map[string]*TypedVariable{},
		BarrierAliases: map[string][]string{},
	}
}

// Table returns (creating if absent) the TableCtx for alias.
func (p *PlanCtx) Table(alias string) *TableCtx {
	t, ok := p.Tables[alias]
	if !ok {
		t = &TableCtx{Alias: alias}
		p.Tables[alias] = t
	}
	return t
}

// NextSyntheticName returns a fresh CTE/alias name with the given prefix,
// unique within this PlanCtx (the counter is per compilation).
func (p *PlanCtx) NextSyntheticName(prefix string) string {
	p.aliasSeq++
	return fmt.Sprintf("_%s%d", prefix, p.aliasSeq)
}
