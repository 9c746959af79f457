// Package planbuilder lowers a parsed cypher/ast.Query into the Logical
// Plan IR (sql/plan), one clause at a time, left to right, threading a
// scope of bound pattern aliases. It is grounded on the teacher's own
// sql/planbuilder package: a PlanBuilder holding per-compilation state, a
// scope type carrying alias bindings, and one build<Clause> method per
// clause kind.
package planbuilder

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/cypher/ast"
	"github.com/brahmand-sql/cyphersql/function"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// PlanBuilder lowers one parsed Query against one Schema. It is not
// reused across queries: its alias counter starts at zero in New, and
// Build does not reset it.
type PlanBuilder struct {
	schema  *catalog.Schema
	aliasID int
}

// New returns a PlanBuilder bound to schema.
func New(schema *catalog.Schema) *PlanBuilder {
	return &PlanBuilder{schema: schema}
}

// Build lowers q into a single Logical Plan tree, one per UNION branch
// combined via plan.Union.
func (b *PlanBuilder) Build(q *ast.Query) (plan.Node, error) {
	if len(q.Parts) == 0 {
		return nil, cyphererr.ErrUnsupportedConstruct.New("empty query")
	}
	nodes := make([]plan.Node, len(q.Parts))
	for i, part := range q.Parts {
		n, err := b.buildSinglePartQuery(part)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	acc := nodes[0]
	for i := 1; i < len(nodes); i++ {
		all := false
		if i-1 < len(q.UnionAll) {
			all = q.UnionAll[i-1]
		}
		acc = plan.NewUnion(all, acc, nodes[i])
	}
	return acc, nil
}

func (b *PlanBuilder) buildSinglePartQuery(part *ast.SinglePartQuery) (plan.Node, error) {
	sc := newScope(nil)
	var node plan.Node
	var err error
	for _, clause := range part.Clauses {
		switch c := clause.(type) {
		case *ast.Match:
			node, err = b.buildMatch(sc, node, c)
		case *ast.Unwind:
			node, err = b.buildUnwind(sc, node, c)
		case *ast.With:
			node, sc, err = b.buildWith(sc, node, c)
		case *ast.Call:
			node, err = b.buildCall(sc, node, c)
		default:
			err = cyphererr.ErrUnsupportedConstruct.New(fmt.Sprintf("%T", c))
		}
		if err != nil {
			return nil, err
		}
	}
	if part.Return != nil {
		node, err = b.buildReturn(sc, node, part.Return)
		if err != nil {
			return nil, err
		}
	}
	if node == nil {
		return nil, cyphererr.ErrUnsupportedConstruct.New("query has no bound plan")
	}
	return node, nil
}

// nextAlias synthesizes a unique name for an anonymous pattern element.
func (b *PlanBuilder) nextAlias(prefix string) string {
	b.aliasID++
	return fmt.Sprintf("_%s%d", prefix, b.aliasID)
}

// isAggregateCall decides whether a FunctionCall is an aggregate (needs
// GROUP BY handling downstream), deferring to the function registry (C9)
// rather than carrying its own classification.
func isAggregateCall(name string) bool {
	return function.IsAggregate(name)
}
