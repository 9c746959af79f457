// Package plan implements the Logical Plan IR from SPEC_FULL.md §3.2: a
// recursive tree of relational-plus-graph operators produced by the plan
// builder, enriched and rewritten in place by the analyzer and optimizer
// passes, and finally lowered into the render plan. Every variant is a
// small value type in its own file implementing the Node interface below,
// matching the teacher's one-file-per-node-kind layout in sql/plan.
package plan

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// Node is any node of the Logical Plan tree.
type Node interface {
	fmt.Stringer
	// Children returns this node's owned child plans, in a stable order.
	Children() []Node
	// WithChildren returns a copy of this node with its children replaced
	// by newChildren, which must have the same length as Children().
	WithChildren(newChildren []Node) (Node, error)
}

// ExpressionsNode is implemented by nodes that carry expressions directly
// (Filter's predicate, Projection's items, ...), so that transform.Exprs
// can rewrite them without a type switch over every variant.
type ExpressionsNode interface {
	Node
	Expressions() []expression.Expression
	WithExpressions(newExprs []expression.Expression) (Node, error)
}

func withNoChildren(self Node, newChildren []Node) (Node, error) {
	if len(newChildren) != 0 {
		return nil, fmt.Errorf("%T: expected 0 children, got %d", self, len(newChildren))
	}
	return self, nil
}

func expectChildren(self Node, newChildren []Node, n int) error {
	if len(newChildren) != n {
		return fmt.Errorf("%T: expected %d children, got %d", self, n, len(newChildren))
	}
	return nil
}

func expectExpressions(self Node, newExprs []expression.Expression, n int) error {
	if len(newExprs) != n {
		return fmt.Errorf("%T: expected %d expressions, got %d", self, n, len(newExprs))
	}
	return nil
}
