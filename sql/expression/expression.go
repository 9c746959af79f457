// Package expression implements the Logical Expression sum type from
// SPEC_FULL.md §3.3: a closed set of leaf and composite node kinds, every
// one of them a value implementing the Expression interface below.
// Matching the teacher's sql/expression package, the concrete types live in
// small files grouped by kind, and each exposes String() for plan-printing/
// debugging and Children() for the generic tree-walkers in sql/transform.
package expression

import "fmt"

// Expression is any node of the Logical Expression tree.
type Expression interface {
	fmt.Stringer
	// Children returns this expression's immediate sub-expressions, in
	// evaluation order. Leaves return nil.
	Children() []Expression
	// WithChildren returns a copy of this expression with its children
	// replaced by newChildren, which must have the same length as
	// Children(). Used by transform.Expr to rebuild a tree bottom-up.
	WithChildren(newChildren []Expression) (Expression, error)
}

// Aliasable is implemented by expressions that can carry a RETURN/WITH
// item alias (`RETURN x.name AS n`).
type Aliasable interface {
	Expression
	Alias() string
}
