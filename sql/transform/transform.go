// Package transform provides the generic bottom-up tree-walk helpers that
// every analyzer and optimizer pass is built on, mirroring the teacher's
// sql/visit package: a pass supplies a callback returning a rewritten node
// plus a sql.TreeIdentity, and the walker folds NewTree up through every
// ancestor so the fixpoint driver knows whether to run again.
package transform

import (
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// NodeFunc rewrites a single node. It must not recurse into n's children;
// Node calls it bottom-up, once per node in the tree.
type NodeFunc func(n plan.Node) (plan.Node, sql.TreeIdentity, error)

// Node walks n bottom-up, applying f to every node including n itself, and
// rebuilding each ancestor via WithChildren whenever a descendant changed.
func Node(n plan.Node, f NodeFunc) (plan.Node, sql.TreeIdentity, error) {
	children := n.Children()
	if len(children) == 0 {
		return f(n)
	}

	newChildren := make([]plan.Node, len(children))
	overall := sql.SameTree
	for i, c := range children {
		nc, same, err := Node(c, f)
		if err != nil {
			return nil, sql.SameTree, err
		}
		newChildren[i] = nc
		overall = overall.AndThen(same)
	}

	cur := n
	if overall == sql.NewTree {
		var err error
		cur, err = n.WithChildren(newChildren)
		if err != nil {
			return nil, sql.SameTree, err
		}
	}

	newN, same, err := f(cur)
	if err != nil {
		return nil, sql.SameTree, err
	}
	return newN, overall.AndThen(same), nil
}

// ExprFunc rewrites a single expression, given the plan.Node it was found
// in (so a pass can, for instance, only rewrite expressions under a
// Filter).
type ExprFunc func(n plan.Node, e expression.Expression) (expression.Expression, sql.TreeIdentity, error)

// Exprs walks every node of n that implements plan.ExpressionsNode and
// rewrites each of its expressions bottom-up via f, then reassembles the
// owning node with WithExpressions.
func Exprs(n plan.Node, f ExprFunc) (plan.Node, sql.TreeIdentity, error) {
	return Node(n, func(n plan.Node) (plan.Node, sql.TreeIdentity, error) {
		en, ok := n.(plan.ExpressionsNode)
		if !ok {
			return n, sql.SameTree, nil
		}
		exprs := en.Expressions()
		if len(exprs) == 0 {
			return n, sql.SameTree, nil
		}

		newExprs := make([]expression.Expression, len(exprs))
		overall := sql.SameTree
		for i, e := range exprs {
			ne, same, err := Expr(e, func(e expression.Expression) (expression.Expression, sql.TreeIdentity, error) {
				return f(n, e)
			})
			if err != nil {
				return nil, sql.SameTree, err
			}
			newExprs[i] = ne
			overall = overall.AndThen(same)
		}
		if overall == sql.SameTree {
			return n, sql.SameTree, nil
		}
		newN, err := en.WithExpressions(newExprs)
		return newN, sql.NewTree, err
	})
}

// LeafExprFunc rewrites a single expression subtree, independent of the
// plan.Node it lives under.
type LeafExprFunc func(e expression.Expression) (expression.Expression, sql.TreeIdentity, error)

// Expr walks e bottom-up, applying f to every subexpression including e.
func Expr(e expression.Expression, f LeafExprFunc) (expression.Expression, sql.TreeIdentity, error) {
	if e == nil {
		return nil, sql.SameTree, nil
	}
	children := e.Children()
	if len(children) == 0 {
		return f(e)
	}

	newChildren := make([]expression.Expression, len(children))
	overall := sql.SameTree
	for i, c := range children {
		nc, same, err := Expr(c, f)
		if err != nil {
			return nil, sql.SameTree, err
		}
		newChildren[i] = nc
		overall = overall.AndThen(same)
	}

	cur := e
	if overall == sql.NewTree {
		var err error
		cur, err = e.WithChildren(newChildren)
		if err != nil {
			return nil, sql.SameTree, err
		}
	}

	newE, same, err := f(cur)
	if err != nil {
		return nil, sql.SameTree, err
	}
	return newE, overall.AndThen(same), nil
}

// Inspect walks n top-down, calling f on every node until f returns false
// or the tree is exhausted. Used by read-only passes (scope collection,
// validation) that don't need to rewrite anything.
func Inspect(n plan.Node, f func(plan.Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, f)
	}
}

// InspectExpressions walks every expression reachable from n, calling f on
// each until it returns false.
func InspectExpressions(n plan.Node, f func(expression.Expression) bool) {
	Inspect(n, func(n plan.Node) bool {
		en, ok := n.(plan.ExpressionsNode)
		if !ok {
			return true
		}
		for _, e := range en.Expressions() {
			InspectExpr(e, f)
		}
		return true
	})
}

// InspectExpr walks a single expression tree top-down.
func InspectExpr(e expression.Expression, f func(expression.Expression) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, c := range e.Children() {
		InspectExpr(c, f)
	}
}
