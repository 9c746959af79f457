package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

func TestNodeRewritesLeaf(t *testing.T) {
	n := plan.NewFilter(
		expression.NewBinary(expression.OpEq, expression.NewColumn("p", "age"), expression.NewLiteral(30)),
		plan.NewViewScan("person", "p", "id"),
	)

	out, same, err := Node(n, func(n plan.Node) (plan.Node, sql.TreeIdentity, error) {
		if vs, ok := n.(*plan.ViewScan); ok {
			cp := *vs
			cp.UseFinal = true
			return &cp, sql.NewTree, nil
		}
		return n, sql.SameTree, nil
	})
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)

	filter := out.(*plan.Filter)
	assert.True(t, filter.Input.(*plan.ViewScan).UseFinal)
}

func TestNodeSameTreeWhenUnchanged(t *testing.T) {
	n := plan.NewViewScan("person", "p", "id")
	out, same, err := Node(n, func(n plan.Node) (plan.Node, sql.TreeIdentity, error) {
		return n, sql.SameTree, nil
	})
	require.NoError(t, err)
	assert.Equal(t, sql.SameTree, same)
	assert.Same(t, n, out)
}

func TestExprsRewritesFilterPredicate(t *testing.T) {
	n := plan.NewFilter(
		expression.NewBinary(expression.OpEq, expression.NewColumn("p", "age"), expression.NewLiteral(30)),
		plan.NewViewScan("person", "p", "id"),
	)

	out, same, err := Exprs(n, func(owner plan.Node, e expression.Expression) (expression.Expression, sql.TreeIdentity, error) {
		if lit, ok := e.(*expression.Literal); ok {
			if v, ok := lit.Value.(int); ok {
				return expression.NewLiteral(v + 1), sql.NewTree, nil
			}
		}
		return e, sql.SameTree, nil
	})
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)
	assert.Equal(t, "Filter((p.age = 31))\n    ViewScan(person AS p)", out.String())
}

func TestInspectVisitsEveryNode(t *testing.T) {
	n := plan.NewFilter(
		expression.NewLiteral(true),
		plan.NewViewScan("person", "p", "id"),
	)

	var kinds []string
	Inspect(n, func(n plan.Node) bool {
		switch n.(type) {
		case *plan.Filter:
			kinds = append(kinds, "filter")
		case *plan.ViewScan:
			kinds = append(kinds, "scan")
		}
		return true
	})
	assert.Equal(t, []string{"filter", "scan"}, kinds)
}

func TestInspectExpressionsVisitsNestedExprs(t *testing.T) {
	n := plan.NewFilter(
		expression.NewBinary(expression.OpAnd,
			expression.NewUnary(expression.OpIsNotNull, expression.NewColumn("p", "age")),
			expression.NewLiteral(true),
		),
		plan.NewViewScan("person", "p", "id"),
	)

	count := 0
	InspectExpressions(n, func(e expression.Expression) bool {
		count++
		return true
	})
	// AND, IS NOT NULL, Column, Literal(true)
	assert.Equal(t, 4, count)
}
