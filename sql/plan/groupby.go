package plan

import (
	"fmt"
	"strings"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// GroupBy is the aggregation stage, installed by the analyzer whenever a
// Projection or WithClause item contains an AggregateFnCall. Keys are the
// non-aggregate projection expressions; Having is an optional post-
// aggregation filter.
type GroupBy struct {
	Keys    []expression.Expression
	Having  expression.Expression // nil if absent
	Input   Node
}

func NewGroupBy(keys []expression.Expression, having expression.Expression, input Node) *GroupBy {
	return &GroupBy{Keys: keys, Having: having, Input: input}
}

func (g *GroupBy) String() string {
	parts := make([]string, len(g.Keys))
	for i, k := range g.Keys {
		parts[i] = k.String()
	}
	having := ""
	if g.Having != nil {
		having = fmt.Sprintf(" HAVING %s", g.Having)
	}
	return fmt.Sprintf("GroupBy(%s%s)\n    %s", strings.Join(parts, ", "), having, g.Input)
}

func (g *GroupBy) Children() []Node { return []Node{g.Input} }

func (g *GroupBy) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(g, nc, 1); err != nil {
		return nil, err
	}
	return &GroupBy{Keys: g.Keys, Having: g.Having, Input: nc[0]}, nil
}

func (g *GroupBy) Expressions() []expression.Expression {
	if g.Having == nil {
		return g.Keys
	}
	return append(append([]expression.Expression{}, g.Keys...), g.Having)
}

func (g *GroupBy) WithExpressions(ne []expression.Expression) (Node, error) {
	want := len(g.Keys)
	if g.Having != nil {
		want++
	}
	if err := expectExpressions(g, ne, want); err != nil {
		return nil, err
	}
	keys := append([]expression.Expression{}, ne[:len(g.Keys)]...)
	var having expression.Expression
	if g.Having != nil {
		having = ne[len(g.Keys)]
	}
	return &GroupBy{Keys: keys, Having: having, Input: g.Input}, nil
}
