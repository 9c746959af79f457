package plan

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// CartesianProduct is a comma-separated pair of patterns, `MATCH (a), (b)`.
// CartesianJoinExtraction may promote it to a keyed join by lifting a
// cross-pattern equality predicate into JoinCondition; one that is never
// promoted renders as a literal CROSS JOIN.
type CartesianProduct struct {
	Left          Node
	Right         Node
	JoinCondition expression.Expression // nil until promoted
	IsOptional    bool
}

func NewCartesianProduct(left, right Node) *CartesianProduct {
	return &CartesianProduct{Left: left, Right: right}
}

func (c *CartesianProduct) String() string {
	cond := ""
	if c.JoinCondition != nil {
		cond = fmt.Sprintf(" ON %s", c.JoinCondition)
	}
	return fmt.Sprintf("CartesianProduct%s\n    left: %s\n    right: %s", cond, c.Left, c.Right)
}

func (c *CartesianProduct) Children() []Node { return []Node{c.Left, c.Right} }

func (c *CartesianProduct) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(c, nc, 2); err != nil {
		return nil, err
	}
	cp := *c
	cp.Left, cp.Right = nc[0], nc[1]
	return &cp, nil
}

func (c *CartesianProduct) Expressions() []expression.Expression {
	if c.JoinCondition == nil {
		return nil
	}
	return []expression.Expression{c.JoinCondition}
}

func (c *CartesianProduct) WithExpressions(ne []expression.Expression) (Node, error) {
	if c.JoinCondition == nil {
		if err := expectExpressions(c, ne, 0); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err := expectExpressions(c, ne, 1); err != nil {
		return nil, err
	}
	cp := *c
	cp.JoinCondition = ne[0]
	return &cp, nil
}
