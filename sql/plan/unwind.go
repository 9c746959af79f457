package plan

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// Unwind is `UNWIND list AS alias`: it expands a list-valued expression
// into one row per element, binding each to Alias. CollectUnwindElimination
// cancels an Unwind whose List is exactly the AggregateFnCall output of an
// immediately-preceding `collect()`.
type Unwind struct {
	List  expression.Expression
	Alias string
	Input Node
}

func NewUnwind(list expression.Expression, alias string, input Node) *Unwind {
	return &Unwind{List: list, Alias: alias, Input: input}
}

func (u *Unwind) String() string {
	return fmt.Sprintf("Unwind(%s AS %s)\n    %s", u.List, u.Alias, u.Input)
}

func (u *Unwind) Children() []Node { return []Node{u.Input} }

func (u *Unwind) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(u, nc, 1); err != nil {
		return nil, err
	}
	return &Unwind{List: u.List, Alias: u.Alias, Input: nc[0]}, nil
}

func (u *Unwind) Expressions() []expression.Expression {
	return []expression.Expression{u.List}
}

func (u *Unwind) WithExpressions(ne []expression.Expression) (Node, error) {
	if err := expectExpressions(u, ne, 1); err != nil {
		return nil, err
	}
	return &Unwind{List: ne[0], Alias: u.Alias, Input: u.Input}, nil
}
