package plan

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// Filter is an unplaced WHERE fragment. FilterTagging assigns each one to
// the TableCtx of every alias it references; FilterIntoGraphRel/
// FilterIntoScan later push it down onto a ViewScan or GraphRel.
type Filter struct {
	Predicate expression.Expression
	Input     Node
}

func NewFilter(predicate expression.Expression, input Node) *Filter {
	return &Filter{Predicate: predicate, Input: input}
}

func (f *Filter) String() string {
	return fmt.Sprintf("Filter(%s)\n    %s", f.Predicate, f.Input)
}

func (f *Filter) Children() []Node { return []Node{f.Input} }

func (f *Filter) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(f, nc, 1); err != nil {
		return nil, err
	}
	return &Filter{Predicate: f.Predicate, Input: nc[0]}, nil
}

func (f *Filter) Expressions() []expression.Expression {
	return []expression.Expression{f.Predicate}
}

func (f *Filter) WithExpressions(ne []expression.Expression) (Node, error) {
	if err := expectExpressions(f, ne, 1); err != nil {
		return nil, err
	}
	return &Filter{Predicate: ne[0], Input: f.Input}, nil
}
