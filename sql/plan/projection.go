package plan

import (
	"fmt"
	"strings"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// ProjectionItem is one RETURN/WITH item: an expression with an optional
// output alias (absent for `RETURN p.name` where SQL generation derives
// one, present for `RETURN p.name AS n`).
type ProjectionItem struct {
	Expr  expression.Expression
	Alias string // "" if absent
}

// Projection is a RETURN or intermediate projection stage.
type Projection struct {
	Items    []ProjectionItem
	Distinct bool
	Input    Node
}

func NewProjection(items []ProjectionItem, distinct bool, input Node) *Projection {
	return &Projection{Items: items, Distinct: distinct, Input: input}
}

func (p *Projection) String() string {
	parts := make([]string, len(p.Items))
	for i, it := range p.Items {
		if it.Alias != "" {
			parts[i] = fmt.Sprintf("%s AS %s", it.Expr, it.Alias)
		} else {
			parts[i] = it.Expr.String()
		}
	}
	distinct := ""
	if p.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("Projection(%s%s)\n    %s", distinct, strings.Join(parts, ", "), p.Input)
}

func (p *Projection) Children() []Node { return []Node{p.Input} }

func (p *Projection) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(p, nc, 1); err != nil {
		return nil, err
	}
	return &Projection{Items: p.Items, Distinct: p.Distinct, Input: nc[0]}, nil
}

func (p *Projection) Expressions() []expression.Expression {
	out := make([]expression.Expression, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Expr
	}
	return out
}

func (p *Projection) WithExpressions(ne []expression.Expression) (Node, error) {
	if err := expectExpressions(p, ne, len(p.Items)); err != nil {
		return nil, err
	}
	items := make([]ProjectionItem, len(p.Items))
	for i, it := range p.Items {
		items[i] = ProjectionItem{Expr: ne[i], Alias: it.Alias}
	}
	return &Projection{Items: items, Distinct: p.Distinct, Input: p.Input}, nil
}
