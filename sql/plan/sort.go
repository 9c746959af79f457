package plan

import (
	"fmt"
	"strings"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// SortField is one ORDER BY term.
type SortField struct {
	Expr       expression.Expression
	Descending bool
}

// OrderBy sorts its Input by Fields, in order.
type OrderBy struct {
	Fields []SortField
	Input  Node
}

func NewOrderBy(fields []SortField, input Node) *OrderBy {
	return &OrderBy{Fields: fields, Input: input}
}

func (o *OrderBy) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s %s", f.Expr, dir)
	}
	return fmt.Sprintf("OrderBy(%s)\n    %s", strings.Join(parts, ", "), o.Input)
}

func (o *OrderBy) Children() []Node { return []Node{o.Input} }

func (o *OrderBy) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(o, nc, 1); err != nil {
		return nil, err
	}
	return &OrderBy{Fields: o.Fields, Input: nc[0]}, nil
}

// Skip drops the first Count rows of Input.
type Skip struct {
	Count expression.Expression
	Input Node
}

func NewSkip(count expression.Expression, input Node) *Skip {
	return &Skip{Count: count, Input: input}
}

func (s *Skip) String() string { return fmt.Sprintf("Skip(%s)\n    %s", s.Count, s.Input) }

func (s *Skip) Children() []Node { return []Node{s.Input} }

func (s *Skip) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(s, nc, 1); err != nil {
		return nil, err
	}
	return &Skip{Count: s.Count, Input: nc[0]}, nil
}

// Limit caps Input at Count rows.
type Limit struct {
	Count expression.Expression
	Input Node
}

func NewLimit(count expression.Expression, input Node) *Limit {
	return &Limit{Count: count, Input: input}
}

func (l *Limit) String() string { return fmt.Sprintf("Limit(%s)\n    %s", l.Count, l.Input) }

func (l *Limit) Children() []Node { return []Node{l.Input} }

func (l *Limit) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(l, nc, 1); err != nil {
		return nil, err
	}
	return &Limit{Count: l.Count, Input: nc[0]}, nil
}
