package expression

import "strings"

// List is a literal list expression, `[1, 2, 3]`, also used as the
// right-hand side of IN before SQL generation rewrites it to tuple(...).
type List struct {
	Items []Expression
}

func NewList(items ...Expression) *List { return &List{Items: items} }

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Children() []Expression { return l.Items }

func (l *List) WithChildren(nc []Expression) (Expression, error) {
	if err := expectChildren(l, nc, len(l.Items)); err != nil {
		return nil, err
	}
	return &List{Items: nc}, nil
}
