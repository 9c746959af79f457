package render

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// SubqueryKind distinguishes the two correlated-subquery expression shapes
// lowering can produce.
type SubqueryKind int

const (
	SubqueryIn SubqueryKind = iota
	SubqueryExists
)

// SubqueryExpr replaces an expression.InSubquery/expression.ExistsSubquery
// leaf once its nested plan has been lowered into its own RenderPlan.
// sqlgen type-switches on it directly to splice the subquery's generated
// SQL text inline; String() below is for debug-printing only, never for
// generation.
type SubqueryExpr struct {
	Kind SubqueryKind
	Left expression.Expression // nil for SubqueryExists
	Plan *RenderPlan
}

func (s *SubqueryExpr) String() string {
	if s.Kind == SubqueryExists {
		return "EXISTS (<subquery>)"
	}
	return fmt.Sprintf("(%s IN (<subquery>))", s.Left)
}

func (s *SubqueryExpr) Children() []expression.Expression {
	if s.Left == nil {
		return nil
	}
	return []expression.Expression{s.Left}
}

func (s *SubqueryExpr) WithChildren(nc []expression.Expression) (expression.Expression, error) {
	if s.Left == nil {
		if len(nc) != 0 {
			return nil, fmt.Errorf("SubqueryExpr: expected 0 children, got %d", len(nc))
		}
		return s, nil
	}
	if len(nc) != 1 {
		return nil, fmt.Errorf("SubqueryExpr: expected 1 child, got %d", len(nc))
	}
	cp := *s
	cp.Left = nc[0]
	return &cp, nil
}
