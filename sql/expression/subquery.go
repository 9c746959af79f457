package expression

import "fmt"

// PlanNode is the minimal structural view of a sql/plan.Node that this
// package needs in order to carry a subquery plan inside an expression
// tree, without importing sql/plan itself (which imports sql/expression
// for its own fields; a real plan.Node satisfies this interface for free).
type PlanNode interface {
	String() string
}

// InSubquery is `expr IN (subquery)`, lowered during render-plan
// construction to either a SQL IN (...) or, where the target dialect
// requires it, a semi-join.
type InSubquery struct {
	Left Expression
	Plan PlanNode
}

func NewInSubquery(left Expression, plan PlanNode) *InSubquery {
	return &InSubquery{Left: left, Plan: plan}
}

func (s *InSubquery) String() string {
	return fmt.Sprintf("(%s IN (%s))", s.Left, s.Plan)
}

func (s *InSubquery) Children() []Expression { return []Expression{s.Left} }

func (s *InSubquery) WithChildren(nc []Expression) (Expression, error) {
	if err := expectChildren(s, nc, 1); err != nil {
		return nil, err
	}
	return &InSubquery{Left: nc[0], Plan: s.Plan}, nil
}

// ExistsSubquery is `EXISTS { ... }` / `EXISTS (subquery)`, used both for
// Cypher's pattern-existence checks and for correlated WHERE predicates.
// CartesianJoinExtraction must never pull a conjunct that sits underneath
// an ExistsSubquery's correlation boundary into an outer join condition.
type ExistsSubquery struct {
	Plan PlanNode
}

func NewExistsSubquery(plan PlanNode) *ExistsSubquery {
	return &ExistsSubquery{Plan: plan}
}

func (s *ExistsSubquery) String() string {
	return fmt.Sprintf("EXISTS (%s)", s.Plan)
}

func (s *ExistsSubquery) Children() []Expression { return nil }

func (s *ExistsSubquery) WithChildren(nc []Expression) (Expression, error) {
	return withNoChildren(s, nc)
}
