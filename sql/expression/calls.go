package expression

import (
	"fmt"
	"strings"
)

// ScalarFnCall is a call to a non-aggregate Cypher function, resolved
// against the function registry (component C9) during render-plan
// lowering.
type ScalarFnCall struct {
	Name string
	Args []Expression
}

func NewScalarFnCall(name string, args ...Expression) *ScalarFnCall {
	return &ScalarFnCall{Name: name, Args: args}
}

func (f *ScalarFnCall) String() string { return renderCall(f.Name, false, f.Args) }

func (f *ScalarFnCall) Children() []Expression { return f.Args }

func (f *ScalarFnCall) WithChildren(nc []Expression) (Expression, error) {
	if err := expectChildren(f, nc, len(f.Args)); err != nil {
		return nil, err
	}
	return &ScalarFnCall{Name: f.Name, Args: nc}, nil
}

// AggregateFnCall is a call to an aggregate function (`count`, `collect`,
// ...). Its presence anywhere in a Projection/WithClause item triggers
// GROUP BY resolution during render-plan lowering.
type AggregateFnCall struct {
	Name     string
	Args     []Expression
	Distinct bool
}

func NewAggregateFnCall(name string, distinct bool, args ...Expression) *AggregateFnCall {
	return &AggregateFnCall{Name: name, Args: args, Distinct: distinct}
}

func (f *AggregateFnCall) String() string { return renderCall(f.Name, f.Distinct, f.Args) }

func (f *AggregateFnCall) Children() []Expression { return f.Args }

func (f *AggregateFnCall) WithChildren(nc []Expression) (Expression, error) {
	if err := expectChildren(f, nc, len(f.Args)); err != nil {
		return nil, err
	}
	return &AggregateFnCall{Name: f.Name, Args: nc, Distinct: f.Distinct}, nil
}

func renderCall(name string, distinct bool, args []Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	prefix := ""
	if distinct {
		prefix = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", name, prefix, strings.Join(parts, ", "))
}
