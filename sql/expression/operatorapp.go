package expression

import (
	"fmt"
	"strings"
)

// OperatorApplication applies Op to Operands: binary for most operators,
// unary for OpNot/OpIsNull/OpIsNotNull/OpDistinct.
type OperatorApplication struct {
	Op       Operator
	Operands []Expression
}

// NewBinary builds a two-operand OperatorApplication.
func NewBinary(op Operator, left, right Expression) *OperatorApplication {
	return &OperatorApplication{Op: op, Operands: []Expression{left, right}}
}

// NewUnary builds a one-operand OperatorApplication.
func NewUnary(op Operator, operand Expression) *OperatorApplication {
	return &OperatorApplication{Op: op, Operands: []Expression{operand}}
}

// NewAnd folds a slice of conjuncts into a left-associative AND tree. An
// empty slice returns nil; a single conjunct is returned unwrapped.
func NewAnd(conjuncts ...Expression) Expression {
	if len(conjuncts) == 0 {
		return nil
	}
	acc := conjuncts[0]
	for _, c := range conjuncts[1:] {
		acc = NewBinary(OpAnd, acc, c)
	}
	return acc
}

// SplitConjuncts is the inverse of NewAnd: it flattens a tree of OpAnd
// applications back into its leaf conjuncts. A non-AND expression is
// returned as its own single-element slice.
func SplitConjuncts(e Expression) []Expression {
	op, ok := e.(*OperatorApplication)
	if !ok || op.Op != OpAnd {
		return []Expression{e}
	}
	return append(SplitConjuncts(op.Operands[0]), SplitConjuncts(op.Operands[1])...)
}

func (o *OperatorApplication) String() string {
	if o.Op.IsUnary() {
		if o.Op.IsPostfix() {
			return fmt.Sprintf("(%s %s)", o.Operands[0], o.Op)
		}
		return fmt.Sprintf("(%s %s)", o.Op, o.Operands[0])
	}
	parts := make([]string, len(o.Operands))
	for i, op := range o.Operands {
		parts[i] = op.String()
	}
	return "(" + strings.Join(parts, fmt.Sprintf(" %s ", o.Op)) + ")"
}

func (o *OperatorApplication) Children() []Expression { return o.Operands }

func (o *OperatorApplication) WithChildren(nc []Expression) (Expression, error) {
	if err := expectChildren(o, nc, len(o.Operands)); err != nil {
		return nil, err
	}
	return &OperatorApplication{Op: o.Op, Operands: nc}, nil
}

// FreeAliases returns the set of distinct aliases referenced anywhere in e,
// used by FilterTagging and CartesianJoinExtraction to decide where a
// predicate may be placed.
func FreeAliases(e Expression) map[string]bool {
	aliases := map[string]bool{}
	collectAliases(e, aliases)
	return aliases
}

func collectAliases(e Expression, out map[string]bool) {
	if e == nil {
		return
	}
	switch t := e.(type) {
	case *TableAlias:
		out[t.Name] = true
	case *PropertyAccess:
		out[t.Alias] = true
	case *Column:
		if t.Table != "" {
			out[t.Table] = true
		}
	}
	for _, c := range e.Children() {
		collectAliases(c, out)
	}
}
