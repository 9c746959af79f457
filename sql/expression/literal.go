package expression

import "fmt"

// Literal is a constant value: integer, float, boolean, string, or nil.
type Literal struct {
	Value interface{}
}

// NewLiteral wraps value as a Literal expression.
func NewLiteral(value interface{}) *Literal {
	return &Literal{Value: value}
}

func (l *Literal) String() string {
	if l.Value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", l.Value)
}

func (l *Literal) Children() []Expression { return nil }

func (l *Literal) WithChildren(newChildren []Expression) (Expression, error) {
	return withNoChildren(l, newChildren)
}
