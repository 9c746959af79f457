package expression

import (
	"fmt"
	"strings"
)

// WhenThen is one branch of a Case expression.
type WhenThen struct {
	When Expression
	Then Expression
}

// Case is CASE [subject] WHEN w1 THEN t1 ... [ELSE e] END. A non-nil
// Subject makes it a "simple" CASE (the SQL generator renders this as
// caseWithExpression(...) per §4.6); a nil Subject is a "searched" CASE,
// rendered as standard CASE WHEN ... THEN ... ELSE ... END.
type Case struct {
	Subject Expression // nil for a searched CASE
	Whens   []WhenThen
	Else    Expression // nil if absent
}

func NewCase(subject Expression, whens []WhenThen, els Expression) *Case {
	return &Case{Subject: subject, Whens: whens, Else: els}
}

func (c *Case) String() string {
	var b strings.Builder
	b.WriteString("CASE ")
	if c.Subject != nil {
		b.WriteString(c.Subject.String())
		b.WriteString(" ")
	}
	for _, wt := range c.Whens {
		b.WriteString("WHEN ")
		b.WriteString(wt.When.String())
		b.WriteString(" THEN ")
		b.WriteString(wt.Then.String())
		b.WriteString(" ")
	}
	if c.Else != nil {
		b.WriteString("ELSE ")
		b.WriteString(c.Else.String())
		b.WriteString(" ")
	}
	b.WriteString("END")
	return b.String()
}

func (c *Case) Children() []Expression {
	var out []Expression
	if c.Subject != nil {
		out = append(out, c.Subject)
	}
	for _, wt := range c.Whens {
		out = append(out, wt.When, wt.Then)
	}
	if c.Else != nil {
		out = append(out, c.Else)
	}
	return out
}

func (c *Case) WithChildren(nc []Expression) (Expression, error) {
	idx := 0
	next := func() Expression {
		v := nc[idx]
		idx++
		return v
	}

	out := &Case{Whens: make([]WhenThen, len(c.Whens))}
	if c.Subject != nil {
		out.Subject = next()
	}
	for i := range c.Whens {
		out.Whens[i] = WhenThen{When: next(), Then: next()}
	}
	if c.Else != nil {
		out.Else = next()
	}
	if idx != len(nc) {
		return nil, fmt.Errorf("Case.WithChildren: expected %d children, got %d", idx, len(nc))
	}
	return out, nil
}
