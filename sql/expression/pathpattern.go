package expression

import "strings"

// PathPattern captures a path variable, `p = (a)-[r]->(b)`, so that later
// references to p (e.g. `length(p)`, `nodes(p)`, `relationships(p)`) have
// something to resolve against. Segments holds the alias of every node and
// relationship the path is made of, outer endpoints first.
type PathPattern struct {
	Variable string
	Segments []string
}

func NewPathPattern(variable string, segments ...string) *PathPattern {
	return &PathPattern{Variable: variable, Segments: segments}
}

func (p *PathPattern) String() string {
	return p.Variable + " = path(" + strings.Join(p.Segments, ", ") + ")"
}

func (p *PathPattern) Children() []Expression { return nil }

func (p *PathPattern) WithChildren(nc []Expression) (Expression, error) {
	return withNoChildren(p, nc)
}
