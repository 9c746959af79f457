package plan

import (
	"fmt"
	"strings"
)

// Union is Cypher's `UNION` / `UNION ALL` between two or more RETURN
// blocks. A DirEither variable-length pattern's two directions are joined
// inside its recursive CTE's SQL text, not through a Union node.
type Union struct {
	Inputs []Node
	All    bool
}

func NewUnion(all bool, inputs ...Node) *Union {
	return &Union{Inputs: inputs, All: all}
}

func (u *Union) String() string {
	kw := "UNION"
	if u.All {
		kw = "UNION ALL"
	}
	parts := make([]string, len(u.Inputs))
	for i, in := range u.Inputs {
		parts[i] = in.String()
	}
	return fmt.Sprintf("Union(%s)\n    %s", kw, strings.Join(parts, "\n    "+kw+"\n    "))
}

func (u *Union) Children() []Node { return u.Inputs }

func (u *Union) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(u, nc, len(u.Inputs)); err != nil {
		return nil, err
	}
	return &Union{Inputs: nc, All: u.All}, nil
}
