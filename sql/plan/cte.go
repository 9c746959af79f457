package plan

import "fmt"

// Cte names a sub-plan for later reference by name elsewhere in the tree
// (a variable-length path's recursive expansion, a WITH barrier's exported
// projection, ...). Render-plan lowering turns each Cte into one entry of
// the render plan's ordered CTE list.
type Cte struct {
	Name  string
	Input Node
}

func NewCte(name string, input Node) *Cte {
	return &Cte{Name: name, Input: input}
}

func (c *Cte) String() string {
	return fmt.Sprintf("Cte(%s)\n    %s", c.Name, c.Input)
}

func (c *Cte) Children() []Node { return []Node{c.Input} }

func (c *Cte) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(c, nc, 1); err != nil {
		return nil, err
	}
	return &Cte{Name: c.Name, Input: nc[0]}, nil
}
