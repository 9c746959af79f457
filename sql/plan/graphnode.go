package plan

import "fmt"

// GraphNode marks a node pattern binding, `(alias:Label {...})`. Its Input
// starts as a bare ViewScan or Empty and is progressively replaced by the
// analyzer as joins get folded in.
type GraphNode struct {
	Alias string
	Label string
	Input Node
}

func NewGraphNode(alias, label string, input Node) *GraphNode {
	return &GraphNode{Alias: alias, Label: label, Input: input}
}

func (g *GraphNode) String() string {
	return fmt.Sprintf("GraphNode(%s:%s)\n    %s", g.Alias, g.Label, g.Input)
}

func (g *GraphNode) Children() []Node { return []Node{g.Input} }

func (g *GraphNode) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(g, nc, 1); err != nil {
		return nil, err
	}
	return &GraphNode{Alias: g.Alias, Label: g.Label, Input: nc[0]}, nil
}
