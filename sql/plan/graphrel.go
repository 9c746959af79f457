package plan

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// Direction is the arrow direction of a relationship pattern.
type Direction int

const (
	DirOutgoing Direction = iota // (a)-[r]->(b)
	DirIncoming                  // (a)<-[r]-(b)
	DirEither                    // (a)-[r]-(b); fixed hops join like DirOutgoing, variable-length hops UNION ALL both directions
)

func (d Direction) String() string {
	switch d {
	case DirOutgoing:
		return "->"
	case DirIncoming:
		return "<-"
	default:
		return "-"
	}
}

// VariableLength is `*min..max` on a relationship pattern. Max == -1 means
// unbounded (`*min..`).
type VariableLength struct {
	Min int
	Max int
}

// ShortestPathMode distinguishes shortestPath() from allShortestPaths().
type ShortestPathMode int

const (
	ShortestPathNone ShortestPathMode = iota
	ShortestPathSingle
	ShortestPathAll
)

// GraphRel marks a relationship pattern binding. Left/Center/Right are the
// plans for the left node, the relationship's own scan, and the right
// node; LeftConn/RightConn name which alias on each side the join keys off
// of (set by the plan builder).
type GraphRel struct {
	Alias           string
	Left            Node
	Center          Node
	Right           Node
	Direction       Direction
	LeftConn        string
	RightConn       string
	VariableLength  *VariableLength
	ShortestPath    ShortestPathMode
	Labels          []string
	IsOptional      bool
	IsRelAnchor     bool
	WherePredicate  expression.Expression
}

func NewGraphRel(alias string, left, center, right Node, dir Direction) *GraphRel {
	return &GraphRel{Alias: alias, Left: left, Center: center, Right: right, Direction: dir}
}

func (g *GraphRel) String() string {
	opt := ""
	if g.IsOptional {
		opt = "OPTIONAL "
	}
	return fmt.Sprintf("%sGraphRel(%s[%s])\n    left: %s\n    center: %s\n    right: %s",
		opt, g.Direction, g.Alias, g.Left, g.Center, g.Right)
}

func (g *GraphRel) Children() []Node { return []Node{g.Left, g.Center, g.Right} }

func (g *GraphRel) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(g, nc, 3); err != nil {
		return nil, err
	}
	cp := *g
	cp.Left, cp.Center, cp.Right = nc[0], nc[1], nc[2]
	return &cp, nil
}
