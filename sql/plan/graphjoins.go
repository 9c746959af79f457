package plan

import (
	"fmt"
	"strings"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// JoinKind is the SQL join type a single graph-join-inference step emits.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft           // from an OPTIONAL MATCH relationship
)

func (k JoinKind) String() string {
	if k == JoinLeft {
		return "LEFT JOIN"
	}
	return "JOIN"
}

// JoinSpec is one emitted join: Table/Alias is the right-hand side, On is
// the join condition (usually an equality between the anchor's id column
// and the relationship table's from/to column).
type JoinSpec struct {
	Kind  JoinKind
	Table string
	Alias string
	On    expression.Expression
}

// GraphJoins is the output of graph-join inference (the decisive analyzer
// pass): it carries the linear sequence of joins chosen to realize a
// pattern, replacing the nested GraphNode/GraphRel tree that fed it.
type GraphJoins struct {
	Input         Node
	Joins         []JoinSpec
	Aliases       []string
	AnchorTable   string
	AnchorAlias   string
	CteReferences []string
}

func NewGraphJoins(input Node, anchorTable, anchorAlias string, joins []JoinSpec) *GraphJoins {
	return &GraphJoins{Input: input, AnchorTable: anchorTable, AnchorAlias: anchorAlias, Joins: joins}
}

func (g *GraphJoins) String() string {
	parts := make([]string, len(g.Joins))
	for i, j := range g.Joins {
		parts[i] = fmt.Sprintf("%s %s AS %s ON %s", j.Kind, j.Table, j.Alias, j.On)
	}
	return fmt.Sprintf("GraphJoins(%s AS %s; %s)\n    %s",
		g.AnchorTable, g.AnchorAlias, strings.Join(parts, "; "), g.Input)
}

func (g *GraphJoins) Children() []Node { return []Node{g.Input} }

func (g *GraphJoins) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(g, nc, 1); err != nil {
		return nil, err
	}
	cp := *g
	cp.Input = nc[0]
	return &cp, nil
}
