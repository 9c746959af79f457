package plan

import "fmt"

// PageRank is the single built-in CALL procedure supported at the logical
// level. It has no owned input: its row source is every relationship
// table in the active schema, optionally narrowed by LabelFilter/
// TypeFilter.
type PageRank struct {
	Iterations  int
	Damping     float64
	LabelFilter string // "" if absent
	TypeFilter  string // "" if absent
	ScoreAlias  string
	NodeAlias   string
}

func NewPageRank(iterations int, damping float64, nodeAlias, scoreAlias string) *PageRank {
	return &PageRank{Iterations: iterations, Damping: damping, NodeAlias: nodeAlias, ScoreAlias: scoreAlias}
}

func (p *PageRank) String() string {
	return fmt.Sprintf("PageRank(iterations=%d, damping=%.3f) YIELD %s, %s",
		p.Iterations, p.Damping, p.NodeAlias, p.ScoreAlias)
}

func (p *PageRank) Children() []Node { return nil }

func (p *PageRank) WithChildren(nc []Node) (Node, error) {
	return withNoChildren(p, nc)
}
