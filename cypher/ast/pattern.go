package ast

// PathPattern is one pattern in a MATCH clause's comma-separated list, or
// the right-hand side of a shortestPath()/allShortestPaths() call:
// `(a:L {p:v})-[r:T*min..max]->(b)-...`. Variable is the path's own
// binding name, set for `p = (a)-->(b)`, empty otherwise.
type PathPattern struct {
	Variable string
	Nodes    []*NodePattern // len(Nodes) == len(Rels)+1
	Rels     []*RelPattern
}

// NodePattern is one `(alias:Label {props})` element of a path pattern.
type NodePattern struct {
	Variable   string // "" for an anonymous node
	Labels     []string
	Properties []PropertyPattern
}

// RelPattern is one `-[alias:TYPE*min..max]->` element of a path pattern.
type RelPattern struct {
	Variable   string // "" for an anonymous relationship
	Types      []string
	Properties []PropertyPattern
	Direction  RelDirection
	VarLength  *VariableLength // nil if not a variable-length relationship
	Shortest   ShortestPathKind
}

// RelDirection is the arrow direction of a relationship pattern as written
// in source text.
type RelDirection int

const (
	DirOutgoing RelDirection = iota // -[...]->
	DirIncoming                     // <-[...]-
	DirEither                       // -[...]-
)

// VariableLength is the `*min..max` annotation on a relationship pattern.
// MaxSet is false for an unbounded upper end (`*2..`); both bounds unset
// (MinSet==false && MaxSet==false) means a bare `*` (0..unbounded... in
// practice 1..unbounded, per SPEC_FULL.md §4.1's edge-case rule).
type VariableLength struct {
	Min    int
	MinSet bool
	Max    int
	MaxSet bool
}

// ShortestPathKind distinguishes a plain relationship from one wrapped in
// shortestPath(...)/allShortestPaths(...).
type ShortestPathKind int

const (
	ShortestPathNone ShortestPathKind = iota
	ShortestPathSingle
	ShortestPathAll
)

// PropertyPattern is one `key: value` entry of an inline `{...}` map
// attached to a node or relationship pattern.
type PropertyPattern struct {
	Key   string
	Value Expr
}
