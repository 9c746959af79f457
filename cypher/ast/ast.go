// Package ast is the syntax tree cypher/parser produces: one node per
// grammar production, carrying no resolved scope or type information yet
// (that is the plan builder and analyzer's job).
package ast

// Query is a whole parsed statement: an optional USE, one or more
// SinglePartQuery segments joined by UNION [ALL].
type Query struct {
	UseDatabase string // "" if absent
	Parts       []*SinglePartQuery
	UnionAll    []bool // len(UnionAll) == len(Parts)-1; UnionAll[i] joins Parts[i] and Parts[i+1]
}

// SinglePartQuery is one UNION branch: a sequence of reading clauses
// terminated by a Return.
type SinglePartQuery struct {
	Clauses []Clause
	Return  *Return
}

// Clause is any reading clause that can appear before the terminal RETURN:
// Match, Unwind, With, Call.
type Clause interface {
	clauseNode()
}

// Match is one MATCH or OPTIONAL MATCH block: a comma-separated list of
// path patterns with an optional WHERE.
type Match struct {
	Optional bool
	Patterns []*PathPattern
	Where    Expr // nil if absent
}

func (*Match) clauseNode() {}

// Unwind is `UNWIND list AS alias`.
type Unwind struct {
	List  Expr
	Alias string
}

func (*Unwind) clauseNode() {}

// With is a `WITH` projection barrier: the same projection/order/skip/
// limit/where shape as Return, but followed by more clauses instead of
// ending the query.
type With struct {
	Distinct bool
	Items    []ProjectionItem
	OrderBy  []SortItem
	Skip     Expr // nil if absent
	Limit    Expr // nil if absent
	Where    Expr // nil if absent
}

func (*With) clauseNode() {}

// Call is a built-in procedure invocation, `CALL pagerank(...) YIELD ...`.
type Call struct {
	Procedure string
	Args      []Expr
	Yield     []string
}

func (*Call) clauseNode() {}

// Return is the terminal projection of a SinglePartQuery.
type Return struct {
	Distinct bool
	Items    []ProjectionItem
	OrderBy  []SortItem
	Skip     Expr // nil if absent
	Limit    Expr // nil if absent
}

// ProjectionItem is one RETURN/WITH item: `expr [AS alias]`, or a bare `*`.
type ProjectionItem struct {
	Star  bool
	Expr  Expr
	Alias string // "" if absent
}

// SortItem is one ORDER BY term.
type SortItem struct {
	Expr       Expr
	Descending bool
}
