package plan

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// WithClause is a `WITH` barrier: it closes the current scope, exports a
// fixed set of named columns, and opens a fresh scope in which only those
// names (plus any carried-forward aliases) are visible. ScopeSplitter is
// the pass that turns a sequence of MATCH/WHERE/WITH clauses into nested
// WithClause nodes.
type WithClause struct {
	Items           []ProjectionItem
	Distinct        bool
	OrderBy         []SortField
	Skip            expression.Expression // nil if absent
	Limit           expression.Expression // nil if absent
	Where           expression.Expression // nil if absent
	ExportedAliases []string
	CteReferences   []string
	// Name is the synthetic CTE name ScopeSplitter assigns; empty until
	// that pass has run.
	Name  string
	Input Node
}

func NewWithClause(items []ProjectionItem, input Node) *WithClause {
	return &WithClause{Items: items, Input: input}
}

func (w *WithClause) String() string {
	return fmt.Sprintf("WithClause(%d items)\n    %s", len(w.Items), w.Input)
}

func (w *WithClause) Children() []Node { return []Node{w.Input} }

func (w *WithClause) WithChildren(nc []Node) (Node, error) {
	if err := expectChildren(w, nc, 1); err != nil {
		return nil, err
	}
	cp := *w
	cp.Input = nc[0]
	return &cp, nil
}

func (w *WithClause) Expressions() []expression.Expression {
	var out []expression.Expression
	for _, it := range w.Items {
		out = append(out, it.Expr)
	}
	for _, f := range w.OrderBy {
		out = append(out, f.Expr)
	}
	if w.Skip != nil {
		out = append(out, w.Skip)
	}
	if w.Limit != nil {
		out = append(out, w.Limit)
	}
	if w.Where != nil {
		out = append(out, w.Where)
	}
	return out
}

func (w *WithClause) WithExpressions(ne []expression.Expression) (Node, error) {
	want := len(w.Items) + len(w.OrderBy)
	if w.Skip != nil {
		want++
	}
	if w.Limit != nil {
		want++
	}
	if w.Where != nil {
		want++
	}
	if err := expectExpressions(w, ne, want); err != nil {
		return nil, err
	}
	cp := *w
	idx := 0
	cp.Items = make([]ProjectionItem, len(w.Items))
	for i, it := range w.Items {
		cp.Items[i] = ProjectionItem{Expr: ne[idx], Alias: it.Alias}
		idx++
	}
	cp.OrderBy = make([]SortField, len(w.OrderBy))
	for i, f := range w.OrderBy {
		cp.OrderBy[i] = SortField{Expr: ne[idx], Descending: f.Descending}
		idx++
	}
	if w.Skip != nil {
		cp.Skip = ne[idx]
		idx++
	}
	if w.Limit != nil {
		cp.Limit = ne[idx]
		idx++
	}
	if w.Where != nil {
		cp.Where = ne[idx]
		idx++
	}
	return &cp, nil
}
