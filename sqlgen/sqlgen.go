// Package sqlgen implements the SQL Generator (C8) from SPEC_FULL.md §4.6:
// a deterministic traversal of a render.RenderPlan into target SQL text.
// It is the last pipeline stage, mirroring sql/analyzer and sql/optimizer's
// own single-entry-point shape (Generate, here, in place of their
// Analyze/Optimize).
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/render"
	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// Config carries generation-time knobs that have no representation in a
// RenderPlan itself.
type Config struct {
	// MaxRecursiveDepth is the SETTINGS max_recursive_cte_evaluation_depth
	// value emitted when a plan has a recursive CTE but the variable-length
	// path that produced it carried no finite bound (`*1..` with no upper
	// end). A plan's own RenderPlan.MaxRecursiveDepth, when set, always
	// takes precedence over this default.
	MaxRecursiveDepth int
}

// Generate serializes rp to a single SQL statement.
func Generate(rp *render.RenderPlan, cfg Config) (string, error) {
	g := &generator{cfg: cfg}
	return g.plan(rp)
}

type generator struct {
	cfg Config
}

func (g *generator) plan(rp *render.RenderPlan) (string, error) {
	if rp.Set != nil {
		return g.setOp(rp.Set)
	}

	var b strings.Builder
	if len(rp.CTEs) > 0 {
		if rp.HasRecursiveCTE() {
			b.WriteString("WITH RECURSIVE ")
		} else {
			b.WriteString("WITH ")
		}
		parts := make([]string, len(rp.CTEs))
		for i, c := range rp.CTEs {
			cteSQL, err := g.cte(c)
			if err != nil {
				return "", err
			}
			parts[i] = cteSQL
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(" ")
	}

	body, err := g.selectBody(rp)
	if err != nil {
		return "", err
	}
	b.WriteString(body)

	if rp.HasRecursiveCTE() {
		depth := rp.MaxRecursiveDepth
		if depth <= 0 {
			depth = g.cfg.MaxRecursiveDepth
		}
		if depth > 0 {
			fmt.Fprintf(&b, " SETTINGS max_recursive_cte_evaluation_depth = %d", depth)
		}
	}
	return b.String(), nil
}

func (g *generator) setOp(op *render.SetOp) (string, error) {
	if len(op.Inputs) == 0 {
		return "", cyphererr.ErrInternalInvariant.New("UNION with no branches")
	}
	parts := make([]string, len(op.Inputs))
	for i, in := range op.Inputs {
		s, err := g.plan(in)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	sep := " UNION "
	if op.All {
		sep = " UNION ALL "
	}
	return strings.Join(parts, sep), nil
}

func (g *generator) cte(c render.CTE) (string, error) {
	if c.Plan != nil {
		body, err := g.plan(c.Plan)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s AS (%s)", quoteIdent(c.Name), body), nil
	}
	return fmt.Sprintf("%s AS (%s)", quoteIdent(c.Name), c.Raw), nil
}

func (g *generator) selectBody(rp *render.RenderPlan) (string, error) {
	if rp.From.Table == "" {
		return "", cyphererr.ErrInternalInvariant.New("render plan has no FROM clause")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if rp.Distinct {
		b.WriteString("DISTINCT ")
	}
	cols := make([]string, len(rp.Columns))
	for i, c := range rp.Columns {
		e, err := g.expr(c.Expr)
		if err != nil {
			return "", err
		}
		if c.Alias != "" {
			e = fmt.Sprintf("%s AS %s", e, quoteIdent(c.Alias))
		}
		cols[i] = e
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	b.WriteString(strings.Join(cols, ", "))

	fmt.Fprintf(&b, " FROM %s AS %s", quoteIdent(rp.From.Table), quoteIdent(rp.From.Alias))
	if rp.From.Final {
		b.WriteString(" FINAL")
	}

	for _, j := range rp.Joins {
		js, err := g.join(j)
		if err != nil {
			return "", err
		}
		b.WriteString(" ")
		b.WriteString(js)
	}

	if rp.Where != nil {
		w, err := g.expr(rp.Where)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " WHERE %s", w)
	}

	if len(rp.GroupBy) > 0 {
		parts, err := g.exprList(rp.GroupBy)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " GROUP BY %s", strings.Join(parts, ", "))
	}

	if rp.Having != nil {
		h, err := g.expr(rp.Having)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " HAVING %s", h)
	}

	if len(rp.OrderBy) > 0 {
		parts := make([]string, len(rp.OrderBy))
		for i, o := range rp.OrderBy {
			e, err := g.expr(o.Expr)
			if err != nil {
				return "", err
			}
			if o.Descending {
				e += " DESC"
			}
			parts[i] = e
		}
		fmt.Fprintf(&b, " ORDER BY %s", strings.Join(parts, ", "))
	}

	if rp.Limit != nil {
		e, err := g.expr(rp.Limit)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " LIMIT %s", e)
	}
	if rp.Skip != nil {
		e, err := g.expr(rp.Skip)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " OFFSET %s", e)
	}
	return b.String(), nil
}

// join renders one FROM-following row source. A JoinCross, or any Join
// whose On is nil, degrades to CROSS JOIN per §4.6; JoinArray renders
// ClickHouse's ARRAY JOIN, whose On carries the list expression rather
// than a boolean condition.
func (g *generator) join(j render.Join) (string, error) {
	if j.Kind == render.JoinArray {
		e, err := g.expr(j.On)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("ARRAY JOIN %s AS %s", e, quoteIdent(j.Alias)), nil
	}
	if j.Kind == render.JoinCross || j.On == nil {
		return fmt.Sprintf("CROSS JOIN %s AS %s", quoteIdent(j.Table), quoteIdent(j.Alias)), nil
	}
	kind := "INNER JOIN"
	if j.Kind == render.JoinLeft {
		kind = "LEFT JOIN"
	}
	conds, err := g.exprList(expression.SplitConjuncts(j.On))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s AS %s ON %s", kind, quoteIdent(j.Table), quoteIdent(j.Alias), strings.Join(conds, " AND ")), nil
}

func (g *generator) exprList(es []expression.Expression) ([]string, error) {
	out := make([]string, len(es))
	for i, e := range es {
		s, err := g.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(name string) string {
	if identRe.MatchString(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
