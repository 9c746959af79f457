package planbuilder

import (
	"fmt"
	"strings"

	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/cypher/ast"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// buildMatch lowers one MATCH/OPTIONAL MATCH block: its comma-separated
// patterns combine via CartesianProduct, its property-pattern filters and
// WHERE wrap the result in Filter nodes, and the whole thing joins
// whatever the clause sequence has already bound, also via
// CartesianProduct (§4.2).
func (b *PlanBuilder) buildMatch(sc *scope, existing plan.Node, m *ast.Match) (plan.Node, error) {
	var patternNode plan.Node
	var propFilters []expression.Expression

	for _, pp := range m.Patterns {
		n, filters, err := b.buildPathPattern(sc, pp, m.Optional)
		if err != nil {
			return nil, err
		}
		propFilters = append(propFilters, filters...)
		if patternNode == nil {
			patternNode = n
			continue
		}
		cp := plan.NewCartesianProduct(patternNode, n)
		cp.IsOptional = m.Optional
		patternNode = cp
	}

	if existing != nil {
		cp := plan.NewCartesianProduct(existing, patternNode)
		cp.IsOptional = m.Optional
		patternNode = cp
	}

	if len(propFilters) > 0 {
		patternNode = plan.NewFilter(expression.NewAnd(propFilters...), patternNode)
	}
	if m.Where != nil {
		whereExpr, err := b.buildExpr(sc, m.Where)
		if err != nil {
			return nil, err
		}
		patternNode = plan.NewFilter(whereExpr, patternNode)
	}
	return patternNode, nil
}

func (b *PlanBuilder) buildUnwind(sc *scope, input plan.Node, u *ast.Unwind) (plan.Node, error) {
	listExpr, err := b.buildExpr(sc, u.List)
	if err != nil {
		return nil, err
	}
	if err := sc.bind(u.Alias, varOther, ""); err != nil {
		return nil, err
	}
	return plan.NewUnwind(listExpr, u.Alias, input), nil
}

// buildWith lowers a WITH barrier: it builds a WithClause over input using
// the closing scope, then returns a fresh scope (§3.6, "opens a new
// scope") containing only the exported item aliases, for every clause
// that follows.
func (b *PlanBuilder) buildWith(sc *scope, input plan.Node, w *ast.With) (plan.Node, *scope, error) {
	items, exported, err := b.buildProjectionItems(sc, w.Items)
	if err != nil {
		return nil, nil, err
	}
	sortFields, err := b.buildSortFields(sc, w.OrderBy)
	if err != nil {
		return nil, nil, err
	}

	wc := &plan.WithClause{
		Items:           items,
		Distinct:        w.Distinct,
		OrderBy:         sortFields,
		ExportedAliases: exported,
		Input:           input,
	}
	if w.Skip != nil {
		if wc.Skip, err = b.buildExpr(sc, w.Skip); err != nil {
			return nil, nil, err
		}
	}
	if w.Limit != nil {
		if wc.Limit, err = b.buildExpr(sc, w.Limit); err != nil {
			return nil, nil, err
		}
	}
	if w.Where != nil {
		if wc.Where, err = b.buildExpr(sc, w.Where); err != nil {
			return nil, nil, err
		}
	}

	next := newScope(nil)
	for _, alias := range exported {
		if err := next.bind(alias, varOther, ""); err != nil {
			return nil, nil, err
		}
	}
	return wc, next, nil
}

func (b *PlanBuilder) buildCall(sc *scope, input plan.Node, c *ast.Call) (plan.Node, error) {
	switch strings.ToLower(c.Procedure) {
	case "pagerank":
		return b.buildPageRankCall(sc, input, c)
	default:
		return nil, cyphererr.ErrUnsupportedConstruct.New(fmt.Sprintf("CALL %s", c.Procedure))
	}
}

func (b *PlanBuilder) buildPageRankCall(sc *scope, input plan.Node, c *ast.Call) (plan.Node, error) {
	iterations := 20
	damping := 0.85
	if len(c.Args) > 0 {
		n, err := literalInt(c.Args[0])
		if err != nil {
			return nil, err
		}
		iterations = n
	}
	if len(c.Args) > 1 {
		f, err := literalFloat(c.Args[1])
		if err != nil {
			return nil, err
		}
		damping = f
	}

	nodeAlias, scoreAlias := "node", "score"
	if len(c.Yield) > 0 {
		nodeAlias = c.Yield[0]
	}
	if len(c.Yield) > 1 {
		scoreAlias = c.Yield[1]
	}

	pr := plan.NewPageRank(iterations, damping, nodeAlias, scoreAlias)
	if err := sc.bind(nodeAlias, varOther, ""); err != nil {
		return nil, err
	}
	if err := sc.bind(scoreAlias, varOther, ""); err != nil {
		return nil, err
	}

	if input == nil {
		return pr, nil
	}
	return plan.NewCartesianProduct(input, pr), nil
}

func literalInt(e ast.Expr) (int, error) {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return 0, cyphererr.ErrUnsupportedConstruct.New("CALL argument must be a literal")
	}
	switch v := lit.Value.(type) {
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, cyphererr.ErrUnsupportedConstruct.New("CALL argument must be numeric")
	}
}

func literalFloat(e ast.Expr) (float64, error) {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return 0, cyphererr.ErrUnsupportedConstruct.New("CALL argument must be a literal")
	}
	switch v := lit.Value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, cyphererr.ErrUnsupportedConstruct.New("CALL argument must be numeric")
	}
}

// buildReturn lowers the terminal RETURN into Projection/OrderBy/Skip/
// Limit.
func (b *PlanBuilder) buildReturn(sc *scope, input plan.Node, ret *ast.Return) (plan.Node, error) {
	items, _, err := b.buildProjectionItems(sc, ret.Items)
	if err != nil {
		return nil, err
	}
	node := plan.Node(plan.NewProjection(items, ret.Distinct, input))

	sortFields, err := b.buildSortFields(sc, ret.OrderBy)
	if err != nil {
		return nil, err
	}
	if len(sortFields) > 0 {
		node = plan.NewOrderBy(sortFields, node)
	}
	if ret.Skip != nil {
		skipExpr, err := b.buildExpr(sc, ret.Skip)
		if err != nil {
			return nil, err
		}
		node = plan.NewSkip(skipExpr, node)
	}
	if ret.Limit != nil {
		limitExpr, err := b.buildExpr(sc, ret.Limit)
		if err != nil {
			return nil, err
		}
		node = plan.NewLimit(limitExpr, node)
	}
	return node, nil
}

// buildProjectionItems lowers RETURN/WITH items, expanding a bare `*` to
// every alias currently visible in sc. It returns the built items and the
// list of resulting output names (explicit alias, or the bare variable
// name for an un-aliased reference), used as WithClause.ExportedAliases.
func (b *PlanBuilder) buildProjectionItems(sc *scope, items []ast.ProjectionItem) ([]plan.ProjectionItem, []string, error) {
	var out []plan.ProjectionItem
	var names []string
	for _, it := range items {
		if it.Star {
			for _, name := range sc.names() {
				out = append(out, plan.ProjectionItem{Expr: expression.NewTableAlias(name)})
				names = append(names, name)
			}
			continue
		}
		expr, err := b.buildExpr(sc, it.Expr)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, plan.ProjectionItem{Expr: expr, Alias: it.Alias})
		names = append(names, outputName(it))
	}
	return out, names, nil
}

func outputName(it ast.ProjectionItem) string {
	if it.Alias != "" {
		return it.Alias
	}
	switch e := it.Expr.(type) {
	case *ast.Variable:
		return e.Name
	case *ast.PropertyAccess:
		return e.Property
	default:
		return ""
	}
}

func (b *PlanBuilder) buildSortFields(sc *scope, items []ast.SortItem) ([]plan.SortField, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]plan.SortField, len(items))
	for i, it := range items {
		expr, err := b.buildExpr(sc, it.Expr)
		if err != nil {
			return nil, err
		}
		out[i] = plan.SortField{Expr: expr, Descending: it.Descending}
	}
	return out, nil
}
