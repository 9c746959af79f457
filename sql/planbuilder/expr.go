package planbuilder

import (
	"fmt"

	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/cypher/ast"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

func chainedPropertyAccessErr(t *ast.PropertyAccess) error {
	return cyphererr.ErrUnsupportedConstruct.New(fmt.Sprintf("chained property access ending in .%s", t.Property))
}

func unsupportedExprErr(e ast.Expr) error {
	return cyphererr.ErrUnsupportedConstruct.New(fmt.Sprintf("expression of type %T", e))
}

// buildExpr lowers one ast.Expr into an sql/expression.Expression. Bare
// variable references always become a TableAlias, never a ColumnAlias:
// distinguishing a schema entity from a WITH-exported column is the
// analyzer's VariableResolver's job (§4.3), not the plan builder's —
// forward references to a not-yet-bound alias are tolerated here and
// resolved (or warned about) downstream.
func (b *PlanBuilder) buildExpr(sc *scope, e ast.Expr) (expression.Expression, error) {
	switch t := e.(type) {
	case *ast.Literal:
		return expression.NewLiteral(t.Value), nil

	case *ast.ListLiteral:
		items, err := b.buildExprs(sc, t.Items)
		if err != nil {
			return nil, err
		}
		return expression.NewList(items...), nil

	case *ast.MapLiteral:
		// No dedicated map-literal expression type; lowered to the
		// target engine's own map() constructor function, same
		// approach as §4.6 uses for list-valued IN/tuple rendering.
		args := make([]expression.Expression, 0, len(t.Keys)*2)
		for i, k := range t.Keys {
			val, err := b.buildExpr(sc, t.Values[i])
			if err != nil {
				return nil, err
			}
			args = append(args, expression.NewLiteral(k), val)
		}
		return expression.NewScalarFnCall("map", args...), nil

	case *ast.Variable:
		if t.Name == "*" {
			return expression.NewStar(), nil
		}
		return expression.NewTableAlias(t.Name), nil

	case *ast.Parameter:
		return expression.NewParameter(t.Name), nil

	case *ast.PropertyAccess:
		base, ok := t.Base.(*ast.Variable)
		if !ok {
			// Chained property access (a.b.c) has no surviving
			// representation once lowered to a flat PropertyAccess;
			// rejected as an unsupported construct rather than
			// silently discarding the outer base.
			return nil, chainedPropertyAccessErr(t)
		}
		return expression.NewPropertyAccess(base.Name, t.Property), nil

	case *ast.FunctionCall:
		args, err := b.buildExprs(sc, t.Args)
		if err != nil {
			return nil, err
		}
		if isAggregateCall(t.Name) {
			return expression.NewAggregateFnCall(t.Name, t.Distinct, args...), nil
		}
		return expression.NewScalarFnCall(t.Name, args...), nil

	case *ast.BinaryExpr:
		left, err := b.buildExpr(sc, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.buildExpr(sc, t.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewBinary(convertBinaryOp(t.Op), left, right), nil

	case *ast.UnaryExpr:
		operand, err := b.buildExpr(sc, t.Operand)
		if err != nil {
			return nil, err
		}
		return expression.NewUnary(convertUnaryOp(t.Op), operand), nil

	case *ast.CaseExpr:
		return b.buildCase(sc, t)

	case *ast.PatternExpr:
		planNode, err := b.buildPatternSubquery(sc, t.Pattern, t.Where)
		if err != nil {
			return nil, err
		}
		return expression.NewExistsSubquery(planNode), nil

	case *ast.ShortestPathExpr:
		child := newScope(sc)
		built, _, err := b.buildPathPattern(child, t.Pattern, false)
		if err != nil {
			return nil, err
		}
		return expression.NewPathPattern(t.Pattern.Variable, pathAliases(built)...), nil

	default:
		return nil, unsupportedExprErr(e)
	}
}

func (b *PlanBuilder) buildExprs(sc *scope, es []ast.Expr) ([]expression.Expression, error) {
	out := make([]expression.Expression, len(es))
	for i, e := range es {
		v, err := b.buildExpr(sc, e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (b *PlanBuilder) buildCase(sc *scope, c *ast.CaseExpr) (expression.Expression, error) {
	var subject expression.Expression
	var err error
	if c.Subject != nil {
		subject, err = b.buildExpr(sc, c.Subject)
		if err != nil {
			return nil, err
		}
	}
	whens := make([]expression.WhenThen, len(c.Whens))
	for i, w := range c.Whens {
		when, err := b.buildExpr(sc, w.When)
		if err != nil {
			return nil, err
		}
		then, err := b.buildExpr(sc, w.Then)
		if err != nil {
			return nil, err
		}
		whens[i] = expression.WhenThen{When: when, Then: then}
	}
	var els expression.Expression
	if c.Else != nil {
		els, err = b.buildExpr(sc, c.Else)
		if err != nil {
			return nil, err
		}
	}
	return expression.NewCase(subject, whens, els), nil
}

// buildPatternSubquery lowers an EXISTS{...} pattern in a child scope, so
// it can both introduce its own variables and see (but not mutate) the
// enclosing scope's bindings for correlation: a shared alias in both
// trees is the correlation point, left for the optimizer/analyzer to
// respect (CartesianJoinExtraction must never lift a correlated conjunct
// into a join condition).
func (b *PlanBuilder) buildPatternSubquery(sc *scope, pp *ast.PathPattern, where ast.Expr) (plan.Node, error) {
	child := newScope(sc)
	node, filters, err := b.buildPathPattern(child, pp, false)
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		node = plan.NewFilter(expression.NewAnd(filters...), node)
	}
	if where != nil {
		whereExpr, err := b.buildExpr(child, where)
		if err != nil {
			return nil, err
		}
		node = plan.NewFilter(whereExpr, node)
	}
	return node, nil
}

// pathAliases collects the node/relationship aliases of a built pattern
// tree, outermost first, for the symbolic PathPattern expression a
// shortestPath()/allShortestPaths() value lowers to.
func pathAliases(n plan.Node) []string {
	switch t := n.(type) {
	case *plan.GraphNode:
		return []string{t.Alias}
	case *plan.GraphRel:
		out := pathAliases(t.Left)
		out = append(out, t.Alias)
		out = append(out, pathAliases(t.Right)...)
		return out
	default:
		return nil
	}
}

func convertBinaryOp(op ast.BinaryOp) expression.Operator {
	switch op {
	case ast.OpAdd:
		return expression.OpAdd
	case ast.OpSub:
		return expression.OpSub
	case ast.OpMul:
		return expression.OpMul
	case ast.OpDiv:
		return expression.OpDiv
	case ast.OpMod:
		return expression.OpMod
	case ast.OpEq:
		return expression.OpEq
	case ast.OpNeq:
		return expression.OpNeq
	case ast.OpLt:
		return expression.OpLt
	case ast.OpLte:
		return expression.OpLte
	case ast.OpGt:
		return expression.OpGt
	case ast.OpGte:
		return expression.OpGte
	case ast.OpAnd:
		return expression.OpAnd
	case ast.OpOr:
		return expression.OpOr
	case ast.OpIn:
		return expression.OpIn
	case ast.OpRegexMatch:
		return expression.OpRegexMatch
	case ast.OpStartsWith:
		return expression.OpStartsWith
	case ast.OpEndsWith:
		return expression.OpEndsWith
	case ast.OpContains:
		return expression.OpContains
	default:
		return expression.OpEq
	}
}

func convertUnaryOp(op ast.UnaryOp) expression.Operator {
	switch op {
	case ast.OpNot:
		return expression.OpNot
	case ast.OpIsNull:
		return expression.OpIsNull
	case ast.OpIsNotNull:
		return expression.OpIsNotNull
	case ast.OpNeg:
		return expression.OpNeg
	default:
		return expression.OpDistinct
	}
}
