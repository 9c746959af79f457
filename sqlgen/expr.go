package sqlgen

import (
	"fmt"
	"strings"

	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/render"
	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// expr serializes one resolved expression tree. By the time a RenderPlan
// reaches this package every PropertyAccess/TableAlias/function call has
// already been resolved by render.Lower; a PropertyAccess surviving to
// here is an internal invariant violation, not a user-facing error.
func (g *generator) expr(e expression.Expression) (string, error) {
	switch t := e.(type) {
	case nil:
		return "", nil

	case *expression.Literal:
		return literalSQL(t.Value), nil

	case *expression.Column:
		return t.String(), nil

	case *expression.ColumnAlias:
		return t.String(), nil

	case *expression.TableAlias:
		return quoteIdent(t.Name), nil

	case *expression.Star:
		return "*", nil

	case *expression.Parameter:
		return t.String(), nil

	case *expression.Raw:
		return t.SQL, nil

	case *expression.List:
		items, err := g.exprList(t.Items)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("tuple(%s)", strings.Join(items, ", ")), nil

	case *expression.PropertyAccess:
		return "", cyphererr.ErrInternalInvariant.New(fmt.Sprintf("unresolved property access %s.%s reached SQL generation", t.Alias, t.Property))

	case *expression.PathPattern:
		return "", cyphererr.ErrInternalInvariant.New(fmt.Sprintf("path pattern %q reached SQL generation unresolved", t.Variable))

	case *expression.ScalarFnCall:
		args, err := g.exprList(t.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", t.Name, strings.Join(args, ", ")), nil

	case *expression.AggregateFnCall:
		args, err := g.exprList(t.Args)
		if err != nil {
			return "", err
		}
		prefix := ""
		if t.Distinct {
			prefix = "DISTINCT "
		}
		return fmt.Sprintf("%s(%s%s)", t.Name, prefix, strings.Join(args, ", ")), nil

	case *expression.Case:
		return g.caseExpr(t)

	case *expression.OperatorApplication:
		return g.operatorApp(t)

	case *render.SubqueryExpr:
		return g.subqueryExpr(t)

	default:
		return "", cyphererr.ErrUnrepresentable.New(fmt.Sprintf("expression of type %T", e))
	}
}

func (g *generator) subqueryExpr(s *render.SubqueryExpr) (string, error) {
	inner, err := g.plan(s.Plan)
	if err != nil {
		return "", err
	}
	if s.Kind == render.SubqueryExists {
		return fmt.Sprintf("EXISTS (%s)", inner), nil
	}
	left, err := g.expr(s.Left)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s IN (%s))", left, inner), nil
}

func (g *generator) caseExpr(c *expression.Case) (string, error) {
	if c.Subject != nil {
		subj, err := g.expr(c.Subject)
		if err != nil {
			return "", err
		}
		args := []string{subj}
		for _, wt := range c.Whens {
			w, err := g.expr(wt.When)
			if err != nil {
				return "", err
			}
			th, err := g.expr(wt.Then)
			if err != nil {
				return "", err
			}
			args = append(args, w, th)
		}
		elseSQL := "NULL"
		if c.Else != nil {
			e, err := g.expr(c.Else)
			if err != nil {
				return "", err
			}
			elseSQL = e
		}
		args = append(args, elseSQL)
		return fmt.Sprintf("caseWithExpression(%s)", strings.Join(args, ", ")), nil
	}

	var b strings.Builder
	b.WriteString("CASE")
	for _, wt := range c.Whens {
		w, err := g.expr(wt.When)
		if err != nil {
			return "", err
		}
		th, err := g.expr(wt.Then)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " WHEN %s THEN %s", w, th)
	}
	if c.Else != nil {
		e, err := g.expr(c.Else)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " ELSE %s", e)
	}
	b.WriteString(" END")
	return b.String(), nil
}

// operatorApp renders a binary/unary operator application, special-casing
// every operator §4.6 maps to a ClickHouse builtin rather than an infix
// SQL operator (regex match, STARTS WITH/ENDS WITH/CONTAINS, IN against a
// literal list, string concatenation via `+`).
func (g *generator) operatorApp(o *expression.OperatorApplication) (string, error) {
	if o.Op.IsUnary() {
		operand, err := g.expr(o.Operands[0])
		if err != nil {
			return "", err
		}
		if o.Op.IsPostfix() {
			return fmt.Sprintf("(%s %s)", operand, o.Op), nil
		}
		return fmt.Sprintf("(%s %s)", o.Op, operand), nil
	}

	left, right := o.Operands[0], o.Operands[1]

	switch o.Op {
	case expression.OpRegexMatch:
		l, err := g.expr(left)
		if err != nil {
			return "", err
		}
		r, err := g.expr(right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("match(%s, %s)", l, r), nil

	case expression.OpStartsWith:
		l, err := g.expr(left)
		if err != nil {
			return "", err
		}
		r, err := g.expr(right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("startsWith(%s, %s)", l, r), nil

	case expression.OpEndsWith:
		l, err := g.expr(left)
		if err != nil {
			return "", err
		}
		r, err := g.expr(right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("endsWith(%s, %s)", l, r), nil

	case expression.OpContains:
		l, err := g.expr(left)
		if err != nil {
			return "", err
		}
		r, err := g.expr(right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(position(%s, %s) > 0)", l, r), nil

	case expression.OpIn, expression.OpNotIn:
		l, err := g.expr(left)
		if err != nil {
			return "", err
		}
		r, err := g.inRHS(right)
		if err != nil {
			return "", err
		}
		kw := "IN"
		if o.Op == expression.OpNotIn {
			kw = "NOT IN"
		}
		return fmt.Sprintf("(%s %s %s)", l, kw, r), nil

	case expression.OpAdd:
		if parts, ok := flattenConcat(o); ok {
			args, err := g.exprList(parts)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("concat(%s)", strings.Join(args, ", ")), nil
		}
	}

	l, err := g.expr(left)
	if err != nil {
		return "", err
	}
	r, err := g.expr(right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", l, o.Op, r), nil
}

// inRHS renders IN's right-hand side. A literal List always becomes
// tuple(...) per §4.6; anything else (already a SubqueryExpr, or a single
// scalar) renders through the normal expr path.
func (g *generator) inRHS(e expression.Expression) (string, error) {
	if l, ok := e.(*expression.List); ok {
		items, err := g.exprList(l.Items)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("tuple(%s)", strings.Join(items, ", ")), nil
	}
	return g.expr(e)
}

// flattenConcat walks a left-associative chain of OpAdd applications,
// reporting ok=true (and the flattened operand list) only when at least
// one statically-visible operand is a string literal — the only signal
// available without a type-checking pass over column types. A `+` chain
// with no visible string literal renders as ordinary numeric addition.
func flattenConcat(o *expression.OperatorApplication) ([]expression.Expression, bool) {
	var operands []expression.Expression
	var collect func(e expression.Expression)
	collect = func(e expression.Expression) {
		if add, ok := e.(*expression.OperatorApplication); ok && add.Op == expression.OpAdd {
			collect(add.Operands[0])
			collect(add.Operands[1])
			return
		}
		operands = append(operands, e)
	}
	collect(o)

	hasString := false
	for _, op := range operands {
		if lit, ok := op.(*expression.Literal); ok {
			if _, isStr := lit.Value.(string); isStr {
				hasString = true
				break
			}
		}
	}
	return operands, hasString
}

func literalSQL(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return quoteStringLiteral(val)
	case float32, float64:
		return fmt.Sprintf("%v", val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%v", val)
	default:
		return quoteStringLiteral(fmt.Sprintf("%v", val))
	}
}

func quoteStringLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
