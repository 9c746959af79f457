package parser

import (
	"strconv"
	"strings"

	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/cypher/ast"
	"github.com/brahmand-sql/cyphersql/cypher/token"
)

// precedence levels, lowest to highest.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precComparison
	precAdditive
	precMultiplicative
	precUnary
)

var binOpPrec = map[ast.BinaryOp]int{
	ast.OpOr:          precOr,
	ast.OpAnd:         precAnd,
	ast.OpEq:          precComparison,
	ast.OpNeq:         precComparison,
	ast.OpLt:          precComparison,
	ast.OpLte:         precComparison,
	ast.OpGt:          precComparison,
	ast.OpGte:         precComparison,
	ast.OpIn:          precComparison,
	ast.OpRegexMatch:  precComparison,
	ast.OpStartsWith:  precComparison,
	ast.OpEndsWith:    precComparison,
	ast.OpContains:    precComparison,
	ast.OpAdd:         precAdditive,
	ast.OpSub:         precAdditive,
	ast.OpMul:         precMultiplicative,
	ast.OpDiv:         precMultiplicative,
	ast.OpMod:         precMultiplicative,
}

// parseExpr parses a full expression via precedence climbing.
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(precLowest)
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op, width, ok, err := p.peekBinaryOp()
		if err != nil {
			return nil, err
		}
		if !ok || binOpPrec[op] < minPrec {
			return left, nil
		}
		for i := 0; i < width; i++ {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		right, err := p.parseBinary(binOpPrec[op] + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

// peekBinaryOp inspects cur (and sometimes peek, for two-keyword operators
// like STARTS WITH) and reports the BinaryOp it starts, how many tokens to
// consume, and whether cur starts a binary operator at all.
func (p *Parser) peekBinaryOp() (ast.BinaryOp, int, bool, error) {
	switch p.cur.Kind {
	case token.Eq:
		return ast.OpEq, 1, true, nil
	case token.Neq:
		return ast.OpNeq, 1, true, nil
	case token.Lt:
		return ast.OpLt, 1, true, nil
	case token.Lte:
		return ast.OpLte, 1, true, nil
	case token.Gt:
		return ast.OpGt, 1, true, nil
	case token.Gte:
		return ast.OpGte, 1, true, nil
	case token.RegexMatch:
		return ast.OpRegexMatch, 1, true, nil
	case token.Plus:
		return ast.OpAdd, 1, true, nil
	case token.Dash:
		return ast.OpSub, 1, true, nil
	case token.Star:
		return ast.OpMul, 1, true, nil
	case token.Slash:
		return ast.OpDiv, 1, true, nil
	case token.Percent:
		return ast.OpMod, 1, true, nil
	}
	if p.keyword("AND") {
		return ast.OpAnd, 1, true, nil
	}
	if p.keyword("OR") {
		return ast.OpOr, 1, true, nil
	}
	if p.keyword("IN") {
		return ast.OpIn, 1, true, nil
	}
	if p.keyword("STARTS") && p.peekKeyword("WITH") {
		return ast.OpStartsWith, 2, true, nil
	}
	if p.keyword("ENDS") && p.peekKeyword("WITH") {
		return ast.OpEndsWith, 2, true, nil
	}
	if p.keyword("CONTAINS") {
		return ast.OpContains, 1, true, nil
	}
	return 0, 0, false, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch {
	case p.keyword("NOT"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseBinary(precNot)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNot, Operand: operand}, nil
	case p.cur.Kind == token.Dash:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseBinary(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNeg, Operand: operand}, nil
	case p.keyword("DISTINCT"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseBinary(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpDistinct, Operand: operand}, nil
	}

	e, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// parsePostfix parses a primary expression followed by any chain of
// `.property`, `IS NULL`, `IS NOT NULL`.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur.Kind == token.Dot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			prop, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			e = &ast.PropertyAccess{Base: e, Property: prop}
		case p.keyword("IS") && p.peekKeyword("NOT"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			e = &ast.UnaryExpr{Op: ast.OpIsNotNull, Operand: e}
		case p.keyword("IS"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			e = &ast.UnaryExpr{Op: ast.OpIsNull, Operand: e}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch {
	case p.cur.Kind == token.Int:
		v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
		if err != nil {
			return nil, cyphererr.ErrInvalidLiteral.New(p.cur.Literal, err.Error())
		}
		lit := &ast.Literal{Value: v}
		return lit, p.advance()
	case p.cur.Kind == token.Float:
		v, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			return nil, cyphererr.ErrInvalidLiteral.New(p.cur.Literal, err.Error())
		}
		lit := &ast.Literal{Value: v}
		return lit, p.advance()
	case p.cur.Kind == token.String:
		lit := &ast.Literal{Value: p.cur.Literal}
		return lit, p.advance()
	case p.cur.Kind == token.Param:
		param := &ast.Parameter{Name: p.cur.Literal}
		return param, p.advance()
	case p.cur.Kind == token.LBracket:
		return p.parseListLiteral()
	case p.cur.Kind == token.LBrace:
		return p.parseMapLiteral()
	case p.cur.Kind == token.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	case p.keyword("TRUE"):
		return &ast.Literal{Value: true}, p.advance()
	case p.keyword("FALSE"):
		return &ast.Literal{Value: false}, p.advance()
	case p.keyword("NULL"):
		return &ast.Literal{Value: nil}, p.advance()
	case p.keyword("CASE"):
		return p.parseCase()
	case p.keyword("EXISTS"):
		return p.parseExists()
	case p.keyword("shortestPath"):
		return p.parseShortestPath(false)
	case p.keyword("allShortestPaths"):
		return p.parseShortestPath(true)
	case p.cur.Kind == token.Ident:
		return p.parseIdentExpr()
	default:
		return nil, p.errUnexpected("an expression")
	}
}

func (p *Parser) parseListLiteral() (ast.Expr, error) {
	if _, err := p.expect(token.LBracket); err != nil {
		return nil, err
	}
	lst := &ast.ListLiteral{}
	for p.cur.Kind != token.RBracket {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lst.Items = append(lst.Items, e)
		if p.cur.Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return lst, nil
}

func (p *Parser) parseMapLiteral() (ast.Expr, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	m := &ast.MapLiteral{}
	for p.cur.Kind != token.RBrace {
		key, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, val)
		if p.cur.Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return m, nil
}

// parseIdentExpr disambiguates a bare Ident between a variable reference
// and a function call, `name(args)`.
func (p *Parser) parseIdentExpr() (ast.Expr, error) {
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind != token.LParen {
		return &ast.Variable{Name: name}, nil
	}
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	call := &ast.FunctionCall{Name: strings.ToLower(name)}
	if p.keyword("DISTINCT") {
		call.Distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.Kind == token.Star && p.peek.Kind == token.RParen {
		// count(*)
		call.Args = append(call.Args, &ast.Variable{Name: "*"})
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		for p.cur.Kind != token.RParen {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.cur.Kind != token.Comma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseCase() (ast.Expr, error) {
	if err := p.expectKeyword("CASE"); err != nil {
		return nil, err
	}
	c := &ast.CaseExpr{}
	if !p.keyword("WHEN") {
		subj, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Subject = subj
	}
	for p.keyword("WHEN") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		when, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, ast.CaseWhen{When: when, Then: then})
	}
	if p.keyword("ELSE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = els
	}
	if err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	return c, nil
}

// parseExists parses `EXISTS { pattern [WHERE cond] }` or
// `EXISTS (pattern)`.
func (p *Parser) parseExists() (ast.Expr, error) {
	if err := p.expectKeyword("EXISTS"); err != nil {
		return nil, err
	}
	closer := token.RParen
	if p.cur.Kind == token.LBrace {
		closer = token.RBrace
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	pat, err := p.parsePathPattern()
	if err != nil {
		return nil, err
	}
	pe := &ast.PatternExpr{Pattern: pat}
	if p.keyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		pe.Where = where
	}
	if _, err := p.expect(closer); err != nil {
		return nil, err
	}
	return pe, nil
}

// parseShortestPath parses `shortestPath(pattern)` / `allShortestPaths(pattern)`.
func (p *Parser) parseShortestPath(all bool) (ast.Expr, error) {
	if err := p.advance(); err != nil { // consume the function-name identifier
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	pat, err := p.parsePathPattern()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return &ast.ShortestPathExpr{Pattern: pat, All: all}, nil
}
