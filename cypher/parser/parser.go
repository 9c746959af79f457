// Package parser implements the hand-written recursive-descent parser for
// the openCypher subset from SPEC_FULL.md §4.1. There is no
// openCypher-shaped parser generator in the dependency pool this module
// draws on, so the parser follows plain idiomatic Go recursive descent
// (one method per grammar production, a one-token lookahead buffer)
// instead of reaching for an unrelated generator framework.
package parser

import (
	"strconv"
	"strings"

	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/cypher/ast"
	"github.com/brahmand-sql/cyphersql/cypher/lexer"
	"github.com/brahmand-sql/cyphersql/cypher/token"
)

// Parser consumes tokens from a lexer.Lexer and builds an *ast.Query.
type Parser struct {
	l         *lexer.Lexer
	cur       token.Token
	peek      token.Token
	breadcrumb []string
}

// Parse lexes and parses src in one call.
func Parse(src string) (*ast.Query, error) {
	p := &Parser{l: lexer.New(src)}
	if err := p.init(); err != nil {
		return nil, err
	}
	return p.parseQuery()
}

func (p *Parser) init() error {
	if err := p.advance(); err != nil {
		return err
	}
	return p.advance()
}

// advance shifts cur := peek, and lexes a fresh peek.
func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.l.Next()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) enter(production string) {
	p.breadcrumb = append(p.breadcrumb, production)
}

func (p *Parser) leave() {
	p.breadcrumb = p.breadcrumb[:len(p.breadcrumb)-1]
}

func (p *Parser) trail() string {
	return strings.Join(p.breadcrumb, " > ")
}

func (p *Parser) errUnexpected(expected string) error {
	return cyphererr.ErrUnexpectedToken.New(p.cur.String(), p.cur.Pos,
		"expected "+expected+" while parsing "+p.trail())
}

// keyword reports whether cur is an identifier token matching kw,
// case-insensitively (Cypher keywords are not case-sensitive).
func (p *Parser) keyword(kw string) bool {
	return p.cur.Kind == token.Ident && strings.EqualFold(p.cur.Literal, kw)
}

func (p *Parser) peekKeyword(kw string) bool {
	return p.peek.Kind == token.Ident && strings.EqualFold(p.peek.Literal, kw)
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.keyword(kw) {
		return p.errUnexpected(kw)
	}
	return p.advance()
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, p.errUnexpected(k.String())
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur.Kind != token.Ident {
		return "", p.errUnexpected("identifier")
	}
	name := p.cur.Literal
	return name, p.advance()
}

// parseQuery parses `USE? part (UNION [ALL] part)*`.
func (p *Parser) parseQuery() (*ast.Query, error) {
	p.enter("Query")
	defer p.leave()

	q := &ast.Query{}
	if p.keyword("USE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		db, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		q.UseDatabase = db
	}

	part, err := p.parseSinglePartQuery()
	if err != nil {
		return nil, err
	}
	q.Parts = append(q.Parts, part)

	for p.keyword("UNION") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		all := false
		if p.keyword("ALL") {
			all = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		q.UnionAll = append(q.UnionAll, all)
		next, err := p.parseSinglePartQuery()
		if err != nil {
			return nil, err
		}
		q.Parts = append(q.Parts, next)
	}

	if p.cur.Kind == token.Semicolon {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.Kind != token.EOF {
		return nil, p.errUnexpected("end of query")
	}
	return q, nil
}

func (p *Parser) parseSinglePartQuery() (*ast.SinglePartQuery, error) {
	p.enter("SinglePartQuery")
	defer p.leave()

	part := &ast.SinglePartQuery{}
	for {
		switch {
		case p.keyword("MATCH") || p.keyword("OPTIONAL"):
			m, err := p.parseMatch()
			if err != nil {
				return nil, err
			}
			part.Clauses = append(part.Clauses, m)
		case p.keyword("UNWIND"):
			u, err := p.parseUnwind()
			if err != nil {
				return nil, err
			}
			part.Clauses = append(part.Clauses, u)
		case p.keyword("WITH"):
			w, err := p.parseWith()
			if err != nil {
				return nil, err
			}
			part.Clauses = append(part.Clauses, w)
		case p.keyword("CALL"):
			c, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			part.Clauses = append(part.Clauses, c)
		case p.keyword("RETURN"):
			ret, err := p.parseReturn()
			if err != nil {
				return nil, err
			}
			part.Return = ret
			return part, nil
		default:
			return nil, p.errUnexpected("MATCH, OPTIONAL MATCH, UNWIND, WITH, CALL, or RETURN")
		}
	}
}

func (p *Parser) parseMatch() (*ast.Match, error) {
	p.enter("Match")
	defer p.leave()

	m := &ast.Match{}
	if p.keyword("OPTIONAL") {
		m.Optional = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("MATCH"); err != nil {
		return nil, err
	}

	for {
		pat, err := p.parsePathPattern()
		if err != nil {
			return nil, err
		}
		m.Patterns = append(m.Patterns, pat)
		if p.cur.Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.keyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m.Where = where
	}
	return m, nil
}

func (p *Parser) parseUnwind() (*ast.Unwind, error) {
	if err := p.expectKeyword("UNWIND"); err != nil {
		return nil, err
	}
	list, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	alias, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &ast.Unwind{List: list, Alias: alias}, nil
}

func (p *Parser) parseWith() (*ast.With, error) {
	if err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	w := &ast.With{}
	if p.keyword("DISTINCT") {
		w.Distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	items, err := p.parseProjectionItems()
	if err != nil {
		return nil, err
	}
	w.Items = items

	if p.keyword("ORDER") {
		order, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		w.OrderBy = order
	}
	if p.keyword("SKIP") {
		skip, err := p.parseSkip()
		if err != nil {
			return nil, err
		}
		w.Skip = skip
	}
	if p.keyword("LIMIT") {
		limit, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		w.Limit = limit
	}
	if p.keyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		w.Where = where
	}
	return w, nil
}

func (p *Parser) parseCall() (*ast.Call, error) {
	if err := p.expectKeyword("CALL"); err != nil {
		return nil, err
	}
	proc, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for p.cur.Kind != token.RParen {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	c := &ast.Call{Procedure: proc, Args: args}
	if p.keyword("YIELD") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			c.Yield = append(c.Yield, name)
			if p.cur.Kind != token.Comma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	if err := p.expectKeyword("RETURN"); err != nil {
		return nil, err
	}
	ret := &ast.Return{}
	if p.keyword("DISTINCT") {
		ret.Distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	items, err := p.parseProjectionItems()
	if err != nil {
		return nil, err
	}
	ret.Items = items

	if p.keyword("ORDER") {
		order, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		ret.OrderBy = order
	}
	if p.keyword("SKIP") {
		skip, err := p.parseSkip()
		if err != nil {
			return nil, err
		}
		ret.Skip = skip
	}
	if p.keyword("LIMIT") {
		limit, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		ret.Limit = limit
	}
	return ret, nil
}

func (p *Parser) parseProjectionItems() ([]ast.ProjectionItem, error) {
	var items []ast.ProjectionItem
	for {
		if p.cur.Kind == token.Star {
			items = append(items, ast.ProjectionItem{Star: true})
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item := ast.ProjectionItem{Expr: e}
			if p.keyword("AS") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				alias, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				item.Alias = alias
			}
			items = append(items, item)
		}
		if p.cur.Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (p *Parser) parseOrderBy() ([]ast.SortItem, error) {
	if err := p.expectKeyword("ORDER"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("BY"); err != nil {
		return nil, err
	}
	var items []ast.SortItem
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		item := ast.SortItem{Expr: e}
		if p.keyword("DESC") || p.keyword("DESCENDING") {
			item.Descending = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if p.keyword("ASC") || p.keyword("ASCENDING") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
		if p.cur.Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (p *Parser) parseSkip() (ast.Expr, error) {
	if err := p.expectKeyword("SKIP"); err != nil {
		return nil, err
	}
	return p.parseExpr()
}

func (p *Parser) parseLimit() (ast.Expr, error) {
	if err := p.expectKeyword("LIMIT"); err != nil {
		return nil, err
	}
	return p.parseExpr()
}

// parseIntLiteral parses an already-consumed Int token's literal.
func parseIntLiteral(lit string) (int, error) {
	v, err := strconv.Atoi(lit)
	if err != nil {
		return 0, cyphererr.ErrInvalidLiteral.New(lit, err.Error())
	}
	return v, nil
}
