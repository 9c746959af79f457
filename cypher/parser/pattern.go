package parser

import (
	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/cypher/ast"
	"github.com/brahmand-sql/cyphersql/cypher/token"
)

// parsePathPattern parses `[variable =] nodePattern (relPattern nodePattern)*`.
func (p *Parser) parsePathPattern() (*ast.PathPattern, error) {
	p.enter("PathPattern")
	defer p.leave()

	pat := &ast.PathPattern{}
	if p.cur.Kind == token.Ident && p.peek.Kind == token.Eq {
		variable := p.cur.Literal
		if err := p.advance(); err != nil { // consume variable
			return nil, err
		}
		if err := p.advance(); err != nil { // consume '='
			return nil, err
		}
		pat.Variable = variable
	}

	if p.keyword("shortestPath") || p.keyword("allShortestPaths") {
		return p.parseShortestPathPattern(pat.Variable)
	}

	node, err := p.parseNodePattern()
	if err != nil {
		return nil, err
	}
	pat.Nodes = append(pat.Nodes, node)

	for p.cur.Kind == token.Dash || p.cur.Kind == token.ArrowLeft {
		rel, err := p.parseRelPattern()
		if err != nil {
			return nil, err
		}
		next, err := p.parseNodePattern()
		if err != nil {
			return nil, err
		}
		pat.Rels = append(pat.Rels, rel)
		pat.Nodes = append(pat.Nodes, next)
	}
	return pat, nil
}

// parseShortestPathPattern parses `shortestPath(pattern)` /
// `allShortestPaths(pattern)` used directly as a MATCH path pattern (as
// opposed to nested inside a larger expression), flattening the wrapped
// pattern's nodes/rels into the result and tagging every relationship leg
// with the chosen ShortestPathKind.
func (p *Parser) parseShortestPathPattern(variable string) (*ast.PathPattern, error) {
	all := p.keyword("allShortestPaths")
	if err := p.advance(); err != nil { // consume the function-name identifier
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	inner, err := p.parsePathPattern()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	mode := ast.ShortestPathSingle
	if all {
		mode = ast.ShortestPathAll
	}
	for _, rel := range inner.Rels {
		rel.Shortest = mode
	}
	inner.Variable = variable
	return inner, nil
}

func (p *Parser) parseNodePattern() (*ast.NodePattern, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	n := &ast.NodePattern{}
	if p.cur.Kind == token.Ident {
		n.Variable = p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	for p.cur.Kind == token.Colon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		label, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		n.Labels = append(n.Labels, label)
	}
	if p.cur.Kind == token.LBrace {
		props, err := p.parsePropertyMap()
		if err != nil {
			return nil, err
		}
		n.Properties = props
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return n, nil
}

// parseRelPattern parses one `-[alias:TYPE*min..max {props}]->` element,
// including the no-brackets shorthand `--`/`-->`/`<--`.
func (p *Parser) parseRelPattern() (*ast.RelPattern, error) {
	rel := &ast.RelPattern{Direction: ast.DirEither}

	leftArrow := false
	if p.cur.Kind == token.ArrowLeft {
		leftArrow = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else if _, err := p.expect(token.Dash); err != nil {
		return nil, err
	}

	if p.cur.Kind == token.LBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.Ident {
			rel.Variable = p.cur.Literal
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		for p.cur.Kind == token.Colon || p.cur.Kind == token.Pipe {
			if err := p.advance(); err != nil {
				return nil, err
			}
			t, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			rel.Types = append(rel.Types, t)
		}
		if p.cur.Kind == token.Star {
			vl, err := p.parseVariableLength()
			if err != nil {
				return nil, err
			}
			rel.VarLength = vl
		}
		if p.cur.Kind == token.LBrace {
			props, err := p.parsePropertyMap()
			if err != nil {
				return nil, err
			}
			rel.Properties = props
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
	}

	rightArrow := false
	switch p.cur.Kind {
	case token.ArrowRight:
		rightArrow = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	case token.Dash:
		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		return nil, p.errUnexpected("- or ->")
	}

	switch {
	case leftArrow && !rightArrow:
		rel.Direction = ast.DirIncoming
	case rightArrow && !leftArrow:
		rel.Direction = ast.DirOutgoing
	default:
		rel.Direction = ast.DirEither
	}
	return rel, nil
}

// parseVariableLength parses `*`, `*3`, `*1..3`, `*1..`, `*..3`.
func (p *Parser) parseVariableLength() (*ast.VariableLength, error) {
	if _, err := p.expect(token.Star); err != nil {
		return nil, err
	}
	vl := &ast.VariableLength{}
	if p.cur.Kind == token.Int {
		n, err := parseIntLiteral(p.cur.Literal)
		if err != nil {
			return nil, err
		}
		vl.Min, vl.MinSet = n, true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.Kind == token.DotDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.Int {
			n, err := parseIntLiteral(p.cur.Literal)
			if err != nil {
				return nil, err
			}
			vl.Max, vl.MaxSet = n, true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	} else if vl.MinSet {
		// bare `*N` means exactly N hops: min==max==N.
		vl.Max, vl.MaxSet = vl.Min, true
	}
	if vl.Min < 0 || (vl.MaxSet && vl.Max < vl.Min) {
		return nil, cyphererr.ErrVariableLengthBounds.New(vl.Min, vl.Max)
	}
	return vl, nil
}

func (p *Parser) parsePropertyMap() ([]ast.PropertyPattern, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var props []ast.PropertyPattern
	for p.cur.Kind != token.RBrace {
		key, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.Param {
			return nil, cyphererr.ErrFoundParamInProperties.New(key)
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		props = append(props, ast.PropertyPattern{Key: key, Value: val})
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
	return props, nil
}
