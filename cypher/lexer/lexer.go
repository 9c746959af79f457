// Package lexer turns a Cypher query string into a stream of tokens for
// cypher/parser. It is hand-written rather than generated: the pool this
// module draws on carries no openCypher-shaped lexer/parser generator, so
// this package follows the plain rune-scanner idiom common across the
// pack's own hand-written lexers instead of pulling in an unrelated
// generator framework.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/cypher/token"
)

// Lexer scans src one rune at a time, producing tokens on demand.
type Lexer struct {
	src     string
	pos     int // byte offset of ch
	readPos int // byte offset after ch
	ch      rune
}

// New returns a Lexer positioned at the start of src.
func New(src string) *Lexer {
	l := &Lexer{src: src}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.readPos >= len(l.src) {
		l.ch = 0
		l.pos = len(l.src)
		l.readPos = len(l.src) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.src[l.readPos:])
	l.pos = l.readPos
	l.ch = r
	l.readPos += size
}

func (l *Lexer) peek() rune {
	if l.readPos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.readPos:])
	return r
}

func (l *Lexer) skipSpace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.advance()
	}
}

// Next returns the next token in the stream, EOF once exhausted.
func (l *Lexer) Next() (token.Token, error) {
	l.skipSpace()
	start := l.pos

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.EOF, Pos: start}, nil
	case l.ch == '(':
		l.advance()
		return token.Token{Kind: token.LParen, Pos: start}, nil
	case l.ch == ')':
		l.advance()
		return token.Token{Kind: token.RParen, Pos: start}, nil
	case l.ch == '[':
		l.advance()
		return token.Token{Kind: token.LBracket, Pos: start}, nil
	case l.ch == ']':
		l.advance()
		return token.Token{Kind: token.RBracket, Pos: start}, nil
	case l.ch == '{':
		l.advance()
		return token.Token{Kind: token.LBrace, Pos: start}, nil
	case l.ch == '}':
		l.advance()
		return token.Token{Kind: token.RBrace, Pos: start}, nil
	case l.ch == ',':
		l.advance()
		return token.Token{Kind: token.Comma, Pos: start}, nil
	case l.ch == ':':
		l.advance()
		return token.Token{Kind: token.Colon, Pos: start}, nil
	case l.ch == ';':
		l.advance()
		return token.Token{Kind: token.Semicolon, Pos: start}, nil
	case l.ch == '.':
		l.advance()
		if l.ch == '.' {
			l.advance()
			return token.Token{Kind: token.DotDot, Pos: start}, nil
		}
		return token.Token{Kind: token.Dot, Pos: start}, nil
	case l.ch == '+':
		l.advance()
		return token.Token{Kind: token.Plus, Pos: start}, nil
	case l.ch == '-':
		l.advance()
		if l.ch == '>' {
			l.advance()
			return token.Token{Kind: token.ArrowRight, Pos: start}, nil
		}
		return token.Token{Kind: token.Dash, Pos: start}, nil
	case l.ch == '*':
		l.advance()
		return token.Token{Kind: token.Star, Pos: start}, nil
	case l.ch == '/':
		l.advance()
		return token.Token{Kind: token.Slash, Pos: start}, nil
	case l.ch == '%':
		l.advance()
		return token.Token{Kind: token.Percent, Pos: start}, nil
	case l.ch == '=':
		l.advance()
		if l.ch == '~' {
			l.advance()
			return token.Token{Kind: token.RegexMatch, Pos: start}, nil
		}
		return token.Token{Kind: token.Eq, Pos: start}, nil
	case l.ch == '<':
		l.advance()
		switch l.ch {
		case '>':
			l.advance()
			return token.Token{Kind: token.Neq, Pos: start}, nil
		case '=':
			l.advance()
			return token.Token{Kind: token.Lte, Pos: start}, nil
		case '-':
			l.advance()
			return token.Token{Kind: token.ArrowLeft, Pos: start}, nil
		default:
			return token.Token{Kind: token.Lt, Pos: start}, nil
		}
	case l.ch == '>':
		l.advance()
		if l.ch == '=' {
			l.advance()
			return token.Token{Kind: token.Gte, Pos: start}, nil
		}
		return token.Token{Kind: token.Gt, Pos: start}, nil
	case l.ch == '|':
		l.advance()
		return token.Token{Kind: token.Pipe, Pos: start}, nil
	case l.ch == '$':
		return l.lexParam(start)
	case l.ch == '\'' || l.ch == '"':
		return l.lexString(start)
	case unicode.IsDigit(l.ch):
		return l.lexNumber(start)
	case isIdentStart(l.ch):
		return l.lexIdent(start), nil
	default:
		bad := l.ch
		l.advance()
		return token.Token{}, cyphererr.ErrUnexpectedToken.New(string(bad), start, "unrecognized character")
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) lexIdent(start int) token.Token {
	for isIdentPart(l.ch) {
		l.advance()
	}
	return token.Token{Kind: token.Ident, Literal: l.src[start:l.pos], Pos: start}
}

func (l *Lexer) lexParam(start int) (token.Token, error) {
	l.advance() // consume '$'
	nameStart := l.pos
	if !isIdentStart(l.ch) {
		return token.Token{}, cyphererr.ErrUnexpectedToken.New("$", start, "expected parameter name after '$'")
	}
	for isIdentPart(l.ch) {
		l.advance()
	}
	return token.Token{Kind: token.Param, Literal: l.src[nameStart:l.pos], Pos: start}, nil
}

func (l *Lexer) lexNumber(start int) (token.Token, error) {
	isFloat := false
	for unicode.IsDigit(l.ch) {
		l.advance()
	}
	if l.ch == '.' && unicode.IsDigit(l.peek()) {
		isFloat = true
		l.advance()
		for unicode.IsDigit(l.ch) {
			l.advance()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.advance()
		if l.ch == '+' || l.ch == '-' {
			l.advance()
		}
		if !unicode.IsDigit(l.ch) {
			return token.Token{}, cyphererr.ErrInvalidLiteral.New(l.src[start:l.pos], "malformed exponent")
		}
		for unicode.IsDigit(l.ch) {
			l.advance()
		}
	}
	kind := token.Int
	if isFloat {
		kind = token.Float
	}
	return token.Token{Kind: kind, Literal: l.src[start:l.pos], Pos: start}, nil
}

func (l *Lexer) lexString(start int) (token.Token, error) {
	quote := l.ch
	l.advance()
	var b strings.Builder
	for {
		if l.ch == 0 {
			return token.Token{}, cyphererr.ErrUnexpectedEOF.New("unterminated string literal")
		}
		if l.ch == quote {
			l.advance()
			break
		}
		if l.ch == '\\' {
			l.advance()
			switch l.ch {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '\\', '\'', '"':
				b.WriteRune(l.ch)
			default:
				b.WriteRune(l.ch)
			}
			l.advance()
			continue
		}
		b.WriteRune(l.ch)
		l.advance()
	}
	return token.Token{Kind: token.String, Literal: b.String(), Pos: start}, nil
}
