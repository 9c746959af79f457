// Package token defines the lexical token kinds produced by cypher/lexer
// and consumed by cypher/parser.
package token

// Kind is the lexical category of a Token.
type Kind int

const (
	EOF Kind = iota
	Illegal

	Ident  // MATCH, p, Person, age (keywords are reclassified by the parser, not the lexer)
	Int    // 42
	Float  // 3.14
	String // 'hello', "hello"
	Param  // $name

	// Punctuation
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	LBrace   // {
	RBrace   // }
	Comma
	Colon
	Semicolon
	Dot
	DotDot // ..

	// Operators. Dash ("-") is overloaded between subtraction and the
	// relationship-pattern dash; the parser, not the lexer, disambiguates
	// by grammatical position.
	Plus
	Dash
	Star
	Slash
	Percent
	Eq
	Neq
	Lt
	Lte
	Gt
	Gte
	RegexMatch // =~

	ArrowRight // ->
	ArrowLeft  // <-

	Pipe // | inside relationship type lists: [:A|B]
)

// Token is one lexeme: its Kind, literal text (for Ident/Int/Float/String/
// Param), and byte offset in the source, used for error reporting.
type Token struct {
	Kind    Kind
	Literal string
	Pos     int
}

func (t Token) String() string {
	if t.Literal != "" {
		return t.Literal
	}
	return kindNames[t.Kind]
}

// String returns the canonical display form of k, used in parse-error
// messages ("expected )", "expected RETURN").
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "?"
}

var kindNames = map[Kind]string{
	EOF:        "EOF",
	Illegal:    "ILLEGAL",
	Ident:      "identifier",
	Int:        "integer",
	Float:      "float",
	String:     "string",
	Param:      "parameter",
	LParen:     "(",
	RParen:     ")",
	LBracket:   "[",
	RBracket:   "]",
	LBrace:     "{",
	RBrace:     "}",
	Comma:      ",",
	Colon:      ":",
	Semicolon:  ";",
	Dot:        ".",
	DotDot:     "..",
	Plus:       "+",
	Dash:       "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	Eq:         "=",
	Neq:        "<>",
	Lt:         "<",
	Lte:        "<=",
	Gt:         ">",
	Gte:        ">=",
	RegexMatch: "=~",
	ArrowRight: "->",
	ArrowLeft:  "<-",
	Pipe:       "|",
}
