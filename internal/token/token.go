package token

import "sort"

// Type identifies the category of a token.
type Type uint8

// Token carries the lexical item along with its source position.
// Literal is a slice of the scanned source; for Error tokens it holds the
// diagnostic message instead.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

// Position describes a byte offset and 1-based line/column.
type Position struct {
	Offset int
	Line   int
	Column int
}

const (
	// single-character tokens
	LParen    Type = iota // (
	RParen                // )
	LBrace                // {
	RBrace                // }
	Comma                 // ,
	Dot                   // .
	Minus                 // -
	Plus                  // +
	Semicolon             // ;
	Slash                 // /
	Star                  // *
	Colon                 // :

	// one or two character tokens
	Bang         // !
	NotEqual     // !=
	Assign       // =
	Equal        // ==
	Define       // :=
	Greater      // >
	GreaterEqual // >=
	Less         // <
	LessEqual    // <=

	// literals
	Ident
	String
	Number

	// keywords
	And
	Class
	Else
	False
	For
	Func
	If
	Info
	Nil
	Or
	Return
	Super
	This
	True
	Var
	While

	Error
	EOF

	// NumTypes is the number of token types; tables indexed by Type use it.
	NumTypes
)

var names = [NumTypes]string{
	LParen:       "LPAREN",
	RParen:       "RPAREN",
	LBrace:       "LBRACE",
	RBrace:       "RBRACE",
	Comma:        "COMMA",
	Dot:          "DOT",
	Minus:        "MINUS",
	Plus:         "PLUS",
	Semicolon:    "SEMICOLON",
	Slash:        "SLASH",
	Star:         "STAR",
	Colon:        "COLON",
	Bang:         "BANG",
	NotEqual:     "NOTEQUAL",
	Assign:       "ASSIGN",
	Equal:        "EQUAL",
	Define:       "DEFINE",
	Greater:      "GREATER",
	GreaterEqual: "GREATEREQUAL",
	Less:         "LESS",
	LessEqual:    "LESSEQUAL",
	Ident:        "IDENT",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "AND",
	Class:        "CLASS",
	Else:         "ELSE",
	False:        "FALSE",
	For:          "FOR",
	Func:         "FUNC",
	If:           "IF",
	Info:         "INFO",
	Nil:          "NIL",
	Or:           "OR",
	Return:       "RETURN",
	Super:        "SUPER",
	This:         "THIS",
	True:         "TRUE",
	Var:          "VAR",
	While:        "WHILE",
	Error:        "ERROR",
	EOF:          "EOF",
}

func (t Type) String() string {
	if t < NumTypes {
		return names[t]
	}
	return "UNKNOWN"
}

var keywords = map[string]Type{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"func":   Func,
	"if":     If,
	"info":   Info,
	"nil":    Nil,
	"or":     Or,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// Keywords returns every reserved word in sorted order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LookupIdent returns the keyword token type or Ident.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return Ident
}
