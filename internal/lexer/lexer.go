package lexer

import (
	"github.com/xirelogy/azura/internal/token"
)

// Lexer converts source text into a stream of tokens, one per NextToken call.
// Token literals are slices of the input; the lexer copies no text.
type Lexer struct {
	input   string
	start   int  // offset of the token being scanned
	pos     int  // current position in bytes
	readPos int  // next read position
	ch      byte // current char
	line    int
	column  int

	startLine   int
	startColumn int
}

// New creates a lexer for the provided source text.
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// NextToken returns the next token from the input. Once the input is
// exhausted it keeps returning EOF.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.markStart()

	if l.atEnd() {
		return l.makeToken(token.EOF)
	}

	ch := l.ch
	l.readChar()

	switch ch {
	case '(':
		return l.makeToken(token.LParen)
	case ')':
		return l.makeToken(token.RParen)
	case '{':
		return l.makeToken(token.LBrace)
	case '}':
		return l.makeToken(token.RBrace)
	case ',':
		return l.makeToken(token.Comma)
	case '.':
		return l.makeToken(token.Dot)
	case '-':
		return l.makeToken(token.Minus)
	case '+':
		return l.makeToken(token.Plus)
	case ';':
		return l.makeToken(token.Semicolon)
	case '/':
		return l.makeToken(token.Slash)
	case '*':
		return l.makeToken(token.Star)
	case ':':
		return l.makeToken(l.pick('=', token.Define, token.Colon))
	case '!':
		return l.makeToken(l.pick('=', token.NotEqual, token.Bang))
	case '=':
		return l.makeToken(l.pick('=', token.Equal, token.Assign))
	case '<':
		return l.makeToken(l.pick('=', token.LessEqual, token.Less))
	case '>':
		return l.makeToken(l.pick('=', token.GreaterEqual, token.Greater))
	case '"', '\'':
		return l.readString(ch)
	}

	if isLetter(ch) {
		return l.readIdentifier()
	}
	if isDigit(ch) {
		return l.readNumber()
	}
	return l.errorToken("Unexpected character.")
}

// pick consumes the current char when it equals next and returns two,
// otherwise it returns one.
func (l *Lexer) pick(next byte, two, one token.Type) token.Type {
	if l.atEnd() || l.ch != next {
		return one
	}
	l.readChar()
	return two
}

func (l *Lexer) markStart() {
	l.start = l.pos
	l.startLine = l.line
	l.startColumn = l.column
}

func (l *Lexer) makeToken(t token.Type) token.Token {
	return token.Token{
		Type:    t,
		Literal: l.input[l.start:l.pos],
		Pos:     l.startPos(),
	}
}

func (l *Lexer) errorToken(msg string) token.Token {
	return token.Token{
		Type:    token.Error,
		Literal: msg,
		Pos:     l.startPos(),
	}
}

func (l *Lexer) startPos() token.Position {
	return token.Position{
		Offset: l.start,
		Line:   l.startLine,
		Column: l.startColumn,
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '/':
			switch l.peekChar() {
			case '/':
				l.skipLineComment()
			case '*':
				l.skipBlockComment()
			default:
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.ch != '\n' {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	l.readChar() // consume '/'
	l.readChar() // consume '*'
	for !l.atEnd() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // '*'
			l.readChar() // '/'
			return
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() token.Token {
	for !l.atEnd() && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	return l.makeToken(token.LookupIdent(l.input[l.start:l.pos]))
}

func (l *Lexer) readNumber() token.Token {
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	if !l.atEnd() && l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for !l.atEnd() && isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.makeToken(token.Number)
}

// readString scans up to the matching quote. The literal keeps both
// delimiters; the compiler strips them.
func (l *Lexer) readString(quote byte) token.Token {
	for !l.atEnd() && l.ch != quote {
		l.readChar()
	}
	if l.atEnd() {
		return l.errorToken("Unterminated string.")
	}
	l.readChar() // closing quote
	return l.makeToken(token.String)
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// readChar advances by one byte. The line counter moves past a newline as
// soon as it is consumed, so the next char reports the following line.
func (l *Lexer) readChar() {
	if l.pos < len(l.input) && l.input[l.pos] == '\n' && l.readPos > l.pos {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		l.ch = 0
		l.column++
		return
	}

	l.ch = l.input[l.readPos]
	l.pos = l.readPos
	l.readPos++
	l.column++
}
