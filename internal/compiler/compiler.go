// Package compiler turns source text into a bytecode chunk in a single
// pass. Expressions are parsed with a Pratt parser that emits code as it
// goes; no syntax tree is built.
package compiler

import (
	"errors"
	"io"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/xirelogy/azura/internal/bytecode"
	"github.com/xirelogy/azura/internal/lexer"
	"github.com/xirelogy/azura/internal/object"
	"github.com/xirelogy/azura/internal/token"
	"github.com/xirelogy/azura/internal/value"
)

var log = commonlog.GetLogger("azura.compiler")

// Options configures a Compile call.
type Options struct {
	// Name labels the chunk in disassembly and runtime errors.
	Name string
	// PrintCode receives a disassembly of the chunk after a successful
	// compile. Nil disables the dump.
	PrintCode io.Writer
}

// Compile compiles source into a chunk. String literals and identifier
// names are interned through strs; a nil strs gets a private heap.
//
// On failure the partially written chunk is returned together with an
// *Error listing every diagnostic. That chunk must not be executed.
func Compile(source string, strs Interner, opts Options) (*Chunk, error) {
	if strs == nil {
		strs = object.NewHeap()
	}
	name := opts.Name
	if name == "" {
		name = "<script>"
	}
	c := &compiler{
		lexer:       lexer.New(source),
		chunk:       bytecode.New(name),
		strings:     strs,
		identifiers: make(map[*value.ObjString]byte),
	}

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.emitByte(OP_RETURN)

	if c.parser.hadError {
		log.Debugf("%s: %d compile errors", name, len(c.diags))
		return c.chunk, &Error{Source: name, Diagnostics: c.diags}
	}
	log.Debugf("%s: compiled %d bytes, %d constants", name, c.chunk.Len(), c.chunk.Constants.Len())
	if opts.PrintCode != nil {
		if err := bytecode.NewDisassembler(opts.PrintCode).DisassembleChunk(c.chunk, ""); err != nil {
			return c.chunk, err
		}
	}
	return c.chunk, nil
}

type parser struct {
	previous  token.Token
	current   token.Token
	hadError  bool
	panicMode bool
}

type compiler struct {
	lexer   *lexer.Lexer
	parser  parser
	chunk   *Chunk
	strings Interner
	diags   []Diagnostic

	// identifiers maps interned names to their constant slot so each
	// name occupies one slot per chunk.
	identifiers map[*value.ObjString]byte
}

// --- token stream ---

func (c *compiler) advance() {
	c.parser.previous = c.parser.current
	for {
		c.parser.current = c.lexer.NextToken()
		if c.parser.current.Type != token.Error {
			return
		}
		c.errorAtCurrent(c.parser.current.Literal)
	}
}

func (c *compiler) consume(t token.Type, msg string) {
	if c.parser.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *compiler) check(t token.Type) bool {
	return c.parser.current.Type == t
}

func (c *compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

// --- declarations and statements ---

func (c *compiler) declaration() {
	if c.match(token.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.parser.panicMode {
		c.synchronize()
	}
}

func (c *compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.Define) {
		c.expression()
	} else {
		c.emitByte(OP_NIL)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.emitBytes(OP_DEFINE_GLOBAL, global)
}

func (c *compiler) parseVariable(msg string) byte {
	c.consume(token.Ident, msg)
	return c.identifierConstant(c.parser.previous)
}

func (c *compiler) statement() {
	if c.match(token.Info) {
		c.infoStatement()
		return
	}
	c.expressionStatement()
}

func (c *compiler) infoStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitByte(OP_INFO)
}

func (c *compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitByte(OP_POP)
}

// synchronize skips tokens until a likely statement boundary.
func (c *compiler) synchronize() {
	c.parser.panicMode = false
	for c.parser.current.Type != token.EOF {
		if c.parser.previous.Type == token.Semicolon {
			return
		}
		switch c.parser.current.Type {
		case token.Class, token.Func, token.Var, token.For, token.If,
			token.While, token.Info, token.Return:
			return
		}
		c.advance()
	}
}

// --- expressions ---

func (c *compiler) expression() {
	c.parsePrecedence(assignPrecedence)
}

func (c *compiler) parsePrecedence(p precedence) {
	c.advance()
	prefix := getRule(c.parser.previous.Type).prefix
	if prefix == fnNone {
		c.error("Expect expression.")
		return
	}

	canAssign := p <= assignPrecedence
	c.run(prefix, canAssign)

	for p <= getRule(c.parser.current.Type).precedence {
		c.advance()
		c.run(getRule(c.parser.previous.Type).infix, canAssign)
	}

	if canAssign && c.match(token.Assign) {
		c.error("Invalid assignment target.")
	}
}

func (c *compiler) run(fn parseFn, canAssign bool) {
	switch fn {
	case fnGrouping:
		c.grouping()
	case fnUnary:
		c.unary()
	case fnBinary:
		c.binary()
	case fnNumber:
		c.number()
	case fnString:
		c.string()
	case fnLiteral:
		c.literal()
	case fnVariable:
		c.variable(canAssign)
	}
}

func (c *compiler) grouping() {
	c.expression()
	c.consume(token.RParen, "Expect ')' after expression.")
}

func (c *compiler) unary() {
	op := c.parser.previous.Type
	c.parsePrecedence(unaryPrecedence)
	switch op {
	case token.Bang:
		c.emitByte(OP_NOT)
	case token.Minus:
		c.emitByte(OP_NEGATE)
	}
}

// binary compiles the right operand one level tighter than the operator,
// which makes every binary operator left-associative. The inclusive
// comparisons are emitted as negated strict ones.
func (c *compiler) binary() {
	op := c.parser.previous.Type
	c.parsePrecedence(getRule(op).precedence + 1)

	switch op {
	case token.Plus:
		c.emitByte(OP_ADD)
	case token.Minus:
		c.emitByte(OP_SUBTRACT)
	case token.Star:
		c.emitByte(OP_MULTIPLY)
	case token.Slash:
		c.emitByte(OP_DIVIDE)
	case token.Equal:
		c.emitByte(OP_EQUAL)
	case token.NotEqual:
		c.emitBytes(OP_EQUAL, OP_NOT)
	case token.Greater:
		c.emitByte(OP_GREATER)
	case token.GreaterEqual:
		c.emitBytes(OP_LESS, OP_NOT)
	case token.Less:
		c.emitByte(OP_LESS)
	case token.LessEqual:
		c.emitBytes(OP_GREATER, OP_NOT)
	}
}

func (c *compiler) number() {
	// Out-of-range literals saturate to ±Inf or 0.
	n, err := strconv.ParseFloat(c.parser.previous.Literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *compiler) string() {
	lit := c.parser.previous.Literal
	chars := lit[1 : len(lit)-1]
	c.emitConstant(value.Object(c.strings.CopyString(chars)))
}

func (c *compiler) literal() {
	switch c.parser.previous.Type {
	case token.False:
		c.emitByte(OP_FALSE)
	case token.Nil:
		c.emitByte(OP_NIL)
	case token.True:
		c.emitByte(OP_TRUE)
	}
}

func (c *compiler) variable(canAssign bool) {
	arg := c.identifierConstant(c.parser.previous)
	if canAssign && c.match(token.Assign) {
		c.expression()
		c.emitBytes(OP_SET_GLOBAL, arg)
		return
	}
	c.emitBytes(OP_GET_GLOBAL, arg)
}

// --- emission ---

func (c *compiler) emitByte(b byte) {
	c.chunk.Write(b, c.parser.previous.Pos.Line)
}

func (c *compiler) emitBytes(b1, b2 byte) {
	c.emitByte(b1)
	c.emitByte(b2)
}

func (c *compiler) emitConstant(v value.Value) {
	c.emitBytes(OP_CONSTANT, c.makeConstant(v))
}

func (c *compiler) makeConstant(v value.Value) byte {
	idx, _ := c.addConstant(v)
	return idx
}

func (c *compiler) addConstant(v value.Value) (byte, bool) {
	idx := c.chunk.AddConstant(v)
	if idx >= bytecode.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0, false
	}
	return byte(idx), true
}

func (c *compiler) identifierConstant(name token.Token) byte {
	s := c.strings.CopyString(name.Literal)
	if idx, ok := c.identifiers[s]; ok {
		return idx
	}
	idx, ok := c.addConstant(value.Object(s))
	if ok {
		c.identifiers[s] = idx
	}
	return idx
}

// --- diagnostics ---

func (c *compiler) error(msg string) {
	c.errorAt(c.parser.previous, msg)
}

func (c *compiler) errorAtCurrent(msg string) {
	c.errorAt(c.parser.current, msg)
}

// errorAt records a diagnostic and enters panic mode. Further errors are
// dropped until the parser resynchronizes.
func (c *compiler) errorAt(tok token.Token, msg string) {
	if c.parser.panicMode {
		return
	}
	c.parser.panicMode = true
	c.parser.hadError = true

	d := Diagnostic{
		Line:    tok.Pos.Line,
		Column:  tok.Pos.Column,
		Message: msg,
	}
	switch tok.Type {
	case token.EOF:
		d.AtEnd = true
	case token.Error:
	default:
		d.Lexeme = tok.Literal
	}
	c.diags = append(c.diags, d)
}
