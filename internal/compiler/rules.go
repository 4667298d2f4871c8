package compiler

import "github.com/xirelogy/azura/internal/token"

type precedence uint8

const (
	noPrecedence precedence = iota
	assignPrecedence
	orPrecedence
	andPrecedence
	equalPrecedence
	comparePrecedence
	termPrecedence
	factorPrecedence
	unaryPrecedence
	callPrecedence
	primaryPrecedence
)

// parseFn names a prefix or infix handler. The set is closed; run maps
// each tag to its method.
type parseFn uint8

const (
	fnNone parseFn = iota
	fnGrouping
	fnUnary
	fnBinary
	fnNumber
	fnString
	fnLiteral
	fnVariable
)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// Token types without an entry get the zero rule: no handlers, no
// precedence.
var rules = [token.NumTypes]parseRule{
	token.LParen:       {fnGrouping, fnNone, noPrecedence},
	token.Minus:        {fnUnary, fnBinary, termPrecedence},
	token.Plus:         {fnNone, fnBinary, termPrecedence},
	token.Slash:        {fnNone, fnBinary, factorPrecedence},
	token.Star:         {fnNone, fnBinary, factorPrecedence},
	token.Bang:         {fnUnary, fnNone, noPrecedence},
	token.NotEqual:     {fnNone, fnBinary, equalPrecedence},
	token.Equal:        {fnNone, fnBinary, equalPrecedence},
	token.Greater:      {fnNone, fnBinary, comparePrecedence},
	token.GreaterEqual: {fnNone, fnBinary, comparePrecedence},
	token.Less:         {fnNone, fnBinary, comparePrecedence},
	token.LessEqual:    {fnNone, fnBinary, comparePrecedence},
	token.Ident:        {fnVariable, fnNone, noPrecedence},
	token.String:       {fnString, fnNone, noPrecedence},
	token.Number:       {fnNumber, fnNone, noPrecedence},
	token.False:        {fnLiteral, fnNone, noPrecedence},
	token.Nil:          {fnLiteral, fnNone, noPrecedence},
	token.True:         {fnLiteral, fnNone, noPrecedence},
}

func getRule(t token.Type) parseRule {
	if t >= token.NumTypes {
		return parseRule{}
	}
	return rules[t]
}
