package compiler

import (
	"fmt"
	"strings"
)

// Diagnostic is one compile error. Lexeme is empty for errors reported on
// scanner error tokens, and AtEnd marks errors reported at end of input.
type Diagnostic struct {
	Line    int
	Column  int
	Lexeme  string
	AtEnd   bool
	Message string
}

func (d Diagnostic) String() string {
	switch {
	case d.AtEnd:
		return fmt.Sprintf("[line %d] Error at end: %s", d.Line, d.Message)
	case d.Lexeme != "":
		return fmt.Sprintf("[line %d] Error at '%s': %s", d.Line, d.Lexeme, d.Message)
	default:
		return fmt.Sprintf("[line %d] Error: %s", d.Line, d.Message)
	}
}

// Error is returned by Compile when at least one diagnostic was reported.
type Error struct {
	Source      string
	Diagnostics []Diagnostic
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
