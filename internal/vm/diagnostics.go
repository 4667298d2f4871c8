package vm

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xirelogy/azura/internal/bytecode"
	"github.com/xirelogy/azura/internal/value"
)

// ErrorKind classifies runtime failures.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota + 1
	UndefinedVariable
	StackOverflow
	StackUnderflow
	InvalidOpcode
	InvalidOperand
	InstructionLimit
	OutputFailure
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case UndefinedVariable:
		return "undefined variable"
	case StackOverflow:
		return "stack overflow"
	case StackUnderflow:
		return "stack underflow"
	case InvalidOpcode:
		return "invalid opcode"
	case InvalidOperand:
		return "invalid operand"
	case InstructionLimit:
		return "instruction limit"
	case OutputFailure:
		return "output failure"
	default:
		return "runtime error"
	}
}

// Causes attached to type and lookup failures, for errors.Is.
var (
	ErrOperandsNumbers   = errors.New("operands must be numbers")
	ErrOperandNumber     = errors.New("operand must be a number")
	ErrOperandsAdd       = errors.New("operands must be two numbers or two strings")
	ErrUndefinedVariable = errors.New("undefined variable")
)

// TraceInfo describes a single instruction dispatch for debugging/tracing.
type TraceInfo struct {
	Op     byte
	Source string
	Line   int
	IP     int
	Stack  []value.Value
	Chunk  *bytecode.Chunk
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// FrameInfo captures where execution was at the time of an error.
type FrameInfo struct {
	Source string
	Line   int
	IP     int
}

// RuntimeError carries source information for VM failures.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Frame   FrameInfo
	Cause   error
}

func (e *RuntimeError) Error() string {
	loc := ""
	switch {
	case e.Frame.Source != "" && e.Frame.Line > 0:
		loc = fmt.Sprintf("%s:%d", e.Frame.Source, e.Frame.Line)
	case e.Frame.Source != "":
		loc = e.Frame.Source
	case e.Frame.Line > 0:
		loc = fmt.Sprintf("line %d", e.Frame.Line)
	}
	if loc != "" {
		return fmt.Sprintf("%s: %s", loc, e.Message)
	}
	return e.Message
}

// Report renders the error the way the command line prints it: the
// message followed by the line it happened on.
func (e *RuntimeError) Report() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "[line %d] in script", e.Frame.Line)
	return sb.String()
}

// Unwrap exposes the original error, if any.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func (vm *VM) runtimeError(kind ErrorKind, cause error, format string, args ...any) error {
	return &RuntimeError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Frame:   vm.frameInfo(),
		Cause:   cause,
	}
}

func (vm *VM) frameInfo() FrameInfo {
	if vm.chunk == nil {
		return FrameInfo{IP: vm.lastOp}
	}
	return FrameInfo{
		Source: vm.chunk.Name,
		Line:   vm.chunk.LineAt(vm.lastOp),
		IP:     vm.lastOp,
	}
}

func (vm *VM) trace(op byte) {
	if vm.traceHook == nil {
		return
	}
	info := vm.frameInfo()
	stack := make([]value.Value, len(vm.stack))
	copy(stack, vm.stack)
	vm.traceHook(TraceInfo{
		Op:     op,
		Source: info.Source,
		Line:   info.Line,
		IP:     info.IP,
		Stack:  stack,
		Chunk:  vm.chunk,
	})
}

// NewTraceWriter returns a hook that prints the stack contents followed by
// the disassembled instruction for every dispatch.
func NewTraceWriter(w io.Writer) TraceHook {
	dis := bytecode.NewDisassembler(w)
	return func(info TraceInfo) {
		fmt.Fprint(w, "          ")
		for _, v := range info.Stack {
			fmt.Fprintf(w, "[ %s ]", v)
		}
		fmt.Fprintln(w)
		if info.Chunk != nil {
			dis.DisassembleInstruction(info.Chunk, info.IP)
		}
	}
}
