package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/xirelogy/azura/internal/bytecode"
	"github.com/xirelogy/azura/internal/compiler"
	"github.com/xirelogy/azura/internal/object"
	"github.com/xirelogy/azura/internal/table"
	"github.com/xirelogy/azura/internal/value"
)

var log = commonlog.GetLogger("azura.vm")

// InterpretResult classifies the outcome of Interpret.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

func (r InterpretResult) String() string {
	switch r {
	case InterpretOK:
		return "ok"
	case InterpretCompileError:
		return "compile error"
	case InterpretRuntimeError:
		return "runtime error"
	default:
		return "unknown"
	}
}

// DefaultStackMax is the value stack limit of a new VM.
const DefaultStackMax = 256

// VM is a stack-based bytecode interpreter. Globals and interned strings
// persist across runs; the value stack is reset for every run.
type VM struct {
	chunk  *bytecode.Chunk
	ip     int
	lastOp int

	stack    []value.Value
	stackMax int
	globals  table.Table
	heap     *object.Heap

	out       io.Writer
	printCode io.Writer
	traceHook TraceHook
	instLimit int
	instCount int
}

// New constructs an empty VM instance writing program output to stdout.
func New() *VM {
	return &VM{
		stack:    make([]value.Value, 0, DefaultStackMax),
		stackMax: DefaultStackMax,
		heap:     object.NewHeap(),
		out:      os.Stdout,
		lastOp:   -1,
	}
}

// SetOutput redirects the output of info statements.
func (vm *VM) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	vm.out = w
}

// SetPrintCode makes Interpret dump every successfully compiled chunk to w.
// Nil disables the dump.
func (vm *VM) SetPrintCode(w io.Writer) {
	vm.printCode = w
}

// SetStackMax changes the value stack limit (values below 1 restore the default).
func (vm *VM) SetStackMax(n int) {
	if n < 1 {
		n = DefaultStackMax
	}
	vm.stackMax = n
}

// SetTraceHook registers a callback for instruction-level tracing.
func (vm *VM) SetTraceHook(h TraceHook) {
	vm.traceHook = h
}

// SetInstructionLimit caps the number of instructions executed per Run (0 for unlimited).
func (vm *VM) SetInstructionLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	vm.instLimit = limit
}

// Heap exposes the object heap used for interning.
func (vm *VM) Heap() *object.Heap {
	return vm.heap
}

// ResetState clears transient execution state (stack, instruction pointer).
func (vm *VM) ResetState() {
	vm.stack = vm.stack[:0]
	vm.chunk = nil
	vm.ip = 0
	vm.lastOp = -1
	vm.instCount = 0
}

// Free releases globals and every heap object. The VM is empty afterwards.
func (vm *VM) Free() {
	vm.ResetState()
	vm.globals.Free()
	vm.heap.Free()
}

// Compile compiles source against this VM's heap so that its strings are
// interned alongside the globals.
func (vm *VM) Compile(name, source string) (*bytecode.Chunk, error) {
	return compiler.Compile(source, vm.heap, compiler.Options{
		Name:      name,
		PrintCode: vm.printCode,
	})
}

// Interpret compiles and runs source. A chunk that failed to compile is
// never executed.
func (vm *VM) Interpret(source string) (InterpretResult, error) {
	chunk, err := vm.Compile("", source)
	if err != nil {
		return InterpretCompileError, err
	}
	if err := vm.Run(chunk); err != nil {
		return InterpretRuntimeError, err
	}
	return InterpretOK, nil
}

// Run executes chunk on a fresh stack. Any error is a *RuntimeError.
func (vm *VM) Run(chunk *bytecode.Chunk) error {
	if chunk == nil {
		return fmt.Errorf("nil chunk")
	}
	vm.ResetState()
	vm.chunk = chunk
	err := vm.run()
	if err != nil {
		log.Debugf("%s", err)
		vm.ResetState()
	}
	vm.chunk = nil
	return err
}

func (vm *VM) run() error {
	code := vm.chunk.Code
	for {
		if vm.ip >= len(code) {
			return nil
		}
		vm.lastOp = vm.ip
		op := code[vm.ip]
		vm.ip++

		vm.instCount++
		if vm.instLimit > 0 && vm.instCount > vm.instLimit {
			return vm.runtimeError(InstructionLimit, nil, "Instruction limit exceeded.")
		}
		info, ok := bytecode.Lookup(op)
		if !ok {
			return vm.runtimeError(InvalidOpcode, nil, "Unknown opcode 0x%02X.", op)
		}
		if vm.ip+info.Operands > len(code) {
			return vm.runtimeError(InvalidOperand, nil, "Truncated operand for %s.", info.Name)
		}
		if len(vm.stack) < info.Pops {
			return vm.runtimeError(StackUnderflow, nil, "Stack underflow.")
		}
		if len(vm.stack)-info.Pops+info.Pushes > vm.stackMax {
			return vm.runtimeError(StackOverflow, nil, "Stack overflow.")
		}
		vm.trace(op)

		switch op {
		case bytecode.OP_CONSTANT:
			v, err := vm.readConstant()
			if err != nil {
				return err
			}
			vm.push(v)
		case bytecode.OP_NIL:
			vm.push(value.Nil())
		case bytecode.OP_TRUE:
			vm.push(value.Bool(true))
		case bytecode.OP_FALSE:
			vm.push(value.Bool(false))
		case bytecode.OP_POP:
			vm.pop()
		case bytecode.OP_EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.OP_GREATER, bytecode.OP_LESS,
			bytecode.OP_SUBTRACT, bytecode.OP_MULTIPLY, bytecode.OP_DIVIDE:
			if err := vm.binaryOp(op); err != nil {
				return err
			}
		case bytecode.OP_ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case bytecode.OP_NOT:
			vm.push(value.Bool(value.Falsey(vm.pop())))
		case bytecode.OP_NEGATE:
			n, ok := vm.peek(0).AsNumber()
			if !ok {
				return vm.runtimeError(TypeMismatch, ErrOperandNumber, "Operand must be a number.")
			}
			vm.pop()
			vm.push(value.Number(-n))
		case bytecode.OP_INFO:
			if _, err := fmt.Fprintln(vm.out, vm.pop().String()); err != nil {
				return vm.runtimeError(OutputFailure, err, "Cannot write output: %v", err)
			}
		case bytecode.OP_GET_LOCAL:
			slot := int(vm.readByte())
			if slot >= len(vm.stack) {
				return vm.runtimeError(InvalidOperand, nil, "Local slot %d out of range.", slot)
			}
			vm.push(vm.stack[slot])
		case bytecode.OP_SET_LOCAL:
			slot := int(vm.readByte())
			if slot >= len(vm.stack) {
				return vm.runtimeError(InvalidOperand, nil, "Local slot %d out of range.", slot)
			}
			vm.stack[slot] = vm.peek(0)
		case bytecode.OP_GET_GLOBAL:
			name, err := vm.readString()
			if err != nil {
				return err
			}
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.undefinedVariable(name)
			}
			vm.push(v)
		case bytecode.OP_SET_GLOBAL:
			name, err := vm.readString()
			if err != nil {
				return err
			}
			if !vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.undefinedVariable(name)
			}
		case bytecode.OP_DEFINE_GLOBAL:
			name, err := vm.readString()
			if err != nil {
				return err
			}
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case bytecode.OP_RETURN:
			return nil
		}
	}
}

func (vm *VM) binaryOp(op byte) error {
	b, okB := vm.peek(0).AsNumber()
	a, okA := vm.peek(1).AsNumber()
	if !okA || !okB {
		return vm.runtimeError(TypeMismatch, ErrOperandsNumbers, "Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case bytecode.OP_GREATER:
		vm.push(value.Bool(a > b))
	case bytecode.OP_LESS:
		vm.push(value.Bool(a < b))
	case bytecode.OP_SUBTRACT:
		vm.push(value.Number(a - b))
	case bytecode.OP_MULTIPLY:
		vm.push(value.Number(a * b))
	case bytecode.OP_DIVIDE:
		vm.push(value.Number(a / b))
	}
	return nil
}

// add handles numeric addition and string concatenation.
func (vm *VM) add() error {
	if vm.peek(0).IsString() && vm.peek(1).IsString() {
		sb, _ := vm.pop().AsString()
		sa, _ := vm.pop().AsString()
		vm.push(value.Object(vm.heap.Concat(sa, sb)))
		return nil
	}
	b, okB := vm.peek(0).AsNumber()
	a, okA := vm.peek(1).AsNumber()
	if !okA || !okB {
		return vm.runtimeError(TypeMismatch, ErrOperandsAdd, "Operands must be two numbers or two strings.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(a + b))
	return nil
}

func (vm *VM) undefinedVariable(name *value.ObjString) error {
	return vm.runtimeError(UndefinedVariable, ErrUndefinedVariable, "Undefined variable '%s'.", name.Chars())
}

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() value.Value {
	if len(vm.stack) == 0 {
		return value.Nil()
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	i := len(vm.stack) - 1 - distance
	if i < 0 {
		return value.Nil()
	}
	return vm.stack[i]
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readConstant() (value.Value, error) {
	idx := int(vm.readByte())
	v, ok := vm.chunk.Constant(idx)
	if !ok {
		return value.Nil(), vm.runtimeError(InvalidOperand, nil, "Constant %d out of range.", idx)
	}
	return v, nil
}

func (vm *VM) readString() (*value.ObjString, error) {
	v, err := vm.readConstant()
	if err != nil {
		return nil, err
	}
	s, ok := v.AsString()
	if !ok {
		return nil, vm.runtimeError(InvalidOperand, nil, "Global name constant is not a string.")
	}
	return s, nil
}
