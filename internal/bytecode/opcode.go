package bytecode

// Opcodes. Every instruction is one byte, optionally followed by a one-byte
// operand (see OpInfo.Operands). Values are part of the .azc format.
const (
	OP_CONSTANT byte = iota
	OP_NIL
	OP_FALSE
	OP_TRUE
	OP_POP
	OP_EQUAL
	OP_GREATER
	OP_LESS
	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_NOT
	OP_NEGATE
	OP_INFO
	OP_GET_LOCAL
	OP_SET_LOCAL
	OP_GET_GLOBAL
	OP_SET_GLOBAL
	OP_DEFINE_GLOBAL
	OP_RETURN

	numOpcodes
)

// OpInfo describes the static shape of an opcode.
type OpInfo struct {
	Name     string
	Operands int // operand bytes following the opcode
	Pops     int // values the instruction needs on the stack
	Pushes   int // values left on the stack after Pops are removed
}

var opInfos = [numOpcodes]OpInfo{
	OP_CONSTANT:      {Name: "OP_CONSTANT", Operands: 1, Pushes: 1},
	OP_NIL:           {Name: "OP_NIL", Pushes: 1},
	OP_FALSE:         {Name: "OP_FALSE", Pushes: 1},
	OP_TRUE:          {Name: "OP_TRUE", Pushes: 1},
	OP_POP:           {Name: "OP_POP", Pops: 1},
	OP_EQUAL:         {Name: "OP_EQUAL", Pops: 2, Pushes: 1},
	OP_GREATER:       {Name: "OP_GREATER", Pops: 2, Pushes: 1},
	OP_LESS:          {Name: "OP_LESS", Pops: 2, Pushes: 1},
	OP_ADD:           {Name: "OP_ADD", Pops: 2, Pushes: 1},
	OP_SUBTRACT:      {Name: "OP_SUBTRACT", Pops: 2, Pushes: 1},
	OP_MULTIPLY:      {Name: "OP_MULTIPLY", Pops: 2, Pushes: 1},
	OP_DIVIDE:        {Name: "OP_DIVIDE", Pops: 2, Pushes: 1},
	OP_NOT:           {Name: "OP_NOT", Pops: 1, Pushes: 1},
	OP_NEGATE:        {Name: "OP_NEGATE", Pops: 1, Pushes: 1},
	OP_INFO:          {Name: "OP_INFO", Pops: 1},
	OP_GET_LOCAL:     {Name: "OP_GET_LOCAL", Operands: 1, Pushes: 1},
	OP_SET_LOCAL:     {Name: "OP_SET_LOCAL", Operands: 1, Pops: 1, Pushes: 1},
	OP_GET_GLOBAL:    {Name: "OP_GET_GLOBAL", Operands: 1, Pushes: 1},
	OP_SET_GLOBAL:    {Name: "OP_SET_GLOBAL", Operands: 1, Pops: 1, Pushes: 1},
	OP_DEFINE_GLOBAL: {Name: "OP_DEFINE_GLOBAL", Operands: 1, Pops: 1},
	OP_RETURN:        {Name: "OP_RETURN"},
}

// Lookup returns the static description of op.
func Lookup(op byte) (OpInfo, bool) {
	if op >= numOpcodes {
		return OpInfo{}, false
	}
	return opInfos[op], true
}

// OpName returns the mnemonic for op, or OP_0xNN for unknown bytes.
func OpName(op byte) string {
	if info, ok := Lookup(op); ok {
		return info.Name
	}
	return unknownName(op)
}

// UsesConstant reports whether op's operand indexes the constant pool.
func UsesConstant(op byte) bool {
	switch op {
	case OP_CONSTANT, OP_GET_GLOBAL, OP_SET_GLOBAL, OP_DEFINE_GLOBAL:
		return true
	default:
		return false
	}
}
