package vm

import (
	"fmt"
	"io"

	"github.com/xirelogy/azura/internal/bytecode"
	"github.com/xirelogy/azura/internal/compiler"
)

// Disassemble compiles source against this VM's heap and writes the
// resulting chunk as assembly-style text. Nothing is executed.
func (vm *VM) Disassemble(w io.Writer, name, source string) error {
	if vm == nil {
		return fmt.Errorf("nil VM")
	}
	if w == nil {
		return fmt.Errorf("nil writer")
	}
	chunk, err := compiler.Compile(source, vm.heap, compiler.Options{Name: name})
	if err != nil {
		return err
	}
	return bytecode.NewDisassembler(w).DisassembleChunk(chunk, "")
}
