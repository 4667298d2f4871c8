package bytecode

import (
	"fmt"
	"io"
)

// Disassembler formats bytecode as a readable assembly-style dump.
type Disassembler struct {
	w       io.Writer
	printed bool
}

// NewDisassembler constructs a disassembler that writes to w.
func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{w: w}
}

// DisassembleChunk emits a header followed by every instruction of chunk.
func (d *Disassembler) DisassembleChunk(chunk *Chunk, name string) error {
	if chunk == nil {
		return fmt.Errorf("nil chunk")
	}
	if name == "" {
		name = chunk.Name
	}
	if name == "" {
		name = "<script>"
	}
	d.startSection()
	fmt.Fprintf(d.w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		next, err := d.DisassembleInstruction(chunk, offset)
		if err != nil {
			return err
		}
		offset = next
	}
	return nil
}

// DisassembleInstruction prints the instruction at offset and returns the
// offset of the following one.
func (d *Disassembler) DisassembleInstruction(chunk *Chunk, offset int) (int, error) {
	if offset < 0 || offset >= len(chunk.Code) {
		return offset, fmt.Errorf("offset %d out of range", offset)
	}
	fmt.Fprintf(d.w, "%04d ", offset)
	line := chunk.LineAt(offset)
	if offset > 0 && line == chunk.LineAt(offset-1) {
		fmt.Fprint(d.w, "   | ")
	} else {
		fmt.Fprintf(d.w, "%4d ", line)
	}

	op := chunk.Code[offset]
	info, ok := Lookup(op)
	if !ok {
		fmt.Fprintf(d.w, "%s\n", unknownName(op))
		return offset + 1, nil
	}
	ip := offset + 1
	if info.Operands == 0 {
		fmt.Fprintf(d.w, "%s\n", info.Name)
		return ip, nil
	}

	operand, err := readU8(chunk.Code, &ip)
	if err != nil {
		fmt.Fprintf(d.w, "%s\n", info.Name)
		return ip, err
	}
	if UsesConstant(op) {
		fmt.Fprintf(d.w, "%-16s %4d '%s'\n", info.Name, operand, formatConstRef(chunk, int(operand)))
	} else {
		fmt.Fprintf(d.w, "%-16s %4d\n", info.Name, operand)
	}
	return ip, nil
}

func (d *Disassembler) startSection() {
	if d.printed {
		fmt.Fprintln(d.w)
	}
	d.printed = true
}

func unknownName(op byte) string {
	return fmt.Sprintf("OP_0x%02X", op)
}

func readU8(code []byte, ip *int) (byte, error) {
	if *ip >= len(code) {
		return 0, fmt.Errorf("unexpected end of bytecode")
	}
	val := code[*ip]
	*ip = *ip + 1
	return val, nil
}

func formatConstRef(chunk *Chunk, idx int) string {
	v, ok := chunk.Constant(idx)
	if !ok {
		return "<invalid>"
	}
	return v.String()
}
