package bytecode

import (
	"github.com/xirelogy/azura/internal/memory"
	"github.com/xirelogy/azura/internal/value"
)

// MaxConstants is the constant pool limit imposed by one-byte operands.
const MaxConstants = 256

// Chunk is a compiled bytecode sequence with its constant pool. Lines
// holds the source line of every byte in Code.
type Chunk struct {
	Name      string
	Code      []byte
	Lines     []int
	Constants value.Array
}

// New returns an empty chunk labelled with the source name.
func New(name string) *Chunk {
	return &Chunk{Name: name}
}

// Write appends one byte of code along with its source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = memory.Grow(c.Code)
	c.Lines = memory.Grow(c.Lines)
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends v to the pool and returns its index. Range checks
// against MaxConstants belong to the caller.
func (c *Chunk) AddConstant(v value.Value) int {
	return c.Constants.Write(v)
}

// Constant returns the pool entry at idx.
func (c *Chunk) Constant(idx int) (value.Value, bool) {
	return c.Constants.At(idx)
}

// LineAt returns the source line of the byte at offset, or 0 when the
// offset is out of range.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

func (c *Chunk) Len() int { return len(c.Code) }

// Free releases the code, line and constant buffers.
func (c *Chunk) Free() {
	c.Code = nil
	c.Lines = nil
	c.Constants.Free()
}
