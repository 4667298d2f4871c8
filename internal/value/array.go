package value

import "github.com/xirelogy/azura/internal/memory"

// Array is the growable value sequence backing a chunk's constant pool.
type Array struct {
	values []Value
}

// Write appends v and returns its index.
func (a *Array) Write(v Value) int {
	a.values = memory.Grow(a.values)
	a.values = append(a.values, v)
	return len(a.values) - 1
}

func (a *Array) Len() int { return len(a.values) }

// At returns the value at index i and whether i was in range.
func (a *Array) At(i int) (Value, bool) {
	if i < 0 || i >= len(a.values) {
		return Nil(), false
	}
	return a.values[i], true
}

// Values exposes the backing slice; callers must not append to it.
func (a *Array) Values() []Value { return a.values }

// Free releases the backing array.
func (a *Array) Free() { a.values = nil }
