// Package object owns every heap object created while compiling and running
// a program, and interns strings so equal contents share one pointer.
package object

import (
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/xirelogy/azura/internal/table"
	"github.com/xirelogy/azura/internal/value"
)

// HashString returns the hash stored in every ObjString.
func HashString(chars string) uint64 {
	return xxh3.HashString(chars)
}

// Heap tracks allocated objects and the string intern set. The zero value
// is ready to use.
type Heap struct {
	strings table.Table
	objects []value.Obj
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// CopyString returns the interned string for chars, copying the bytes when
// a new object has to be allocated.
func (h *Heap) CopyString(chars string) *value.ObjString {
	hash := HashString(chars)
	if interned := h.strings.FindString(chars, hash); interned != nil {
		return interned
	}
	return h.allocateString(strings.Clone(chars), hash)
}

// TakeString interns chars without copying. The caller hands over the
// string and must not assume it is retained when an equal one already exists.
func (h *Heap) TakeString(chars string) *value.ObjString {
	hash := HashString(chars)
	if interned := h.strings.FindString(chars, hash); interned != nil {
		return interned
	}
	return h.allocateString(chars, hash)
}

// Lookup returns the interned string equal to chars, or nil when no such
// string has been allocated.
func (h *Heap) Lookup(chars string) *value.ObjString {
	return h.strings.FindString(chars, HashString(chars))
}

// Concat interns the concatenation of a and b.
func (h *Heap) Concat(a, b *value.ObjString) *value.ObjString {
	var sb strings.Builder
	sb.Grow(a.Len() + b.Len())
	sb.WriteString(a.Chars())
	sb.WriteString(b.Chars())
	return h.TakeString(sb.String())
}

// Strings returns the number of interned strings.
func (h *Heap) Strings() int { return h.strings.Count() }

// Objects returns the objects allocated so far, oldest first.
func (h *Heap) Objects() []value.Obj { return h.objects }

// Free drops every object and the intern set.
func (h *Heap) Free() {
	h.strings.Free()
	h.objects = nil
}

func (h *Heap) allocateString(chars string, hash uint64) *value.ObjString {
	s := value.NewObjString(chars, hash)
	h.objects = append(h.objects, s)
	h.strings.Set(s, value.Nil())
	return s
}
