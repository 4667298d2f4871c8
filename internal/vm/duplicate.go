package vm

import (
	"github.com/xirelogy/azura/internal/object"
	"github.com/xirelogy/azura/internal/value"
)

// Duplicate returns a new VM with copied globals and configuration. The
// duplicate owns a separate heap, so every string reachable from the
// globals is re-interned there. Execution state is not copied.
func (vm *VM) Duplicate() *VM {
	if vm == nil {
		return nil
	}
	dup := New()
	dup.stackMax = vm.stackMax
	dup.out = vm.out
	dup.printCode = vm.printCode
	dup.traceHook = vm.traceHook
	dup.instLimit = vm.instLimit

	vm.globals.Each(func(key *value.ObjString, v value.Value) bool {
		dup.globals.Set(dup.heap.CopyString(key.Chars()), cloneValue(dup.heap, v))
		return true
	})
	return dup
}

func cloneValue(heap *object.Heap, v value.Value) value.Value {
	if s, ok := v.AsString(); ok {
		return value.Object(heap.CopyString(s.Chars()))
	}
	return v
}
