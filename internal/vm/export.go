package vm

import "github.com/xirelogy/azura/internal/value"

// String returns a string value interned in this VM's heap.
func (vm *VM) String(s string) value.Value {
	return value.Object(vm.heap.CopyString(s))
}

// DefineGlobal binds a value into the global environment, replacing any
// existing binding.
func (vm *VM) DefineGlobal(name string, v value.Value) {
	vm.globals.Set(vm.heap.CopyString(name), v)
}

// Global reads a global by name.
func (vm *VM) Global(name string) (value.Value, bool) {
	key := vm.heap.Lookup(name)
	if key == nil {
		return value.Nil(), false
	}
	return vm.globals.Get(key)
}

// EachGlobal calls fn for every global until fn returns false. Iteration
// order is unspecified.
func (vm *VM) EachGlobal(fn func(name string, v value.Value) bool) {
	vm.globals.Each(func(key *value.ObjString, v value.Value) bool {
		return fn(key.Chars(), v)
	})
}

// StackDepth reports the number of values on the stack.
func (vm *VM) StackDepth() int {
	return len(vm.stack)
}
