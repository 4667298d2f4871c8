// Package azura embeds the Azura scripting language: a single-pass
// compiler producing bytecode and a stack VM that executes it.
package azura

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/xirelogy/azura/internal/bytecode"
	"github.com/xirelogy/azura/internal/compiler"
	"github.com/xirelogy/azura/internal/value"
	"github.com/xirelogy/azura/internal/vm"
)

// ErrBusy is returned when a VM is asked to do work while a run is in flight.
var ErrBusy = errors.New("VM is busy; concurrent runs not allowed")

// Diagnostic is one compile error. Line and Column are 1-based.
type Diagnostic struct {
	Line    int
	Column  int
	Lexeme  string
	AtEnd   bool
	Message string
}

func (d Diagnostic) String() string {
	return compiler.Diagnostic(d).String()
}

// CompileError lists every diagnostic reported while compiling a script.
type CompileError struct {
	Source      string
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	return (&compiler.Error{Source: e.Source, Diagnostics: e.internal()}).Error()
}

func (e *CompileError) internal() []compiler.Diagnostic {
	out := make([]compiler.Diagnostic, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		out[i] = compiler.Diagnostic(d)
	}
	return out
}

// FrameTrace describes where execution was when an error occurred.
type FrameTrace struct {
	Source string
	Line   int
	IP     int
}

// RuntimeError is a source-aware execution error surfaced from the VM.
type RuntimeError struct {
	Kind    string
	Message string
	Frame   FrameTrace
	Cause   error
}

func (e *RuntimeError) Error() string {
	switch {
	case e.Frame.Source != "" && e.Frame.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Frame.Source, e.Frame.Line, e.Message)
	case e.Frame.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Frame.Line, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying cause (if any) for errors.Is/As.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// TraceInfo captures execution steps for debug hooks.
type TraceInfo struct {
	Op     string
	Source string
	Line   int
	IP     int
	Depth  int
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

func convertCompileError(err error) error {
	var cerr *compiler.Error
	if !errors.As(err, &cerr) {
		return err
	}
	out := &CompileError{Source: cerr.Source, Diagnostics: make([]Diagnostic, len(cerr.Diagnostics))}
	for i, d := range cerr.Diagnostics {
		out.Diagnostics[i] = Diagnostic(d)
	}
	return out
}

func convertRuntimeError(err error) error {
	if err == nil {
		return nil
	}
	if rte, ok := err.(*vm.RuntimeError); ok {
		return &RuntimeError{
			Kind:    rte.Kind.String(),
			Message: rte.Message,
			Frame: FrameTrace{
				Source: rte.Frame.Source,
				Line:   rte.Frame.Line,
				IP:     rte.Frame.IP,
			},
			Cause: rte.Cause,
		}
	}
	return err
}

// Script is a compiled chunk bound to the VM whose heap owns its strings.
type Script struct {
	chunk *bytecode.Chunk
	owner *vm.VM
}

// Name returns the name the script was compiled under.
func (s *Script) Name() string {
	return s.chunk.Name
}

// MarshalBinary encodes the script as a portable CBOR chunk.
func (s *Script) MarshalBinary() ([]byte, error) {
	return bytecode.Marshal(s.chunk)
}

// VM is the configurator/executor for Azura scripts. Globals persist
// across runs.
type VM struct {
	core *vm.VM
	mu   sync.Mutex
	busy bool
}

// NewVM constructs a new VM instance writing info output to stdout.
func NewVM() *VM {
	return &VM{
		core: vm.New(),
	}
}

func (vmc *VM) acquire() error {
	if vmc == nil || vmc.core == nil {
		return errors.New("nil VM")
	}
	vmc.mu.Lock()
	defer vmc.mu.Unlock()
	if vmc.busy {
		return ErrBusy
	}
	vmc.busy = true
	return nil
}

func (vmc *VM) release() {
	vmc.mu.Lock()
	vmc.busy = false
	vmc.mu.Unlock()
}

// Duplicate clones the VM configuration and global state into a new instance.
// The duplicate has independent memory and no in-flight execution state.
func (vmc *VM) Duplicate() (*VM, error) {
	if err := vmc.acquire(); err != nil {
		return nil, err
	}
	defer vmc.release()

	core := vmc.core.Duplicate()
	if core == nil {
		return nil, errors.New("VM duplicate failed")
	}
	return &VM{core: core}, nil
}

// SetOutput redirects the output of info statements. Nil discards it.
func (vmc *VM) SetOutput(w io.Writer) {
	if vmc == nil || vmc.core == nil {
		return
	}
	vmc.core.SetOutput(w)
}

// SetStackMax changes the value stack limit.
func (vmc *VM) SetStackMax(n int) {
	if vmc == nil || vmc.core == nil {
		return
	}
	vmc.core.SetStackMax(n)
}

// SetInstructionLimit caps the number of instructions a single run may execute (0 for unlimited).
func (vmc *VM) SetInstructionLimit(limit int) {
	if vmc == nil || vmc.core == nil {
		return
	}
	vmc.core.SetInstructionLimit(limit)
}

// SetTraceHook attaches a debug hook that observes instruction dispatch.
func (vmc *VM) SetTraceHook(h TraceHook) {
	if vmc == nil || vmc.core == nil {
		return
	}
	if h == nil {
		vmc.core.SetTraceHook(nil)
		return
	}
	vmc.core.SetTraceHook(func(info vm.TraceInfo) {
		h(TraceInfo{
			Op:     bytecode.OpName(info.Op),
			Source: info.Source,
			Line:   info.Line,
			IP:     info.IP,
			Depth:  len(info.Stack),
		})
	})
}

// Compile compiles src without running it. Compile errors are *CompileError.
func (vmc *VM) Compile(name, src string) (*Script, error) {
	if err := vmc.acquire(); err != nil {
		return nil, err
	}
	defer vmc.release()

	chunk, err := vmc.core.Compile(name, src)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &Script{chunk: chunk, owner: vmc.core}, nil
}

// LoadScript decodes a chunk produced by Script.MarshalBinary, interning
// its strings into this VM.
func (vmc *VM) LoadScript(data []byte) (*Script, error) {
	if err := vmc.acquire(); err != nil {
		return nil, err
	}
	defer vmc.release()

	chunk, err := bytecode.Unmarshal(data, vmc.core.Heap())
	if err != nil {
		return nil, err
	}
	return &Script{chunk: chunk, owner: vmc.core}, nil
}

// LoadFile compiles and runs a script from a filesystem path.
func (vmc *VM) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return vmc.RunSource(path, string(data))
}

// RunSource compiles and runs src to completion.
func (vmc *VM) RunSource(name, src string) error {
	script, err := vmc.Compile(name, src)
	if err != nil {
		return err
	}
	return vmc.RunAsync(context.Background(), script).Await(context.Background())
}

// RunFuture represents an in-flight run.
type RunFuture struct {
	ch <-chan error
}

// Await waits for completion or context cancellation.
func (f RunFuture) Await(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-f.ch:
		return err
	}
}

// RunAsync executes script on the VM asynchronously. Only one run may be
// in flight per VM.
func (vmc *VM) RunAsync(ctx context.Context, script *Script) RunFuture {
	ch := make(chan error, 1)
	if script == nil || script.owner != vmc.core {
		ch <- errors.New("script was not compiled by this VM")
		close(ch)
		return RunFuture{ch: ch}
	}
	if err := vmc.acquire(); err != nil {
		ch <- err
		close(ch)
		return RunFuture{ch: ch}
	}

	go func() {
		defer close(ch)
		defer vmc.release()
		select {
		case <-ctx.Done():
			ch <- ctx.Err()
			return
		default:
		}
		ch <- convertRuntimeError(vmc.core.Run(script.chunk))
	}()
	return RunFuture{ch: ch}
}

// Disassemble compiles src and writes its bytecode listing to w.
func (vmc *VM) Disassemble(w io.Writer, name, src string) error {
	if err := vmc.acquire(); err != nil {
		return err
	}
	defer vmc.release()
	return convertCompileError(vmc.core.Disassemble(w, name, src))
}

// Global returns a global as a Go value: nil, bool, float64 or string.
func (vmc *VM) Global(name string) (any, bool) {
	if err := vmc.acquire(); err != nil {
		return nil, false
	}
	defer vmc.release()

	v, ok := vmc.core.Global(name)
	if !ok {
		return nil, false
	}
	return unmarshalToGo(v), true
}

// Globals returns every global as a Go value.
func (vmc *VM) Globals() (map[string]any, error) {
	if err := vmc.acquire(); err != nil {
		return nil, err
	}
	defer vmc.release()

	out := map[string]any{}
	vmc.core.EachGlobal(func(name string, v value.Value) bool {
		out[name] = unmarshalToGo(v)
		return true
	})
	return out, nil
}

// SetGlobal binds a Go value to a global name, replacing any existing
// binding.
func (vmc *VM) SetGlobal(name string, val any) error {
	if err := vmc.acquire(); err != nil {
		return err
	}
	defer vmc.release()

	v, err := vmc.marshalGoValue(val)
	if err != nil {
		return fmt.Errorf("global %q: %w", name, err)
	}
	vmc.core.DefineGlobal(name, v)
	return nil
}

// marshalGoValue converts common Go scalars into a VM value.
func (vmc *VM) marshalGoValue(val any) (value.Value, error) {
	switch v := val.(type) {
	case nil:
		return value.Nil(), nil
	case bool:
		return value.Bool(v), nil
	case string:
		return vmc.core.String(v), nil
	case float64:
		return value.Number(v), nil
	case float32:
		return value.Number(float64(v)), nil
	case int:
		return value.Number(float64(v)), nil
	case int8:
		return value.Number(float64(v)), nil
	case int16:
		return value.Number(float64(v)), nil
	case int32:
		return value.Number(float64(v)), nil
	case int64:
		return value.Number(float64(v)), nil
	case uint:
		return value.Number(float64(v)), nil
	case uint8:
		return value.Number(float64(v)), nil
	case uint16:
		return value.Number(float64(v)), nil
	case uint32:
		return value.Number(float64(v)), nil
	case uint64:
		if v > 1<<53 {
			return value.Nil(), fmt.Errorf("integer %d exceeds float64 precision", v)
		}
		return value.Number(float64(v)), nil
	default:
		return value.Nil(), fmt.Errorf("unsupported type %T", val)
	}
}

// unmarshalToGo converts a VM value into a Go value.
func unmarshalToGo(v value.Value) any {
	if b, ok := v.AsBool(); ok {
		return b
	}
	if n, ok := v.AsNumber(); ok {
		return n
	}
	if s, ok := v.AsString(); ok {
		return s.Chars()
	}
	return nil
}
