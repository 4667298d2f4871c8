// Command azura compiles and runs Azura scripts, starts an interactive
// prompt, or serves editor diagnostics over LSP.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/xirelogy/azura/internal/bytecode"
	"github.com/xirelogy/azura/internal/compiler"
	"github.com/xirelogy/azura/internal/config"
	"github.com/xirelogy/azura/internal/lsp"
	"github.com/xirelogy/azura/internal/vm"
)

const appName = "azura"

// Exit codes follow sysexits.h.
const (
	exitOK           = 0
	exitUsage        = 64
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
)

// ChunkExt marks files holding an encoded chunk rather than source.
const ChunkExt = ".azc"

var version = "dev"

var log = commonlog.GetLogger("azura.cli")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	disasm     bool
	trace      bool
	limit      int
	output     string
	serveLSP   bool
	verbosity  int
	file       string
}

func parseFlags(args []string, stderr io.Writer) (*options, map[string]bool, error) {
	opts := &options{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to "+config.FileName+" (default: search upward from the working directory)")
	fs.BoolVar(&opts.disasm, "disasm", false, "Print the compiled bytecode instead of running it")
	fs.BoolVar(&opts.trace, "trace", false, "Trace every executed instruction to stderr")
	fs.IntVar(&opts.limit, "limit", 0, "Maximum instructions per run (0 = unlimited)")
	fs.StringVar(&opts.output, "o", "", "Compile to an encoded chunk file instead of running")
	fs.BoolVar(&opts.serveLSP, "lsp", false, "Start the language server on stdio")
	fs.IntVar(&opts.verbosity, "v", 0, "Log verbosity (higher is more verbose)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [script%s|script.az]\n\nFlags:\n", appName, ChunkExt)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	switch fs.NArg() {
	case 0:
	case 1:
		opts.file = fs.Arg(0)
	default:
		fs.Usage()
		return nil, nil, errors.New("too many arguments")
	}
	return opts, set, nil
}

func loadConfig(opts *options, set map[string]bool) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}

	if set["trace"] {
		cfg.VM.TraceExecution = opts.trace
	}
	if set["limit"] {
		cfg.VM.InstructionLimit = opts.limit
	}
	if set["v"] {
		cfg.Log.Verbosity = opts.verbosity
	}
	return cfg, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, set, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := loadConfig(opts, set)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitUsage
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())
	if cfg.Dir != "" {
		log.Debugf("using %s from %s", config.FileName, cfg.Dir)
	}

	if opts.serveLSP {
		if err := lsp.New(version).Run(); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return exitIOError
		}
		return exitOK
	}

	machine := newMachine(cfg, stdout, stderr)
	defer machine.Free()

	if opts.file == "" {
		if opts.output != "" || opts.disasm {
			fmt.Fprintf(stderr, "%s: -o and -disasm need a script\n", appName)
			return exitUsage
		}
		return runREPL(machine, cfg, stdin, stdout, stderr)
	}

	switch {
	case opts.output != "":
		return compileFile(machine, opts.file, opts.output, stderr)
	case opts.disasm:
		return disassembleFile(machine, opts.file, stdout, stderr)
	default:
		return runFile(machine, opts.file, stderr)
	}
}

func newMachine(cfg *config.Config, stdout, stderr io.Writer) *vm.VM {
	machine := vm.New()
	machine.SetOutput(stdout)
	machine.SetStackMax(cfg.VM.StackMax)
	machine.SetInstructionLimit(cfg.VM.InstructionLimit)
	if cfg.VM.TraceExecution {
		machine.SetTraceHook(vm.NewTraceWriter(stderr))
	}
	if cfg.Compiler.PrintCode {
		machine.SetPrintCode(stderr)
	}
	return machine
}

func runFile(machine *vm.VM, path string, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return exitIOError
	}

	var chunk *bytecode.Chunk
	if strings.EqualFold(filepath.Ext(path), ChunkExt) {
		chunk, err = bytecode.Unmarshal(data, machine.Heap())
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s: %v\n", appName, path, err)
			return exitIOError
		}
	} else {
		chunk, err = machine.Compile(path, string(data))
		if err != nil {
			return reportError(stderr, err)
		}
	}
	if err := machine.Run(chunk); err != nil {
		return reportError(stderr, err)
	}
	return exitOK
}

func compileFile(machine *vm.VM, path, output string, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return exitIOError
	}
	chunk, err := machine.Compile(path, string(data))
	if err != nil {
		return reportError(stderr, err)
	}
	encoded, err := bytecode.Marshal(chunk)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitIOError
	}
	if err := os.WriteFile(output, encoded, 0o644); err != nil {
		fmt.Fprintf(stderr, "%s: cannot write %s: %v\n", appName, output, err)
		return exitIOError
	}
	log.Debugf("wrote %s (%d bytes)", output, len(encoded))
	return exitOK
}

func disassembleFile(machine *vm.VM, path string, stdout, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return exitIOError
	}
	if strings.EqualFold(filepath.Ext(path), ChunkExt) {
		chunk, err := bytecode.Unmarshal(data, machine.Heap())
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s: %v\n", appName, path, err)
			return exitIOError
		}
		if err := bytecode.NewDisassembler(stdout).DisassembleChunk(chunk, ""); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return exitIOError
		}
		return exitOK
	}
	if err := machine.Disassemble(stdout, path, string(data)); err != nil {
		return reportError(stderr, err)
	}
	return exitOK
}

// reportError prints a compile or runtime error and returns the matching
// exit code.
func reportError(stderr io.Writer, err error) int {
	var cerr *compiler.Error
	if errors.As(err, &cerr) {
		fmt.Fprintln(stderr, cerr.Error())
		return exitCompileError
	}
	var rte *vm.RuntimeError
	if errors.As(err, &rte) {
		fmt.Fprintln(stderr, rte.Report())
		return exitRuntimeError
	}
	fmt.Fprintf(stderr, "%s: %v\n", appName, err)
	return exitIOError
}
