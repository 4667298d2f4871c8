package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/xirelogy/azura/internal/config"
	"github.com/xirelogy/azura/internal/value"
	"github.com/xirelogy/azura/internal/vm"
)

const replSource = "<repl>"

// lineReader is the part of liner.State the prompt loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// scanReader feeds the prompt loop from a non-interactive stream.
type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func (r *scanReader) AppendHistory(string) {}

func runREPL(machine *vm.VM, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin != os.Stdin {
		return replLoop(machine, &scanReader{sc: bufio.NewScanner(stdin)}, "", stdout, stderr)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				log.Debugf("cannot save history: %v", err)
			}
		}()
	}

	fmt.Fprintf(stdout, "Azura %s. Type :help for commands.\n", version)
	return replLoop(machine, ln, cfg.REPL.Prompt, stdout, stderr)
}

// replLoop reads one line at a time and runs it against machine, so
// globals persist between lines. Errors are reported and the loop goes on.
func replLoop(machine *vm.VM, in lineReader, prompt string, stdout, stderr io.Writer) int {
	for {
		line, err := in.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(stderr, "%s: %v\n", appName, err)
				return exitIOError
			}
			if prompt != "" {
				fmt.Fprintln(stdout)
			}
			return exitOK
		}

		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		in.AppendHistory(line)

		if strings.HasPrefix(code, ":") {
			if done := replCommand(machine, code, stdout); done {
				return exitOK
			}
			continue
		}

		chunk, err := machine.Compile(replSource, line)
		if err == nil {
			err = machine.Run(chunk)
		}
		if err != nil {
			reportError(stderr, err)
		}
	}
}

// replCommand handles a colon command and reports whether the loop should end.
func replCommand(machine *vm.VM, cmd string, stdout io.Writer) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":globals":
		machine.EachGlobal(func(name string, v value.Value) bool {
			fmt.Fprintf(stdout, "%s = %s\n", name, v)
			return true
		})
	case ":heap":
		heap := machine.Heap()
		fmt.Fprintf(stdout, "strings: %d, objects: %d\n", heap.Strings(), len(heap.Objects()))
	case ":help":
		fmt.Fprintln(stdout, ":globals  list global variables")
		fmt.Fprintln(stdout, ":heap     show interned strings and heap objects")
		fmt.Fprintln(stdout, ":quit     leave the prompt")
	default:
		fmt.Fprintln(stdout, "unknown command. Type :help for commands.")
	}
	return false
}
