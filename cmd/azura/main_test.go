package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "main.az", "var a := 20;\ninfo a * 2 + 2;\n")
	code, out, errOut := runCLI(t, "", "-config", writeScript(t, dir, "azura.toml", ""), path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (%s)", code, errOut)
	}
	if out != "42\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunFileExitCodes(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScript(t, dir, "azura.toml", "")
	tests := []struct {
		name   string
		src    string
		code   int
		stderr string
	}{
		{"compile error", "info 1 +;", exitCompileError, "[line 1] Error at ';': Expect expression."},
		{"runtime error", "info 1;\ninfo missing;", exitRuntimeError, "Undefined variable 'missing'.\n[line 2] in script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, dir, "prog.az", tt.src)
			code, _, errOut := runCLI(t, "", "-config", cfg, path)
			if code != tt.code {
				t.Fatalf("expected exit %d, got %d", tt.code, code)
			}
			if !strings.Contains(errOut, tt.stderr) {
				t.Fatalf("expected stderr to contain %q, got %q", tt.stderr, errOut)
			}
		})
	}

	if code, _, _ := runCLI(t, "", "-config", cfg, filepath.Join(dir, "absent.az")); code != exitIOError {
		t.Fatalf("expected exit %d for a missing file, got %d", exitIOError, code)
	}
	if code, _, _ := runCLI(t, "", "-config", cfg, "a.az", "b.az"); code != exitUsage {
		t.Fatalf("expected usage exit for extra arguments, got %d", code)
	}
	if code, _, _ := runCLI(t, "", "-nope"); code != exitUsage {
		t.Fatalf("expected usage exit for an unknown flag, got %d", code)
	}
}

func TestCompileAndRunChunkFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScript(t, dir, "azura.toml", "")
	src := writeScript(t, dir, "hello.az", `var who := "chunk"; info "hello " + who;`)
	out := filepath.Join(dir, "hello"+ChunkExt)

	if code, _, errOut := runCLI(t, "", "-config", cfg, "-o", out, src); code != exitOK {
		t.Fatalf("compile failed with %d: %s", code, errOut)
	}
	code, stdout, errOut := runCLI(t, "", "-config", cfg, out)
	if code != exitOK {
		t.Fatalf("run failed with %d: %s", code, errOut)
	}
	if stdout != "hello chunk\n" {
		t.Fatalf("unexpected output %q", stdout)
	}

	code, stdout, _ = runCLI(t, "", "-config", cfg, "-disasm", out)
	if code != exitOK || !strings.Contains(stdout, "OP_DEFINE_GLOBAL") {
		t.Fatalf("unexpected disassembly (%d):\n%s", code, stdout)
	}

	bad := writeScript(t, dir, "bad"+ChunkExt, "garbage")
	if code, _, _ := runCLI(t, "", "-config", cfg, bad); code != exitIOError {
		t.Fatalf("expected exit %d for a corrupt chunk, got %d", exitIOError, code)
	}
}

func TestDisassembleSource(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScript(t, dir, "azura.toml", "")
	src := writeScript(t, dir, "dis.az", "info 1;")
	code, out, _ := runCLI(t, "", "-config", cfg, "-disasm", src)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.HasPrefix(out, "== "+src+" ==\n") || !strings.Contains(out, "OP_INFO") {
		t.Fatalf("unexpected disassembly:\n%s", out)
	}
}

func TestConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScript(t, dir, "azura.toml", "[vm]\ninstruction-limit = 3\n")
	src := writeScript(t, dir, "long.az", "info 1; info 2;")

	code, out, errOut := runCLI(t, "", "-config", cfg, src)
	if code != exitRuntimeError || !strings.Contains(errOut, "Instruction limit exceeded.") {
		t.Fatalf("expected the configured limit to stop the run, got %d %q", code, errOut)
	}
	if out != "1\n" {
		t.Fatalf("unexpected output %q", out)
	}

	if code, _, errOut := runCLI(t, "", "-config", cfg, "-limit", "0", src); code != exitOK {
		t.Fatalf("-limit 0 should override the config, got %d %q", code, errOut)
	}

	code, _, errOut = runCLI(t, "", "-config", cfg, "-limit", "0", "-trace", src)
	if code != exitOK || !strings.Contains(errOut, "OP_CONSTANT") {
		t.Fatalf("expected a trace on stderr, got %d %q", code, errOut)
	}

	broken := writeScript(t, dir, "broken.toml", "[vm]\nbogus = 1\n")
	if code, _, _ := runCLI(t, "", "-config", broken, src); code != exitUsage {
		t.Fatalf("expected usage exit for a bad config, got %d", code)
	}
}

func TestREPL(t *testing.T) {
	cfg := writeScript(t, t.TempDir(), "azura.toml", "")
	input := strings.Join([]string{
		"var x := 1;",
		"",
		"x = x + 1;",
		"info x;",
		"info nope;",
		"info ;",
		":globals",
		":bogus",
		":quit",
		"info 99;",
	}, "\n")
	code, out, errOut := runCLI(t, input, "-config", cfg)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "2\n") || !strings.Contains(out, "x = 2\n") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "99") {
		t.Fatalf("lines after :quit must not run")
	}
	if !strings.Contains(out, "unknown command") {
		t.Fatalf("expected unknown command notice, got %q", out)
	}
	if !strings.Contains(errOut, "Undefined variable 'nope'.") || !strings.Contains(errOut, "Expect expression.") {
		t.Fatalf("expected both errors reported, got %q", errOut)
	}
}

func TestREPLNeedsNoScriptFlags(t *testing.T) {
	cfg := writeScript(t, t.TempDir(), "azura.toml", "")
	if code, _, _ := runCLI(t, "", "-config", cfg, "-disasm"); code != exitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
}

func TestREPLHeapStats(t *testing.T) {
	cfg := writeScript(t, t.TempDir(), "azura.toml", "")
	input := "var s := \"a\" + \"b\";\n:heap\n"
	code, out, errOut := runCLI(t, input, "-config", cfg)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (%s)", code, errOut)
	}
	// s, a, b and the concatenated ab.
	if !strings.Contains(out, "strings: 4, objects: 4\n") {
		t.Fatalf("unexpected heap stats %q", out)
	}
}
