package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[compiler]
print-code = true

[vm]
stack-max = 64
instruction-limit = 1000
trace-execution = true

[log]
verbosity = 2
file = "azura.log"

[repl]
history = "/tmp/hist"
prompt = "azura> "
`
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Compiler.PrintCode {
		t.Errorf("print-code = false, want true")
	}
	if c.VM.StackMax != 64 {
		t.Errorf("stack-max = %d, want 64", c.VM.StackMax)
	}
	if c.VM.InstructionLimit != 1000 {
		t.Errorf("instruction-limit = %d, want 1000", c.VM.InstructionLimit)
	}
	if !c.VM.TraceExecution {
		t.Errorf("trace-execution = false, want true")
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", c.Log.Verbosity)
	}
	if got := c.LogPath(); got == nil || *got != filepath.Join(c.Dir, "azura.log") {
		t.Errorf("log path = %v, want azura.log inside %s", got, c.Dir)
	}
	if c.HistoryPath() != "/tmp/hist" {
		t.Errorf("history = %q, want /tmp/hist", c.HistoryPath())
	}
	if c.REPL.Prompt != "azura> " {
		t.Errorf("prompt = %q, want \"azura> \"", c.REPL.Prompt)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	c, err := Parse("[compiler]\nprint-code = true\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	d := Default()
	if c.VM.StackMax != d.VM.StackMax {
		t.Errorf("stack-max = %d, want default %d", c.VM.StackMax, d.VM.StackMax)
	}
	if c.REPL.Prompt != d.REPL.Prompt {
		t.Errorf("prompt = %q, want default %q", c.REPL.Prompt, d.REPL.Prompt)
	}
	if c.LogPath() != nil {
		t.Errorf("expected stderr logging by default")
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", "[vm]\nstack-size = 3\n", "unknown keys: vm.stack-size"},
		{"stack", "[vm]\nstack-max = 0\n", "stack-max must be positive"},
		{"limit", "[vm]\ninstruction-limit = -1\n", "instruction-limit must not be negative"},
		{"syntax", "[vm\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("[vm]\nstack-max = 32\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatalf("expected config to be found")
	}
	if c.VM.StackMax != 32 {
		t.Errorf("stack-max = %d, want 32", c.VM.StackMax)
	}
	abs, _ := filepath.Abs(root)
	if c.Dir != abs {
		t.Errorf("dir = %q, want %q", c.Dir, abs)
	}
}

func TestFindAndLoadMissing(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c != nil && c.Dir == "" {
		t.Fatalf("a found config must record its directory")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), FileName)); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
