// Package config handles azura.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "azura.toml"

// Config represents an azura.toml file.
type Config struct {
	Compiler Compiler `toml:"compiler"`
	VM       VM       `toml:"vm"`
	Log      Log      `toml:"log"`
	REPL     REPL     `toml:"repl"`

	// Dir is the directory containing the azura.toml file (set at load time).
	Dir string `toml:"-"`
}

// Compiler configures compilation.
type Compiler struct {
	PrintCode bool `toml:"print-code"`
}

// VM configures the interpreter.
type VM struct {
	StackMax         int  `toml:"stack-max"`
	InstructionLimit int  `toml:"instruction-limit"`
	TraceExecution   bool `toml:"trace-execution"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// REPL configures the interactive prompt.
type REPL struct {
	History string `toml:"history"`
	Prompt  string `toml:"prompt"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		VM: VM{
			StackMax: 256,
		},
		REPL: REPL{
			History: ".azura_history",
			Prompt:  "> ",
		},
	}
}

// Parse decodes TOML data on top of the defaults. Unknown keys are errors.
func Parse(data string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find an azura.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// HistoryPath resolves the REPL history file. Relative paths are taken
// from the user's home directory; an empty setting disables history.
func (c *Config) HistoryPath() string {
	if c.REPL.History == "" || filepath.IsAbs(c.REPL.History) {
		return c.REPL.History
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, c.REPL.History)
}

// LogPath returns the log file path, or nil for stderr.
func (c *Config) LogPath() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	return &path
}

func (c *Config) validate() error {
	if c.VM.StackMax < 1 {
		return fmt.Errorf("vm.stack-max must be positive, got %d", c.VM.StackMax)
	}
	if c.VM.InstructionLimit < 0 {
		return fmt.Errorf("vm.instruction-limit must not be negative, got %d", c.VM.InstructionLimit)
	}
	return nil
}
