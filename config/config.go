// Package config handles jclass.toml settings for the jclass tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/dhamidi/jclass/classfile"
)

// FileName is the name Load and FindAndLoad look for.
const FileName = "jclass.toml"

// Environment variables that override the file.
const (
	EnvSkipAttributes = "JCLASS_SKIP_ATTRIBUTES"
	EnvLenientEOF     = "JCLASS_LENIENT_EOF"
	EnvTrace          = "JCLASS_TRACE"
)

type Config struct {
	Parse Parse `toml:"parse"`
	Log   Log   `toml:"log"`
	Scan  Scan  `toml:"scan"`

	// Dir is the directory containing the jclass.toml file, or "" when the
	// configuration was not loaded from a file.
	Dir string `toml:"-"`
}

// Parse controls how class files are decoded.
type Parse struct {
	SkipAttributes     bool `toml:"skip-attributes"`
	TolerateTruncation bool `toml:"tolerate-truncation"`
	Trace              bool `toml:"trace"`
}

// Log configures the commonlog backend.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Scan configures bulk scanning of directories and archives.
type Scan struct {
	Workers    int      `toml:"workers"`
	Extensions []string `toml:"extensions"`
	// Decode asks the scanner to decode attribute bodies. By default only
	// their lengths are read.
	Decode bool `toml:"decode"`
}

// Default returns the configuration used when no jclass.toml exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = runtime.GOMAXPROCS(0)
	}
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = []string{".class", ".jar", ".zip", ".jmod"}
	}
}

// Load parses a jclass.toml file from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}
	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	c.applyDefaults()
	return &c, nil
}

// FindAndLoad walks up from startDir to find a jclass.toml file and loads
// it. When no file is found the defaults are returned.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// ApplyEnv overrides parse settings from the environment. Values are parsed
// with strconv.ParseBool; an unset variable leaves the setting alone.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	vars := []struct {
		name string
		dst  *bool
	}{
		{EnvSkipAttributes, &c.Parse.SkipAttributes},
		{EnvLenientEOF, &c.Parse.TolerateTruncation},
		{EnvTrace, &c.Parse.Trace},
	}
	for _, v := range vars {
		s, ok := lookup(v.name)
		if !ok || s == "" {
			continue
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
		*v.dst = b
	}
	return nil
}

// ParseOptions translates the parse settings into classfile options.
func (c *Config) ParseOptions() []classfile.Option {
	var opts []classfile.Option
	if c.Parse.SkipAttributes {
		opts = append(opts, classfile.WithSkipAttributes())
	}
	if c.Parse.TolerateTruncation {
		opts = append(opts, classfile.WithTolerateTruncation())
	}
	if c.Parse.Trace {
		opts = append(opts, classfile.WithTrace())
	}
	return opts
}
