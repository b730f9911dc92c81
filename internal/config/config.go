// Package config implements covenant.yaml, the project-level configuration
// that tells cmd/covenant which snippet-IR files make up a program and how
// to wire the domain collaborators (storage backend, extern binder).
// Modeled on funxy's internal/ext.Config / funxy.yaml: a small YAML struct
// plus a FindConfig upward-search helper, no env-var layering or flag
// merging beyond what spec.md's collaborators need.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level covenant.yaml document.
type Config struct {
	// Snippets lists the snippet-IR JSON files (relative to the config
	// file's directory) that make up the program, in the order they
	// should be merged into one ast.Program before running the pipeline.
	Snippets []string `yaml:"snippets"`

	// Storage configures the optional persisted symbol-graph backend.
	Storage StorageConfig `yaml:"storage,omitempty"`

	// Extern points at the extern-binding file (externbind.Config's own
	// YAML document), if this project declares any extern snippets.
	Extern string `yaml:"extern,omitempty"`
}

// StorageConfig selects and configures internal/storage's concrete
// backend. DSN is a database/sql data source name; Driver is currently
// always "sqlite" (the only backend spec.md's expansion ships), kept as a
// field rather than hardcoded so a second backend never needs a config
// schema break.
type StorageConfig struct {
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

// DefaultStorageDriver is used when covenant.yaml omits storage.driver.
const DefaultStorageDriver = "sqlite"

// LoadConfig reads and parses a covenant.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses covenant.yaml content from bytes. path is used only
// for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for covenant.yaml starting from dir and walking up
// to parent directories. Returns the path and nil error if found, or an
// empty string and nil error if not found anywhere above dir.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "covenant.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		candidate = filepath.Join(dir, "covenant.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	if len(c.Snippets) == 0 {
		return fmt.Errorf("%s: no snippets defined", path)
	}
	for i, s := range c.Snippets {
		if s == "" {
			return fmt.Errorf("%s: snippets[%d]: empty path", path, i)
		}
	}
	if c.Storage.Driver != "" && c.Storage.Driver != DefaultStorageDriver {
		return fmt.Errorf("%s: storage.driver %q is not supported", path, c.Storage.Driver)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
}

// SnippetPaths resolves every entry in c.Snippets to an absolute path,
// relative to configDir (the directory covenant.yaml was loaded from).
func (c *Config) SnippetPaths(configDir string) []string {
	out := make([]string, len(c.Snippets))
	for i, s := range c.Snippets {
		if filepath.IsAbs(s) {
			out[i] = s
		} else {
			out[i] = filepath.Join(configDir, s)
		}
	}
	return out
}
