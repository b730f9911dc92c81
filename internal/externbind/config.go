// Package externbind resolves Covenant Extern declarations' source strings
// to concrete bind targets: a Go package symbol ("go:") or a gRPC method
// descriptor ("grpc:"), grounded on funxy's internal/ext subsystem
// (config.go/builder.go/inspector.go), which does the same job for
// funxy.yaml deps — load the target with go/packages, confirm the symbol
// exists, and flag suspicious effect declarations.
package externbind

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the externbind YAML document a covenant.yaml's "extern" field
// points at, mirroring ext.Config/ext.Dep's list-of-entries shape.
type Config struct {
	Binds []Bind `yaml:"binds"`
}

// Bind maps one Covenant Extern snippet ID to a concrete target. Exactly
// one of Pkg+Symbol (a "go:" bind) or Proto (a "grpc:" bind) must be set,
// mirroring the Extern declaration's source-string prefix. A grpc bind's
// service and method names aren't declared here — they come from the
// Extern's own source string ("grpc:<service>/<method>"), so Verify is
// the only place that needs to agree they match.
type Bind struct {
	Snippet string `yaml:"snippet"`

	Pkg    string `yaml:"pkg,omitempty"`
	Symbol string `yaml:"symbol,omitempty"`

	Proto string `yaml:"proto,omitempty"`
}

// IsGoBind reports whether b targets a Go package symbol.
func (b Bind) IsGoBind() bool { return b.Pkg != "" }

// IsGrpcBind reports whether b targets a gRPC method.
func (b Bind) IsGrpcBind() bool { return b.Proto != "" }

// LoadConfig reads and parses an externbind YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses externbind YAML content from bytes. path is used
// only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate(path string) error {
	for i, b := range c.Binds {
		if b.Snippet == "" {
			return fmt.Errorf("%s: binds[%d]: snippet is required", path, i)
		}
		if b.IsGoBind() == b.IsGrpcBind() {
			return fmt.Errorf("%s: binds[%d] (%s): exactly one of pkg or proto must be set", path, i, b.Snippet)
		}
		if b.IsGoBind() && b.Symbol == "" {
			return fmt.Errorf("%s: binds[%d] (%s): symbol is required for a go bind", path, i, b.Snippet)
		}
	}
	return nil
}

// BySnippet looks up the bind declared for the given snippet ID.
func (c *Config) BySnippet(snippet string) (Bind, bool) {
	for _, b := range c.Binds {
		if b.Snippet == snippet {
			return b, true
		}
	}
	return Bind{}, false
}
