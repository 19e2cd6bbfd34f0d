// Package config loads augur's run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/augurlint/augur/pkg/models"
)

// Config holds all configuration options for augur.
type Config struct {
	// Analyzed projects
	Projects []ProjectConfig `koanf:"projects"`

	// Detector toggles
	Detectors DetectorConfig `koanf:"detectors"`

	// Tool toggles
	Tools ToolConfig `koanf:"tools"`

	// Warning suppressions
	Suppressions []SuppressionConfig `koanf:"suppressions"`

	// Fact engine settings
	Facts FactsConfig `koanf:"facts"`

	// Standard-library settings
	Stdlib StdlibConfig `koanf:"stdlib"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// ProjectConfig names one project and where its front-end dump lives.
type ProjectConfig struct {
	Name       string `koanf:"name"`
	Dump       string `koanf:"dump"`       // path to the front-end AST dump
	Entrypoint string `koanf:"entrypoint"` // root source file for the import graph
	Dir        string `koanf:"dir"`        // project directory, for VCS stamping
}

// DetectorConfig toggles individual detectors.
type DetectorConfig struct {
	CyclicImports  bool `koanf:"cyclic_imports"`
	UnpairedRandom bool `koanf:"unpaired_random"`
	SendInLoop     bool `koanf:"send_in_loop"`
	DeadCallable   bool `koanf:"dead_callable"`
}

// ToolConfig toggles individual tools.
type ToolConfig struct {
	DumpCfg bool `koanf:"dump_cfg"`
	IRStats bool `koanf:"ir_stats"`
}

// SuppressionConfig silences one warning at an exact position.
type SuppressionConfig struct {
	Detector string `koanf:"detector"`
	File     string `koanf:"file"` // matched as a path suffix
	Line     int    `koanf:"line"`
	Col      int    `koanf:"col"`
}

// FactsConfig points at the external fact engine.
type FactsConfig struct {
	Binary string `koanf:"binary"`
}

// StdlibConfig locates the language's standard library sources.
type StdlibConfig struct {
	Root string `koanf:"root"`
}

// OutputConfig controls report formatting.
type OutputConfig struct {
	Format      string `koanf:"format"` // text, json, toon
	Color       bool   `koanf:"color"`
	Verbose     bool   `koanf:"verbose"`
	MinSeverity string `koanf:"min_severity"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Detectors: DetectorConfig{
			CyclicImports:  true,
			UnpairedRandom: true,
			SendInLoop:     true,
			DeadCallable:   true,
		},
		Output: OutputConfig{
			Format:      "text",
			Color:       true,
			Verbose:     false,
			MinSeverity: "info",
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns
// defaults.
func LoadOrDefault() *Config {
	names := []string{
		"augur.toml",
		"augur.yaml",
		"augur.yml",
		"augur.json",
		".augur.toml",
		".augur.yaml",
		".augur.yml",
		".augur.json",
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}

// Validate rejects configuration mistakes: projects without a dump path,
// duplicate project names, unknown formats and severities.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, p := range c.Projects {
		if p.Name == "" {
			return fmt.Errorf("project with empty name")
		}
		if p.Dump == "" {
			return fmt.Errorf("project %q has no dump path", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("project %q configured twice", p.Name)
		}
		seen[p.Name] = true
	}
	switch strings.ToLower(c.Output.MinSeverity) {
	case "", "info", "low", "medium", "high", "critical":
	default:
		return fmt.Errorf("unknown severity %q", c.Output.MinSeverity)
	}
	switch c.Output.Format {
	case "", "text", "json", "toon":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

// MinSeverity returns the configured reporting floor.
func (c *Config) MinSeverity() models.Severity {
	return models.ParseSeverity(c.Output.MinSeverity)
}

// ModelSuppressions converts configured suppressions to the model form
// used by the reconciler.
func (c *Config) ModelSuppressions() []models.Suppression {
	out := make([]models.Suppression, 0, len(c.Suppressions))
	for _, s := range c.Suppressions {
		out = append(out, models.Suppression{
			Detector: s.Detector,
			File:     s.File,
			Line:     s.Line,
			Col:      s.Col,
		})
	}
	return out
}
