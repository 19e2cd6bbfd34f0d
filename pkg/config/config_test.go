package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/augurlint/augur/pkg/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if !cfg.Detectors.CyclicImports {
		t.Error("Detectors.CyclicImports should be true by default")
	}
	if !cfg.Detectors.UnpairedRandom {
		t.Error("Detectors.UnpairedRandom should be true by default")
	}
	if !cfg.Detectors.SendInLoop {
		t.Error("Detectors.SendInLoop should be true by default")
	}
	if !cfg.Detectors.DeadCallable {
		t.Error("Detectors.DeadCallable should be true by default")
	}
	if cfg.Tools.DumpCfg || cfg.Tools.IRStats {
		t.Error("tools should be off by default")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %q, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}
	if cfg.Output.MinSeverity != "info" {
		t.Errorf("Output.MinSeverity = %q, want info", cfg.Output.MinSeverity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "augur.toml")
	content := `
[[projects]]
name = "mainnet"
dump = "dumps/mainnet.json"
entrypoint = "src/main.arc"

[detectors]
send_in_loop = false

[facts]
binary = "/opt/arc-facts"

[output]
format = "json"
min_severity = "medium"

[[suppressions]]
detector = "cyclic-imports"
file = "legacy.arc"
line = 1
col = 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Projects) != 1 || cfg.Projects[0].Name != "mainnet" {
		t.Errorf("Projects = %+v, want one named mainnet", cfg.Projects)
	}
	if cfg.Projects[0].Entrypoint != "src/main.arc" {
		t.Errorf("Entrypoint = %q", cfg.Projects[0].Entrypoint)
	}
	if cfg.Detectors.SendInLoop {
		t.Error("send_in_loop = false should override the default")
	}
	if !cfg.Detectors.CyclicImports {
		t.Error("unset detector toggles keep their defaults")
	}
	if cfg.Facts.Binary != "/opt/arc-facts" {
		t.Errorf("Facts.Binary = %q", cfg.Facts.Binary)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	if cfg.MinSeverity() != models.SeverityMedium {
		t.Errorf("MinSeverity() = %v, want medium", cfg.MinSeverity())
	}
	sups := cfg.ModelSuppressions()
	if len(sups) != 1 || sups[0].Detector != "cyclic-imports" {
		t.Errorf("ModelSuppressions() = %+v", sups)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "augur.yaml")
	content := `
projects:
  - name: testnet
    dump: testnet.json
tools:
  dump_cfg: true
output:
  format: toon
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Projects) != 1 || cfg.Projects[0].Dump != "testnet.json" {
		t.Errorf("Projects = %+v", cfg.Projects)
	}
	if !cfg.Tools.DumpCfg {
		t.Error("tools.dump_cfg should be enabled")
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %q, want toon", cfg.Output.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty project name", func(c *Config) {
			c.Projects = []ProjectConfig{{Dump: "x.json"}}
		}, true},
		{"missing dump", func(c *Config) {
			c.Projects = []ProjectConfig{{Name: "p"}}
		}, true},
		{"duplicate project", func(c *Config) {
			c.Projects = []ProjectConfig{
				{Name: "p", Dump: "a.json"},
				{Name: "p", Dump: "b.json"},
			}
		}, true},
		{"bad severity", func(c *Config) {
			c.Output.MinSeverity = "fatal"
		}, true},
		{"bad format", func(c *Config) {
			c.Output.Format = "xml"
		}, true},
		{"severity case-insensitive", func(c *Config) {
			c.Output.MinSeverity = "HIGH"
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
