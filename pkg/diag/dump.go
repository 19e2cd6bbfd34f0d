package diag

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Report is the diagnostic artifact written when a Violation reaches the
// top level. It carries everything needed to reproduce the mismatch
// without access to the failing run.
type Report struct {
	Message   string         `yaml:"message"`
	Context   map[string]any `yaml:"context,omitempty"`
	Project   string         `yaml:"project,omitempty"`
	Version   string         `yaml:"version,omitempty"`
	Timestamp time.Time      `yaml:"timestamp"`
	Stack     string         `yaml:"stack,omitempty"`
}

// Dump writes a YAML report for v under dir and returns the artifact
// path. The filename is derived from a BLAKE3 digest of the rendered
// report, so identical failures collapse onto one file.
func Dump(v *Violation, project, version, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dump dir: %w", err)
	}
	rep := Report{
		Message:   v.Msg,
		Context:   v.Context,
		Project:   project,
		Version:   version,
		Timestamp: time.Now().UTC(),
		Stack:     string(debug.Stack()),
	}
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return "", fmt.Errorf("encoding dump: %w", err)
	}
	sum := blake3.Sum256(data)
	path := filepath.Join(dir, "augur-dump-"+hex.EncodeToString(sum[:8])+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing dump: %w", err)
	}
	return path, nil
}
