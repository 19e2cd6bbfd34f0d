// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/ir"
)

// WriteFile writes content to a file, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// MustStore decodes a front-end dump and indexes it.
func MustStore(t *testing.T, dump string) *ast.Store {
	t.Helper()
	prog, err := ast.DecodeProgram([]byte(dump))
	if err != nil {
		t.Fatalf("DecodeProgram error: %v", err)
	}
	return ast.NewStore(prog)
}

// MustUnit decodes a dump and builds its compilation unit.
func MustUnit(t *testing.T, dump string) *ir.CompilationUnit {
	t.Helper()
	cu, err := ir.Build("test", MustStore(t, dump), ir.BuildOptions{})
	if err != nil {
		t.Fatalf("ir.Build error: %v", err)
	}
	return cu
}
