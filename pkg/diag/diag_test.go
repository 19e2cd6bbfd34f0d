package diag

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestViolationMessage(t *testing.T) {
	v := Violationf("node %d not found", 7).With("store", "stmts")
	got := v.Error()
	if !strings.HasPrefix(got, "internal: node 7 not found") {
		t.Errorf("Error() = %q", got)
	}
	if !strings.Contains(got, "store=stmts") {
		t.Errorf("Error() = %q, missing context", got)
	}
}

func TestAsViolationThroughWrapping(t *testing.T) {
	v := Violationf("boom")
	wrapped := fmt.Errorf("building cfg: %w", v)

	got, ok := AsViolation(wrapped)
	if !ok || got != v {
		t.Fatal("AsViolation should unwrap to the original violation")
	}
	if _, ok := AsViolation(fmt.Errorf("plain")); ok {
		t.Error("plain errors are not violations")
	}
}

func TestDumpWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	v := Violationf("cfg block missing").With("block", 12)

	path, err := Dump(v, "mainnet", "dev", dir)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	if !strings.HasPrefix(path, dir) || !strings.HasSuffix(path, ".yaml") {
		t.Errorf("artifact path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	content := string(data)
	for _, want := range []string{"cfg block missing", "mainnet", "block: 12"} {
		if !strings.Contains(content, want) {
			t.Errorf("artifact missing %q:\n%s", want, content)
		}
	}
}
