package imports_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/augurlint/augur/internal/testutil"
	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/imports"
)

func TestDiamondVisitedOnce(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "a.arc"), "import \"./b\";\nimport \"./c\";\n")
	testutil.WriteFile(t, filepath.Join(dir, "b.arc"), "import \"./d\";\n")
	testutil.WriteFile(t, filepath.Join(dir, "c.arc"), "import \"./d\";\n")
	testutil.WriteFile(t, filepath.Join(dir, "d.arc"), "contract D {}\n")

	g, err := imports.NewBuilder().Build(filepath.Join(dir, "a.arc"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(g.Nodes()); got != 4 {
		t.Fatalf("nodes = %d, want 4", got)
	}
	if got := len(g.Edges()); got != 4 {
		t.Fatalf("edges = %d, want 4", got)
	}

	root, ok := g.NodeByPath(mustAbs(t, filepath.Join(dir, "a.arc")))
	if !ok {
		t.Fatal("root not found by path")
	}
	deps, err := g.Imports(root.ID)
	if err != nil {
		t.Fatalf("Imports: %v", err)
	}
	// d is reached through both b and c but listed once.
	if len(deps) != 3 {
		t.Fatalf("transitive imports = %d, want 3", len(deps))
	}
	var names []string
	for _, n := range deps {
		names = append(names, filepath.Base(n.Path))
	}
	want := []string{"b.arc", "c.arc", "d.arc"}
	for i, w := range want {
		if names[i] != w {
			t.Errorf("deps[%d] = %s, want %s (BFS order)", i, names[i], w)
		}
	}
}

func TestCycleTerminates(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "a.arc"), "import \"./b\";\n")
	testutil.WriteFile(t, filepath.Join(dir, "b.arc"), "import \"./a\";\n")

	g, err := imports.NewBuilder().Build(filepath.Join(dir, "a.arc"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(g.Nodes()); got != 2 {
		t.Fatalf("nodes = %d, want 2", got)
	}

	a, _ := g.NodeByPath(mustAbs(t, filepath.Join(dir, "a.arc")))
	back, err := g.Importers(a.ID)
	if err != nil {
		t.Fatalf("Importers: %v", err)
	}
	if len(back) != 1 || filepath.Base(back[0].Path) != "b.arc" {
		t.Errorf("importers of a = %v, want [b.arc]", back)
	}
}

func TestStdlibAliasAndOrigin(t *testing.T) {
	dir := t.TempDir()
	std := filepath.Join(dir, "stdlib")
	if err := os.MkdirAll(std, 0o755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, filepath.Join(std, "deploy.arc"), "native f();\n")
	testutil.WriteFile(t, filepath.Join(dir, "main.arc"), "import \"@stdlib/deploy\";\ncontract C {}\n")

	g, err := imports.NewBuilder(imports.WithStdlibRoot(std)).Build(filepath.Join(dir, "main.arc"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	n, ok := g.NodeByPath(mustAbs(t, filepath.Join(std, "deploy.arc")))
	if !ok {
		t.Fatal("stdlib file not resolved under stdlib root")
	}
	if n.Origin != ast.OriginStdlib {
		t.Errorf("origin = %v, want stdlib", n.Origin)
	}
	if n.HasContract {
		t.Error("deploy.arc should not register as contract-bearing")
	}

	main, _ := g.NodeByPath(mustAbs(t, filepath.Join(dir, "main.arc")))
	if main.Origin != ast.OriginUser {
		t.Errorf("main origin = %v, want user", main.Origin)
	}
	if !main.HasContract {
		t.Error("main.arc should register as contract-bearing")
	}

	e, ok := g.EdgeBetween(main.ID, n.ID)
	if !ok {
		t.Fatal("missing import edge main -> stdlib")
	}
	if e.Loc.Line != 1 {
		t.Errorf("edge line = %d, want 1", e.Loc.Line)
	}
}

func TestAsmInclude(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "main.arc"), "import \"./lowlevel.asm\";\n")
	testutil.WriteFile(t, filepath.Join(dir, "lowlevel.asm"), "#include \"macros.asm\"\n")
	testutil.WriteFile(t, filepath.Join(dir, "macros.asm"), "// macros\n")

	g, err := imports.NewBuilder().Build(filepath.Join(dir, "main.arc"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	asm, ok := g.NodeByPath(mustAbs(t, filepath.Join(dir, "lowlevel.asm")))
	if !ok {
		t.Fatal("asm file missing")
	}
	if asm.Lang != imports.LangAsm {
		t.Errorf("lang = %v, want asm", asm.Lang)
	}
	if _, ok := g.NodeByPath(mustAbs(t, filepath.Join(dir, "macros.asm"))); !ok {
		t.Error("#include target not followed")
	}
}

func TestUnreadableImportFails(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "main.arc"), "import \"./missing\";\n")

	_, err := imports.NewBuilder().Build(filepath.Join(dir, "main.arc"))
	if err == nil {
		t.Fatal("expected error for unresolvable import")
	}
}

func TestFileCallbackFiresPerFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "a.arc"), "import \"./b\";\n")
	testutil.WriteFile(t, filepath.Join(dir, "b.arc"), "\n")

	var seen []string
	_, err := imports.NewBuilder(imports.WithFileCallback(func(p string) {
		seen = append(seen, filepath.Base(p))
	})).Build(filepath.Join(dir, "a.arc"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("callback fired %d times, want 2", len(seen))
	}
}

func mustAbs(t *testing.T, p string) string {
	t.Helper()
	abs, err := filepath.Abs(p)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}
