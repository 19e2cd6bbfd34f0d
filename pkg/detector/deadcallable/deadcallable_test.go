package deadcallable_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/augurlint/augur/internal/testutil"
	"github.com/augurlint/augur/pkg/detector/deadcallable"
	"github.com/augurlint/augur/pkg/facts"
	"github.com/augurlint/augur/pkg/models"
)

// stubEngine writes a shell script that derives dead/1 as declared
// minus root, which matches the real rule program on call-free graphs.
func stubEngine(t *testing.T) *facts.Executor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub engine is a shell script")
	}
	path := filepath.Join(t.TempDir(), "arc-facts")
	script := `#!/bin/sh
in=$(cat)
declared=$(printf '%s\n' "$in" | grep '^declared' | cut -f2 | sort)
root=$(printf '%s\n' "$in" | grep '^root' | cut -f2 | sort)
for id in $declared; do
	case " $root " in
	*" $id "*) ;;
	*) printf 'dead\t%s\n' "$id" ;;
	esac
done
exit 0
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return facts.NewExecutor(path)
}

func failingEngine(t *testing.T) *facts.Executor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub engine is a shell script")
	}
	path := filepath.Join(t.TempDir(), "arc-facts")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho 'no such rule' >&2\nexit 2\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return facts.NewExecutor(path)
}

const dumpWithOrphan = `{"name":"p","files":[{"path":"main.arc","decls":[
	{"node":"contract","id":1,"name":"Vault","receivers":[
		{"node":"message","id":2,"kind":"external","message":"Deposit","body":[
			{"node":"return","id":3}]}]},
	{"node":"function","id":10,"name":"orphan",
	 "loc":{"file":"main.arc","line":9,"col":1},"body":[
		{"node":"return","id":11}]}]}]}`

func TestOrphanCallableReported(t *testing.T) {
	cu := testutil.MustUnit(t, dumpWithOrphan)
	d := deadcallable.New(stubEngine(t))

	if !d.RequiresFacts() {
		t.Error("detector should require the fact engine")
	}
	ws, err := d.Check(context.Background(), cu)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if len(ws) != 1 {
		t.Fatalf("warnings = %d, want 1: %v", len(ws), ws)
	}
	w := ws[0]
	if w.Severity != models.SeverityLow {
		t.Errorf("severity = %v, want low", w.Severity)
	}
	if !strings.Contains(w.Message, "orphan") {
		t.Errorf("message %q should name the dead callable", w.Message)
	}
	if w.Location.Line != 9 {
		t.Errorf("location = %+v, want the declaration", w.Location)
	}
}

func TestEngineFailurePropagates(t *testing.T) {
	cu := testutil.MustUnit(t, dumpWithOrphan)
	d := deadcallable.New(failingEngine(t))

	if _, err := d.Check(context.Background(), cu); err == nil {
		t.Fatal("expected fact engine failure to surface")
	}
}
