package facts

import (
	"bytes"
	"testing"
)

func TestEncode(t *testing.T) {
	call := Relation{Name: "call"}
	call.Add("1", "2")
	call.Add("2", "3")
	root := Relation{Name: "root"}
	root.Add("1")

	got := encode([]Relation{call, root})
	want := "call\t1\t2\ncall\t2\t3\nroot\t1\n"
	if got != want {
		t.Errorf("encode = %q, want %q", got, want)
	}
}

func TestDecodeGroupsByRelation(t *testing.T) {
	in := bytes.NewBufferString("dead\t7\nreach\t1\ndead\t9\n\nreach\t2\r\n")
	rels, err := decode(in)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("relations = %d, want 2", len(rels))
	}
	// First-appearance order is preserved.
	if rels[0].Name != "dead" || rels[1].Name != "reach" {
		t.Errorf("order = %s, %s; want dead, reach", rels[0].Name, rels[1].Name)
	}
	if len(rels[0].Tuples) != 2 || rels[0].Tuples[1][0] != "9" {
		t.Errorf("dead tuples = %v", rels[0].Tuples)
	}
	if len(rels[1].Tuples) != 2 || rels[1].Tuples[1][0] != "2" {
		t.Errorf("reach tuples = %v", rels[1].Tuples)
	}
}

func TestDecodeEmpty(t *testing.T) {
	rels, err := decode(bytes.NewBuffer(nil))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("relations = %d, want 0", len(rels))
	}
}

func TestAvailableMissingBinary(t *testing.T) {
	e := NewExecutor("definitely-not-a-real-binary-4f1e")
	if e.Available() {
		t.Error("nonexistent binary reported available")
	}
}

func TestNewExecutorDefault(t *testing.T) {
	if NewExecutor("").bin != DefaultBinary {
		t.Error("empty binary should select the default")
	}
}
