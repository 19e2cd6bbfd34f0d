package ir_test

import (
	"testing"

	"github.com/augurlint/augur/internal/testutil"
	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/ir"
)

func onlyFunction(t *testing.T, cu *ir.CompilationUnit, name string) *ir.Cfg {
	t.Helper()
	for _, c := range cu.Functions {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no CFG named %s", name)
	return nil
}

func TestBranchingCfg(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"f","body":[
			{"node":"let","id":2,"name":"x","value":{"node":"literal","id":3,"value":"1"}},
			{"node":"cond","id":4,"cond":{"node":"var","id":5,"name":"x"},
			 "then":[{"node":"return","id":6}],
			 "else":[{"node":"return","id":7}]}]}]}]}`)

	c := onlyFunction(t, cu, "f")
	if len(c.Blocks) != 4 {
		t.Fatalf("blocks = %d, want 4 (let, cond, two returns)", len(c.Blocks))
	}
	if len(c.Edges) != 3 {
		t.Fatalf("edges = %d, want 3", len(c.Edges))
	}

	letBlk, ok := c.BlockOfStmt(2)
	if !ok || letBlk.Kind != ir.BlockRegular {
		t.Errorf("let block kind = %v, want regular", letBlk.Kind)
	}
	condBlk, _ := c.BlockOfStmt(4)
	if got := condBlk.Out.GetCardinality(); got != 2 {
		t.Errorf("cond out-degree = %d, want 2", got)
	}
	for _, id := range []ast.NodeID{6, 7} {
		blk, ok := c.BlockOfStmt(id)
		if !ok || blk.Kind != ir.BlockExit {
			t.Errorf("return stmt %d: kind = %v, want exit", id, blk.Kind)
		}
	}

	entry, ok := c.Entry()
	if !ok || entry != letBlk {
		t.Error("entry should be the let block")
	}
}

func TestCondWithoutElseLeavesOnlyThenOpen(t *testing.T) {
	// Fallthrough past an else-less branch continues from the branch
	// body's end, not from the condition.
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"f","body":[
			{"node":"cond","id":2,"cond":{"node":"var","id":3,"name":"x"},
			 "then":[{"node":"let","id":4,"name":"y","value":{"node":"literal","id":5,"value":"1"}}]},
			{"node":"return","id":6}]}]}]}`)

	c := onlyFunction(t, cu, "f")
	retBlk, _ := c.BlockOfStmt(6)
	if got := retBlk.In.GetCardinality(); got != 1 {
		t.Errorf("return in-degree = %d, want 1 (from then-body only)", got)
	}
	src := edgeSources(t, c, retBlk)
	thenBlk, _ := c.BlockOfStmt(4)
	if len(src) != 1 || src[0] != thenBlk.ID {
		t.Errorf("return predecessor = %v, want then-body block %d", src, thenBlk.ID)
	}
}

func TestLoopBackEdge(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"f","body":[
			{"node":"while","id":2,"cond":{"node":"var","id":3,"name":"go"},
			 "body":[{"node":"let","id":4,"name":"x","value":{"node":"literal","id":5,"value":"1"}}]},
			{"node":"return","id":6}]}]}]}`)

	c := onlyFunction(t, cu, "f")
	header, _ := c.BlockOfStmt(2)
	body, _ := c.BlockOfStmt(4)

	back := false
	for _, e := range c.Edges {
		if e.Src == body.ID && e.Dst == header.ID {
			back = true
		}
	}
	if !back {
		t.Error("missing back-edge from loop body to header")
	}
	if got := header.Out.GetCardinality(); got != 2 {
		t.Errorf("header out-degree = %d, want 2 (body + fallthrough)", got)
	}
}

func TestTryCatchBodyTailExits(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"f","body":[
			{"node":"try","id":2,"hasCatch":true,"catchName":"e",
			 "body":[{"node":"let","id":3,"name":"x","value":{"node":"literal","id":4,"value":"1"}}],
			 "catch":[{"node":"let","id":5,"name":"y","value":{"node":"literal","id":6,"value":"2"}}]},
			{"node":"return","id":7}]}]}]}`)

	c := onlyFunction(t, cu, "f")
	bodyTail, _ := c.BlockOfStmt(3)
	if bodyTail.Kind != ir.BlockExit {
		t.Errorf("guarded body tail kind = %v, want exit", bodyTail.Kind)
	}
	// Continuation after the try runs from the body end; the catch arm
	// hangs off the try block itself.
	catchBlk, _ := c.BlockOfStmt(5)
	tryBlk, _ := c.BlockOfStmt(2)
	src := edgeSources(t, c, catchBlk)
	if len(src) != 1 || src[0] != tryBlk.ID {
		t.Errorf("catch predecessor = %v, want try block %d", src, tryBlk.ID)
	}
}

func TestCallClassification(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"helper","body":[{"node":"return","id":2}]},
		{"node":"function","id":10,"name":"f","body":[
			{"node":"let","id":11,"name":"a","value":{"node":"staticCall","id":12,"name":"helper"}},
			{"node":"let","id":13,"name":"b","value":{"node":"staticCall","id":14,"name":"mystery"}},
			{"node":"return","id":15}]}]}]}`)

	c := onlyFunction(t, cu, "f")
	helper := onlyFunction(t, cu, "helper")

	resolved, _ := c.BlockOfStmt(11)
	if resolved.Kind != ir.BlockCall {
		t.Errorf("resolved call block kind = %v, want call", resolved.Kind)
	}
	if !resolved.Callees.Contains(uint32(helper.ID)) {
		t.Error("resolved call block should list helper's CFG id")
	}

	unresolved, _ := c.BlockOfStmt(13)
	if unresolved.Kind != ir.BlockCall {
		t.Errorf("unresolved call block kind = %v, want call", unresolved.Kind)
	}
	if got := unresolved.Callees.GetCardinality(); got != 0 {
		t.Errorf("unresolved call block callees = %d, want 0", got)
	}
}

// Exit iff empty out-set, and recorded in/out edge sets must agree with
// the raw edge list, for every block of every CFG.
func TestCfgInvariants(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"f","body":[
			{"node":"cond","id":2,"cond":{"node":"var","id":3,"name":"x"},
			 "then":[{"node":"while","id":4,"cond":{"node":"var","id":5,"name":"go"},
			          "body":[{"node":"let","id":6,"name":"y","value":{"node":"literal","id":7,"value":"1"}}]}],
			 "else":[{"node":"return","id":8}]},
			{"node":"try","id":9,"hasCatch":true,
			 "body":[{"node":"let","id":10,"name":"z","value":{"node":"literal","id":11,"value":"2"}}],
			 "catch":[{"node":"return","id":12}]}]}]}]}`)

	cu.ForEachCfg(func(c *ir.Cfg) {
		for _, blk := range c.Blocks {
			if (blk.Kind == ir.BlockExit) != blk.Out.IsEmpty() {
				t.Errorf("%s block %d: kind %v with out-degree %d", c.Name, blk.ID, blk.Kind, blk.Out.GetCardinality())
			}

			var in, out uint64
			for _, e := range c.Edges {
				if e.Dst == blk.ID {
					in++
					if !blk.In.Contains(uint32(e.ID)) {
						t.Errorf("%s block %d: missing in-edge %d", c.Name, blk.ID, e.ID)
					}
				}
				if e.Src == blk.ID {
					out++
					if !blk.Out.Contains(uint32(e.ID)) {
						t.Errorf("%s block %d: missing out-edge %d", c.Name, blk.ID, e.ID)
					}
				}
			}
			if in != blk.In.GetCardinality() || out != blk.Out.GetCardinality() {
				t.Errorf("%s block %d: edge sets disagree with edge list", c.Name, blk.ID)
			}
		}
	})
}

func edgeSources(t *testing.T, c *ir.Cfg, blk *ir.BasicBlock) []ir.BlockID {
	t.Helper()
	var srcs []ir.BlockID
	it := blk.In.Iterator()
	for it.HasNext() {
		e, err := c.Edge(ir.EdgeID(it.Next()))
		if err != nil {
			t.Fatalf("Edge: %v", err)
		}
		srcs = append(srcs, e.Src)
	}
	return srcs
}
