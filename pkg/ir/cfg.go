package ir

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/diag"
)

// CfgID identifies one control-flow graph within a compilation unit.
type CfgID uint32

// BlockID identifies a basic block within its CFG.
type BlockID uint32

// EdgeID identifies a CFG edge within its CFG.
type EdgeID uint32

// BlockKind classifies a basic block.
type BlockKind uint8

const (
	// BlockRegular is a statement without calls.
	BlockRegular BlockKind = iota
	// BlockCall is a statement whose expression contains at least one
	// call. Callees holds the CFG ids of the targets that resolved to a
	// declared callable; unresolved targets are simply absent.
	BlockCall
	// BlockExit terminates a path. Assigned to returns at creation time
	// and to every block left without outgoing edges after construction.
	BlockExit
)

func (k BlockKind) String() string {
	switch k {
	case BlockCall:
		return "call"
	case BlockExit:
		return "exit"
	default:
		return "regular"
	}
}

// BasicBlock holds exactly one source statement. In and Out index the
// CFG's edges by id in both directions; the edges themselves are owned
// by the Cfg.
type BasicBlock struct {
	ID      BlockID
	Stmt    ast.NodeID
	Kind    BlockKind
	Callees *roaring.Bitmap // CfgIDs; nil unless the statement contains calls
	In      *roaring.Bitmap // incoming edge ids
	Out     *roaring.Bitmap // outgoing edge ids
}

// Edge is a directed edge between two blocks of the same CFG.
type Edge struct {
	ID  EdgeID
	Src BlockID
	Dst BlockID
}

// CfgKind distinguishes the callable families a CFG can describe.
// Contract constructors are built as methods.
type CfgKind uint8

const (
	CfgFunction CfgKind = iota
	CfgMethod
	CfgReceive
)

func (k CfgKind) String() string {
	switch k {
	case CfgMethod:
		return "method"
	case CfgReceive:
		return "receive"
	default:
		return "function"
	}
}

// Cfg is the control-flow graph of one callable. A declaration without a
// body yields a Cfg with no blocks.
type Cfg struct {
	ID     CfgID
	Name   string
	Decl   ast.NodeID
	Kind   CfgKind
	Origin ast.Origin

	Blocks []*BasicBlock
	Edges  []*Edge

	blockByID   map[BlockID]*BasicBlock
	edgeByID    map[EdgeID]*Edge
	blockByStmt map[ast.NodeID]BlockID
}

// Block resolves a block id. A missing id means a builder produced a
// dangling reference, which is a bug, not an input problem.
func (c *Cfg) Block(id BlockID) (*BasicBlock, error) {
	if b, ok := c.blockByID[id]; ok {
		return b, nil
	}
	return nil, diag.Violationf("basic block not found").
		With("cfg", c.Name).With("block", id)
}

// Edge resolves an edge id.
func (c *Cfg) Edge(id EdgeID) (*Edge, error) {
	if e, ok := c.edgeByID[id]; ok {
		return e, nil
	}
	return nil, diag.Violationf("cfg edge not found").
		With("cfg", c.Name).With("edge", id)
}

// BlockOfStmt returns the block holding the given statement.
func (c *Cfg) BlockOfStmt(stmt ast.NodeID) (*BasicBlock, bool) {
	id, ok := c.blockByStmt[stmt]
	if !ok {
		return nil, false
	}
	return c.blockByID[id], true
}

// Entry returns the first block of the CFG, if any.
func (c *Cfg) Entry() (*BasicBlock, bool) {
	if len(c.Blocks) == 0 {
		return nil, false
	}
	return c.Blocks[0], true
}
