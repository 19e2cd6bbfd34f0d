package ir

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/diag"
)

// Resolver maps call targets visible from the callable under
// construction to CFG ids. Free functions are global; `self` methods are
// scoped to the enclosing contract or trait.
type Resolver interface {
	ResolveFree(name string) (CfgID, bool)
	ResolveSelf(method string) (CfgID, bool)
}

// CfgInfo names the callable a CFG is built for. ID must be reserved
// with Allocator.NextCfgID before the build.
type CfgInfo struct {
	ID     CfgID
	Name   string
	Decl   ast.NodeID
	Kind   CfgKind
	Origin ast.Origin
}

// BuildCfg converts a statement list into a control-flow graph of
// one-statement basic blocks. A nil body produces an empty CFG.
//
// Construction tracks a frontier of open predecessor blocks; each
// statement shape extends the graph and rewrites the frontier:
// conditionals fork it, loops pin it to the header with a back-edge,
// returns empty it, and a guarded try forces its body tail into an exit
// so that normal fallthrough past the guard is never represented.
func BuildCfg(alloc *Allocator, info CfgInfo, body []ast.Stmt, res Resolver) (*Cfg, error) {
	b := &cfgBuilder{
		alloc: alloc,
		res:   res,
		cfg: &Cfg{
			ID:          info.ID,
			Name:        info.Name,
			Decl:        info.Decl,
			Kind:        info.Kind,
			Origin:      info.Origin,
			blockByID:   make(map[BlockID]*BasicBlock),
			edgeByID:    make(map[EdgeID]*Edge),
			blockByStmt: make(map[ast.NodeID]BlockID),
		},
	}
	if _, err := b.processStmts(body, nil); err != nil {
		return nil, err
	}
	// Uniform terminal tagging: any block left without successors is an
	// exit, whatever shape produced it.
	for _, blk := range b.cfg.Blocks {
		if blk.Out.IsEmpty() {
			blk.Kind = BlockExit
		}
	}
	return b.cfg, nil
}

type cfgBuilder struct {
	alloc *Allocator
	res   Resolver
	cfg   *Cfg
	last  *BasicBlock // most recently created block
}

func (b *cfgBuilder) newBlock(stmt ast.Stmt, kind BlockKind, callees *roaring.Bitmap) *BasicBlock {
	blk := &BasicBlock{
		ID:      b.alloc.nextBlock(),
		Stmt:    stmt.NodeID(),
		Kind:    kind,
		Callees: callees,
		In:      roaring.New(),
		Out:     roaring.New(),
	}
	b.cfg.Blocks = append(b.cfg.Blocks, blk)
	b.cfg.blockByID[blk.ID] = blk
	b.cfg.blockByStmt[blk.Stmt] = blk.ID
	b.last = blk
	return blk
}

func (b *cfgBuilder) connect(srcs []BlockID, dst *BasicBlock) error {
	for _, src := range srcs {
		srcBlk, err := b.cfg.Block(src)
		if err != nil {
			return err
		}
		e := &Edge{ID: b.alloc.nextEdge(), Src: src, Dst: dst.ID}
		b.cfg.Edges = append(b.cfg.Edges, e)
		b.cfg.edgeByID[e.ID] = e
		srcBlk.Out.Add(uint32(e.ID))
		dst.In.Add(uint32(e.ID))
	}
	return nil
}

// processStmts extends the graph with stmts, entered from the frontier,
// and returns the frontier left open afterwards.
func (b *cfgBuilder) processStmts(stmts []ast.Stmt, frontier []BlockID) ([]BlockID, error) {
	var err error
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.Let, *ast.ExprStmt, *ast.Assign, *ast.AugmentedAssign:
			kind, callees := b.classify(s)
			blk := b.newBlock(s, kind, callees)
			if err = b.connect(frontier, blk); err != nil {
				return nil, err
			}
			frontier = []BlockID{blk.ID}

		case *ast.Return:
			blk := b.newBlock(s, BlockExit, nil)
			if err = b.connect(frontier, blk); err != nil {
				return nil, err
			}
			frontier = nil

		case *ast.Cond:
			cond := b.newBlock(s, BlockRegular, nil)
			if err = b.connect(frontier, cond); err != nil {
				return nil, err
			}
			thenEnd, err := b.processStmts(st.Then, []BlockID{cond.ID})
			if err != nil {
				return nil, err
			}
			if len(st.Else) > 0 {
				elseEnd, err := b.processStmts(st.Else, []BlockID{cond.ID})
				if err != nil {
					return nil, err
				}
				frontier = append(thenEnd, elseEnd...)
			} else {
				frontier = thenEnd
			}

		case *ast.While, *ast.Until, *ast.Repeat, *ast.Foreach:
			header := b.newBlock(s, BlockRegular, nil)
			if err = b.connect(frontier, header); err != nil {
				return nil, err
			}
			var body []ast.Stmt
			switch loop := s.(type) {
			case *ast.While:
				body = loop.Body
			case *ast.Until:
				body = loop.Body
			case *ast.Repeat:
				body = loop.Body
			case *ast.Foreach:
				body = loop.Body
			}
			bodyEnd, err := b.processStmts(body, []BlockID{header.ID})
			if err != nil {
				return nil, err
			}
			if err = b.connect(bodyEnd, header); err != nil {
				return nil, err
			}
			frontier = []BlockID{header.ID}

		case *ast.Try:
			tryBlk := b.newBlock(s, BlockRegular, nil)
			if err = b.connect(frontier, tryBlk); err != nil {
				return nil, err
			}
			bodyEnd, err := b.processStmts(st.Body, []BlockID{tryBlk.ID})
			if err != nil {
				return nil, err
			}
			lastOfBody := b.last
			if len(st.Body) == 0 {
				frontier = []BlockID{tryBlk.ID}
			} else {
				frontier = bodyEnd
			}
			if st.HasCatch {
				if _, err = b.processStmts(st.Catch, []BlockID{tryBlk.ID}); err != nil {
					return nil, err
				}
				// Normal fallthrough past a guarded try is not
				// represented; the body tail terminates the guarded path.
				if lastOfBody != tryBlk && lastOfBody != nil {
					lastOfBody.Kind = BlockExit
				}
			}

		default:
			return nil, diag.Violationf("unhandled statement variant in CFG builder").
				With("stmt", s.NodeID())
		}
	}
	return frontier, nil
}

// classify inspects a simple statement's expressions for calls. Any call
// makes the block a call block; only targets that resolve to a declared
// callable enter the callee set.
func (b *cfgBuilder) classify(s ast.Stmt) (BlockKind, *roaring.Bitmap) {
	hasCall := false
	callees := roaring.New()
	for _, e := range ast.StmtExprs(s) {
		ast.WalkExpr(e, func(x ast.Expr) bool {
			switch call := x.(type) {
			case *ast.StaticCall:
				hasCall = true
				if id, ok := b.res.ResolveFree(call.Name); ok {
					callees.Add(uint32(id))
				}
			case *ast.MethodCall:
				hasCall = true
				if ast.IsSelf(call.Base) {
					if id, ok := b.res.ResolveSelf(call.Method); ok {
						callees.Add(uint32(id))
					}
				}
			}
			return true
		})
	}
	if !hasCall {
		return BlockRegular, nil
	}
	return BlockCall, callees
}
