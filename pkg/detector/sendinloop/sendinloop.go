// Package sendinloop flags message sends performed inside loop bodies.
// Each outbound message carries a fee, so a send whose count depends on
// a loop bound can drain the contract balance.
package sendinloop

import (
	"context"
	"fmt"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/detector"
	"github.com/augurlint/augur/pkg/ir"
	"github.com/augurlint/augur/pkg/models"
)

// Detector scans every CFG for blocks that send a message while control
// is inside a loop. A block sends either directly, by calling a send
// primitive in its statement, or transitively, through a callee whose
// inferred effects include Send.
type Detector struct{}

// New creates the detector.
func New() *Detector { return &Detector{} }

var _ detector.Detector = (*Detector)(nil)

func (d *Detector) ID() string              { return "send-in-loop" }
func (d *Detector) Sharing() models.Sharing { return models.ShareIntersect }

func (d *Detector) Check(_ context.Context, cu *ir.CompilationUnit) ([]models.Warning, error) {
	var warnings []models.Warning
	var firstErr error
	cu.ForEachCfg(func(c *ir.Cfg) {
		if firstErr != nil {
			return
		}
		ws, err := d.checkCfg(cu, c)
		if err != nil {
			firstErr = err
			return
		}
		warnings = append(warnings, ws...)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return warnings, nil
}

// checkCfg finds loop spans via back-edges. Blocks are created in
// statement order, so an edge whose source id is not lower than its
// destination id closes a loop, and the loop body is exactly the blocks
// created after the header and up to the edge source.
func (d *Detector) checkCfg(cu *ir.CompilationUnit, c *ir.Cfg) ([]models.Warning, error) {
	var warnings []models.Warning
	reported := make(map[ir.BlockID]struct{})
	for _, e := range c.Edges {
		if e.Src < e.Dst {
			continue
		}
		for _, blk := range c.Blocks {
			if blk.ID <= e.Dst || blk.ID > e.Src {
				continue
			}
			if _, dup := reported[blk.ID]; dup {
				continue
			}
			sends, err := d.blockSends(cu, blk)
			if err != nil {
				return nil, err
			}
			if !sends {
				continue
			}
			reported[blk.ID] = struct{}{}
			loc, _ := cu.AST.Pos(blk.Stmt)
			warnings = append(warnings, models.Warning{
				Detector: d.ID(),
				Severity: models.SeverityHigh,
				Sharing:  d.Sharing(),
				Message:  fmt.Sprintf("%s sends a message inside a loop", c.Name),
				Location: loc,
			})
		}
	}
	return warnings, nil
}

func (d *Detector) blockSends(cu *ir.CompilationUnit, blk *ir.BasicBlock) (bool, error) {
	st, err := cu.AST.Stmt(blk.Stmt)
	if err != nil {
		return false, err
	}
	direct := false
	for _, e := range ast.StmtExprs(st) {
		ast.WalkExpr(e, func(x ast.Expr) bool {
			switch call := x.(type) {
			case *ast.StaticCall:
				if ir.IsSendPrimitive(call.Name) {
					direct = true
					return false
				}
			case *ast.MethodCall:
				if ast.IsSelf(call.Base) && ir.IsSelfSendMethod(call.Method) {
					direct = true
					return false
				}
			}
			return true
		})
		if direct {
			return true, nil
		}
	}
	if blk.Kind != ir.BlockCall || blk.Callees == nil {
		return false, nil
	}
	it := blk.Callees.Iterator()
	for it.HasNext() {
		callee, ok := cu.CfgByID(ir.CfgID(it.Next()))
		if !ok {
			continue
		}
		if n, ok := cu.CallGraph.NodeByDecl(callee.Decl); ok && n.Effects.Has(ir.EffectSend) {
			return true, nil
		}
	}
	return false, nil
}
