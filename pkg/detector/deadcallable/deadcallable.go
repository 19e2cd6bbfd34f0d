// Package deadcallable finds user callables that no message entry point
// can reach. Reachability is computed by the external fact engine: the
// call graph is exported as relations and a transitive-closure rule
// program derives the dead set.
package deadcallable

import (
	"context"
	"fmt"
	"strconv"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/detector"
	"github.com/augurlint/augur/pkg/facts"
	"github.com/augurlint/augur/pkg/ir"
	"github.com/augurlint/augur/pkg/models"
)

// rules derives reach/1 from the exported root/1 and call/2 relations,
// then dead/1 as its complement over declared/1.
const rules = `
reach(X) :- root(X).
reach(Y) :- reach(X), call(X, Y).
dead(X) :- declared(X), !reach(X).
`

// Detector reports declared callables unreachable from any receiver or
// constructor.
type Detector struct {
	exec *facts.Executor
}

// New creates the detector around a fact engine executor.
func New(exec *facts.Executor) *Detector { return &Detector{exec: exec} }

var (
	_ detector.Detector       = (*Detector)(nil)
	_ detector.FactsDependent = (*Detector)(nil)
)

func (d *Detector) ID() string              { return "dead-callable" }
func (d *Detector) Sharing() models.Sharing { return models.ShareUnion }

// RequiresFacts marks the detector as dependent on the external engine.
func (d *Detector) RequiresFacts() bool { return true }

func (d *Detector) Check(ctx context.Context, cu *ir.CompilationUnit) ([]models.Warning, error) {
	g := cu.CallGraph
	if g == nil {
		return nil, nil
	}

	declared := facts.Relation{Name: "declared"}
	root := facts.Relation{Name: "root"}
	call := facts.Relation{Name: "call"}
	userDecl := make(map[string]ast.NodeID)

	for _, n := range g.Nodes() {
		declID, ok := n.DeclID()
		if !ok {
			continue
		}
		key := strconv.FormatUint(uint64(n.ID), 10)
		if c, found := cu.CfgByDecl(declID); found {
			if c.Origin == ast.OriginStdlib {
				continue
			}
			if c.Kind == ir.CfgReceive || c.Name == "init" {
				root.Add(key)
			}
		}
		declared.Add(key)
		userDecl[key] = declID
	}
	for _, e := range g.Edges() {
		call.Add(
			strconv.FormatUint(uint64(e.Src), 10),
			strconv.FormatUint(uint64(e.Dst), 10),
		)
	}

	derived, err := d.exec.Query(ctx, rules, []facts.Relation{declared, root, call})
	if err != nil {
		return nil, err
	}

	var warnings []models.Warning
	for _, rel := range derived {
		if rel.Name != "dead" {
			continue
		}
		for _, tuple := range rel.Tuples {
			if len(tuple) != 1 {
				continue
			}
			declID, ok := userDecl[tuple[0]]
			if !ok {
				continue
			}
			id, _ := strconv.ParseUint(tuple[0], 10, 32)
			node, err := g.Node(ir.CGNodeID(id))
			if err != nil {
				return nil, err
			}
			loc, _ := cu.AST.Pos(declID)
			warnings = append(warnings, models.Warning{
				Detector: d.ID(),
				Severity: models.SeverityLow,
				Sharing:  d.Sharing(),
				Message:  fmt.Sprintf("%s is never reached from a receiver or constructor", node.Name),
				Location: loc,
			})
		}
	}
	return warnings, nil
}
