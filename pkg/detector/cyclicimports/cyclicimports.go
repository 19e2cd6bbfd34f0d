// Package cyclicimports reports cycles in the file import graph.
package cyclicimports

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/detector"
	"github.com/augurlint/augur/pkg/imports"
	"github.com/augurlint/augur/pkg/ir"
	"github.com/augurlint/augur/pkg/models"
)

// Detector finds strongly connected components of the import graph.
type Detector struct{}

// New creates the detector.
func New() *Detector { return &Detector{} }

var _ detector.Detector = (*Detector)(nil)

func (d *Detector) ID() string              { return "cyclic-imports" }
func (d *Detector) Sharing() models.Sharing { return models.ShareUnion }

func (d *Detector) Check(_ context.Context, cu *ir.CompilationUnit) ([]models.Warning, error) {
	if cu.Imports == nil {
		return nil, nil
	}
	g := simple.NewDirectedGraph()
	for _, n := range cu.Imports.Nodes() {
		g.AddNode(simple.Node(int64(n.ID)))
	}
	for _, e := range cu.Imports.Edges() {
		if e.Src != e.Dst {
			g.SetEdge(simple.Edge{F: simple.Node(int64(e.Src)), T: simple.Node(int64(e.Dst))})
		}
	}

	var warnings []models.Warning
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		names := make([]string, 0, len(scc))
		for _, gn := range scc {
			node, err := cu.Imports.Node(imports.NodeID(gn.ID()))
			if err != nil {
				return nil, err
			}
			names = append(names, filepath.Base(node.Path))
		}
		sort.Strings(names)
		first, err := cu.Imports.Node(imports.NodeID(scc[0].ID()))
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, models.Warning{
			Detector: d.ID(),
			Severity: models.SeverityMedium,
			Sharing:  d.Sharing(),
			Message:  fmt.Sprintf("import cycle between %s", strings.Join(names, ", ")),
			Location: locationOf(cu, first),
		})
	}
	return warnings, nil
}

// locationOf points the warning at the cyclic file's first import edge
// when one exists, else at the top of the file.
func locationOf(cu *ir.CompilationUnit, n *imports.Node) ast.Location {
	for _, e := range cu.Imports.Edges() {
		if e.Src == n.ID {
			return e.Loc
		}
	}
	return ast.Location{File: n.Path, Line: 1, Col: 1}
}
