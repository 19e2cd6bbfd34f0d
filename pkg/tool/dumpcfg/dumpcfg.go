// Package dumpcfg renders a project's control-flow graphs in Graphviz
// DOT form, one digraph per callable.
package dumpcfg

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/augurlint/augur/pkg/detector"
	"github.com/augurlint/augur/pkg/ir"
	"github.com/augurlint/augur/pkg/models"
)

// Tool dumps the CFGs of a compilation unit.
type Tool struct{}

// New creates the tool.
func New() *Tool { return &Tool{} }

var _ detector.Tool = (*Tool)(nil)

func (t *Tool) ID() string { return "dump-cfg" }

func (t *Tool) Run(_ context.Context, cu *ir.CompilationUnit) (models.ToolOutput, error) {
	var cfgs []*ir.Cfg
	cu.ForEachCfg(func(c *ir.Cfg) { cfgs = append(cfgs, c) })
	sort.Slice(cfgs, func(i, j int) bool { return cfgs[i].ID < cfgs[j].ID })

	var sb strings.Builder
	for _, c := range cfgs {
		writeDot(&sb, c)
	}
	return models.ToolOutput{
		Tool:    t.ID(),
		Project: cu.Project,
		Output:  sb.String(),
	}, nil
}

func writeDot(sb *strings.Builder, c *ir.Cfg) {
	fmt.Fprintf(sb, "digraph %q {\n", c.Name)
	sb.WriteString("  node [shape=box];\n")
	for _, blk := range c.Blocks {
		attrs := ""
		switch blk.Kind {
		case ir.BlockExit:
			attrs = ", peripheries=2"
		case ir.BlockCall:
			attrs = ", style=rounded"
		}
		fmt.Fprintf(sb, "  b%d [label=\"#%d stmt=%d\"%s];\n", blk.ID, blk.ID, blk.Stmt, attrs)
	}
	for _, e := range c.Edges {
		fmt.Fprintf(sb, "  b%d -> b%d;\n", e.Src, e.Dst)
	}
	sb.WriteString("}\n")
}
