// Package irstats summarizes the size of each IR layer of a project.
package irstats

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/augurlint/augur/pkg/detector"
	"github.com/augurlint/augur/pkg/ir"
	"github.com/augurlint/augur/pkg/models"
)

// Tool counts files, declarations, CFGs, blocks, edges and graph nodes.
type Tool struct{}

// New creates the tool.
func New() *Tool { return &Tool{} }

var _ detector.Tool = (*Tool)(nil)

func (t *Tool) ID() string { return "ir-stats" }

func (t *Tool) Run(_ context.Context, cu *ir.CompilationUnit) (models.ToolOutput, error) {
	type counts struct{ cfgs, blocks, edges int }
	c := ir.FoldCfgs(cu, counts{}, func(acc counts, cfg *ir.Cfg) counts {
		acc.cfgs++
		acc.blocks += len(cfg.Blocks)
		acc.edges += len(cfg.Edges)
		return acc
	})

	rows := [][]string{
		{"files", fmt.Sprintf("%d", len(cu.AST.Files()))},
		{"declarations", fmt.Sprintf("%d", len(cu.AST.Decls()))},
		{"cfgs", fmt.Sprintf("%d", c.cfgs)},
		{"basic blocks", fmt.Sprintf("%d", c.blocks)},
		{"cfg edges", fmt.Sprintf("%d", c.edges)},
		{"call nodes", fmt.Sprintf("%d", len(cu.CallGraph.Nodes()))},
		{"call edges", fmt.Sprintf("%d", len(cu.CallGraph.Edges()))},
	}
	if cu.Imports != nil {
		rows = append(rows,
			[]string{"import nodes", fmt.Sprintf("%d", len(cu.Imports.Nodes()))},
			[]string{"import edges", fmt.Sprintf("%d", len(cu.Imports.Edges()))},
		)
	}

	var sb strings.Builder
	table := tablewriter.NewTable(&sb,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)
	table.Header([]string{"layer", "count"})
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	return models.ToolOutput{
		Tool:    t.ID(),
		Project: cu.Project,
		Output:  sb.String(),
	}, nil
}
