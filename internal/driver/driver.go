// Package driver orchestrates a run: it builds one compilation unit per
// configured project, fans detectors out over each unit, and reconciles
// the per-project warnings into a single report.
package driver

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/zeebo/blake3"

	"github.com/augurlint/augur/internal/progress"
	"github.com/augurlint/augur/internal/vcs"
	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/config"
	"github.com/augurlint/augur/pkg/detector"
	"github.com/augurlint/augur/pkg/facts"
	"github.com/augurlint/augur/pkg/imports"
	"github.com/augurlint/augur/pkg/ir"
	"github.com/augurlint/augur/pkg/models"
)

// Driver runs detectors and tools over the configured projects.
type Driver struct {
	cfg      *config.Config
	registry *detector.Registry
	factsOn  bool
	quiet    bool
	verbose  bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithQuiet suppresses progress rendering.
func WithQuiet() Option {
	return func(d *Driver) { d.quiet = true }
}

// WithVerbose prints per-project timing to stderr.
func WithVerbose() Option {
	return func(d *Driver) { d.verbose = true }
}

// New creates a Driver. The fact-engine capability is probed once, here;
// detectors that require it are skipped for the whole run when the
// engine is absent.
func New(cfg *config.Config, registry *detector.Registry, opts ...Option) *Driver {
	d := &Driver{
		cfg:      cfg,
		registry: registry,
		factsOn:  facts.NewExecutor(cfg.Facts.Binary).Available(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FactsAvailable reports the probed fact-engine capability.
func (d *Driver) FactsAvailable() bool { return d.factsOn }

type projectResult struct {
	info     models.ProjectInfo
	warnings []models.Warning
}

// Analyze builds every project's compilation unit, runs all enabled
// detectors concurrently against each, and reconciles the results. Any
// detector failure aborts the whole run.
func (d *Driver) Analyze(ctx context.Context) (*models.Report, error) {
	units, infos, err := d.buildUnits(ctx)
	if err != nil {
		return nil, err
	}

	projects := pool.NewWithResults[projectResult]().WithErrors().WithContext(ctx)
	for i, cu := range units {
		projects.Go(func(ctx context.Context) (projectResult, error) {
			start := time.Now()
			warnings, err := d.analyzeUnit(ctx, cu)
			if err != nil {
				return projectResult{}, fmt.Errorf("project %s: %w", cu.Project, err)
			}
			if d.verbose {
				fmt.Fprintf(os.Stderr, "project %s: %d warnings in %s\n",
					cu.Project, len(warnings), time.Since(start).Round(time.Millisecond))
			}
			return projectResult{info: infos[i], warnings: warnings}, nil
		})
	}
	results, err := projects.Wait()
	if err != nil {
		return nil, err
	}

	// Wait returns results in completion order; restore config order so
	// reconciliation ties break deterministically.
	byName := make(map[string]projectResult, len(results))
	for _, r := range results {
		byName[r.info.Name] = r
	}
	ordered := make([]projectResult, 0, len(results))
	for _, p := range d.cfg.Projects {
		ordered = append(ordered, byName[p.Name])
	}

	return d.reconcile(ordered), nil
}

// analyzeUnit fans the enabled detectors out over one unit, one task
// per detector, failing the join on the first error. Batches are
// reassembled in registration order: Wait returns completion order,
// which must not leak into reconciliation.
func (d *Driver) analyzeUnit(ctx context.Context, cu *ir.CompilationUnit) ([]models.Warning, error) {
	type batch struct {
		idx      int
		warnings []models.Warning
	}
	tasks := pool.NewWithResults[batch]().WithErrors().WithContext(ctx)
	for i, det := range d.registry.Detectors() {
		if dep, ok := det.(detector.FactsDependent); ok && dep.RequiresFacts() && !d.factsOn {
			continue
		}
		tasks.Go(func(ctx context.Context) (batch, error) {
			ws, err := det.Check(ctx, cu)
			if err != nil {
				return batch{}, fmt.Errorf("detector %s: %w", det.ID(), err)
			}
			for i := range ws {
				ws[i].Project = cu.Project
			}
			return batch{idx: i, warnings: ws}, nil
		})
	}
	results, err := tasks.Wait()
	if err != nil {
		return nil, err
	}
	ordered := make([][]models.Warning, len(d.registry.Detectors()))
	for _, b := range results {
		ordered[b.idx] = b.warnings
	}
	var out []models.Warning
	for _, ws := range ordered {
		out = append(out, ws...)
	}
	return out, nil
}

// RunTools runs every registered tool against every project. Tool
// failures are logged and excluded; the run itself never fails on them.
func (d *Driver) RunTools(ctx context.Context) ([]models.ToolOutput, error) {
	units, _, err := d.buildUnits(ctx)
	if err != nil {
		return nil, err
	}

	type slot struct {
		idx int
		out models.ToolOutput
		ok  bool
	}
	tools := d.registry.Tools()
	tasks := pool.NewWithResults[slot]().WithContext(ctx)
	for ui, cu := range units {
		for ti, t := range tools {
			idx := ui*len(tools) + ti
			tasks.Go(func(ctx context.Context) (slot, error) {
				out, err := t.Run(ctx, cu)
				if err != nil {
					fmt.Fprintf(os.Stderr, "tool %s failed on %s: %v\n", t.ID(), cu.Project, err)
					return slot{idx: idx}, nil
				}
				return slot{idx: idx, out: out, ok: true}, nil
			})
		}
	}
	results, err := tasks.Wait()
	if err != nil {
		return nil, err
	}
	// Project order, then tool registration order, independent of which
	// task finished first.
	placed := make([]slot, len(units)*len(tools))
	for _, r := range results {
		placed[r.idx] = r
	}
	var outs []models.ToolOutput
	for _, r := range placed {
		if r.ok {
			outs = append(outs, r.out)
		}
	}
	return outs, nil
}

// buildUnits constructs one compilation unit per configured project,
// concurrently, returned in configuration order.
func (d *Driver) buildUnits(ctx context.Context) ([]*ir.CompilationUnit, []models.ProjectInfo, error) {
	if len(d.cfg.Projects) == 0 {
		return nil, nil, fmt.Errorf("no projects configured")
	}

	var tracker *progress.Tracker
	if !d.quiet {
		tracker = progress.NewTracker("building projects", len(d.cfg.Projects))
		defer tracker.Finish()
	}

	type built struct {
		idx  int
		cu   *ir.CompilationUnit
		info models.ProjectInfo
	}
	tasks := pool.NewWithResults[built]().WithErrors().WithContext(ctx)
	for i, p := range d.cfg.Projects {
		tasks.Go(func(ctx context.Context) (built, error) {
			cu, err := d.buildUnit(p)
			if err != nil {
				return built{}, err
			}
			tracker.Tick()
			return built{
				idx: i,
				cu:  cu,
				info: models.ProjectInfo{
					Name:        p.Name,
					Revision:    cu.Revision,
					Fingerprint: cu.Fingerprint,
				},
			}, nil
		})
	}
	results, err := tasks.Wait()
	if err != nil {
		return nil, nil, err
	}

	units := make([]*ir.CompilationUnit, len(results))
	infos := make([]models.ProjectInfo, len(results))
	for _, r := range results {
		units[r.idx] = r.cu
		infos[r.idx] = r.info
	}
	return units, infos, nil
}

// buildUnit reads one project's front-end dump and assembles its IR.
func (d *Driver) buildUnit(p config.ProjectConfig) (*ir.CompilationUnit, error) {
	data, err := os.ReadFile(p.Dump)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", p.Name, err)
	}
	sum := blake3.Sum256(data)

	prog, err := ast.DecodeProgram(data)
	if err != nil {
		return nil, fmt.Errorf("project %s: decoding dump: %w", p.Name, err)
	}
	store := ast.NewStore(prog)

	var impGraph *imports.Graph
	if p.Entrypoint != "" {
		var spin *progress.Tracker
		opts := []imports.Option{imports.WithStdlibRoot(d.cfg.Stdlib.Root)}
		if !d.quiet {
			spin = progress.NewSpinner("scanning " + p.Name + " imports")
			opts = append(opts, imports.WithFileCallback(func(string) { spin.Tick() }))
		}
		impGraph, err = imports.NewBuilder(opts...).Build(p.Entrypoint)
		if err != nil {
			spin.FinishError(err)
			return nil, fmt.Errorf("project %s: %w", p.Name, err)
		}
		spin.Finish()
	}

	dir := p.Dir
	if dir == "" {
		dir = filepath.Dir(p.Dump)
	}

	return ir.Build(p.Name, store, ir.BuildOptions{
		Fingerprint: hex.EncodeToString(sum[:]),
		Revision:    vcs.Revision(dir),
		Imports:     impGraph,
	})
}
