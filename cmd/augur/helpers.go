package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/augurlint/augur/internal/output"
	"github.com/augurlint/augur/pkg/config"
	"github.com/augurlint/augur/pkg/detector"
	"github.com/augurlint/augur/pkg/detector/cyclicimports"
	"github.com/augurlint/augur/pkg/detector/deadcallable"
	"github.com/augurlint/augur/pkg/detector/sendinloop"
	"github.com/augurlint/augur/pkg/detector/unpairedrandom"
	"github.com/augurlint/augur/pkg/diag"
	"github.com/augurlint/augur/pkg/facts"
	"github.com/augurlint/augur/pkg/tool/dumpcfg"
	"github.com/augurlint/augur/pkg/tool/irstats"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.LoadOrDefault()
	}
	if f := c.String("format"); f != "" {
		cfg.Output.Format = f
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if s := c.String("min-severity"); s != "" {
		cfg.Output.MinSeverity = s
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	return cfg, cfg.Validate()
}

// buildRegistry registers the detectors and tools the config enables.
func buildRegistry(cfg *config.Config) (*detector.Registry, error) {
	reg := detector.NewRegistry()
	if cfg.Detectors.CyclicImports {
		if err := reg.RegisterDetector(cyclicimports.New()); err != nil {
			return nil, err
		}
	}
	if cfg.Detectors.UnpairedRandom {
		if err := reg.RegisterDetector(unpairedrandom.New()); err != nil {
			return nil, err
		}
	}
	if cfg.Detectors.SendInLoop {
		if err := reg.RegisterDetector(sendinloop.New()); err != nil {
			return nil, err
		}
	}
	if cfg.Detectors.DeadCallable {
		exec := facts.NewExecutor(cfg.Facts.Binary)
		if err := reg.RegisterDetector(deadcallable.New(exec)); err != nil {
			return nil, err
		}
	}
	if cfg.Tools.DumpCfg {
		if err := reg.RegisterTool(dumpcfg.New()); err != nil {
			return nil, err
		}
	}
	if cfg.Tools.IRStats {
		if err := reg.RegisterTool(irstats.New()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// newWriter builds the report writer; with --output the report lands in
// a file, without color.
func newWriter(c *cli.Context, cfg *config.Config) (*output.Writer, func(), error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, nil, err
	}
	opts := []output.Option{
		output.WithFormat(format),
		output.WithColor(cfg.Output.Color),
	}
	cleanup := func() {}
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("creating %s: %w", path, err)
		}
		opts = append(opts, output.WithWriter(f), output.WithColor(false))
		cleanup = func() { f.Close() }
	}
	return output.New(opts...), cleanup, nil
}

// reportErr separates engine bugs from user mistakes: an internal
// violation is captured into a diagnostic dump with a short pointer to
// it, while execution errors pass through untouched.
func reportErr(err error) error {
	v, ok := diag.AsViolation(err)
	if !ok {
		return err
	}
	path, dumpErr := diag.Dump(v, "", version, ".augur")
	if dumpErr != nil {
		return fmt.Errorf("internal error: %v (dump failed: %v)", v, dumpErr)
	}
	fmt.Fprintf(os.Stderr, "internal error, diagnostics written to %s\n", path)
	return fmt.Errorf("internal error: %v", v)
}
