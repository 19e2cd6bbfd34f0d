package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/augurlint/augur/internal/driver"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Run all enabled detectors and print the reconciled report",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "gate",
				Usage: "Exit with code 2 when warnings remain after reconciliation",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	var opts []driver.Option
	if c.Bool("quiet") {
		opts = append(opts, driver.WithQuiet())
	}
	if cfg.Output.Verbose {
		opts = append(opts, driver.WithVerbose())
	}
	d := driver.New(cfg, reg, opts...)

	report, err := d.Analyze(c.Context)
	if err != nil {
		return reportErr(err)
	}

	w, cleanup, err := newWriter(c, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := w.Render(report); err != nil {
		return err
	}
	if c.Bool("gate") && len(report.Warnings) > 0 {
		return cli.Exit(fmt.Sprintf("%d warnings", len(report.Warnings)), 2)
	}
	return nil
}
