package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/augurlint/augur/internal/driver"
)

func toolsCmd() *cli.Command {
	return &cli.Command{
		Name:   "tools",
		Usage:  "Run enabled tool plugins (CFG dumps, IR statistics)",
		Action: runTools,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Run every tool regardless of config toggles",
			},
		},
	}
}

func runTools(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("all") {
		cfg.Tools.DumpCfg = true
		cfg.Tools.IRStats = true
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	if len(reg.Tools()) == 0 {
		color.Yellow("no tools enabled")
		return nil
	}

	var opts []driver.Option
	if c.Bool("quiet") {
		opts = append(opts, driver.WithQuiet())
	}
	d := driver.New(cfg, reg, opts...)

	outputs, err := d.RunTools(c.Context)
	if err != nil {
		return reportErr(err)
	}

	w, cleanup, err := newWriter(c, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return w.RenderTools(outputs)
}

func detectorsCmd() *cli.Command {
	return &cli.Command{
		Name:  "detectors",
		Usage: "List detectors enabled by the current configuration",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			d := driver.New(cfg, reg)
			for _, det := range reg.Detectors() {
				fmt.Printf("%s (%s)\n", det.ID(), det.Sharing())
			}
			if !d.FactsAvailable() {
				color.Yellow("fact engine unavailable; fact-backed detectors will be skipped")
			}
			return nil
		},
	}
}
