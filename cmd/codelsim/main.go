// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

// Command codelsim simulates a CoDel queue discipline on a bottleneck link
// fed by open-loop traffic sources, writing xplot files and serving an
// optional prometheus metrics endpoint during the run.
package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/heistp/codel/logging"
	"github.com/urfave/cli/v2"
)

var logger = logging.New("codelsim").Sugar()

func main() {
	app := &cli.App{
		Name:  "codelsim",
		Usage: "simulate a CoDel queue discipline on a bottleneck link",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "codelsim.yaml",
				Usage:   "load the simulation config from `FILE`",
			},
			&cli.StringFlag{
				Name:  "cpuprofile",
				Usage: "write a CPU profile to `FILE`",
			},
			&cli.StringFlag{
				Name:  "memprofile",
				Usage: "write a memory profile to `FILE`",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

// run runs the simulation from the cli context.
func run(c *cli.Context) error {
	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if p := c.String("cpuprofile"); p != "" {
		var f *os.File
		if f, err = os.Create(p); err != nil {
			return err
		}
		defer f.Close()
		if err = pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}
	if err = simulate(cfg); err != nil {
		return err
	}
	if p := c.String("memprofile"); p != "" {
		var f *os.File
		if f, err = os.Create(p); err != nil {
			return err
		}
		defer f.Close()
		runtime.GC()
		if err = pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}

// simulate builds the node ring for the given config and runs it.
func simulate(cfg *SimConfig) error {
	iface, err := NewIface(cfg.Link, cfg.Plots)
	if err != nil {
		return err
	}
	if cfg.Metrics.Listen != "" {
		m := newMetricsServer(cfg.Metrics, iface.Queue())
		defer m.close()
	}
	delay := make([]Clock, len(cfg.Flows))
	for i, f := range cfg.Flows {
		delay[i] = f.Delay
	}
	h := []Handler{
		NewSender(cfg),
		NewDelay(delay),
		iface,
		NewReceiver(cfg),
	}
	return NewSim(h).Run()
}
