// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/heistp/codel"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// DefaultPacketSize is used for flows with no size configured.
const DefaultPacketSize = codel.Bytes(1500)

// SimConfig configures a simulation run.
type SimConfig struct {
	// Duration is the virtual time to run for.
	Duration Clock `yaml:"duration"`

	// Link is the bottleneck link.
	Link LinkConfig `yaml:"link"`

	// Flows are the traffic sources.
	Flows []FlowConfig `yaml:"flows"`

	// Metrics optionally serves prometheus metrics during the run.
	Metrics MetricsConfig `yaml:"metrics"`

	// Plots selects the xplot files to write.
	Plots PlotConfig `yaml:"plots"`
}

// LinkConfig configures the bottleneck link and its queue discipline.
type LinkConfig struct {
	// Rate is the initial link rate.
	Rate Bitrate `yaml:"rate"`

	// Schedule changes the link rate during the run.
	Schedule []RateAt `yaml:"schedule"`

	// CoDel configures the queue discipline.  Zero fields take the codel
	// package defaults.
	CoDel codel.Config `yaml:"codel"`
}

// RateAt is one link rate change in the schedule.
type RateAt struct {
	At   Clock   `yaml:"at"`
	Rate Bitrate `yaml:"rate"`
}

// FlowConfig configures one open-loop traffic source.
type FlowConfig struct {
	// Rate is the send rate.
	Rate Bitrate `yaml:"rate"`

	// Size is the packet size (DefaultPacketSize if zero).
	Size codel.Bytes `yaml:"size"`

	// ECN is the codepoint for the flow's packets: "", "ect0" or "ect1".
	ECN string `yaml:"ecn"`

	// Delay is the fixed path delay ahead of the bottleneck.
	Delay Clock `yaml:"delay"`

	// At is the flow start time.
	At Clock `yaml:"at"`

	// Stop is the flow stop time (zero means run to the end).
	Stop Clock `yaml:"stop"`
}

// Codepoint returns the ECN codepoint for the flow's packets.
func (f FlowConfig) Codepoint() (codel.ECN, error) {
	switch strings.ToLower(f.ECN) {
	case "", "notect":
		return codel.NotECT, nil
	case "ect0":
		return codel.ECT0, nil
	case "ect1":
		return codel.ECT1, nil
	}
	return codel.NotECT, fmt.Errorf("invalid ecn codepoint: %q", f.ECN)
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address to listen on (empty disables the endpoint).
	Listen string `yaml:"listen"`

	// Path is the HTTP path ("/metrics" if empty).
	Path string `yaml:"path"`
}

// PlotConfig selects the xplot files to write.
type PlotConfig struct {
	Sojourn     bool `yaml:"sojourn"`
	QueueLength bool `yaml:"queueLength"`
	Marks       bool `yaml:"marks"`
	Goodput     bool `yaml:"goodput"`
}

// LoadConfig reads, defaults and validates a SimConfig from a yaml file.
func LoadConfig(path string) (*SimConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c SimConfig
	if err = yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.defaults()
	if err = c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// defaults fills in zero fields.  The codel config keeps its zeros, which
// codel.New defaults itself.
func (c *SimConfig) defaults() {
	if c.Duration == 0 {
		c.Duration = Clock(10 * time.Second)
	}
	for i := range c.Flows {
		if c.Flows[i].Size == 0 {
			c.Flows[i].Size = DefaultPacketSize
		}
	}
}

// validate returns an error for each invalid field.
func (c *SimConfig) validate() (err error) {
	if c.Link.Rate <= 0 {
		err = multierr.Append(err,
			fmt.Errorf("link rate must be positive: %d", c.Link.Rate))
	}
	for i, r := range c.Link.Schedule {
		if r.Rate <= 0 {
			err = multierr.Append(err,
				fmt.Errorf("schedule %d: rate must be positive: %d",
					i, r.Rate))
		}
	}
	if len(c.Flows) == 0 {
		err = multierr.Append(err,
			fmt.Errorf("at least one flow is required"))
	}
	for i, f := range c.Flows {
		if f.Rate <= 0 {
			err = multierr.Append(err,
				fmt.Errorf("flow %d: rate must be positive: %d", i, f.Rate))
		}
		if _, e := f.Codepoint(); e != nil {
			err = multierr.Append(err, fmt.Errorf("flow %d: %w", i, e))
		}
		if f.Stop != 0 && f.Stop <= f.At {
			err = multierr.Append(err,
				fmt.Errorf("flow %d: stop must be after at", i))
		}
	}
	return
}
