// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package codel

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Defaults for zero Config fields.
const (
	DefaultTarget   = Clock(5 * time.Millisecond)
	DefaultInterval = Clock(100 * time.Millisecond)
	DefaultMinBytes = Bytes(1500)
	DefaultLimit    = uint32(1000)
)

// Config are the Queue parameters.  A Config is validated once, by New, and
// never mutated afterwards.  Zero values for Target, Interval, MinBytes and
// the limits take the defaults above.
type Config struct {
	// Target is the delay tolerated before the persistence timer starts.
	Target Clock `yaml:"target"`

	// Interval is the persistence window and control law base period.
	Interval Clock `yaml:"interval"`

	// CEThreshold is the sojourn time above which the low-latency side
	// channel CE-marks ECT(1) items.  Zero disables it.  Requires UseECN.
	CEThreshold Clock `yaml:"ceThreshold"`

	// MinBytes is the backlog below which sojourn violations are ignored.
	MinBytes Bytes `yaml:"minBytes"`

	// Limit is the admission capacity in packets.
	Limit uint32 `yaml:"limit"`

	// LimitBytes, if nonzero, switches the admission capacity to bytes.
	LimitBytes Bytes `yaml:"limitBytes"`

	// UseECN marks ECN-capable items instead of dropping them.
	UseECN bool `yaml:"useEcn"`

	// UseL4S enables the CE threshold side channel for ECT(1) items.
	UseL4S bool `yaml:"useL4s"`
}

// WithDefaults returns a copy of the Config with zero values replaced by the
// defaults.
func (c Config) WithDefaults() Config {
	if c.Target == 0 {
		c.Target = DefaultTarget
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.MinBytes == 0 {
		c.MinBytes = DefaultMinBytes
	}
	if c.Limit == 0 && c.LimitBytes == 0 {
		c.Limit = DefaultLimit
	}
	return c
}

// Validate returns an error for every invalid or inconsistent field.
// Inconsistent combinations are rejected, never silently corrected.
func (c Config) Validate() (err error) {
	if c.Target <= 0 {
		err = multierr.Append(err,
			fmt.Errorf("target must be positive: %s", c.Target))
	}
	if c.Interval <= 0 {
		err = multierr.Append(err,
			fmt.Errorf("interval must be positive: %s", c.Interval))
	}
	if c.CEThreshold < 0 {
		err = multierr.Append(err,
			fmt.Errorf("ceThreshold must not be negative: %s", c.CEThreshold))
	}
	if c.CEThreshold > 0 && !c.UseECN {
		err = multierr.Append(err, errors.New(
			"ceThreshold requires useEcn: marking requires an ECN-capable transport"))
	}
	if c.UseL4S && !c.UseECN {
		err = multierr.Append(err, errors.New(
			"useL4s requires useEcn: marking requires an ECN-capable transport"))
	}
	if c.UseL4S && c.CEThreshold == 0 {
		err = multierr.Append(err, errors.New(
			"useL4s requires a ceThreshold"))
	}
	if c.Limit == 0 && c.LimitBytes == 0 {
		err = multierr.Append(err, errors.New(
			"either limit or limitBytes is required"))
	}
	return
}
