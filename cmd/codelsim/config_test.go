// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heistp/codel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoadConfig(t *testing.T) {
	y := `
duration: 2s
link:
  rate: 50Mbps
  schedule:
    - at: 1s
      rate: 25Mbps
  codel:
    target: 1ms
    interval: 20ms
    useEcn: true
flows:
  - rate: 60Mbps
    ecn: ect0
    delay: 5ms
plots:
  sojourn: true
`
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(y), 0644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Clock(2*time.Second), cfg.Duration)
	assert.Equal(t, 50*Mbps, cfg.Link.Rate)
	require.Len(t, cfg.Link.Schedule, 1)
	assert.Equal(t, 25*Mbps, cfg.Link.Schedule[0].Rate)
	assert.Equal(t, codel.Clock(time.Millisecond), cfg.Link.CoDel.Target)
	assert.True(t, cfg.Link.CoDel.UseECN)
	require.Len(t, cfg.Flows, 1)
	assert.Equal(t, DefaultPacketSize, cfg.Flows[0].Size)
	e, err := cfg.Flows[0].Codepoint()
	require.NoError(t, err)
	assert.Equal(t, codel.ECT0, e)
	assert.True(t, cfg.Plots.Sojourn)
	assert.False(t, cfg.Plots.Goodput)
}

func TestValidateConfig(t *testing.T) {
	c := &SimConfig{}
	c.defaults()
	err := c.validate()
	require.Error(t, err)
	assert.GreaterOrEqual(t, len(multierr.Errors(err)), 2)

	c = &SimConfig{
		Link:  LinkConfig{Rate: 10 * Mbps},
		Flows: []FlowConfig{{Rate: 5 * Mbps, ECN: "bogus"}},
	}
	c.defaults()
	assert.Error(t, c.validate())

	c = &SimConfig{
		Link: LinkConfig{Rate: 10 * Mbps},
		Flows: []FlowConfig{{
			Rate: 5 * Mbps,
			At:   Clock(time.Second),
			Stop: Clock(time.Millisecond),
		}},
	}
	c.defaults()
	assert.Error(t, c.validate())
}
