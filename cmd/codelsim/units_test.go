// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBitrateUnmarshalYAML(t *testing.T) {
	var c struct {
		Rate Bitrate `yaml:"rate"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("rate: 10Mbps"), &c))
	assert.Equal(t, 10*Mbps, c.Rate)
	require.NoError(t, yaml.Unmarshal([]byte("rate: 2.5Gbps"), &c))
	assert.Equal(t, Bitrate(2_500_000_000), c.Rate)
	require.NoError(t, yaml.Unmarshal([]byte("rate: 512Kbps"), &c))
	assert.Equal(t, 512*Kbps, c.Rate)
	require.NoError(t, yaml.Unmarshal([]byte("rate: 1000"), &c))
	assert.Equal(t, Bitrate(1000), c.Rate)
	assert.Error(t, yaml.Unmarshal([]byte("rate: fast"), &c))
}

func TestTransferTime(t *testing.T) {
	assert.Equal(t, Clock(time.Millisecond), TransferTime(12*Mbps, 1500))
	assert.Equal(t, Clock(12*time.Microsecond), TransferTime(Gbps, 1500))
}

func TestCalcBitrate(t *testing.T) {
	assert.Equal(t, 12*Mbps, CalcBitrate(1500, time.Millisecond))
	assert.Zero(t, CalcBitrate(1500, 0))
}
