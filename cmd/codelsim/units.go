// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/heistp/codel"
	"gopkg.in/yaml.v3"
)

// Bitrate is a bitrate in bits per second.
type Bitrate int64

// Bitrate units.
const (
	Bps  Bitrate = 1
	Kbps         = 1000 * Bps
	Mbps         = 1000 * Kbps
	Gbps         = 1000 * Mbps
)

// Mbps returns the Bitrate in megabits per second.
func (b Bitrate) Mbps() float64 {
	return float64(b) / float64(Mbps)
}

func (b Bitrate) String() string {
	return fmt.Sprintf("%.2f Mbps", b.Mbps())
}

// bitrateUnits are the accepted suffixes, checked longest first so "bps"
// doesn't shadow the others.
var bitrateUnits = []struct {
	suffix string
	unit   Bitrate
}{
	{"Gbps", Gbps},
	{"Mbps", Mbps},
	{"Kbps", Kbps},
	{"bps", Bps},
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting either an integer in
// bits per second, or a string with a bps, Kbps, Mbps or Gbps suffix.
func (b *Bitrate) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		var n int64
		if err = value.Decode(&n); err != nil {
			return fmt.Errorf("invalid bitrate: %q", value.Value)
		}
		*b = Bitrate(n)
		return nil
	}
	unit := Bps
	for _, u := range bitrateUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSuffix(s, u.suffix)
			unit = u.unit
			break
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid bitrate %q: %w", value.Value, err)
	}
	*b = Bitrate(f * float64(unit))
	return nil
}

// TransferTime returns the time to transfer size bytes at the given rate.
func TransferTime(rate Bitrate, size codel.Bytes) Clock {
	return Clock(8 * int64(size) * int64(time.Second) / int64(rate))
}

// CalcBitrate returns the Bitrate of size bytes over the given duration.
func CalcBitrate(size codel.Bytes, dur time.Duration) Bitrate {
	if dur <= 0 {
		return 0
	}
	return Bitrate(8 * float64(size) / dur.Seconds())
}
