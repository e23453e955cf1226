// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package codel

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Clock is a high-resolution time, in nanoseconds.  It may be a wall-clock
// time or a virtual simulation time, as long as it's monotonic and every call
// into a Queue uses the same source.
type Clock time.Duration

// StringMS formats the Clock in milliseconds.
func (c Clock) StringMS() string {
	return fmt.Sprintf("%f", time.Duration(c).Seconds()*1000)
}

func (c Clock) String() string {
	return fmt.Sprintf("%f", time.Duration(c).Seconds())
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting either a Go duration
// string (e.g. "5ms") or an integer number of nanoseconds.
func (c *Clock) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*c = Clock(d)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*c = Clock(n)
	return nil
}

// clockShift is the number of low-order bits discarded when quantizing a
// Clock to the internal 32-bit time, for a resolution of 1.024 microseconds
// and a wrap period of about 73 minutes.
const clockShift = 10

// quantize returns the 32-bit internal time for the given Clock.
func quantize(c Clock) uint32 {
	return uint32(c >> clockShift)
}

// Quantized times wrap, so all order comparisons must be made on the signed
// difference, never with a raw < or >.  The result is correct as long as the
// true gap between the operands is under half the counter's range.

// timeAfter returns true if quantized time a is after b.
func timeAfter(a, b uint32) bool {
	return int32(a-b) > 0
}

// timeAfterEq returns true if quantized time a is after or equal to b.
func timeAfterEq(a, b uint32) bool {
	return int32(a-b) >= 0
}

// timeBefore returns true if quantized time a is before b.
func timeBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// timeBeforeEq returns true if quantized time a is before or equal to b.
func timeBeforeEq(a, b uint32) bool {
	return int32(a-b) <= 0
}
