// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package codel

// Bytes is a number of bytes.
type Bytes uint64

// ECN is an Explicit Congestion Notification codepoint, with the two-bit
// values from RFC 3168.
type ECN uint8

const (
	NotECT ECN = 0b00 // not ECN-capable
	ECT1   ECN = 0b01 // ECN-capable, L4S identifier
	ECT0   ECN = 0b10 // ECN-capable
	CE     ECN = 0b11 // congestion experienced
)

// Capable returns true if the codepoint signals an ECN-capable transport,
// i.e. one that may be marked instead of dropped.
func (e ECN) Capable() bool {
	return e == ECT0 || e == ECT1
}

func (e ECN) String() string {
	switch e {
	case NotECT:
		return "NotECT"
	case ECT1:
		return "ECT(1)"
	case ECT0:
		return "ECT(0)"
	case CE:
		return "CE"
	}
	return "invalid"
}

// Item is one packet or frame under the control of a Queue.  Items are held
// by reference, and the Queue may rewrite the codepoint of an ECN-capable
// Item to CE.  The timestamp is set once, at admission.
type Item interface {
	// Size returns the payload size.
	Size() Bytes

	// Timestamp returns the admission time.
	Timestamp() Clock

	// SetTimestamp sets the admission time.
	SetTimestamp(Clock)

	// ECN returns the codepoint.
	ECN() ECN

	// SetECN sets the codepoint.
	SetECN(ECN)
}
