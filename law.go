// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package codel

// The control law schedules drops at intervals of interval/sqrt(count),
// with the reciprocal square root kept as a 16-bit fixed-point estimate
// refined by one Newton-Raphson step per drop or mark, so the hot path
// needs no floating point, division or sqrt.

const (
	// recInvSqrtBits is the number of stored bits of the estimate.
	recInvSqrtBits = 16

	// recInvSqrtShift widens the estimate to 32 bits for arithmetic.
	recInvSqrtShift = 32 - recInvSqrtBits

	// recInvSqrtOne is the initial estimate, ~1.0 in fixed point.
	recInvSqrtOne = uint16(^uint16(0))
)

// NewtonStep performs one Newton-Raphson iteration of the reciprocal square
// root estimate toward 1/sqrt(count):
//
//	x1 = (x0 / 2) * (3 - count * x0^2)
//
// recInvSqrt has 16 fractional bits.  The estimate tracks count as it
// changes by one per drop or mark, which keeps each step convergent.
func NewtonStep(recInvSqrt uint16, count uint32) uint16 {
	invsqrt := uint32(recInvSqrt) << recInvSqrtShift
	invsqrt2 := uint32(uint64(invsqrt) * uint64(invsqrt) >> 32)
	val := (uint64(3) << 32) - uint64(count)*uint64(invsqrt2)
	val >>= 2 // avoid overflow in the multiplication below
	val = (val * uint64(invsqrt)) >> (32 - 2 + 1)
	return uint16(val >> recInvSqrtShift)
}

// ControlLaw returns the next drop time after t:
//
//	t + interval / sqrt(count)
//
// computed as a fixed-point multiplication by recInvSqrt.  All values are in
// quantized time units and wrap accordingly.
func ControlLaw(t, interval uint32, recInvSqrt uint16) uint32 {
	return t + uint32(uint64(interval)*
		uint64(uint32(recInvSqrt)<<recInvSqrtShift)>>32)
}
