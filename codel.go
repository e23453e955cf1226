// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

// Package codel implements the CoDel (Controlled Delay) queue discipline:
// an active queue management algorithm that bounds queueing delay by
// dropping or CE-marking packets whose sojourn time stays above a target
// for a full interval, with drop spacing that decays as interval/sqrt(count)
// while the overload persists.  An independent low-latency (L4S) side
// channel CE-marks ECT(1) packets above a lower threshold.
//
// The hot path uses no floating point, no division or square root, and
// wrap-safe 32-bit time arithmetic, so it's suitable for per-packet
// invocation on a transmit path.
package codel

// Drop and mark reasons.
const (
	TargetExceededDrop      = "Target exceeded drop"
	TargetExceededMark      = "Target exceeded mark"
	CEThresholdExceededMark = "CE threshold exceeded mark"
	OverlimitDrop           = "Overlimit drop"
)

// Queue is a CoDel queue discipline over a Store.  A Queue manages one
// logical FIFO and is driven by one producer (Enqueue) and one consumer
// (Dequeue) that must not run concurrently; if multiple goroutines share a
// Queue, the caller serializes access.  Neither call blocks.
//
// The current time is passed into each call.  It must come from one
// monotonic source, and is quantized internally to a 32-bit counter that
// wraps after about 73 minutes, which the time arithmetic tolerates.
type Queue struct {
	cfg   Config
	store Store

	// quantized parameters
	target      uint32
	interval    uint32
	ceThreshold uint32

	// control state, mutated only by Dequeue
	dropping       bool
	count          uint32
	lastCount      uint32
	recInvSqrt     uint16
	firstAboveTime uint32
	dropNext       uint32

	sojourn Clock
	stats   stats
}

// New returns a new Queue with the given Config and Store, or an error if
// the Config, after defaults, does not validate.
func New(cfg Config, store Store) (*Queue, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	q := &Queue{
		cfg:         cfg,
		store:       store,
		target:      quantize(cfg.Target),
		interval:    quantize(cfg.Interval),
		ceThreshold: quantize(cfg.CEThreshold),
	}
	q.Initialize()
	return q, nil
}

// Initialize resets the control state to its initial values.  New calls it,
// and it may be called again on a drained Queue to restart the controller.
func (q *Queue) Initialize() {
	q.dropping = false
	q.count = 0
	q.lastCount = 0
	q.recInvSqrt = recInvSqrtOne
	q.firstAboveTime = 0
	q.dropNext = 0
}

// Enqueue stamps item with now and admits it to the Store.  It returns
// false, without admitting the item, if the configured capacity would be
// exceeded (ordinary tail drop, counted under OverlimitDrops).  Rejection
// is a normal result, not an error, and doesn't touch the control state.
func (q *Queue) Enqueue(item Item, now Clock) bool {
	if q.overLimit(item) {
		q.stats.overlimitDrops.Add(1)
		return false
	}
	item.SetTimestamp(now)
	if !q.store.Push(item) {
		q.stats.overlimitDrops.Add(1)
		return false
	}
	return true
}

// overLimit returns true if admitting item would exceed the capacity limit,
// in whichever unit it is configured.
func (q *Queue) overLimit(item Item) bool {
	if q.cfg.LimitBytes > 0 {
		return q.store.Bytes()+item.Size() > q.cfg.LimitBytes
	}
	return uint32(q.store.Len())+1 > q.cfg.Limit
}

// Dequeue removes and returns the next item to forward, dropping or marking
// according to the control state.  It returns false if the Store is empty
// or every popped item was dropped, which is a normal result, not an error.
// At most one item is returned per call, possibly CE-marked; dropped items
// are consumed internally and counted in Stats.
func (q *Queue) Dequeue(now Clock) (Item, bool) {
	qnow := quantize(now)
	item, okToDrop := q.deque(now, qnow)
	if q.dropping {
		if !okToDrop {
			// sojourn fell below target, leave the dropping state
			q.dropping = false
		} else {
			for q.dropping && timeAfterEq(qnow, q.dropNext) {
				q.count++
				q.recInvSqrt = NewtonStep(q.recInvSqrt, q.count)
				if q.mark(item) {
					q.stats.targetMarks.Add(1)
					// marking keeps the item, so return it, but
					// advance the schedule first
					q.dropNext = ControlLaw(q.dropNext, q.interval,
						q.recInvSqrt)
					break
				}
				q.stats.targetDrops.Add(1)
				if item, okToDrop = q.deque(now, qnow); item == nil {
					q.dropping = false
					break
				}
				if !okToDrop {
					q.dropping = false
				} else {
					q.dropNext = ControlLaw(q.dropNext, q.interval,
						q.recInvSqrt)
				}
			}
		}
	} else if okToDrop {
		// enter the dropping state, and drop or mark the first item
		if q.mark(item) {
			q.stats.targetMarks.Add(1)
		} else {
			q.stats.targetDrops.Add(1)
			item, _ = q.deque(now, qnow)
		}
		q.dropping = true
		// If the sojourn went above target close to when it last went
		// below, resume near the prior drop intensity instead of
		// restarting from a single sample.
		if timeBefore(qnow, q.dropNext+q.interval) && q.count > 2 {
			q.count -= 2
		} else {
			q.count = 1
		}
		q.lastCount = q.count
		q.recInvSqrt = NewtonStep(q.recInvSqrt, q.count)
		q.dropNext = ControlLaw(qnow, q.interval, q.recInvSqrt)
	}
	if item == nil {
		return nil, false
	}
	// the low-latency side channel marks independently of the
	// controller, and never touches its state
	if q.cfg.UseL4S && item.ECN() == ECT1 &&
		timeAfter(quantize(now-item.Timestamp()), q.ceThreshold) {
		item.SetECN(CE)
		q.stats.ceMarks.Add(1)
	}
	return item, true
}

// deque pops the item at the front of the Store and evaluates its sojourn
// time, returning whether the delay has been persistently above target (ok
// to drop).  The backlog is measured after the pop.
func (q *Queue) deque(now Clock, qnow uint32) (Item, bool) {
	item, ok := q.store.Pop()
	if !ok {
		q.firstAboveTime = 0
		return nil, false
	}
	q.sojourn = now - item.Timestamp()
	sojourn := quantize(q.sojourn)
	if timeBefore(sojourn, q.target) || q.store.Bytes() < q.cfg.MinBytes {
		// Below target, or the backlog is too small to bother: short
		// bursts with long idle periods are absolved.
		q.firstAboveTime = 0
		return item, false
	}
	var okToDrop bool
	if q.firstAboveTime == 0 {
		// just went above target; stay above for a full interval
		// before acting on it
		q.firstAboveTime = qnow + q.interval
	} else if timeAfterEq(qnow, q.firstAboveTime) {
		okToDrop = true
	}
	return item, okToDrop
}

// mark rewrites the item's codepoint to CE and returns true, if ECN marking
// is enabled and the item's transport is ECN-capable.  Otherwise it returns
// false and the caller drops the item.
func (q *Queue) mark(item Item) bool {
	if !q.cfg.UseECN || !item.ECN().Capable() {
		return false
	}
	item.SetECN(CE)
	return true
}

// Config returns the Config, with defaults applied.
func (q *Queue) Config() Config {
	return q.cfg
}

// Target returns the target delay.
func (q *Queue) Target() Clock {
	return q.cfg.Target
}

// Interval returns the interval.
func (q *Queue) Interval() Clock {
	return q.cfg.Interval
}

// Dropping returns true while the controller is in the dropping state.
func (q *Queue) Dropping() bool {
	return q.dropping
}

// Count returns the number of drops and marks since the controller entered
// the dropping condition.
func (q *Queue) Count() uint32 {
	return q.count
}

// LastCount returns the count retained from the prior dropping episode.
func (q *Queue) LastCount() uint32 {
	return q.lastCount
}

// DropNext returns the quantized time of the next scheduled drop or mark.
func (q *Queue) DropNext() uint32 {
	return q.dropNext
}

// Sojourn returns the sojourn time of the most recently evaluated item.
func (q *Queue) Sojourn() Clock {
	return q.sojourn
}

// Len returns the Store occupancy in items.
func (q *Queue) Len() int {
	return q.store.Len()
}

// Backlog returns the Store occupancy in bytes.
func (q *Queue) Backlog() Bytes {
	return q.store.Bytes()
}
