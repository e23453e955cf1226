// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package codel_test

import (
	"testing"
	"time"

	"github.com/heistp/codel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ms = codel.Clock(time.Millisecond)

// item is a minimal codel.Item for tests.
type item struct {
	size codel.Bytes
	ts   codel.Clock
	ecn  codel.ECN
}

func newItem(size codel.Bytes, ecn codel.ECN) *item {
	return &item{size: size, ecn: ecn}
}

func (i *item) Size() codel.Bytes          { return i.size }
func (i *item) Timestamp() codel.Clock     { return i.ts }
func (i *item) SetTimestamp(t codel.Clock) { i.ts = t }
func (i *item) ECN() codel.ECN             { return i.ecn }
func (i *item) SetECN(e codel.ECN)         { i.ecn = e }

func newQueue(t *testing.T, cfg codel.Config) *codel.Queue {
	q, err := codel.New(cfg, codel.NewFIFO())
	require.NoError(t, err)
	return q
}

func TestDequeueEmpty(t *testing.T) {
	q := newQueue(t, codel.Config{})
	i, ok := q.Dequeue(0)
	assert.False(t, ok)
	assert.Nil(t, i)
	assert.False(t, q.Dropping())
}

func TestEnqueueOverlimit(t *testing.T) {
	q := newQueue(t, codel.Config{})
	for i := 0; i < 2000; i++ {
		assert.Equal(t, i < 1000,
			q.Enqueue(newItem(1500, codel.NotECT), 0), "i %d", i)
	}
	assert.Equal(t, 1000, q.Len())
	assert.Equal(t, uint64(1000), q.Stats().OverlimitDrops)
}

func TestEnqueueOverlimitBytes(t *testing.T) {
	q := newQueue(t, codel.Config{LimitBytes: 3000})
	assert.True(t, q.Enqueue(newItem(1500, codel.NotECT), 0))
	assert.True(t, q.Enqueue(newItem(1500, codel.NotECT), 0))
	assert.False(t, q.Enqueue(newItem(1, codel.NotECT), 0))
	assert.Equal(t, codel.Bytes(3000), q.Backlog())
	assert.Equal(t, uint64(1), q.Stats().OverlimitDrops)
}

// TestBelowTarget runs a standing queue with a sojourn time below target,
// which must never trigger the controller, regardless of duration.
func TestBelowTarget(t *testing.T) {
	q := newQueue(t, codel.Config{})
	var now codel.Clock
	for i := 0; i < 3; i++ {
		require.True(t, q.Enqueue(newItem(1500, codel.NotECT), now))
	}
	for i := 0; i < 500; i++ {
		now += ms
		require.True(t, q.Enqueue(newItem(1500, codel.NotECT), now))
		_, ok := q.Dequeue(now)
		require.True(t, ok)
		assert.False(t, q.Dropping())
	}
	s := q.Stats()
	assert.Zero(t, s.TargetDrops)
	assert.Zero(t, s.TargetMarks)
}

// TestMinBytesAbsolution runs a single small packet at a time with a sojourn
// time far above target.  With no backlog to speak of, the controller must
// leave it alone.
func TestMinBytesAbsolution(t *testing.T) {
	q := newQueue(t, codel.Config{})
	var now codel.Clock
	for i := 0; i < 300; i++ {
		require.True(t, q.Enqueue(newItem(100, codel.NotECT), now))
		now += 20 * ms
		it, ok := q.Dequeue(now)
		require.True(t, ok)
		assert.NotNil(t, it)
		assert.False(t, q.Dropping())
	}
	assert.Zero(t, q.Stats().TargetDrops)
}

// fillStanding enqueues n packets stamped so that dequeues on a 1ms grid
// starting at time zero each see a constant 20ms sojourn time.
func fillStanding(t *testing.T, q *codel.Queue, n int, ecn codel.ECN) {
	for i := 0; i < n; i++ {
		require.True(t, q.Enqueue(newItem(1500, ecn),
			codel.Clock(i)*ms-20*ms))
	}
}

// TestDropResponse verifies the dropping state entry and schedule: the first
// drop comes one interval after the sojourn time first exceeds target, the
// second a further interval later, and the spacing then tightens as
// interval/sqrt(count).
func TestDropResponse(t *testing.T) {
	q := newQueue(t, codel.Config{})
	fillStanding(t, q, 700, codel.NotECT)
	var drops []int
	prior := uint64(0)
	for i := 0; i < 600; i++ {
		_, ok := q.Dequeue(codel.Clock(i) * ms)
		require.True(t, ok)
		if s := q.Stats(); s.TargetDrops > prior {
			require.Equal(t, prior+1, s.TargetDrops)
			drops = append(drops, i)
			prior = s.TargetDrops
		}
	}
	require.GreaterOrEqual(t, len(drops), 5)
	assert.Equal(t, 100, drops[0])
	assert.Equal(t, 200, drops[1])
	// the early fixed-point estimate oscillates, so compare first and
	// last spacings rather than every consecutive pair
	first := drops[1] - drops[0]
	last := drops[len(drops)-1] - drops[len(drops)-2]
	assert.Less(t, last, first)
	for i := 1; i < len(drops); i++ {
		assert.LessOrEqual(t, drops[i]-drops[i-1], first+1)
	}
	assert.True(t, q.Dropping())
	assert.Greater(t, q.Count(), uint32(1))
	assert.Equal(t, q.Count(), q.LastCount())
}

// TestMarkResponse runs the same overload with ECN enabled and ECT(0)
// traffic.  Packets are CE-marked on the drop schedule instead of dropped,
// and marking consumes no extra packets.
func TestMarkResponse(t *testing.T) {
	q := newQueue(t, codel.Config{UseECN: true})
	fillStanding(t, q, 700, codel.ECT0)
	for i := 0; i <= 200; i++ {
		n := q.Len()
		it, ok := q.Dequeue(codel.Clock(i) * ms)
		require.True(t, ok)
		assert.Equal(t, n-1, q.Len())
		if i == 100 || i == 200 {
			assert.Equal(t, codel.CE, it.ECN(), "i %d", i)
		} else {
			assert.Equal(t, codel.ECT0, it.ECN(), "i %d", i)
		}
	}
	s := q.Stats()
	assert.Equal(t, uint64(2), s.TargetMarks)
	assert.Zero(t, s.TargetDrops)
	assert.True(t, q.Dropping())
}

// TestCEThreshold verifies the low-latency side channel: ECT(1) packets
// above the CE threshold are marked even though the sojourn time never
// reaches target, and the controller stays out of the dropping state.
func TestCEThreshold(t *testing.T) {
	q := newQueue(t, codel.Config{
		CEThreshold: 2 * ms,
		UseECN:      true,
		UseL4S:      true,
	})
	for i := 1; i <= 100; i++ {
		now := codel.Clock(i) * 10 * ms
		require.True(t, q.Enqueue(newItem(1500, codel.ECT1), now-3*ms))
		it, ok := q.Dequeue(now)
		require.True(t, ok)
		assert.Equal(t, codel.CE, it.ECN())
		assert.False(t, q.Dropping())
	}
	s := q.Stats()
	assert.Equal(t, uint64(100), s.CEMarks)
	assert.Zero(t, s.TargetDrops)
	assert.Zero(t, s.TargetMarks)
}

// TestCEThresholdSelective verifies the side channel only marks ECT(1), and
// only above the threshold.
func TestCEThresholdSelective(t *testing.T) {
	q := newQueue(t, codel.Config{
		CEThreshold: 2 * ms,
		UseECN:      true,
		UseL4S:      true,
	})
	now := 100 * ms
	for _, c := range []struct {
		ecn     codel.ECN
		sojourn codel.Clock
		want    codel.ECN
	}{
		{codel.ECT1, 3 * ms, codel.CE},
		{codel.ECT1, 1 * ms, codel.ECT1}, // below threshold
		{codel.ECT0, 3 * ms, codel.ECT0}, // not the L4S identifier
		{codel.NotECT, 3 * ms, codel.NotECT},
	} {
		require.True(t, q.Enqueue(newItem(1500, c.ecn), now-c.sojourn))
		it, ok := q.Dequeue(now)
		require.True(t, ok)
		assert.Equal(t, c.want, it.ECN())
		now += 10 * ms
	}
}

// TestExitDropping drains the overload and verifies the controller leaves
// the dropping state as soon as the sojourn time falls below target.
func TestExitDropping(t *testing.T) {
	q := newQueue(t, codel.Config{})
	fillStanding(t, q, 102, codel.NotECT)
	for i := 0; i <= 100; i++ {
		_, ok := q.Dequeue(codel.Clock(i) * ms)
		require.True(t, ok)
	}
	require.True(t, q.Dropping())
	require.Equal(t, uint64(1), q.Stats().TargetDrops)
	require.Zero(t, q.Len())

	require.True(t, q.Enqueue(newItem(1500, codel.NotECT), 101*ms))
	require.True(t, q.Enqueue(newItem(1500, codel.NotECT), 101*ms))
	_, ok := q.Dequeue(102 * ms)
	require.True(t, ok)
	assert.False(t, q.Dropping())
}

// TestInitialize verifies a drained Queue can be reset to a fresh controller
// state.
func TestInitialize(t *testing.T) {
	q := newQueue(t, codel.Config{})
	fillStanding(t, q, 102, codel.NotECT)
	for i := 0; i <= 100; i++ {
		_, ok := q.Dequeue(codel.Clock(i) * ms)
		require.True(t, ok)
	}
	require.True(t, q.Dropping())
	q.Initialize()
	assert.False(t, q.Dropping())
	assert.Zero(t, q.Count())
	assert.Zero(t, q.LastCount())
	assert.Zero(t, q.DropNext())
}
