// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"strconv"
	"time"

	"github.com/heistp/codel"
)

// mark is a congestion signal, for plotting.
type mark int

const (
	markNone mark = iota
	markCE
	markDrop
)

// SojournDecimation limits the point density of the sojourn plot.
const SojournDecimation = Clock(time.Millisecond)

// Iface is the bottleneck link: a CoDel queue discipline ahead of a rate
// limiter.  The link rate may change during the run, per the schedule.
type Iface struct {
	rate     Bitrate
	schedule []RateAt
	store    *codel.FIFO
	queue    *codel.Queue
	busy     bool
	prior    codel.Stats
	plots    PlotConfig
	sojourn  Xplot
	qlen     Xplot
	marks    Xplot
	noCE     int
	noDrop   int
}

// NewIface returns a new Iface, or an error if the codel Config doesn't
// validate.
func NewIface(link LinkConfig, plots PlotConfig) (*Iface, error) {
	store := codel.NewFIFO()
	queue, err := codel.New(link.CoDel, store)
	if err != nil {
		return nil, err
	}
	return &Iface{
		rate:     link.Rate,
		schedule: link.Schedule,
		store:    store,
		queue:    queue,
		plots:    plots,
		sojourn: Xplot{
			Title: "CoDel Queue Sojourn Time",
			X: Axis{
				Label: "Time (S)",
			},
			Y: Axis{
				Label: "Sojourn time (ms)",
			},
			Decimation: SojournDecimation,
		},
		qlen: Xplot{
			Title: "CoDel Queue Length",
			X: Axis{
				Label: "Time (S)",
			},
			Y: Axis{
				Label: "Queue Length (packets)",
			},
		},
		marks: Xplot{
			Title: "Congestion Signals - CE:yellow drop:red",
			X: Axis{
				Label: "Time (S)",
			},
			Y: Axis{
				Label: "Proportion of signaled packets",
			},
		},
	}, nil
}

// Queue returns the queue discipline, for stats and metrics.
func (i *Iface) Queue() *codel.Queue {
	return i.queue
}

// Start implements Starter, opening the plots and arming the rate schedule.
func (i *Iface) Start(node Node) (err error) {
	if i.plots.Sojourn {
		if err = i.sojourn.Open("sojourn.xpl"); err != nil {
			return
		}
	}
	if i.plots.QueueLength {
		if err = i.qlen.Open("queue-length.xpl"); err != nil {
			return
		}
	}
	if i.plots.Marks {
		if err = i.marks.Open("marks.xpl"); err != nil {
			return
		}
	}
	for _, r := range i.schedule {
		node.Timer(r.At, r.Rate)
	}
	return nil
}

// Handle implements Handler, admitting the packet to the queue discipline
// and starting a transmission if the link is idle.
func (i *Iface) Handle(pkt *Packet, node Node) error {
	i.queue.Enqueue(pkt, node.Now())
	i.signals(node.Now(), false)
	i.plotLength(node.Now())
	if !i.busy {
		i.transmit(node)
	}
	return nil
}

// Ding implements Dinger, completing one transmission, or changing the link
// rate if the data carries a Bitrate from the schedule.
func (i *Iface) Ding(data any, node Node) error {
	if r, ok := data.(Bitrate); ok {
		node.Logf("link rate %s", r)
		i.rate = r
		return nil
	}
	i.busy = false
	var forwarded bool
	if item, ok := i.queue.Dequeue(node.Now()); ok {
		node.Send(item.(*Packet))
		forwarded = true
		i.plotSojourn(node.Now())
	}
	i.signals(node.Now(), forwarded)
	i.plotLength(node.Now())
	i.transmit(node)
	return nil
}

// transmit arms the timer for the next transmission, if a packet is queued.
func (i *Iface) transmit(node Node) {
	p, ok := i.store.Peek()
	if !ok {
		return
	}
	node.Timer(TransferTime(i.rate, p.Size()), nil)
	i.busy = true
}

// Stop implements Stopper, closing the plots and logging a stats summary.
func (i *Iface) Stop(node Node) error {
	if i.plots.Sojourn {
		i.sojourn.Close()
	}
	if i.plots.QueueLength {
		i.qlen.Close()
	}
	if i.plots.Marks {
		i.marks.Close()
	}
	s := i.queue.Stats()
	node.Logf("codel: %d drops (%d overlimit), %d marks (%d ce threshold)",
		s.TargetDrops, s.OverlimitDrops, s.TargetMarks, s.CEMarks)
	return nil
}

// signals plots the congestion signals accumulated since the last call,
// from the queue's counter deltas.  forwarded means a packet left the queue
// this event, counted as unsignaled if there were no new signals.
func (i *Iface) signals(now Clock, forwarded bool) {
	s := i.queue.Stats()
	ce := s.TargetMarks + s.CEMarks - i.prior.TargetMarks - i.prior.CEMarks
	drop := s.TargetDrops + s.OverlimitDrops -
		i.prior.TargetDrops - i.prior.OverlimitDrops
	for n := ce; n > 0; n-- {
		i.plotMark(markCE, now)
	}
	for n := drop; n > 0; n-- {
		i.plotMark(markDrop, now)
	}
	if forwarded && ce == 0 && drop == 0 {
		i.plotMark(markNone, now)
	}
	i.prior = s
}

// plotMark plots one congestion signal, as the proportion of packets
// signaled since the prior signal of the same kind.
func (i *Iface) plotMark(m mark, now Clock) {
	if !i.plots.Marks {
		return
	}
	switch m {
	case markNone:
		i.noCE++
		i.noDrop++
	case markCE:
		p := 1.0 / float64(i.noCE+1)
		i.marks.PlotX(now, strconv.FormatFloat(p, 'f', -1, 64), colorYellow)
		i.noCE = 0
		i.noDrop++
	case markDrop:
		p := 1.0 / float64(i.noDrop+1)
		i.marks.PlotX(now, strconv.FormatFloat(p, 'f', -1, 64), colorRed)
		i.noDrop = 0
		i.noCE++
	}
}

// plotSojourn plots the sojourn time of the packet just dequeued, in red if
// the queue is now empty.
func (i *Iface) plotSojourn(now Clock) {
	if !i.plots.Sojourn {
		return
	}
	c := colorWhite
	if i.store.Len() == 0 {
		c = colorRed
	}
	i.sojourn.Dot(now, i.queue.Sojourn().StringMS(), c)
}

// plotLength plots the queue length, in red if the queue is empty.
func (i *Iface) plotLength(now Clock) {
	if !i.plots.QueueLength {
		return
	}
	c := colorWhite
	if i.store.Len() == 0 {
		c = colorRed
	}
	i.qlen.Dot(now, strconv.Itoa(i.store.Len()), c)
}
