// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"strconv"
	"time"

	"github.com/heistp/codel"
)

// GoodputWindow is the time over which goodput plot samples are averaged.
const GoodputWindow = Clock(100 * time.Millisecond)

// Receiver is the traffic sink.  It counts received bytes and congestion
// signals per flow, and logs a summary at the end of the run.
type Receiver struct {
	plots      PlotConfig
	count      []codel.Bytes
	countStart []Clock
	total      []codel.Bytes
	packets    []int
	ce         []int
	goodput    Xplot
}

// NewReceiver returns a new Receiver for the configured flows.
func NewReceiver(cfg *SimConfig) *Receiver {
	n := len(cfg.Flows)
	return &Receiver{
		cfg.Plots,
		make([]codel.Bytes, n),
		make([]Clock, n),
		make([]codel.Bytes, n),
		make([]int, n),
		make([]int, n),
		Xplot{
			Title: "Goodput",
			X: Axis{
				Label: "Time (S)",
			},
			Y: Axis{
				Label: "Goodput (Mbps)",
			},
			NonzeroAxis: true,
		},
	}
}

// Start implements Starter.
func (r *Receiver) Start(node Node) (err error) {
	if r.plots.Goodput {
		if err = r.goodput.Open("goodput.xpl"); err != nil {
			return
		}
	}
	return nil
}

// Handle implements Handler, accounting for the received packet.
func (r *Receiver) Handle(pkt *Packet, node Node) error {
	f := int(pkt.Flow)
	r.packets[f]++
	r.total[f] += pkt.Len
	if pkt.ECN() == codel.CE {
		r.ce[f]++
	}
	if r.plots.Goodput {
		r.count[f] += pkt.Len
		if e := node.Now() - r.countStart[f]; e > GoodputWindow {
			g := CalcBitrate(r.count[f], time.Duration(e))
			r.goodput.Dot(node.Now(),
				strconv.FormatFloat(g.Mbps(), 'f', -1, 64), int(pkt.Flow))
			r.count[f] = 0
			r.countStart[f] = node.Now()
		}
	}
	return nil
}

// Packets returns the packets received for the flow.
func (r *Receiver) Packets(flow FlowID) int {
	return r.packets[flow]
}

// CE returns the CE-marked packets received for the flow.
func (r *Receiver) CE(flow FlowID) int {
	return r.ce[flow]
}

// Stop implements Stopper, closing the goodput plot and logging per-flow
// totals.
func (r *Receiver) Stop(node Node) error {
	if r.plots.Goodput {
		r.goodput.Close()
	}
	for f := range r.total {
		b := CalcBitrate(r.total[f], time.Duration(node.Now()))
		node.Logf("flow %d: %d packets, %d CE, %.2f Mbps",
			f, r.packets[f], r.ce[f], b.Mbps())
	}
	return nil
}
