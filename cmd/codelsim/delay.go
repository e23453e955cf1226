// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

// Delay adds fixed per-flow path delay.  Packets share one timer, kept in a
// queue instead of scheduling a timer per packet.
type Delay struct {
	delay []Clock
	at    []pktAt
}

// pktAt holds a Packet and the time to forward it.
type pktAt struct {
	pkt *Packet
	at  Clock
}

// NewDelay returns a new Delay with the given per-flow delays, indexed by
// FlowID.
func NewDelay(delay []Clock) *Delay {
	return &Delay{
		delay,
		make([]pktAt, 0),
	}
}

// Handle implements Handler.
func (d *Delay) Handle(pkt *Packet, node Node) error {
	d.at = append(d.at, pktAt{pkt, node.Now() + d.delay[pkt.Flow]})
	if len(d.at) == 1 {
		node.Timer(d.delay[pkt.Flow], nil)
	}
	return nil
}

// Ding implements Dinger, forwarding the head packet and re-arming for the
// next one, if any.
func (d *Delay) Ding(data any, node Node) error {
	var p pktAt
	p, d.at = d.at[0], d.at[1:]
	node.Send(p.pkt)
	if len(d.at) > 0 {
		node.Timer(d.at[0].at-node.Now(), nil)
	}
	return nil
}
