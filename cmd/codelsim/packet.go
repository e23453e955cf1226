// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import "github.com/heistp/codel"

// FlowID identifies one flow.
type FlowID int

// Packet represents a network packet traveling through the ring.  It
// implements codel.Item, so the Iface can queue it directly.
type Packet struct {
	Flow FlowID
	Seq  int
	Len  codel.Bytes
	Sent Clock

	ecn     codel.ECN
	enqueue Clock
}

var _ codel.Item = (*Packet)(nil)

// Size implements codel.Item.
func (p *Packet) Size() codel.Bytes {
	return p.Len
}

// Timestamp implements codel.Item.
func (p *Packet) Timestamp() Clock {
	return p.enqueue
}

// SetTimestamp implements codel.Item.
func (p *Packet) SetTimestamp(t Clock) {
	p.enqueue = t
}

// ECN implements codel.Item.
func (p *Packet) ECN() codel.ECN {
	return p.ecn
}

// SetECN implements codel.Item.
func (p *Packet) SetECN(e codel.ECN) {
	p.ecn = e
}

// handleSim implements output, delivering the Packet to the next node in
// the ring once it's ready for input.
func (p *Packet) handleSim(s *Sim, from nodeID) (bool, error) {
	x := s.next(from)
	if s.state[x] == running {
		return false, nil
	}
	s.in[x] <- input{p, s.now}
	s.setState(x, running)
	return true, nil
}

// handleNode implements event.
func (p *Packet) handleNode(n *node) error {
	return n.handler.Handle(p, n)
}
