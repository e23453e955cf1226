// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

// A Handler processes Packets in a node.
type Handler interface {
	Handle(pkt *Packet, node Node) error
}

// A Starter is called at the start of the simulation.
type Starter interface {
	Start(node Node) error
}

// A Stopper is called at the end of the simulation.
type Stopper interface {
	Stop(node Node) error
}

// A Dinger is called when one of the node's timers elapses.
type Dinger interface {
	Ding(data any, node Node) error
}

// Node is the API a Handler uses to interact with the Sim.
type Node interface {
	// Timer requests a Ding with the given data, after the given delay.
	Timer(delay Clock, data any)

	// Send sends a Packet to the next node in the ring.
	Send(pkt *Packet)

	// Now returns the current virtual time.
	Now() Clock

	// Logf logs a message, prefixed by the time and node ID.
	Logf(format string, a ...any)

	// Shutdown ends the simulation after the current event completes.
	Shutdown()
}

// node runs a Handler in its own goroutine.
type node struct {
	handler  Handler
	in       chan input
	out      chan output
	now      Clock
	id       nodeID
	shutdown bool
}

// newNode returns a new node for the given Handler.
func newNode(handler Handler, in chan input, out chan output,
	id nodeID) *node {
	return &node{
		handler,
		in,
		out,
		0,
		id,
		false,
	}
}

// run processes input until shutdown, an error, or the input channel closes.
func (n *node) run() {
	var err error
	defer func() {
		n.out <- done{err}
		close(n.out)
	}()
	if s, ok := n.handler.(Starter); ok {
		if err = s.Start(n); err != nil {
			return
		}
	}
	n.out <- wait{}
	for i := range n.in {
		n.now = i.now
		if err = i.ev.handleNode(n); err != nil {
			return
		}
		if n.shutdown {
			break
		}
		n.out <- wait{}
	}
	if s, ok := n.handler.(Stopper); ok {
		err = s.Stop(n)
	}
}

// Timer implements Node.
func (n *node) Timer(delay Clock, data any) {
	n.out <- timer{n.id, n.now + delay, data}
}

// Send implements Node.
func (n *node) Send(pkt *Packet) {
	n.out <- pkt
}

// Now implements Node.
func (n *node) Now() Clock {
	return n.now
}

// Logf implements Node.
func (n *node) Logf(format string, a ...any) {
	logf(n.now, n.id, format, a...)
}

// Shutdown implements Node.
func (n *node) Shutdown() {
	n.shutdown = true
}
