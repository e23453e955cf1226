// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"fmt"
	"sort"

	"github.com/heistp/codel"
)

// Clock is the virtual simulation time.
type Clock = codel.Clock

// nodeID is the index of a node in the order added to the Sim.
type nodeID int

// Sim is a discrete time network simulator.  Each Handler runs in a node
// goroutine, scheduled in lock step so that virtual time is deterministic.
// Nodes are connected in a ring, in the order given to NewSim.
type Sim struct {
	handler []Handler
	now     Clock
	in      []chan input
	out     []chan output
	timers  []timer
	state   []nodeState
	waiting int
	done    bool
}

// nodeState is the status of a node.
type nodeState int

const (
	running nodeState = iota
	waiting
)

// NewSim returns a new Sim running the given Handlers.
func NewSim(handler []Handler) *Sim {
	s := &Sim{
		handler: handler,
		state:   make([]nodeState, len(handler)),
	}
	for range handler {
		s.in = append(s.in, make(chan input))
		s.out = append(s.out, make(chan output))
	}
	return s
}

// Run runs the simulation until a node shuts down or fails.
func (s *Sim) Run() (err error) {
	for i := range s.handler {
		n := nodeID(i)
		go newNode(s.handler[n], s.in[n], s.out[n], n).run()
	}

	// Handle node output round-robin style, and advance the virtual time
	// from the timer queue when every node waits.  Output that can't be
	// handled yet (a Packet for a node that's still running) is held for
	// the next pass.
	n := nodeID(0)
	held := make([]output, len(s.handler))
	for {
		if s.state[n] == running {
			var o output
			if o = held[n]; o != nil {
				held[n] = nil
			} else {
				o = <-s.out[n]
			}
			var ok bool
			if ok, err = o.handleSim(s, n); err != nil {
				break
			}
			if !ok {
				held[n] = o
			}
		}

		if s.done {
			break
		}

		if s.waiting == len(s.handler) {
			if len(s.timers) == 0 {
				return fmt.Errorf(
					"deadlock: all nodes waiting with no timers running")
			}
			var t timer
			t, s.timers = s.timers[0], s.timers[1:]
			s.now = t.at
			s.in[t.from] <- input{ding{t.data}, s.now}
			s.setState(t.from, running)
			n = t.from
		} else {
			n = s.next(n)
		}
	}

	// drain the nodes so they exit
	for i := range s.handler {
		close(s.in[i])
		for range s.out[i] {
		}
	}

	return
}

// setState sets the state of node n, maintaining the waiting count.
func (s *Sim) setState(n nodeID, state nodeState) {
	if s.state[n] == state {
		return
	}
	if state == waiting {
		s.waiting++
	} else {
		s.waiting--
	}
	s.state[n] = state
}

// next returns the node after n in the ring.
func (s *Sim) next(n nodeID) nodeID {
	if n >= nodeID(len(s.handler)-1) {
		return 0
	}
	return n + 1
}

// An output is a message from a node to the Sim.
type output interface {
	// handleSim handles the output, returning false if it must be
	// retried after other nodes have had a chance to run.
	handleSim(s *Sim, from nodeID) (ok bool, err error)
}

// A timer is sent by a node to request a ding after the given time.
type timer struct {
	from nodeID
	at   Clock
	data any
}

// handleSim implements output, inserting the timer in at order.
func (t timer) handleSim(s *Sim, from nodeID) (bool, error) {
	i := sort.Search(len(s.timers), func(i int) bool {
		return s.timers[i].at > t.at
	})
	if i == len(s.timers) {
		s.timers = append(s.timers, t)
		return true, nil
	}
	s.timers = append(s.timers[:i+1], s.timers[i:]...)
	s.timers[i] = t
	return true, nil
}

// wait is sent by a node when it will wait for further input.
type wait struct{}

// handleSim implements output.
func (wait) handleSim(s *Sim, from nodeID) (bool, error) {
	s.setState(from, waiting)
	return true, nil
}

// done is sent when a node returns, ending the simulation.
type done struct {
	err error
}

// handleSim implements output.
func (d done) handleSim(s *Sim, from nodeID) (bool, error) {
	s.done = true
	return true, d.err
}

// An input is a message from the Sim to a node, carrying the virtual time.
type input struct {
	ev  event
	now Clock
}

// An event is handled by a node in its own goroutine.
type event interface {
	handleNode(n *node) error
}

// ding is delivered to a node after one of its timers elapses.
type ding struct {
	data any
}

// handleNode implements event.
func (d ding) handleNode(n *node) error {
	r, ok := n.handler.(Dinger)
	if !ok {
		return fmt.Errorf("node %d set a Timer so must implement Dinger",
			n.id)
	}
	return r.Ding(d.data, n)
}
