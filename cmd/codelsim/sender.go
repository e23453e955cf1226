// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import "github.com/heistp/codel"

// Sender generates open-loop, paced packet flows.  There is no congestion
// control: each flow sends fixed-size packets back to back at its configured
// rate, between its start and stop times.
type Sender struct {
	flows    []*sflow
	duration Clock
}

// sflow is the Sender's state for one flow.
type sflow struct {
	id    FlowID
	rate  Bitrate
	size  codel.Bytes
	ecn   codel.ECN
	start Clock
	stop  Clock // zero means run to the end
	seq   int
}

// NewSender returns a new Sender for the configured flows.
func NewSender(cfg *SimConfig) *Sender {
	s := &Sender{duration: cfg.Duration}
	for i, f := range cfg.Flows {
		e, _ := f.Codepoint()
		s.flows = append(s.flows, &sflow{
			id:    FlowID(i),
			rate:  f.Rate,
			size:  f.Size,
			ecn:   e,
			start: f.At,
			stop:  f.Stop,
		})
	}
	return s
}

// Start implements Starter, arming one pacing timer per flow.
func (s *Sender) Start(node Node) error {
	for _, f := range s.flows {
		node.Timer(f.start, f.id)
	}
	return nil
}

// Handle implements Handler.  The sender is open loop, so nothing ever
// comes back to it.
func (s *Sender) Handle(pkt *Packet, node Node) error {
	return nil
}

// Ding implements Dinger, sending the flow's next packet and re-arming its
// pacing timer.  The timer keeps ticking after the flow's stop time, so the
// virtual clock always reaches the configured duration.
func (s *Sender) Ding(data any, node Node) error {
	if node.Now() >= s.duration {
		node.Shutdown()
		return nil
	}
	f := s.flows[data.(FlowID)]
	if f.stop == 0 || node.Now() < f.stop {
		node.Send(&Packet{
			Flow: f.id,
			Seq:  f.seq,
			Len:  f.size,
			Sent: node.Now(),
			ecn:  f.ecn,
		})
		f.seq++
	}
	node.Timer(TransferTime(f.rate, f.size), f.id)
	return nil
}
