// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package codel

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// stats are the internal counters.  They use atomics only so a Collector
// may scrape them from another goroutine; the enqueue and dequeue paths
// remain single-writer.
type stats struct {
	targetDrops    atomic.Uint64
	targetMarks    atomic.Uint64
	ceMarks        atomic.Uint64
	overlimitDrops atomic.Uint64
}

// Stats is a snapshot of the drop and mark counters, by reason.
type Stats struct {
	// TargetDrops counts "Target exceeded drop".
	TargetDrops uint64

	// TargetMarks counts "Target exceeded mark".
	TargetMarks uint64

	// CEMarks counts "CE threshold exceeded mark".
	CEMarks uint64

	// OverlimitDrops counts "Overlimit drop".
	OverlimitDrops uint64
}

// Stats returns a snapshot of the counters.
func (q *Queue) Stats() Stats {
	return Stats{
		q.stats.targetDrops.Load(),
		q.stats.targetMarks.Load(),
		q.stats.ceMarks.Load(),
		q.stats.overlimitDrops.Load(),
	}
}

// Collector exposes a Queue's counters and occupancy to prometheus.  The
// occupancy and sojourn gauges read live queue state and are approximate
// when scraped while the queue is being driven.
type Collector struct {
	queue          *Queue
	targetDrops    *prometheus.Desc
	targetMarks    *prometheus.Desc
	ceMarks        *prometheus.Desc
	overlimitDrops *prometheus.Desc
	backlogPackets *prometheus.Desc
	backlogBytes   *prometheus.Desc
	sojournSeconds *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector for the given Queue.  The name labels
// every metric, to tell queues apart.
func NewCollector(queue *Queue, name string) *Collector {
	l := prometheus.Labels{"queue": name}
	fq := func(s string) string {
		return prometheus.BuildFQName("codel", "", s)
	}
	return &Collector{
		queue: queue,
		targetDrops: prometheus.NewDesc(
			fq("target_exceeded_drops_total"),
			"Packets dropped with sojourn time persistently above target.",
			nil, l),
		targetMarks: prometheus.NewDesc(
			fq("target_exceeded_marks_total"),
			"Packets CE-marked with sojourn time persistently above target.",
			nil, l),
		ceMarks: prometheus.NewDesc(
			fq("ce_threshold_marks_total"),
			"ECT(1) packets CE-marked above the CE threshold.",
			nil, l),
		overlimitDrops: prometheus.NewDesc(
			fq("overlimit_drops_total"),
			"Packets tail-dropped at admission.",
			nil, l),
		backlogPackets: prometheus.NewDesc(
			fq("backlog_packets"),
			"Queue occupancy in packets.",
			nil, l),
		backlogBytes: prometheus.NewDesc(
			fq("backlog_bytes"),
			"Queue occupancy in bytes.",
			nil, l),
		sojournSeconds: prometheus.NewDesc(
			fq("sojourn_seconds"),
			"Sojourn time of the most recently dequeued packet.",
			nil, l),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.targetDrops
	ch <- c.targetMarks
	ch <- c.ceMarks
	ch <- c.overlimitDrops
	ch <- c.backlogPackets
	ch <- c.backlogBytes
	ch <- c.sojournSeconds
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.queue.Stats()
	ch <- prometheus.MustNewConstMetric(c.targetDrops,
		prometheus.CounterValue, float64(s.TargetDrops))
	ch <- prometheus.MustNewConstMetric(c.targetMarks,
		prometheus.CounterValue, float64(s.TargetMarks))
	ch <- prometheus.MustNewConstMetric(c.ceMarks,
		prometheus.CounterValue, float64(s.CEMarks))
	ch <- prometheus.MustNewConstMetric(c.overlimitDrops,
		prometheus.CounterValue, float64(s.OverlimitDrops))
	ch <- prometheus.MustNewConstMetric(c.backlogPackets,
		prometheus.GaugeValue, float64(c.queue.Len()))
	ch <- prometheus.MustNewConstMetric(c.backlogBytes,
		prometheus.GaugeValue, float64(c.queue.Backlog()))
	ch <- prometheus.MustNewConstMetric(c.sojournSeconds,
		prometheus.GaugeValue, float64(c.queue.Sojourn())/1e9)
}
