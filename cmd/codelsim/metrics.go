// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/heistp/codel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsServer serves the queue's prometheus metrics over HTTP during the
// run.  Since the simulation runs in virtual time, the scraped values track
// the run's progress, not wall-clock behavior.
type metricsServer struct {
	srv *http.Server
}

// newMetricsServer starts a metrics server for the given Queue.
func newMetricsServer(cfg MetricsConfig, queue *codel.Queue) *metricsServer {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(codel.NewCollector(queue, "sim"))
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	m := &metricsServer{
		&http.Server{
			Addr:    cfg.Listen,
			Handler: mux,
		},
	}
	go func() {
		err := m.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server: %s", err)
		}
	}()
	return m
}

// close shuts the server down.
func (m *metricsServer) close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.srv.Shutdown(ctx)
}
