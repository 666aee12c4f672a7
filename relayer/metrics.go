// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package relayer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successfulRelayCount *prometheus.CounterVec
	failedRelayCount     *prometheus.CounterVec
	relayLatencyMS       *prometheus.GaugeVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		successfulRelayCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_relay_count",
				Help: "Number of interchain transfers delivered to their receiver",
			},
			[]string{"source_chain", "destination_chain"},
		),
		failedRelayCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failed_relay_count",
				Help: "Number of interchain transfers that failed to deliver",
			},
			[]string{"source_chain", "destination_chain", "failure_reason"},
		),
		relayLatencyMS: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relay_latency_ms",
				Help: "Latency of the last delivery in milliseconds",
			},
			[]string{"source_chain", "destination_chain"},
		),
	}

	registerer.MustRegister(m.successfulRelayCount)
	registerer.MustRegister(m.failedRelayCount)
	registerer.MustRegister(m.relayLatencyMS)

	return &m
}
