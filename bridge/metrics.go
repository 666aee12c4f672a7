// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/transceiver"
)

type Metrics struct {
	successfulCallCount *prometheus.CounterVec
	failedCallCount     *prometheus.CounterVec
	dispatchedMsgCount  *prometheus.CounterVec
	transferredNftCount *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := Metrics{
		successfulCallCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_call_count",
				Help: "Number of transceiver calls that committed",
			},
			[]string{"action"},
		),
		failedCallCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failed_call_count",
				Help: "Number of transceiver calls that were rejected",
			},
			[]string{"action", "failure_reason"},
		),
		dispatchedMsgCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatched_msg_count",
				Help: "Number of messages dispatched by committed calls",
			},
			[]string{"action"},
		),
		transferredNftCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferred_nft_count",
				Help: "Number of tokens locked, burned, minted or released",
			},
			[]string{"action", "route"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.successfulCallCount,
		m.failedCallCount,
		m.dispatchedMsgCount,
		m.transferredNftCount,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func (m *Metrics) succeeded(action string, msgs int) {
	m.successfulCallCount.WithLabelValues(action).Inc()
	m.dispatchedMsgCount.WithLabelValues(action).Add(float64(msgs))
}

func (m *Metrics) failed(action string, err error) {
	m.failedCallCount.WithLabelValues(action, transceiver.KindOf(err).String()).Inc()
}

func (m *Metrics) transferred(action string, route string, tokens int) {
	m.transferredNftCount.WithLabelValues(action, route).Add(float64(tokens))
}
