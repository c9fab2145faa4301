/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package metrics exposes Prometheus collectors for the game coordinator.
//
// All methods are safe to call on a nil *Metrics, so callers that run
// without --metrics do not need to guard every call site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tictactoe"

type Metrics struct {
	sessionsActive    prometheus.Gauge
	sessionsCreated   prometheus.Counter
	sessionsEnded     *prometheus.CounterVec
	movesTotal        prometheus.Counter
	rejectedTotal     *prometheus.CounterVec
	connectionsActive prometheus.Gauge
	recordFailures    prometheus.Counter
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of sessions currently held by the registry",
		}),
		sessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions created",
		}),
		sessionsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Total number of sessions retired, by reason",
		}, []string{"reason"}),
		movesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Total number of accepted moves",
		}),
		rejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Total number of rejected client requests, by error code",
		}, []string{"code"}),
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open websocket connections",
		}),
		recordFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_failures_total",
			Help:      "Total number of completed games that could not be persisted",
		}),
	}
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
	m.sessionsActive.Inc()
}

// SessionEnded records a retirement; reason is "win", "draw", "abandoned" or "idle".
func (m *Metrics) SessionEnded(reason string) {
	if m == nil {
		return
	}
	m.sessionsEnded.WithLabelValues(reason).Inc()
	m.sessionsActive.Dec()
}

func (m *Metrics) MoveAccepted() {
	if m == nil {
		return
	}
	m.movesTotal.Inc()
}

func (m *Metrics) Rejected(code string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connectionsActive.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

func (m *Metrics) RecordFailed() {
	if m == nil {
		return
	}
	m.recordFailures.Inc()
}
