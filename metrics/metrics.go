// Package metrics provides Prometheus metrics for session and credential
// lifecycle operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the client.
type Metrics struct {
	enabled bool

	// Login metrics
	loginsTotal *prometheus.CounterVec

	// Refresh-and-retry metrics
	refreshTotal *prometheus.CounterVec
	replaysTotal prometheus.Counter

	// Session metrics
	logoutsTotal        prometheus.Counter
	sessionInvalidTotal prometheus.Counter
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobhunter_logins_total",
		Help: "Total login attempts",
	}, []string{"method", "result"})

	m.refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobhunter_credential_refresh_total",
		Help: "Total access credential refresh attempts",
	}, []string{"result"})

	m.replaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobhunter_request_replays_total",
		Help: "Total requests replayed after a successful refresh",
	})

	m.logoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobhunter_logouts_total",
		Help: "Total logouts",
	})

	m.sessionInvalidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobhunter_session_invalidations_total",
		Help: "Total sessions ended by an unrecoverable refresh failure",
	})

	return m
}

// RecordLogin records a login attempt. method is "password", "google" or
// "onboarding".
func (m *Metrics) RecordLogin(method string, success bool) {
	if !m.enabled {
		return
	}
	m.loginsTotal.WithLabelValues(method, resultLabel(success)).Inc()
}

// RecordRefresh records a credential refresh attempt.
func (m *Metrics) RecordRefresh(success bool) {
	if !m.enabled {
		return
	}
	m.refreshTotal.WithLabelValues(resultLabel(success)).Inc()
}

// RecordReplay records a request replayed after a successful refresh.
func (m *Metrics) RecordReplay() {
	if !m.enabled {
		return
	}
	m.replaysTotal.Inc()
}

// RecordLogout records a logout.
func (m *Metrics) RecordLogout() {
	if !m.enabled {
		return
	}
	m.logoutsTotal.Inc()
}

// RecordSessionInvalidated records a session ended by a terminal refresh
// failure.
func (m *Metrics) RecordSessionInvalidated() {
	if !m.enabled {
		return
	}
	m.sessionInvalidTotal.Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
