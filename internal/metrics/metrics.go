// Package metrics exposes session and routing counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lachlan2k/labour-console/internal/session"
)

const namespace = "labour_console"

type Metrics struct {
	registry *prometheus.Registry

	logins         *prometheus.CounterVec
	logouts        *prometheus.CounterVec
	watchdogChecks prometheus.Counter
	watchdogForced prometheus.Counter
	authenticated  prometheus.Gauge
	routeDecisions *prometheus.CounterVec
}

// New registers every collector on a fresh registry, so several instances can coexist in tests.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Successful logins by role.",
		}, []string{"role"}),
		logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Logouts by reason.",
		}, []string{"reason"}),
		watchdogChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_checks_total",
			Help:      "Credential expiry checks run by the watchdog.",
		}),
		watchdogForced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_forced_logouts_total",
			Help:      "Watchdog checks that ended the session.",
		}),
		authenticated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_authenticated",
			Help:      "1 while a session is logged in.",
		}),
		routeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_decisions_total",
			Help:      "Route authorizer decisions by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logins,
		m.logouts,
		m.watchdogChecks,
		m.watchdogForced,
		m.authenticated,
		m.routeDecisions,
	)
	return m
}

func (m *Metrics) LoggedIn(role session.Role) {
	m.logins.WithLabelValues(role.String()).Inc()
	m.authenticated.Set(1)
}

func (m *Metrics) LoggedOut(reason session.LogoutReason) {
	label := string(reason)
	if label == "" {
		label = "user"
	}
	m.logouts.WithLabelValues(label).Inc()
	m.authenticated.Set(0)
}

func (m *Metrics) WatchdogChecked(expired bool) {
	m.watchdogChecks.Inc()
	if expired {
		m.watchdogForced.Inc()
	}
}

// SessionRestored records a session picked up from storage at startup.
func (m *Metrics) SessionRestored(authenticated bool) {
	if authenticated {
		m.authenticated.Set(1)
	} else {
		m.authenticated.Set(0)
	}
}

func (m *Metrics) RouteDecided(outcome string) {
	m.routeDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
