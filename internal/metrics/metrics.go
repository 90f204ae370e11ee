// Package metrics exposes Prometheus collectors for HTTP traffic and
// player-facing domain events. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tycoon"

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds every collector, registered on a private registry
type Metrics struct {
	registry *prometheus.Registry

	playersCreated   prometheus.Counter
	authAttempts     *prometheus.CounterVec
	registrations    *prometheus.CounterVec
	scoreSubmissions prometheus.Counter
	saveUploads      prometheus.Counter
	leaderboardReads prometheus.Counter
	requestDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		playersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_created_total",
			Help:      "Anonymous players created.",
		}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Recovery and login attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Username/password upgrades by outcome.",
		}, []string{"outcome"}),
		scoreSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_submissions_total",
			Help:      "Accepted score submissions.",
		}),
		saveUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_uploads_total",
			Help:      "Accepted cloud save uploads.",
		}),
		leaderboardReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_reads_total",
			Help:      "Leaderboard computations.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.playersCreated,
		m.authAttempts,
		m.registrations,
		m.scoreSubmissions,
		m.saveUploads,
		m.leaderboardReads,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PlayerCreated counts a newly created player
func (m *Metrics) PlayerCreated() {
	if m == nil {
		return
	}
	m.playersCreated.Inc()
}

// AuthAttempt records a recovery or login attempt. method is "recover" or "login".
func (m *Metrics) AuthAttempt(method string, ok bool) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(method, outcome(ok)).Inc()
}

// Registration records a username registration attempt
func (m *Metrics) Registration(ok bool) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome(ok)).Inc()
}

// ScoresSubmitted counts an accepted score submission
func (m *Metrics) ScoresSubmitted() {
	if m == nil {
		return
	}
	m.scoreSubmissions.Inc()
}

// SaveUploaded counts a stored cloud save
func (m *Metrics) SaveUploaded() {
	if m == nil {
		return
	}
	m.saveUploads.Inc()
}

// LeaderboardRead counts a leaderboard computation
func (m *Metrics) LeaderboardRead() {
	if m == nil {
		return
	}
	m.leaderboardReads.Inc()
}

// ObserveRequest records the latency of one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
