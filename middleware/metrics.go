package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes recorded by SessionMetrics.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeAnonymous     = "anonymous"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)

// MetricsConfig configures SessionMetrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "sessionkit").
	Namespace string
	// Subsystem is the metrics subsystem (default: "session").
	Subsystem string
	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels
	// Buckets are the lookup duration histogram buckets (default: prometheus.DefBuckets).
	Buckets []float64
	// Registry receives the collectors (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// MetricsOption configures SessionMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the lookup duration buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the registerer the collectors are added to.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// SessionMetrics counts session lookups and CSRF rejections.
// A nil *SessionMetrics is valid and records nothing.
type SessionMetrics struct {
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	csrfRejections *prometheus.CounterVec
	logouts        *prometheus.CounterVec
}

// NewSessionMetrics creates and registers the session collectors.
// Registering twice on the same registry panics, as with promauto.
func NewSessionMetrics(opts ...MetricsOption) *SessionMetrics {
	cfg := MetricsConfig{
		Namespace: "sessionkit",
		Subsystem: "session",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	return &SessionMetrics{
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "lookups_total",
			Help:        "Session lookups by strategy and outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"strategy", "outcome"}),

		lookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "lookup_duration_seconds",
			Help:        "Session lookup duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"strategy"}),

		csrfRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "csrf_rejections_total",
			Help:        "Requests refused by the CSRF check",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reason"}),

		logouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "logouts_total",
			Help:        "Logout attempts by result",
			ConstLabels: cfg.ConstLabels,
		}, []string{"result"}),
	}
}

func (m *SessionMetrics) observeLookup(strategy, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(strategy, outcome).Inc()
	m.lookupDuration.WithLabelValues(strategy).Observe(took.Seconds())
}

func (m *SessionMetrics) csrfRejected(reason string) {
	if m == nil {
		return
	}
	m.csrfRejections.WithLabelValues(reason).Inc()
}

func (m *SessionMetrics) loggedOut(result string) {
	if m == nil {
		return
	}
	m.logouts.WithLabelValues(result).Inc()
}
