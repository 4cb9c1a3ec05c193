package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/faqintent/bot"
)

const metricsNamespace = "faqintent"

// Metrics records query outcomes.
type Metrics struct {
	registry  *prometheus.Registry
	queries   *prometheus.CounterVec
	intents   *prometheus.CounterVec
	scores    prometheus.Histogram
	toolCalls *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg gets a fresh
// registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queries_total",
			Help:      "Queries answered, by outcome.",
		}, []string{"outcome"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "intent_matches_total",
			Help:      "Matched queries, by intent.",
		}, []string{"intent"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "match_score",
			Help:      "Combined score of matched queries.",
			Buckets:   []float64{0.3, 0.4, 0.5, 0.6, 0.8, 1, 1.25, 1.5, 2},
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls, by tool and status.",
		}, []string{"tool", "status"}),
	}
	reg.MustRegister(m.queries, m.intents, m.scores, m.toolCalls)
	return m
}

// ObserveReply records one bot reply.
func (m *Metrics) ObserveReply(r bot.Reply) {
	m.queries.WithLabelValues(string(r.Kind)).Inc()
	if r.Matched() {
		m.intents.WithLabelValues(r.IntentID).Inc()
		m.scores.Observe(r.Score)
	}
}

// ObserveEmpty records a rejected blank query.
func (m *Metrics) ObserveEmpty() {
	m.queries.WithLabelValues("empty").Inc()
}

// ObserveTool records one tool call.
func (m *Metrics) ObserveTool(tool string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
