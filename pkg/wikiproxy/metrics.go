package wikiproxy

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andesco/wikiproxy/pkg/rewrite"
)

const (
	outcomeRedirect      = "redirect"
	outcomeProxied       = "proxied"
	outcomeRewritten     = "rewritten"
	outcomeUnknownHost   = "unknown_host"
	outcomeUpstreamError = "upstream_error"
)

// Metrics holds the proxy's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requests   *prometheus.CounterVec
	attributes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wikiproxy",
			Name:      "requests_total",
			Help:      "Requests handled, by outcome.",
		}, []string{"outcome"}),
		attributes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wikiproxy",
			Name:      "attributes_rewritten_total",
			Help:      "HTML attributes rewritten, by rule.",
		}, []string{"rule"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.attributes)
	}
	return m
}

func (m *Metrics) request(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) rewritten(s rewrite.Stats) {
	if m == nil {
		return
	}
	m.attributes.WithLabelValues(rewrite.Absolute.String()).Add(float64(s.Absolute))
	m.attributes.WithLabelValues(rewrite.Relative.String()).Add(float64(s.Relative))
}
