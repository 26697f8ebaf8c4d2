// Package metrics exposes Prometheus counters for registry operations and
// gauges for collection totals.
package metrics

import (
	"net/http"

	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors.
type Metrics struct {
	reg prometheus.Gatherer

	// Registry operations by name and outcome (ok or an error kind)
	Operations *prometheus.CounterVec

	// Collection totals, refreshed on scrape
	Documents *prometheus.GaugeVec
}

// New registers all collectors on reg. Passing nil uses the default
// registerer.
func New(reg *prometheus.Registry) *Metrics {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	f := promauto.With(registerer)

	return &Metrics{
		reg: gatherer,
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sharediary_group_operations_total",
			Help: "Group registry operations by operation and outcome",
		}, []string{"op", "outcome"}),
		Documents: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sharediary_documents",
			Help: "Stored documents by kind",
		}, []string{"kind"}), // kind: "groups", "users", "diary_entries", "invitations"
	}
}

// Observe records one registry operation. It satisfies registry.Observer.
func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

// SetDocuments sets the gauge for one kind of document.
func (m *Metrics) SetDocuments(kind string, n int64) {
	if m != nil {
		m.Documents.WithLabelValues(kind).Set(float64(n))
	}
}

// Handler serves the Prometheus exposition format. before, if set, runs
// ahead of each scrape.
func (m *Metrics) Handler(before func(*http.Request)) http.Handler {
	h := promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if before != nil {
			before(r)
		}
		h.ServeHTTP(w, r)
	})
}
