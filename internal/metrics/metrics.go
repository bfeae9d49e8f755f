// Package metrics holds the Prometheus collectors for the store and the dev
// server. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Result labels
const (
	ResultOK    = "ok"
	ResultError = "error"
)

type Metrics struct {
	operations    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	persistWrites *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by name and outcome.",
		}, []string{"op", "result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetch_seconds",
			Help:      "Latency of catalog fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		persistWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persist",
			Name:      "writes_total",
			Help:      "Durable storage writes by outcome.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Dev server requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.operations, m.fetchDuration, m.persistWrites, m.httpRequests)
	return m
}

func resultLabel(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// Operation counts one store operation.
func (m *Metrics) Operation(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
}

// CatalogFetch observes the latency of one catalog fetch.
func (m *Metrics) CatalogFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

// PersistWrite counts one durable storage write.
func (m *Metrics) PersistWrite(err error) {
	if m == nil {
		return
	}
	m.persistWrites.WithLabelValues(resultLabel(err)).Inc()
}

// HTTPRequest counts one served request.
func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}
