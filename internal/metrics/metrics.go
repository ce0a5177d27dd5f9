// Package metrics exposes Prometheus collectors for the receipt service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bonsplitser"

type Metrics struct {
	registry *prometheus.Registry

	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	receiptsProcessed *prometheus.CounterVec
	lineWarnings      *prometheus.CounterVec
	ocrDuration       prometheus.Histogram

	settlements   *prometheus.CounterVec
	leftoverCents prometheus.Counter
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		receiptsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_processed_total",
			Help:      "Receipts reconstructed from uploads, by supermarket and whether all totals added up.",
		}, []string{"supermarket", "verified"}),
		lineWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_line_warnings_total",
			Help:      "Receipt lines that could not be read, by scanner state.",
		}, []string{"state"}),
		ocrDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ocr_duration_seconds",
			Help:      "Time spent decoding and recognizing one receipt.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlements computed, by whether every check passed.",
		}, []string{"balanced"}),
		leftoverCents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leftover_cents_total",
			Help:      "Indivisible cents handed out by the leftover lottery.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.receiptsProcessed,
		m.lineWarnings,
		m.ocrDuration,
		m.settlements,
		m.leftoverCents,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordRPC(procedure, code string, d time.Duration) {
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

func (m *Metrics) RecordReceipt(supermarket string, verified bool, d time.Duration) {
	m.receiptsProcessed.WithLabelValues(supermarket, boolLabel(verified)).Inc()
	m.ocrDuration.Observe(d.Seconds())
}

// RecordLineWarning counts one unreadable line seen in the given scanner state.
func (m *Metrics) RecordLineWarning(state string) {
	m.lineWarnings.WithLabelValues(state).Inc()
}

func (m *Metrics) RecordSettlement(balanced bool, leftoverCents int) {
	m.settlements.WithLabelValues(boolLabel(balanced)).Inc()
	m.leftoverCents.Add(float64(leftoverCents))
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
