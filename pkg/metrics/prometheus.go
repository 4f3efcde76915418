/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metrics exposes the gateway metrics in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
)

const (
	namespace = "sidetree"

	// Path is the path of the metrics endpoint.
	Path = "/metrics"
)

// Prometheus records metrics in its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	operationSubmitted *prometheus.CounterVec
	pendingOperations  prometheus.Gauge
	batchSize          prometheus.Histogram
	batchWriteTime     prometheus.Histogram
	batchWriteFailed   prometheus.Counter
	lastAnchor         prometheus.Gauge
	resolveTime        prometheus.Histogram
	resolutionCache    *prometheus.CounterVec
	integrityAnomalies *prometheus.CounterVec
	httpStatusCodes    *prometheus.CounterVec
	httpRequestTime    *prometheus.HistogramVec
	casWriteSize       *prometheus.HistogramVec
}

// NewPrometheus returns a metrics provider with the Go runtime and process collectors registered.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		operationSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "operation", Name: "submitted_count",
			Help: "The number of submitted operations by outcome.",
		}, []string{"status", "reason"}),
		pendingOperations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "operation", Name: "pending",
			Help: "The number of operations waiting to be batched.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "batch", Name: "size",
			Help:    "The number of operations in a cut batch.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		batchWriteTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "batch", Name: "write_seconds",
			Help: "The time to write a batch to CAS and anchor it.",
		}),
		batchWriteFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "batch", Name: "write_failed_count",
			Help: "The number of failed batch writes.",
		}),
		lastAnchor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "observer", Name: "anchored_at",
			Help: "The sequence number of the last processed anchor.",
		}),
		resolveTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "resolver", Name: "resolve_seconds",
			Help: "The time to resolve a document.",
		}),
		resolutionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "resolver", Name: "cache_count",
			Help: "Resolution cache lookups by result.",
		}, []string{"result"}),
		integrityAnomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "resolver", Name: "integrity_anomaly_count",
			Help: "Batches and operations skipped during resolution.",
		}, []string{"kind"}),
		httpStatusCodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_status_code_count",
			Help: "The number of HTTP responses by route and status code.",
		}, []string{"method", "path", "status_code"}),
		httpRequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_seconds",
			Help: "The time to serve an HTTP request.",
		}, []string{"method", "path"}),
		casWriteSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "cas", Name: "write_size_bytes",
			Help:    "The size of content written to CAS.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		}, []string{"type"}),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.operationSubmitted, p.pendingOperations, p.batchSize, p.batchWriteTime, p.batchWriteFailed,
		p.lastAnchor, p.resolveTime, p.resolutionCache, p.integrityAnomalies, p.httpStatusCodes,
		p.httpRequestTime, p.casWriteSize,
	)

	return p
}

// Registry returns the registry the metrics are recorded in.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Path returns the context path.
func (p *Prometheus) Path() string {
	return Path
}

// Method returns the HTTP method.
func (p *Prometheus) Method() string {
	return http.MethodGet
}

// Handler returns the exposition handler.
func (p *Prometheus) Handler() common.HTTPRequestHandler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}).ServeHTTP
}

// OperationSubmitted records a submission outcome.
func (p *Prometheus) OperationSubmitted(status, reason string) {
	p.operationSubmitted.WithLabelValues(status, reason).Inc()
}

// PendingOperations records the number of queued operations.
func (p *Prometheus) PendingOperations(count uint) {
	p.pendingOperations.Set(float64(count))
}

// BatchCut records the size of a cut batch.
func (p *Prometheus) BatchCut(size uint) {
	p.batchSize.Observe(float64(size))
}

// BatchWriteTime records the time to write and anchor a batch.
func (p *Prometheus) BatchWriteTime(value time.Duration) {
	p.batchWriteTime.Observe(value.Seconds())
}

// BatchWriteFailed records a failed batch write.
func (p *Prometheus) BatchWriteFailed() {
	p.batchWriteFailed.Inc()
}

// AnchorProcessed records an observed anchor.
func (p *Prometheus) AnchorProcessed(anchoredAt uint64) {
	p.lastAnchor.Set(float64(anchoredAt))
}

// ResolveTime records the time to resolve a document.
func (p *Prometheus) ResolveTime(value time.Duration) {
	p.resolveTime.Observe(value.Seconds())
}

// ResolutionCacheHit records a resolution cache lookup.
func (p *Prometheus) ResolutionCacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	p.resolutionCache.WithLabelValues(result).Inc()
}

// IntegrityAnomaly records an operation or batch skipped during resolution.
func (p *Prometheus) IntegrityAnomaly(kind string) {
	p.integrityAnomalies.WithLabelValues(kind).Inc()
}

// HTTPRequest records a served HTTP request.
func (p *Prometheus) HTTPRequest(method, path string, status int, value time.Duration) {
	p.httpStatusCodes.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	p.httpRequestTime.WithLabelValues(method, path).Observe(value.Seconds())
}

// CASWriteSize records the size of content written to CAS.
func (p *Prometheus) CASWriteSize(dataType string, size int) {
	p.casWriteSize.WithLabelValues(dataType).Observe(float64(size))
}
