// Package metrics exposes Prometheus instrumentation for request/retry
// behaviour, cache hit/miss rates, and streaming throughput.
//
// Grounded on the teacher's internal/observability.Metrics: one struct
// field per CounterVec/HistogramVec/GaugeVec, constructed once at
// startup and called from the request path. Generalised to accept an
// explicit *prometheus.Registry (defaulting to prometheus.DefaultRegisterer
// wrapped appropriately) instead of hardcoding promauto against the
// global registry, so tests can register against an isolated registry —
// the same isolation the teacher's own metrics_test.go reaches for by
// hand per test rather than building into the constructor.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Conduit Prometheus collector.
type Metrics struct {
	// RequestCounter counts generate/stream calls by provider, model,
	// and outcome (success|error).
	RequestCounter *prometheus.CounterVec

	// RequestDuration measures generate/stream call latency in seconds.
	RequestDuration *prometheus.HistogramVec

	// RetryCounter counts HTTP executor retry attempts by provider and
	// the error kind that triggered the retry.
	RetryCounter *prometheus.CounterVec

	// CacheHits and CacheMisses count model/diffusion/embedding cache
	// lookups by cache name (modelcache|diffusioncache|embedcache).
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// CacheResidentCount tracks the current number of entries resident
	// in a cache.
	CacheResidentCount *prometheus.GaugeVec

	// TokenThroughput records tokensPerSecond samples reported on
	// streamed content chunks, by provider and model.
	TokenThroughput *prometheus.HistogramVec

	// ToolExecutionCounter counts tool invocations by tool name and
	// outcome.
	ToolExecutionCounter *prometheus.CounterVec
}

// New constructs Metrics and registers every collector against reg. A
// nil reg registers against prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promFactory{reg: reg}

	return &Metrics{
		RequestCounter: factory.counterVec(
			"conduit_requests_total",
			"Total number of generate/stream calls by provider, model, and outcome",
			"provider", "model", "outcome",
		),
		RequestDuration: factory.histogramVec(
			"conduit_request_duration_seconds",
			"Duration of generate/stream calls in seconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			"provider", "model",
		),
		RetryCounter: factory.counterVec(
			"conduit_retries_total",
			"Total number of HTTP executor retry attempts by provider and error kind",
			"provider", "error_kind",
		),
		CacheHits: factory.counterVec(
			"conduit_cache_hits_total",
			"Total number of cache hits by cache name",
			"cache",
		),
		CacheMisses: factory.counterVec(
			"conduit_cache_misses_total",
			"Total number of cache misses by cache name",
			"cache",
		),
		CacheResidentCount: factory.gaugeVec(
			"conduit_cache_resident_entries",
			"Current number of entries resident in a cache",
			"cache",
		),
		TokenThroughput: factory.histogramVec(
			"conduit_token_throughput_tokens_per_second",
			"Streamed token throughput samples by provider and model",
			[]float64{1, 5, 10, 25, 50, 100, 200, 500},
			"provider", "model",
		),
		ToolExecutionCounter: factory.counterVec(
			"conduit_tool_executions_total",
			"Total number of tool executions by tool name and outcome",
			"tool_name", "outcome",
		),
	}
}

// RecordRequest records a completed generate/stream call.
func (m *Metrics) RecordRequest(provider, model, outcome string, duration time.Duration) {
	m.RequestCounter.WithLabelValues(provider, model, outcome).Inc()
	m.RequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordRetry records one retry attempt.
func (m *Metrics) RecordRetry(provider, errorKind string) {
	m.RetryCounter.WithLabelValues(provider, errorKind).Inc()
}

// RecordCacheLookup records a cache hit or miss by cache name.
func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	if hit {
		m.CacheHits.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMisses.WithLabelValues(cache).Inc()
}

// SetCacheResidentCount sets the current resident-entry gauge for cache.
func (m *Metrics) SetCacheResidentCount(cache string, count int) {
	m.CacheResidentCount.WithLabelValues(cache).Set(float64(count))
}

// RecordTokenThroughput records one tokensPerSecond sample.
func (m *Metrics) RecordTokenThroughput(provider, model string, tokensPerSecond float64) {
	m.TokenThroughput.WithLabelValues(provider, model).Observe(tokensPerSecond)
}

// RecordToolExecution records one tool invocation outcome.
func (m *Metrics) RecordToolExecution(toolName, outcome string) {
	m.ToolExecutionCounter.WithLabelValues(toolName, outcome).Inc()
}

// promFactory registers collectors against a specific registerer,
// panicking on duplicate registration the same way promauto does (this
// is a startup-time programmer error, never something to recover from at
// runtime).
type promFactory struct {
	reg prometheus.Registerer
}

func (f promFactory) register(c prometheus.Collector) {
	reg := f.reg
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(c)
}

func (f promFactory) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	f.register(c)
	return c
}

func (f promFactory) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	c := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	f.register(c)
	return c
}

func (f promFactory) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	c := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	f.register(c)
	return c
}
