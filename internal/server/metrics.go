package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/structio/pkg/errors"
	"github.com/matzehuels/structio/pkg/observability"
)

const namespace = "structio"

// Metrics implements every observability hook on Prometheus collectors.
//
// Metrics:
//   - structio_codec_operations_total{op,version,result}
//   - structio_codec_bytes{op} (histogram)
//   - structio_pipeline_duration_seconds{stage,result}
//   - structio_cache_events_total{kind,event}
//   - structio_store_operations_total{backend,op,result}
//   - structio_http_requests_inflight
//   - structio_http_request_duration_seconds{method,route,status}
type Metrics struct {
	codecOps      *prometheus.CounterVec
	codecBytes    *prometheus.HistogramVec
	pipelineTime  *prometheus.HistogramVec
	cacheEvents   *prometheus.CounterVec
	storeOps      *prometheus.CounterVec
	httpInflight  prometheus.Gauge
	httpDurations *prometheus.HistogramVec
}

var (
	_ observability.CodecHooks    = (*Metrics)(nil)
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.StoreHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		codecOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_operations_total",
			Help:      "Encode and decode passes by format version and result code.",
		}, []string{"op", "version", "result"}),
		codecBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "codec_bytes",
			Help:      "Size of encoded structures.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}, []string{"op"}),
		pipelineTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of conversions and renders, cache hits included.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"stage", "result"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and writes by key kind.",
		}, []string{"kind", "event"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Archive reads and writes.",
		}, []string{"backend", "op", "result"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "Requests currently being served.",
		}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.codecOps, m.codecBytes, m.pipelineTime, m.cacheEvents, m.storeOps, m.httpInflight, m.httpDurations)
	return m
}

// Install registers m as the process-wide hook implementation.
func (m *Metrics) Install() {
	observability.SetCodecHooks(m)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
	observability.SetHTTPHooks(m)
}

// result maps err to a low-cardinality label.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

func (m *Metrics) OnEncodeStart(uint8, int) {}

func (m *Metrics) OnEncodeComplete(version uint8, size int, err error) {
	m.codecOps.WithLabelValues("encode", strconv.Itoa(int(version)), result(err)).Inc()
	if err == nil {
		m.codecBytes.WithLabelValues("encode").Observe(float64(size))
	}
}

func (m *Metrics) OnDecodeStart(int) {}

func (m *Metrics) OnDecodeComplete(version uint8, size int, err error) {
	m.codecOps.WithLabelValues("decode", strconv.Itoa(int(version)), result(err)).Inc()
	m.codecBytes.WithLabelValues("decode").Observe(float64(size))
}

func (m *Metrics) OnConvertStart(context.Context, string, uint8) {}

func (m *Metrics) OnConvertComplete(_ context.Context, _ string, _ uint8, d time.Duration, err error) {
	m.pipelineTime.WithLabelValues("convert", result(err)).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.pipelineTime.WithLabelValues("render_"+format, result(err)).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, _ int) {
	m.cacheEvents.WithLabelValues(kind, "set").Inc()
}

func (m *Metrics) OnStorePut(_ context.Context, backend string, _ int, err error) {
	m.storeOps.WithLabelValues(backend, "put", result(err)).Inc()
}

func (m *Metrics) OnStoreGet(_ context.Context, backend string, found bool, err error) {
	r := result(err)
	if err == nil && !found {
		r = string(errors.ErrCodeNotFound)
	}
	m.storeOps.WithLabelValues(backend, "get", r).Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInflight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInflight.Dec()
	m.httpDurations.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
