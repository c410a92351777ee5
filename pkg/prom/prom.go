package prom

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	xhttp "github.com/wanjohi/rent-reconciler/pkg/http"
	"github.com/wanjohi/rent-reconciler/pkg/logger"
)

const (
	SystemReconciliation = "reconciliation"
)

const (
	MetricTransactionsIngested = "transactions_ingested_total"
	MetricDecisions            = "decisions_total"
	MetricConfidenceScore      = "confidence_score"
	MetricPipelineDuration     = "pipeline_duration_seconds"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var metricCounters = make(map[string]prometheus.Counter)
var metricCounterVec = make(map[string]*prometheus.CounterVec)
var metricHistograms = make(map[string]prometheus.Histogram)
var metricHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers every metric the reconciler emits. Call once at startup.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounter(SystemReconciliation, MetricTransactionsIngested))
	hasError(createCounterVec(SystemReconciliation, MetricDecisions, []string{"status", "action"}))
	hasError(createHistogramVec(SystemReconciliation, MetricConfidenceScore, []string{"status"},
		[]float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}))
	hasError(createHistogramVec(SystemReconciliation, MetricPipelineDuration, []string{"outcome"}, prometheus.DefBuckets))

	return err
}

// ListenAndServer exposes /metrics style handler on the given port and url.
func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	metricCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(metricCounters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	metricCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(metricCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string, buckets []float64) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	metricHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     buckets,
	}, labels)
	return prometheus.Register(metricHistogramVec[subsystem+name])
}

func IncCounter(subsystem, name string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := metricCounters[subsystem+name]; ok {
		v.Inc()
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := metricCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func ObserveHistogram(subsystem, name string, value float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := metricHistograms[subsystem+name]; ok {
		v.Observe(value)
		return
	}
	logger.Warn("[metrics-server] histogram not found", "subsystem", subsystem, "name", name)
}

func ObserveHistogramVec(subsystem, name string, value float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := metricHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(value)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}
