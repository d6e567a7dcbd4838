// Package metrics exposes Prometheus metrics for SBC processing.
package metrics

import (
	"net/http"
	"time"

	"sbc-validator-backend/extraction"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultNamespace = "sbc"

// Processing outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)

// Question label values
const (
	QuestionEssentialCoverage = "essential_coverage"
	QuestionValueStandards    = "value_standards"
)

// Collector records document processing metrics:
//   - <ns>_documents_processed_total{outcome}
//   - <ns>_answers_total{question,answer}
//   - <ns>_processing_duration_seconds
//   - <ns>_storage_failures_total{operation}
//   - <ns>_records_regenerated_total
//
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	documentsProcessed *prometheus.CounterVec
	answers            *prometheus.CounterVec
	processingDuration prometheus.Histogram
	storageFailures    *prometheus.CounterVec
	recordsRegenerated prometheus.Counter
}

// NewCollector creates and registers the metrics. A nil registry gets a
// fresh one.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{
		registry: registry,
		documentsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_processed_total",
				Help:      "SBC documents processed, by outcome",
			},
			[]string{"outcome"},
		),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_total",
				Help:      "Coverage answers extracted, by question and answer",
			},
			[]string{"question", "answer"},
		),
		processingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processing_duration_seconds",
				Help:      "Time to extract and classify one document",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		storageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_failures_total",
				Help:      "Object storage operations that failed, by operation",
			},
			[]string{"operation"},
		),
		recordsRegenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_regenerated_total",
				Help:      "Stored records whose answers or explanations were rewritten",
			},
		),
	}

	registry.MustRegister(
		c.documentsProcessed,
		c.answers,
		c.processingDuration,
		c.storageFailures,
		c.recordsRegenerated,
	)
	return c
}

// Registry returns the registry the metrics are registered with
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordResult counts one processed document and, on success, its answers
func (c *Collector) RecordResult(res extraction.Result, duration time.Duration) {
	if c == nil {
		return
	}
	c.processingDuration.Observe(duration.Seconds())
	if !res.Success {
		c.documentsProcessed.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	c.documentsProcessed.WithLabelValues(OutcomeSuccess).Inc()
	c.answers.WithLabelValues(QuestionEssentialCoverage, res.EssentialCoverage.String()).Inc()
	c.answers.WithLabelValues(QuestionValueStandards, res.ValueStandards.String()).Inc()
}

// RecordRejected counts an upload refused before processing
func (c *Collector) RecordRejected() {
	if c == nil {
		return
	}
	c.documentsProcessed.WithLabelValues(OutcomeInvalid).Inc()
}

// RecordStorageFailure counts a failed upload, download or delete
func (c *Collector) RecordStorageFailure(operation string) {
	if c == nil {
		return
	}
	c.storageFailures.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordRegenerated() {
	if c == nil {
		return
	}
	c.recordsRegenerated.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
