// Package metrics defines the Prometheus instrumentation shared by the
// server and the queue worker: connection-pool gauges fed by a ticker in
// main, and business counters around analyses, explanations and report
// enrichment.
package metrics

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/trace"
)

// DatabaseMetrics exposes sql.DBStats as gauges.
type DatabaseMetrics struct {
	openConnections  prometheus.Gauge
	inUseConnections prometheus.Gauge
	idleConnections  prometheus.Gauge
	waitCount        prometheus.Gauge
	waitDuration     prometheus.Gauge
}

// NewDatabaseMetrics registers the connection-pool gauges for a service.
func NewDatabaseMetrics(service string) *DatabaseMetrics {
	labels := prometheus.Labels{"service": service}

	return &DatabaseMetrics{
		openConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: labels,
		}),
		inUseConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of database connections currently in use",
			ConstLabels: labels,
		}),
		idleConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: labels,
		}),
		waitCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count_total",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),
		waitDuration: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_duration_seconds_total",
			Help:        "Total time blocked waiting for a connection",
			ConstLabels: labels,
		}),
	}
}

// UpdateDBStats refreshes the gauges from the pool. Called from a ticker
// goroutine in main.
func (m *DatabaseMetrics) UpdateDBStats(db *sql.DB) {
	stats := db.Stats()
	m.openConnections.Set(float64(stats.OpenConnections))
	m.inUseConnections.Set(float64(stats.InUse))
	m.idleConnections.Set(float64(stats.Idle))
	m.waitCount.Set(float64(stats.WaitCount))
	m.waitDuration.Set(stats.WaitDuration.Seconds())
}

// BusinessMetrics counts the domain events of the pipeline.
type BusinessMetrics struct {
	AnalysesTotal       *prometheus.CounterVec   // by status
	AnalysisDuration    *prometheus.HistogramVec // by status
	ExplanationsTotal   *prometheus.CounterVec   // by method
	HistorySavedTotal   prometheus.Counter
	ReportsSavedTotal   prometheus.Counter
	EnrichmentsTotal    *prometheus.CounterVec   // by status
	EnrichmentDuration  *prometheus.HistogramVec // by status
	NotesGeneratedTotal prometheus.Counter
}

// NewBusinessMetrics registers the business counters for a service.
func NewBusinessMetrics(service string) *BusinessMetrics {
	labels := prometheus.Labels{"service": service}

	return &BusinessMetrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "analyses_total",
			Help:        "Total number of credibility analyses by status",
			ConstLabels: labels,
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "analysis_duration_seconds",
			Help:        "Time spent running the analysis pipeline",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"status"}),
		ExplanationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "explanations_total",
			Help:        "Total number of explanation runs by method",
			ConstLabels: labels,
		}, []string{"method"}),
		HistorySavedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "history_saved_total",
			Help:        "Total number of analyses written to history",
			ConstLabels: labels,
		}),
		ReportsSavedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "reports_saved_total",
			Help:        "Total number of reports saved",
			ConstLabels: labels,
		}),
		EnrichmentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "report_enrichments_total",
			Help:        "Total number of report enrichment attempts by status",
			ConstLabels: labels,
		}, []string{"status"}),
		EnrichmentDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "report_enrichment_duration_seconds",
			Help:        "Time spent generating reviewer notes",
			ConstLabels: labels,
			Buckets:     []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"status"}),
		NotesGeneratedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "reviewer_notes_generated_total",
			Help:        "Total number of reviewer notes attached to reports",
			ConstLabels: labels,
		}),
	}
}

// ObserveDurationWithExemplar records a duration and, when ctx carries a
// sampled trace, attaches the trace id as an exemplar so dashboards can
// jump from a histogram bucket to the trace.
func (m *BusinessMetrics) ObserveDurationWithExemplar(ctx context.Context, vec *prometheus.HistogramVec, duration float64, status string) {
	observer := vec.WithLabelValues(status)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() && spanCtx.IsSampled() {
		if exemplarObserver, ok := observer.(prometheus.ExemplarObserver); ok {
			exemplarObserver.ObserveWithExemplar(duration, prometheus.Labels{
				"trace_id": spanCtx.TraceID().String(),
			})
			return
		}
	}

	observer.Observe(duration)
}
