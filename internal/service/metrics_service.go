package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/noah-isme/sma-idp-batch/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for a batch run.
// A nil *MetricsService is valid and records nothing.
type MetricsService struct {
	registry        *prometheus.Registry
	students        *prometheus.CounterVec
	subjects        *prometheus.CounterVec
	topDecile       prometheus.Counter
	idpScores       prometheus.Histogram
	runDuration     prometheus.Gauge
	lastSuccess     prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec

	dbQueryCount         uint64
	dbQueryDurationTotal uint64
}

// NewMetricsService registers the batch collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	students := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idp_students_total",
		Help: "Student evaluations by outcome",
	}, []string{"status"})

	subjects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idp_subjects_total",
		Help: "Subjects processed by result",
	}, []string{"result"})

	topDecile := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "idp_top_decile_marked_total",
		Help: "Students flagged as top decile",
	})

	idpScores := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "idp_score",
		Help:    "Distribution of persisted IDP scores",
		Buckets: []float64{25, 50, 75, 100},
	})

	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "idp_run_duration_seconds",
		Help: "Wall time of the last run",
	})

	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "idp_last_run_timestamp_seconds",
		Help: "Unix time the last run finished",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	registry.MustRegister(students, subjects, topDecile, idpScores, runDuration, lastSuccess, dbQueryDuration)

	return &MetricsService{
		registry:        registry,
		students:        students,
		subjects:        subjects,
		topDecile:       topDecile,
		idpScores:       idpScores,
		runDuration:     runDuration,
		lastSuccess:     lastSuccess,
		dbQueryDuration: dbQueryDuration,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveSubject records the outcomes of one subject pass.
func (m *MetricsService) ObserveSubject(report models.SubjectReport) {
	if m == nil {
		return
	}
	for _, s := range report.Students {
		m.students.WithLabelValues(string(s.Status)).Inc()
		if s.Status.Persisted() {
			m.idpScores.Observe(s.Score)
		}
	}
	m.topDecile.Add(float64(len(report.TopDecile)))
	result := "ok"
	if report.Err != nil {
		result = "failed"
	}
	m.subjects.WithLabelValues(result).Inc()
}

// ObserveRun records run-level gauges once the run has finished.
func (m *MetricsService) ObserveRun(report *models.RunReport) {
	if m == nil || report == nil {
		return
	}
	m.runDuration.Set(report.Duration().Seconds())
	if !report.FinishedAt.IsZero() {
		m.lastSuccess.Set(float64(report.FinishedAt.Unix()))
	}
}

// AverageDBQuery returns the mean query latency observed so far.
func (m *MetricsService) AverageDBQuery() time.Duration {
	if m == nil {
		return 0
	}
	count := atomic.LoadUint64(&m.dbQueryCount)
	if count == 0 {
		return 0
	}
	return time.Duration(atomic.LoadUint64(&m.dbQueryDurationTotal) / count)
}

// Push sends the registry to a Prometheus Pushgateway. An empty url is a no-op.
func (m *MetricsService) Push(ctx context.Context, url, job string) error {
	if m == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
