package adapters

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type MetricsServer struct {
	*http.Server
	db *SqlRepo

	userCount           prometheus.Gauge
	questionCount       prometheus.Gauge
	mockTestCount       prometheus.Gauge
	attemptCount        prometheus.Gauge
	loginsTotal         *prometheus.CounterVec
	testsGeneratedTotal prometheus.Counter
	attemptsGradedTotal prometheus.Counter
	attemptScorePercent prometheus.Histogram
}

// NewMetricsServer returns a new prometheus server
func NewMetricsServer(cfg *config.Config, db *SqlRepo) *MetricsServer {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		Server: &http.Server{
			Addr:    cfg.Statistics.ListeningAddress,
			Handler: mux,
		},
		db: db,

		userCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "prepcheck_users",
				Help: "Number of registered users.",
			},
		),
		questionCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "prepcheck_questions",
				Help: "Number of questions in the question bank.",
			},
		),
		mockTestCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "prepcheck_mock_tests",
				Help: "Number of generated mock tests.",
			},
		),
		attemptCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "prepcheck_attempts",
				Help: "Number of test attempts.",
			},
		),
		loginsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "prepcheck_logins_total",
				Help: "Number of login attempts.",
			}, []string{"outcome"},
		),
		testsGeneratedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "prepcheck_tests_generated_total",
				Help: "Number of mock tests generated since startup.",
			},
		),
		attemptsGradedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "prepcheck_attempts_graded_total",
				Help: "Number of attempts graded since startup.",
			},
		),
		attemptScorePercent: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prepcheck_attempt_score_percent",
				Help:    "Distribution of graded attempt scores in percent.",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}
}

// Run starts the metrics server. It blocks until the context is done.
func (m *MetricsServer) Run(ctx context.Context) {
	go func() {
		if err := m.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics service exited", "address", m.Addr, "error", err)
		}
	}()
	go m.runDatabaseCollector(ctx)

	slog.Info("started metrics service", "address", m.Addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics service shutdown failed", "address", m.Addr, "error", err)
	} else {
		slog.Info("metrics service shutdown gracefully", "address", m.Addr)
	}
}

func (m *MetricsServer) runDatabaseCollector(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Minute):
		}

		overview, err := m.db.GetAdminOverview(ctx)
		if err != nil {
			slog.Warn("failed to collect database metrics", "error", err)
			continue
		}

		m.userCount.Set(float64(overview.UserCount))
		m.questionCount.Set(float64(overview.QuestionCount))
		m.mockTestCount.Set(float64(overview.MockTestCount))
		m.attemptCount.Set(float64(overview.AttemptCount))
	}
}

// CountLogin records a login attempt.
func (m *MetricsServer) CountLogin(success bool) {
	if success {
		m.loginsTotal.WithLabelValues("success").Inc()
	} else {
		m.loginsTotal.WithLabelValues("failed").Inc()
	}
}

// CountTestGenerated records a generated mock test.
func (m *MetricsServer) CountTestGenerated() {
	m.testsGeneratedTotal.Inc()
}

// CountAttemptGraded records a graded attempt and its score.
func (m *MetricsServer) CountAttemptGraded(attempt *domain.Attempt) {
	m.attemptsGradedTotal.Inc()
	m.attemptScorePercent.Observe(attempt.Percentage)
}
