// Package metrics provides the centralized Prometheus metrics registry for the prediction engine.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "boat_oracle"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Prediction metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of predictions produced",
	}, []string{"kind", "mode"}) // kind: statistical, ml, consensus, analysis

	PredictionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_errors_total",
		Help:      "Total number of rejected or failed prediction requests",
	}, []string{"kind", "reason"})

	PredictionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Duration of prediction requests in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 90},
	}, []string{"kind"})

	ModelReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_reloads_total",
		Help:      "Total number of scheduled model artifact reloads by resulting mode",
	}, []string{"mode"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register prediction metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionErrorsTotal)
		registry.MustRegister(PredictionDuration)
		registry.MustRegister(ModelReloadsTotal)

		// Register agent and consensus metrics
		registry.MustRegister(AgentCallsTotal)
		registry.MustRegister(AgentLatency)
		registry.MustRegister(AgentTokensTotal)
		registry.MustRegister(ConsensusRunsTotal)
		registry.MustRegister(ConsensusAgreementRate)
		registry.MustRegister(ConsensusCacheHitRatio)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler. It also exposes collectors
// registered on the default registry, such as the estimator's.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RecordPrediction records a completed prediction of the given kind.
func RecordPrediction(kind, mode string, duration time.Duration) {
	PredictionsTotal.WithLabelValues(kind, mode).Inc()
	PredictionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordPredictionError records a rejected or failed prediction request.
func RecordPredictionError(kind, reason string) {
	PredictionErrorsTotal.WithLabelValues(kind, reason).Inc()
}

// RecordModelReload records a scheduled artifact reload.
func RecordModelReload(mode string) {
	ModelReloadsTotal.WithLabelValues(mode).Inc()
}
