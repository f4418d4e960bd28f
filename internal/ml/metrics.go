// Package ml provides Prometheus metrics for the probability estimator.
package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EstimatorPredictionsTotal tracks estimates by mode
	EstimatorPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_estimator_predictions_total",
			Help: "Total number of placement estimates produced",
		},
		[]string{"mode"}, // model, heuristic
	)

	// ModelLoadFailuresTotal tracks artifact load failures
	ModelLoadFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_model_load_failures_total",
			Help: "Total number of model artifact load failures",
		},
		[]string{"reason"}, // not_found, invalid, feature_mismatch, io
	)

	// ModelLoaded is 1 while a trained artifact is active, 0 in heuristic mode
	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ml_model_loaded",
			Help: "Whether a trained model artifact is active",
		},
	)
)
