package ml

import (
	"context"
	"sync/atomic"

	"github.com/yourusername/boat-oracle/internal/logger"
	"github.com/yourusername/boat-oracle/internal/models"
)

// EstimatorHolder publishes the current estimator to concurrent readers and
// lets a reload swap in a freshly loaded one without locking.
type EstimatorHolder struct {
	current atomic.Pointer[Estimator]
	path    string
	log     *logger.PredictionLogger
}

// NewEstimatorHolder loads the initial estimator from path
func NewEstimatorHolder(path string, plog *logger.PredictionLogger) *EstimatorHolder {
	h := &EstimatorHolder{path: path, log: plog}
	h.current.Store(NewEstimator(path, plog))
	return h
}

// Get returns the active estimator
func (h *EstimatorHolder) Get() *Estimator {
	return h.current.Load()
}

// Predict delegates to the active estimator
func (h *EstimatorHolder) Predict(entrants []models.Entrant) models.MLPrediction {
	return h.Get().Predict(entrants)
}

// Reload re-reads the artifact and swaps the estimator in. It returns the
// new mode.
func (h *EstimatorHolder) Reload() string {
	previous := h.Get().Mode()
	next := NewEstimator(h.path, h.log)
	h.current.Store(next)
	if h.log != nil {
		h.log.LogModelReload(h.path, previous, next.Mode())
	}
	return next.Mode()
}

// Name identifies the holder as a readiness check
func (h *EstimatorHolder) Name() string {
	return "model"
}

// Check reports readiness. Heuristic mode counts as ready.
func (h *EstimatorHolder) Check(ctx context.Context) error {
	return ctx.Err()
}
