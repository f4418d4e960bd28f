package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for the numeric prediction paths.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogStatisticalPrediction logs a completed statistical scoring run.
func (pl *PredictionLogger) LogStatisticalPrediction(raceID string, entrants int, pick string, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"race_id":     raceID,
		"kind":        "statistical",
		"entrants":    entrants,
		"pick":        pick,
		"duration_ms": durationMs,
	}).Info("Statistical prediction completed")
}

// LogMLPrediction logs a completed probability estimate.
func (pl *PredictionLogger) LogMLPrediction(raceID, mode, modelVersion, pick string, confidence, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"race_id":       raceID,
		"kind":          "ml",
		"mode":          mode,
		"model_version": modelVersion,
		"pick":          pick,
		"confidence":    confidence,
		"duration_ms":   durationMs,
	}).Info("ML prediction completed")
}

// LogModelLoaded logs a successfully loaded model artifact.
func (pl *PredictionLogger) LogModelLoaded(path, name, version string) {
	pl.WithFields(logrus.Fields{
		"model_path":    path,
		"model_name":    name,
		"model_version": version,
	}).Info("Model artifact loaded")
}

// LogModelLoadFailure logs an artifact that could not be used. The estimator
// keeps running on the heuristic.
func (pl *PredictionLogger) LogModelLoadFailure(path string, err error) {
	pl.WithFields(logrus.Fields{
		"model_path": path,
		"fallback":   "heuristic",
	}).WithError(err).Warn("Model artifact unavailable")
}

// LogModelReload logs a scheduled artifact reload.
func (pl *PredictionLogger) LogModelReload(path, previousMode, currentMode string) {
	pl.WithFields(logrus.Fields{
		"model_path":    path,
		"previous_mode": previousMode,
		"current_mode":  currentMode,
	}).Info("Model artifact reloaded")
}
