package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerWithOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", "json", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Info("hello")
	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLoggerWithOutput("loud", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestPredictionLoggerStatistical(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogStatisticalPrediction("race_1", 6, "1-2-3", 0.4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "prediction", logEntry["component"])
	assert.Equal(t, "1-2-3", logEntry["pick"])
	assert.Equal(t, float64(6), logEntry["entrants"])
}

func TestPredictionLoggerModelLoadFailure(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogModelLoadFailure("/models/missing.json", errors.New("no such file"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "heuristic", logEntry["fallback"])
	assert.Equal(t, "no such file", logEntry["error"])
}

func TestAgentLoggerResult(t *testing.T) {
	log, buf := setupTestLogger()
	agentLogger := NewAgentLogger(log)

	agentLogger.LogAgentResult("run_1", "MELCHIOR", "claude", "success", "1-2-3", "", 120, 850)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "magi", logEntry["component"])
	assert.Equal(t, "MELCHIOR", logEntry["agent"])
	assert.Equal(t, "debug", logEntry["level"])
}

func TestAgentLoggerFailedResult(t *testing.T) {
	log, buf := setupTestLogger()
	agentLogger := NewAgentLogger(log)

	agentLogger.LogAgentResult("run_1", "CASPER", "gemini", "error", "", "timeout", 0, 60000)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "timeout", logEntry["error_detail"])
}

func TestAgentLoggerConsensus(t *testing.T) {
	log, buf := setupTestLogger()
	agentLogger := NewAgentLogger(log)

	agentLogger.LogConsensus("run_1", "race_1", "1-2-3", 0.75, 4, 4, 1200)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, 0.75, logEntry["agreement_rate"])
	assert.Equal(t, float64(4), logEntry["success_count"])
}

func BenchmarkAgentLoggerResult(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	agentLogger := NewAgentLogger(log)

	for i := 0; i < b.N; i++ {
		agentLogger.LogAgentResult("run_1", "MELCHIOR", "claude", "success", "1-2-3", "", 120, 850)
	}
}
