package logger

import (
	"github.com/sirupsen/logrus"
)

// AgentLogger provides dedicated logging for external agent calls and consensus runs.
type AgentLogger struct {
	*logrus.Entry
}

// NewAgentLogger creates a new agent logger.
func NewAgentLogger(baseLogger *logrus.Logger) *AgentLogger {
	return &AgentLogger{
		Entry: baseLogger.WithField("component", "magi"),
	}
}

// LogAgentResult logs the outcome of one agent invocation.
func (al *AgentLogger) LogAgentResult(runID, name, provider, status, pick, errDetail string, tokensUsed int, latencyMs int64) {
	entry := al.WithFields(logrus.Fields{
		"run_id":      runID,
		"agent":       name,
		"provider":    provider,
		"status":      status,
		"pick":        pick,
		"tokens_used": tokensUsed,
		"latency_ms":  latencyMs,
	})
	if errDetail != "" {
		entry.WithField("error_detail", errDetail).Warn("Agent call failed")
		return
	}
	entry.Debug("Agent call completed")
}

// LogConsensus logs a completed consensus run.
func (al *AgentLogger) LogConsensus(runID, raceID, consensus string, agreementRate float64, successCount, dispatched int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"run_id":         runID,
		"race_id":        raceID,
		"consensus":      consensus,
		"agreement_rate": agreementRate,
		"success_count":  successCount,
		"dispatched":     dispatched,
		"duration_ms":    durationMs,
	}).Info("Consensus run completed")
}

// LogConsensusCacheHit logs a consensus served from cache.
func (al *AgentLogger) LogConsensusCacheHit(key, runID string) {
	al.WithFields(logrus.Fields{
		"cache_key": key,
		"run_id":    runID,
	}).Debug("Consensus served from cache")
}

// LogAnalysis logs a single-agent analysis request.
func (al *AgentLogger) LogAnalysis(provider, model, promptKind string, tokensUsed int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"provider":    provider,
		"model":       model,
		"prompt_kind": promptKind,
		"tokens_used": tokensUsed,
		"duration_ms": durationMs,
	}).Info("Single-agent analysis completed")
}
