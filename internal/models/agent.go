package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentStatus is the outcome class of one agent invocation
type AgentStatus string

const (
	AgentStatusSuccess  AgentStatus = "success"
	AgentStatusError    AgentStatus = "error"
	AgentStatusDisabled AgentStatus = "disabled"
)

// Confidence labels an agent may attach to its pick
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// AgentResult is one external agent's outcome. It is built once per request
// and never mutated afterwards.
type AgentResult struct {
	Name       string      `json:"name"`
	Provider   string      `json:"provider"`
	Status     AgentStatus `json:"status"`
	Model      string      `json:"model,omitempty"`
	Pick       *string     `json:"pick"`
	Analysis   *string     `json:"analysis,omitempty"`
	Confidence *string     `json:"confidence,omitempty"`
	Error      *string     `json:"error,omitempty"`
	TokensUsed int         `json:"tokens_used,omitempty"`
	LatencyMs  int64       `json:"latency_ms,omitempty"`
}

// IsSuccess reports whether the agent answered
func (r AgentResult) IsSuccess() bool {
	return r.Status == AgentStatusSuccess
}

// HasPick reports whether a structured pick was extracted
func (r AgentResult) HasPick() bool {
	return r.Pick != nil
}

// ConsensusOutcome is the vote reduction over a set of agent results
type ConsensusOutcome struct {
	Consensus     *string        `json:"consensus"`
	AgreementRate float64        `json:"agreement_rate"`
	Votes         map[string]int `json:"votes"`
	SuccessCount  int            `json:"success_count"`
}

// ConsensusReport is the full orchestrator output for one race
type ConsensusReport struct {
	RunID     uuid.UUID     `json:"run_id"`
	Race      RaceInfo      `json:"race"`
	Agents    []AgentResult `json:"agents"`
	CreatedAt time.Time     `json:"created_at"`
	Cached    bool          `json:"cached,omitempty"`
	ConsensusOutcome
}

// AnalysisResult is the output of a single-agent analysis request
type AnalysisResult struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Analysis   string `json:"analysis"`
	TokensUsed int    `json:"tokens_used"`
}
