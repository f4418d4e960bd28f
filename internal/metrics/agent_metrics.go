package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Agent and consensus metrics
var (
	AgentCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_calls_total",
		Help:      "Total number of agent invocations by outcome",
	}, []string{"provider", "status"}) // success, error, disabled

	AgentLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "agent_latency_seconds",
		Help:      "Latency of external agent calls in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
	}, []string{"provider"})

	AgentTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_tokens_total",
		Help:      "Total number of tokens reported by external agents",
	}, []string{"provider"})

	ConsensusRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consensus_runs_total",
		Help:      "Total number of consensus runs by outcome",
	}, []string{"outcome"}) // consensus, no_consensus

	ConsensusAgreementRate = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "consensus_agreement_rate",
		Help:      "Agreement rate of consensus picks",
		Buckets:   []float64{0.25, 0.34, 0.5, 0.67, 0.75, 1.0},
	})

	ConsensusCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "consensus_cache_hit_ratio",
		Help:      "Hit ratio of the consensus report cache",
	})
)

// RecordAgentCall records one agent invocation. Disabled agents only count.
func RecordAgentCall(provider, status string, latency time.Duration, tokens int) {
	AgentCallsTotal.WithLabelValues(provider, status).Inc()
	if status == "disabled" {
		return
	}
	AgentLatency.WithLabelValues(provider).Observe(latency.Seconds())
	if tokens > 0 {
		AgentTokensTotal.WithLabelValues(provider).Add(float64(tokens))
	}
}

// RecordConsensus records a finished consensus run.
func RecordConsensus(hasConsensus bool, agreementRate float64) {
	if !hasConsensus {
		ConsensusRunsTotal.WithLabelValues("no_consensus").Inc()
		return
	}
	ConsensusRunsTotal.WithLabelValues("consensus").Inc()
	ConsensusAgreementRate.Observe(agreementRate)
}

// UpdateConsensusCacheHitRatio sets the consensus cache hit ratio gauge.
func UpdateConsensusCacheHitRatio(ratio float64) {
	ConsensusCacheHitRatio.Set(ratio)
}
