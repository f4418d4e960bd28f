package magi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/boat-oracle/internal/agent"
	"github.com/yourusername/boat-oracle/internal/logger"
	"github.com/yourusername/boat-oracle/internal/metrics"
	"github.com/yourusername/boat-oracle/internal/models"
	"github.com/yourusername/boat-oracle/internal/prompt"
)

// DefaultAgentTimeout bounds a single agent call
const DefaultAgentTimeout = 60 * time.Second

// AgentSet maps a provider name to its settings. Providers absent from the
// set are reported as disabled.
type AgentSet map[string]agent.Settings

// Key returns a stable description of the usable agents and their models,
// without credentials.
func (s AgentSet) Key() string {
	key := ""
	for _, p := range agent.Providers {
		st, ok := s[p]
		if !ok || !st.Usable() {
			continue
		}
		st.Provider = p
		key += fmt.Sprintf("%s=%s;", p, st.ModelOrDefault())
	}
	return key
}

// Runner produces a consensus report for a race
type Runner interface {
	Run(ctx context.Context, card *models.RaceCard, agents AgentSet) (*models.ConsensusReport, error)
}

// Options configures an Orchestrator
type Options struct {
	AgentTimeout time.Duration
	Logger       *logger.AgentLogger
}

// Orchestrator dispatches one prompt to every usable agent concurrently and
// tallies the parsed picks.
type Orchestrator struct {
	factory agent.Factory
	builder *prompt.Builder
	parser  *Parser
	timeout time.Duration
	log     *logger.AgentLogger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(factory agent.Factory, builder *prompt.Builder, opts Options) *Orchestrator {
	if builder == nil {
		builder = prompt.NewBuilder()
	}
	if opts.AgentTimeout <= 0 {
		opts.AgentTimeout = DefaultAgentTimeout
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		opts.Logger = logger.NewAgentLogger(l)
	}
	return &Orchestrator{
		factory: factory,
		builder: builder,
		parser:  NewParser(),
		timeout: opts.AgentTimeout,
		log:     opts.Logger,
	}
}

// Run dispatches the race to the agents and returns the full report. Agent
// failures are recorded in the report and never returned; the error is only
// set when the prompt itself cannot be rendered.
func (o *Orchestrator) Run(ctx context.Context, card *models.RaceCard, agents AgentSet) (*models.ConsensusReport, error) {
	start := time.Now()

	text, err := o.builder.Build(prompt.KindMagi, card)
	if err != nil {
		return nil, fmt.Errorf("failed to build consensus prompt: %w", err)
	}
	req := agent.Request{
		Prompt:    text,
		System:    o.builder.SystemPrompt(),
		MaxTokens: agent.DefaultMaxTokens,
	}

	runID := uuid.New()
	results := make([]models.AgentResult, len(agent.Providers))
	dispatched := 0

	var wg sync.WaitGroup
	for i, provider := range agent.Providers {
		s := agents[provider]
		s.Provider = provider
		if !s.Usable() {
			results[i] = models.AgentResult{
				Name:     NameFor(provider),
				Provider: provider,
				Status:   models.AgentStatusDisabled,
			}
			metrics.RecordAgentCall(provider, string(models.AgentStatusDisabled), 0, 0)
			continue
		}

		dispatched++
		wg.Add(1)
		go func(i int, s agent.Settings) {
			defer wg.Done()
			results[i] = o.invoke(ctx, runID, s, req)
		}(i, s)
	}
	wg.Wait()

	outcome := Tally(results)
	report := &models.ConsensusReport{
		RunID:            runID,
		Race:             card.Race,
		Agents:           results,
		CreatedAt:        time.Now().UTC(),
		ConsensusOutcome: outcome,
	}

	consensus := ""
	if outcome.Consensus != nil {
		consensus = *outcome.Consensus
	}
	metrics.RecordConsensus(outcome.Consensus != nil, outcome.AgreementRate)
	o.log.LogConsensus(runID.String(), card.Race.ID.String(), consensus, outcome.AgreementRate,
		outcome.SuccessCount, dispatched, float64(time.Since(start).Milliseconds()))

	return report, nil
}

// invoke runs one agent under its own timeout and converts every failure,
// including a panic, into an error result.
func (o *Orchestrator) invoke(ctx context.Context, runID uuid.UUID, s agent.Settings, req agent.Request) (res models.AgentResult) {
	start := time.Now()
	res = models.AgentResult{
		Name:     NameFor(s.Provider),
		Provider: s.Provider,
		Model:    s.Model,
	}

	defer func() {
		if r := recover(); r != nil {
			res.Status = models.AgentStatusError
			detail := fmt.Sprintf("agent panicked: %v", r)
			res.Error = &detail
			res.Pick, res.Analysis, res.Confidence = nil, nil, nil
		}
		res.LatencyMs = time.Since(start).Milliseconds()
		o.record(runID, res, time.Since(start))
	}()

	a, err := o.factory.New(s)
	if err != nil {
		return failed(res, agent.Classify(s.Provider, err))
	}
	res.Model = a.Model()

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	completion, err := a.Complete(callCtx, req)
	if err != nil {
		return failed(res, agent.Classify(s.Provider, err))
	}

	text := completion.Text
	res.Status = models.AgentStatusSuccess
	res.Analysis = &text
	res.Pick, res.Confidence = o.parser.Parse(text)
	res.TokensUsed = completion.TokensUsed
	if completion.Model != "" {
		res.Model = completion.Model
	}
	return res
}

func (o *Orchestrator) record(runID uuid.UUID, res models.AgentResult, latency time.Duration) {
	pick, detail := "", ""
	if res.Pick != nil {
		pick = *res.Pick
	}
	if res.Error != nil {
		detail = *res.Error
	}
	metrics.RecordAgentCall(res.Provider, string(res.Status), latency, res.TokensUsed)
	o.log.LogAgentResult(runID.String(), res.Name, res.Provider, string(res.Status), pick, detail, res.TokensUsed, res.LatencyMs)
}

func failed(res models.AgentResult, err *agent.Error) models.AgentResult {
	detail := err.Error()
	res.Status = models.AgentStatusError
	res.Error = &detail
	return res
}
