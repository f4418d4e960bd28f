// Package service wires the prediction paths together: validation, scoring,
// estimation, consensus, analysis, metrics and outcome publishing.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/boat-oracle/internal/agent"
	"github.com/yourusername/boat-oracle/internal/events"
	"github.com/yourusername/boat-oracle/internal/logger"
	"github.com/yourusername/boat-oracle/internal/magi"
	"github.com/yourusername/boat-oracle/internal/metrics"
	"github.com/yourusername/boat-oracle/internal/models"
	"github.com/yourusername/boat-oracle/internal/prediction"
	"github.com/yourusername/boat-oracle/internal/prompt"
)

// Prediction kinds used in metrics, logs and event subjects
const (
	KindStatistical = events.KindStatistical
	KindML          = events.KindML
	KindConsensus   = events.KindConsensus
	KindAnalysis    = events.KindAnalysis
)

// ProbabilityEstimator produces placement probabilities
type ProbabilityEstimator interface {
	Predict(entrants []models.Entrant) models.MLPrediction
}

// Options holds the collaborators of a PredictionService. Nil optional
// collaborators get working defaults.
type Options struct {
	Scorer    *prediction.Scorer
	Estimator ProbabilityEstimator
	Consensus magi.Runner
	Agents    agent.Factory
	Prompts   *prompt.Builder
	Weights   models.PredictionWeights
	AgentSet  magi.AgentSet
	Publisher events.Publisher
	Subjects  events.Subjects
	Logger    *logrus.Logger

	// ConfidenceThreshold flags ML predictions below this model confidence
	ConfidenceThreshold float64
}

// PredictionService runs the three prediction paths and single-agent analysis
type PredictionService struct {
	scorer    *prediction.Scorer
	estimator ProbabilityEstimator
	consensus magi.Runner
	agents    agent.Factory
	prompts   *prompt.Builder
	weights   models.PredictionWeights
	agentSet  magi.AgentSet
	publisher events.Publisher
	subjects  events.Subjects
	logger    *logrus.Logger
	plog      *logger.PredictionLogger
	alog      *logger.AgentLogger
	threshold float64
}

// NewPredictionService creates a new prediction service
func NewPredictionService(opts Options) *PredictionService {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetLevel(logrus.PanicLevel)
	}
	if opts.Scorer == nil {
		opts.Scorer = prediction.NewScorer()
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.NewBuilder()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.Weights == (models.PredictionWeights{}) {
		opts.Weights = models.DefaultPredictionWeights()
	}

	return &PredictionService{
		scorer:    opts.Scorer,
		estimator: opts.Estimator,
		consensus: opts.Consensus,
		agents:    opts.Agents,
		prompts:   opts.Prompts,
		weights:   opts.Weights,
		agentSet:  opts.AgentSet,
		publisher: opts.Publisher,
		subjects:  opts.Subjects,
		logger:    opts.Logger,
		plog:      logger.NewPredictionLogger(opts.Logger),
		alog:      logger.NewAgentLogger(opts.Logger),
		threshold: opts.ConfidenceThreshold,
	}
}

// Statistical ranks the race card with the weighted scorer. weights may be
// nil to use the configured defaults.
func (s *PredictionService) Statistical(ctx context.Context, card *models.RaceCard, weights *models.PredictionWeights) (*models.StatisticalPrediction, error) {
	start := time.Now()
	if err := s.validate(KindStatistical, card); err != nil {
		return nil, err
	}

	w := s.weights
	if weights != nil {
		if err := weights.Validate(); err != nil {
			metrics.RecordPredictionError(KindStatistical, "invalid_weights")
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		w = *weights
	}

	result := s.scorer.Predict(card.Entrants, w)
	elapsed := time.Since(start)

	metrics.RecordPrediction(KindStatistical, s.scorer.Name(), elapsed)
	s.plog.LogStatisticalPrediction(card.Race.ID.String(), len(card.Entrants), result.Pick, msSince(start))
	s.publish(KindStatistical, card.Race, result)
	return &result, nil
}

// ML estimates placement probabilities with the trained model or its heuristic fallback
func (s *PredictionService) ML(ctx context.Context, card *models.RaceCard) (*models.MLPrediction, error) {
	start := time.Now()
	if err := s.validate(KindML, card); err != nil {
		return nil, err
	}
	if s.estimator == nil {
		return nil, fmt.Errorf("%w: no estimator configured", ErrInvalidRequest)
	}

	result := s.estimator.Predict(card.Entrants)

	metrics.RecordPrediction(KindML, result.Mode, time.Since(start))
	s.plog.LogMLPrediction(card.Race.ID.String(), result.Mode, result.ModelVersion, result.Pick, result.ModelConfidence, msSince(start))
	if s.threshold > 0 && !result.MeetsThreshold(s.threshold) {
		s.logger.WithFields(logrus.Fields{
			"race_id":    card.Race.ID.String(),
			"confidence": result.ModelConfidence,
			"threshold":  s.threshold,
		}).Info("ML prediction below confidence threshold")
	}
	s.publish(KindML, card.Race, result)
	return &result, nil
}

// Consensus runs the multi-agent orchestrator. agents may be nil to use the
// configured line-up. Agent failures never surface as errors.
func (s *PredictionService) Consensus(ctx context.Context, card *models.RaceCard, agents magi.AgentSet) (*models.ConsensusReport, error) {
	start := time.Now()
	if err := s.validate(KindConsensus, card); err != nil {
		return nil, err
	}
	if s.consensus == nil {
		return nil, fmt.Errorf("%w: no consensus runner configured", ErrInvalidRequest)
	}
	if agents == nil {
		agents = s.agentSet
	}

	report, err := s.consensus.Run(ctx, card, agents)
	if err != nil {
		metrics.RecordPredictionError(KindConsensus, "prompt")
		return nil, err
	}

	mode := "live"
	if report.Cached {
		mode = "cached"
	}
	metrics.RecordPrediction(KindConsensus, mode, time.Since(start))
	s.publish(KindConsensus, card.Race, report)
	return report, nil
}

// AnalysisRequest asks one agent for a free-text analysis
type AnalysisRequest struct {
	Card     *models.RaceCard
	Provider string
	// Kind is prediction, analysis or custom
	Kind         prompt.Kind
	CustomPrompt string
	// Settings overrides the configured settings of the provider when set
	Settings *agent.Settings
}

// Analyze sends one prompt to one agent. Unlike consensus runs, agent
// failures are returned to the caller.
func (s *PredictionService) Analyze(ctx context.Context, req AnalysisRequest) (*models.AnalysisResult, error) {
	start := time.Now()
	if err := s.validate(KindAnalysis, req.Card); err != nil {
		return nil, err
	}
	if s.agents == nil {
		return nil, fmt.Errorf("%w: no agent factory configured", ErrInvalidRequest)
	}

	text, err := s.analysisPrompt(req)
	if err != nil {
		metrics.RecordPredictionError(KindAnalysis, "prompt")
		return nil, err
	}

	settings, ok := s.agentSet[req.Provider]
	if req.Settings != nil {
		settings, ok = *req.Settings, true
	}
	settings.Provider = req.Provider
	if !ok || !settings.Usable() {
		metrics.RecordPredictionError(KindAnalysis, "agent_unavailable")
		return nil, fmt.Errorf("%w: %s", ErrAgentUnavailable, req.Provider)
	}

	a, err := s.agents.New(settings)
	if err != nil {
		metrics.RecordPredictionError(KindAnalysis, "agent_unavailable")
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}

	completion, err := a.Complete(ctx, agent.Request{
		Prompt:    text,
		System:    s.prompts.SystemPrompt(),
		MaxTokens: agent.AnalysisMaxTokens,
	})
	if err != nil {
		classified := agent.Classify(req.Provider, err)
		metrics.RecordAgentCall(req.Provider, string(models.AgentStatusError), time.Since(start), 0)
		metrics.RecordPredictionError(KindAnalysis, classified.Code)
		return nil, classified
	}

	result := &models.AnalysisResult{
		Provider:   req.Provider,
		Model:      a.Model(),
		Analysis:   completion.Text,
		TokensUsed: completion.TokensUsed,
	}
	if completion.Model != "" {
		result.Model = completion.Model
	}

	metrics.RecordAgentCall(req.Provider, string(models.AgentStatusSuccess), time.Since(start), completion.TokensUsed)
	metrics.RecordPrediction(KindAnalysis, string(req.Kind), time.Since(start))
	s.alog.LogAnalysis(req.Provider, result.Model, string(req.Kind), result.TokensUsed, msSince(start))
	s.publish(KindAnalysis, req.Card.Race, result)
	return result, nil
}

func (s *PredictionService) analysisPrompt(req AnalysisRequest) (string, error) {
	switch req.Kind {
	case prompt.KindCustom:
		if req.CustomPrompt == "" {
			return "", ErrEmptyPrompt
		}
		return req.CustomPrompt, nil
	case prompt.KindPrediction, prompt.KindAnalysis:
		return s.prompts.Build(req.Kind, req.Card)
	default:
		return "", fmt.Errorf("%w: %s", prompt.ErrUnknownPromptKind, req.Kind)
	}
}

// AgentSet returns the configured agent line-up
func (s *PredictionService) AgentSet() magi.AgentSet {
	return s.agentSet
}

func (s *PredictionService) validate(kind string, card *models.RaceCard) error {
	err := models.ValidateRaceCard(card)
	if err == nil {
		return nil
	}

	reason := "invalid_race"
	switch {
	case errors.Is(err, models.ErrNoEntrants):
		reason = "no_entrants"
	case errors.Is(err, models.ErrDuplicatePosition):
		reason = "duplicate_position"
	case errors.Is(err, models.ErrInvalidEntrant):
		reason = "invalid_entrant"
	}
	metrics.RecordPredictionError(kind, reason)
	return err
}

// publish sends the outcome to subscribers. Publishing failures are logged
// and never fail the request.
func (s *PredictionService) publish(kind string, race models.RaceInfo, payload interface{}) {
	subject := s.subjects.Completed(kind)
	if err := s.publisher.Publish(subject, events.NewEvent(kind, race, payload)); err != nil {
		s.logger.WithFields(logrus.Fields{
			"subject": subject,
			"kind":    kind,
		}).WithError(err).Warn("Failed to publish prediction outcome")
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
