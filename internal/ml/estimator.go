package ml

import (
	"errors"
	"sort"

	"github.com/yourusername/boat-oracle/internal/logger"
	"github.com/yourusername/boat-oracle/internal/models"
	"github.com/yourusername/boat-oracle/internal/prediction"
)

// heuristicCourseBonus sharply favours the innermost lane
var heuristicCourseBonus = map[int]float64{
	1: 30,
	2: 10,
	3: 8,
	4: 6,
	5: 4,
	6: 2,
}

const defaultHeuristicCourseBonus = 5.0

// Fixed fractions of the win probability used as 2nd/3rd place estimates
// when no trained model is available.
const (
	secondPlaceFraction = 0.8
	thirdPlaceFraction  = 0.7
)

// Estimator produces per-entrant placement probabilities. It is immutable
// after construction and safe for concurrent use.
type Estimator struct {
	encoder  *FeatureEncoder
	artifact *Artifact
	path     string
	loadErr  error
}

// NewEstimator loads the artifact at modelPath. A missing or unusable artifact
// is logged and the estimator runs on the heuristic; it never fails.
func NewEstimator(modelPath string, plog *logger.PredictionLogger) *Estimator {
	e := &Estimator{encoder: NewFeatureEncoder(), path: modelPath}
	if modelPath == "" {
		e.loadErr = ErrArtifactNotFound
		ModelLoaded.Set(0)
		return e
	}

	artifact, err := LoadArtifact(modelPath)
	if err != nil {
		e.loadErr = err
		ModelLoadFailuresTotal.WithLabelValues(loadFailureReason(err)).Inc()
		ModelLoaded.Set(0)
		if plog != nil {
			plog.LogModelLoadFailure(modelPath, err)
		}
		return e
	}

	e.artifact = artifact
	ModelLoaded.Set(1)
	if plog != nil {
		plog.LogModelLoaded(modelPath, artifact.Name, artifact.Version)
	}
	return e
}

// NewEstimatorFromArtifact builds a model-mode estimator from an in-memory artifact
func NewEstimatorFromArtifact(a *Artifact) (*Estimator, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{encoder: NewFeatureEncoder(), artifact: a}, nil
}

// NewHeuristicEstimator builds an estimator that never uses a trained model
func NewHeuristicEstimator() *Estimator {
	return &Estimator{encoder: NewFeatureEncoder(), loadErr: ErrArtifactNotFound}
}

func loadFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrArtifactNotFound):
		return "not_found"
	case errors.Is(err, ErrFeatureMismatch):
		return "feature_mismatch"
	case errors.Is(err, ErrArtifactInvalid):
		return "invalid"
	default:
		return "io"
	}
}

// Mode returns models.ModeModel when a trained artifact is active
func (e *Estimator) Mode() string {
	if e.artifact != nil {
		return models.ModeModel
	}
	return models.ModeHeuristic
}

// ModelVersion returns the active artifact version, empty in heuristic mode
func (e *Estimator) ModelVersion() string {
	if e.artifact == nil {
		return ""
	}
	return e.artifact.Version
}

// ModelPath returns the configured artifact path
func (e *Estimator) ModelPath() string {
	return e.path
}

// LoadError returns why the artifact is not in use, or nil
func (e *Estimator) LoadError() error {
	return e.loadErr
}

// Predict estimates placement probabilities for every entrant. Output is
// sorted by win probability, descending.
func (e *Estimator) Predict(entrants []models.Entrant) models.MLPrediction {
	var probs []models.BoatProbability
	if e.artifact != nil {
		probs = e.modelProbabilities(entrants)
	} else {
		probs = heuristicProbabilities(entrants)
	}

	sort.SliceStable(probs, func(a, b int) bool {
		return probs[a].ProbFirst > probs[b].ProbFirst
	})

	positions := make([]int, len(probs))
	for i := range probs {
		positions[i] = probs[i].Position
	}

	EstimatorPredictionsTotal.WithLabelValues(e.Mode()).Inc()
	return models.MLPrediction{
		Probabilities:   probs,
		Pick:            prediction.JoinPick(positions),
		ModelConfidence: Confidence(probs),
		Mode:            e.Mode(),
		ModelVersion:    e.ModelVersion(),
	}
}

func (e *Estimator) modelProbabilities(entrants []models.Entrant) []models.BoatProbability {
	rows := e.encoder.Encode(entrants)
	out := make([]models.BoatProbability, len(entrants))
	for i, row := range rows {
		p := e.artifact.PredictProba(row)
		out[i] = models.BoatProbability{
			Position:     entrants[i].Position,
			Name:         entrants[i].Name,
			ProbFirst:    prediction.Round(p[0], 4),
			ProbSecond:   prediction.Round(p[1], 4),
			ProbThird:    prediction.Round(p[2], 4),
			ExpectedRank: prediction.Round(ExpectedRank(p), 2),
		}
	}
	return out
}

// HeuristicScore is the four-signal fallback score of one entrant
func HeuristicScore(e *models.Entrant) float64 {
	bonus, ok := heuristicCourseBonus[e.Position]
	if !ok {
		bonus = defaultHeuristicCourseBonus
	}
	return e.WinRateAll*2 + e.WinRateLocal*1.5 + e.MotorRate2 + e.BoatRate2*0.5 + bonus
}

func heuristicProbabilities(entrants []models.Entrant) []models.BoatProbability {
	scores := make([]float64, len(entrants))
	total := 0.0
	for i := range entrants {
		scores[i] = HeuristicScore(&entrants[i])
		total += scores[i]
	}
	total = prediction.SafeDivisor(total)

	n := float64(len(entrants))
	out := make([]models.BoatProbability, len(entrants))
	for i := range entrants {
		p1 := scores[i] / total
		out[i] = models.BoatProbability{
			Position:     entrants[i].Position,
			Name:         entrants[i].Name,
			ProbFirst:    prediction.Round(p1, 4),
			ProbSecond:   prediction.Round(p1*secondPlaceFraction, 4),
			ProbThird:    prediction.Round(p1*thirdPlaceFraction, 4),
			ExpectedRank: prediction.Round((n+1)-n*p1, 2),
		}
	}
	return out
}

// Confidence is twice the gap between the two highest win probabilities,
// clamped to [0,1]. probs must already be sorted by win probability.
func Confidence(probs []models.BoatProbability) float64 {
	switch len(probs) {
	case 0:
		return 0
	case 1:
		return prediction.Round(prediction.NormalizeProbability(probs[0].ProbFirst), 4)
	}
	gap := (probs[0].ProbFirst - probs[1].ProbFirst) * 2
	return prediction.Round(prediction.NormalizeProbability(gap), 4)
}
