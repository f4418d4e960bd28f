package models

// Criterion names used as keys in a ScoreBreakdown
const (
	CriterionWinRateAll    = "win_rate_all"
	CriterionWinRateLocal  = "win_rate_local"
	CriterionMotorRate     = "motor_rate"
	CriterionBoatRate      = "boat_rate"
	CriterionAvgStart      = "avg_st"
	CriterionCourseRate    = "course_rate"
	CriterionCurrentSeries = "current_series"
)

// PredictionWeights holds the seven non-negative statistical criterion weights.
// The weights are not required to sum to one.
type PredictionWeights struct {
	WinRateAll    float64 `json:"win_rate_all" mapstructure:"win_rate_all" validate:"gte=0"`
	WinRateLocal  float64 `json:"win_rate_local" mapstructure:"win_rate_local" validate:"gte=0"`
	MotorRate     float64 `json:"motor_rate" mapstructure:"motor_rate" validate:"gte=0"`
	BoatRate      float64 `json:"boat_rate" mapstructure:"boat_rate" validate:"gte=0"`
	AvgStart      float64 `json:"avg_st" mapstructure:"avg_st" validate:"gte=0"`
	CourseRate    float64 `json:"course_rate" mapstructure:"course_rate" validate:"gte=0"`
	CurrentSeries float64 `json:"current_series" mapstructure:"current_series" validate:"gte=0"`
}

// DefaultPredictionWeights returns the stock weight configuration
func DefaultPredictionWeights() PredictionWeights {
	return PredictionWeights{
		WinRateAll:    0.20,
		WinRateLocal:  0.15,
		MotorRate:     0.15,
		BoatRate:      0.10,
		AvgStart:      0.15,
		CourseRate:    0.15,
		CurrentSeries: 0.10,
	}
}

// Validate rejects negative weights
func (w PredictionWeights) Validate() error {
	return entrantValidator.Struct(w)
}

// ScoreBreakdown is one entrant's statistical score
type ScoreBreakdown struct {
	Position int                `json:"position"`
	Name     string             `json:"name,omitempty"`
	Total    float64            `json:"total"`
	Rank     int                `json:"rank"`
	Details  map[string]float64 `json:"details"`
}

// StatisticalPrediction is the ranked output of the statistical scorer
type StatisticalPrediction struct {
	Scores  []ScoreBreakdown  `json:"scores"`
	Pick    string            `json:"pick"`
	Weights PredictionWeights `json:"weights"`
}

// Estimator modes
const (
	ModeModel     = "model"
	ModeHeuristic = "heuristic"
)

// BoatProbability is one entrant's placement estimate. The three
// probabilities are independent per-position estimates and need not sum to one.
type BoatProbability struct {
	Position     int     `json:"position"`
	Name         string  `json:"name,omitempty"`
	ProbFirst    float64 `json:"prob_1st"`
	ProbSecond   float64 `json:"prob_2nd"`
	ProbThird    float64 `json:"prob_3rd"`
	ExpectedRank float64 `json:"expected_rank"`
}

// MLPrediction is the output of the probability estimator
type MLPrediction struct {
	Probabilities   []BoatProbability `json:"probabilities"`
	Pick            string            `json:"pick"`
	ModelConfidence float64           `json:"model_confidence"`
	Mode            string            `json:"mode"`
	ModelVersion    string            `json:"model_version,omitempty"`
}

// MeetsThreshold checks if the model confidence meets the given threshold
func (p *MLPrediction) MeetsThreshold(threshold float64) bool {
	return p.ModelConfidence >= threshold
}
