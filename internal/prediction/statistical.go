package prediction

import (
	"sort"

	"github.com/yourusername/boat-oracle/internal/models"
)

// Scorer ranks entrants by a weighted sum of seven normalised criteria.
// It holds no state and is safe for concurrent use.
type Scorer struct{}

// NewScorer creates a new statistical scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Name returns the predictor name
func (s *Scorer) Name() string {
	return "statistical"
}

// listStats holds the list-wide extremes every criterion is normalised against
type listStats struct {
	maxWinAll   float64
	maxWinLocal float64
	maxMotor    float64
	maxBoat     float64
	hasTiming   bool
	minTiming   float64
	maxTiming   float64
}

func collectStats(entrants []models.Entrant) listStats {
	var st listStats
	for i := range entrants {
		e := &entrants[i]
		if e.WinRateAll > st.maxWinAll {
			st.maxWinAll = e.WinRateAll
		}
		if e.WinRateLocal > st.maxWinLocal {
			st.maxWinLocal = e.WinRateLocal
		}
		if e.MotorRate2 > st.maxMotor {
			st.maxMotor = e.MotorRate2
		}
		if e.BoatRate2 > st.maxBoat {
			st.maxBoat = e.BoatRate2
		}
		if !e.HasStartTiming() {
			continue
		}
		timing := *e.AvgStartTiming
		if !st.hasTiming {
			st.minTiming, st.maxTiming, st.hasTiming = timing, timing, true
			continue
		}
		if timing < st.minTiming {
			st.minTiming = timing
		}
		if timing > st.maxTiming {
			st.maxTiming = timing
		}
	}
	return st
}

// Predict scores and ranks the entrants. The list must be non-empty;
// callers validate input with models.ValidateEntrants first.
func (s *Scorer) Predict(entrants []models.Entrant, weights models.PredictionWeights) models.StatisticalPrediction {
	st := collectStats(entrants)

	scores := make([]models.ScoreBreakdown, len(entrants))
	for i := range entrants {
		details := s.scoreDetails(&entrants[i], st, weights)
		total := 0.0
		for _, v := range details {
			total += v
		}
		scores[i] = models.ScoreBreakdown{
			Position: entrants[i].Position,
			Name:     entrants[i].Name,
			Total:    Round(total, 2),
			Details:  details,
		}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Total > scores[b].Total
	})

	positions := make([]int, len(scores))
	for i := range scores {
		scores[i].Rank = i + 1
		positions[i] = scores[i].Position
	}

	return models.StatisticalPrediction{
		Scores:  scores,
		Pick:    JoinPick(positions),
		Weights: weights,
	}
}

func (s *Scorer) scoreDetails(e *models.Entrant, st listStats, w models.PredictionWeights) map[string]float64 {
	return map[string]float64{
		models.CriterionWinRateAll:    rateScore(e.WinRateAll, st.maxWinAll, w.WinRateAll),
		models.CriterionWinRateLocal:  rateScore(e.WinRateLocal, st.maxWinLocal, w.WinRateLocal),
		models.CriterionMotorRate:     rateScore(e.MotorRate2, st.maxMotor, w.MotorRate),
		models.CriterionBoatRate:      rateScore(e.BoatRate2, st.maxBoat, w.BoatRate),
		models.CriterionAvgStart:      startScore(e, st, w.AvgStart),
		models.CriterionCourseRate:    Round(CourseWinRate(e.Position)*w.CourseRate, 2),
		models.CriterionCurrentSeries: Round(FormScore(e.CurrentSeries)*w.CurrentSeries, 2),
	}
}

// rateScore normalises value against the list maximum on a 0-100 scale
func rateScore(value, max, weight float64) float64 {
	return Round(value/SafeDivisor(max)*100*weight, 2)
}

// startScore inverts start timing so the quickest starter scores highest.
// Entrants without a recorded timing are scored as the slowest in the list.
func startScore(e *models.Entrant, st listStats, weight float64) float64 {
	if !st.hasTiming {
		return 0
	}
	spread := st.maxTiming - st.minTiming
	own := e.GetStartTiming(st.maxTiming)
	return Round((st.maxTiming-own)/SafeDivisor(spread)*100*weight, 2)
}
