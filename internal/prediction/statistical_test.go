package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/boat-oracle/internal/models"
)

func ptr(v float64) *float64 { return &v }

func sampleEntrants() []models.Entrant {
	return []models.Entrant{
		{Position: 1, Name: "Alpha", WinRateAll: 7.5, WinRateLocal: 8.0, MotorRate2: 45, BoatRate2: 38, AvgStartTiming: ptr(0.14), CurrentSeries: "12"},
		{Position: 2, Name: "Bravo", WinRateAll: 6.0, WinRateLocal: 5.5, MotorRate2: 33, BoatRate2: 40, AvgStartTiming: ptr(0.17), CurrentSeries: "34"},
		{Position: 3, Name: "Charlie", WinRateAll: 5.2, WinRateLocal: 6.1, MotorRate2: 50, BoatRate2: 30, AvgStartTiming: ptr(0.12), CurrentSeries: "21"},
		{Position: 4, Name: "Delta", WinRateAll: 4.8, WinRateLocal: 0, MotorRate2: 28, BoatRate2: 29, CurrentSeries: ""},
		{Position: 5, Name: "Echo", WinRateAll: 3.9, WinRateLocal: 4.2, MotorRate2: 31, BoatRate2: 35, AvgStartTiming: ptr(0.20), CurrentSeries: "56"},
		{Position: 6, Name: "Foxtrot", WinRateAll: 5.5, WinRateLocal: 5.0, MotorRate2: 36, BoatRate2: 33, AvgStartTiming: ptr(0.16), CurrentSeries: "x3"},
	}
}

func TestScorerRanksFormPermutation(t *testing.T) {
	scorer := NewScorer()
	result := scorer.Predict(sampleEntrants(), models.DefaultPredictionWeights())

	require.Len(t, result.Scores, 6)
	seen := make(map[int]bool)
	for i, s := range result.Scores {
		assert.Equal(t, i+1, s.Rank)
		seen[s.Position] = true
		if i > 0 {
			assert.GreaterOrEqual(t, result.Scores[i-1].Total, s.Total)
		}
	}
	assert.Len(t, seen, 6)
}

func TestScorerIsIdempotent(t *testing.T) {
	scorer := NewScorer()
	weights := models.DefaultPredictionWeights()
	first := scorer.Predict(sampleEntrants(), weights)
	second := scorer.Predict(sampleEntrants(), weights)
	assert.Equal(t, first, second)
}

func TestScorerMaxHolderScoresFullWeight(t *testing.T) {
	weights := models.DefaultPredictionWeights()
	result := NewScorer().Predict(sampleEntrants(), weights)

	byPosition := make(map[int]models.ScoreBreakdown)
	for _, s := range result.Scores {
		byPosition[s.Position] = s
	}

	assert.InDelta(t, weights.WinRateAll*100, byPosition[1].Details[models.CriterionWinRateAll], 1e-9)
	assert.InDelta(t, weights.WinRateLocal*100, byPosition[1].Details[models.CriterionWinRateLocal], 1e-9)
	assert.InDelta(t, weights.MotorRate*100, byPosition[3].Details[models.CriterionMotorRate], 1e-9)
	assert.InDelta(t, weights.BoatRate*100, byPosition[2].Details[models.CriterionBoatRate], 1e-9)
	assert.InDelta(t, weights.AvgStart*100, byPosition[3].Details[models.CriterionAvgStart], 1e-9)
}

func TestScorerMissingStartTimingScoresWorst(t *testing.T) {
	result := NewScorer().Predict(sampleEntrants(), models.DefaultPredictionWeights())
	for _, s := range result.Scores {
		if s.Position == 4 || s.Position == 5 {
			assert.Equal(t, 0.0, s.Details[models.CriterionAvgStart], "position %d", s.Position)
		}
	}
}

func TestScorerNoRecordedTimings(t *testing.T) {
	entrants := []models.Entrant{
		{Position: 1, AvgStartTiming: ptr(0)},
		{Position: 2},
	}
	result := NewScorer().Predict(entrants, models.DefaultPredictionWeights())
	for _, s := range result.Scores {
		assert.Equal(t, 0.0, s.Details[models.CriterionAvgStart])
	}
}

func TestScorerEqualTimings(t *testing.T) {
	entrants := []models.Entrant{
		{Position: 1, AvgStartTiming: ptr(0.15)},
		{Position: 2, AvgStartTiming: ptr(0.15)},
	}
	result := NewScorer().Predict(entrants, models.DefaultPredictionWeights())
	for _, s := range result.Scores {
		assert.Equal(t, 0.0, s.Details[models.CriterionAvgStart])
	}
}

func TestScorerAllZeroPicksInnerLanes(t *testing.T) {
	entrants := make([]models.Entrant, 6)
	for i := range entrants {
		entrants[i] = models.Entrant{Position: i + 1}
	}

	result := NewScorer().Predict(entrants, models.DefaultPredictionWeights())
	assert.Equal(t, "1-2-3", result.Pick)

	top := result.Scores[0]
	assert.Equal(t, 1, top.Position)
	// course 55*0.15 + neutral form 50*0.10
	assert.Equal(t, 13.25, top.Total)
	assert.Equal(t, 8.25, top.Details[models.CriterionCourseRate])
	assert.Equal(t, 5.0, top.Details[models.CriterionCurrentSeries])
}

func TestScorerTiesKeepInputOrder(t *testing.T) {
	entrants := []models.Entrant{
		{Position: 7, WinRateAll: 5},
		{Position: 8, WinRateAll: 5},
	}
	result := NewScorer().Predict(entrants, models.DefaultPredictionWeights())
	assert.Equal(t, 7, result.Scores[0].Position)
	assert.Equal(t, "7-8", result.Pick)
}

func TestScorerDetailKeys(t *testing.T) {
	result := NewScorer().Predict(sampleEntrants()[:1], models.DefaultPredictionWeights())
	keys := []string{
		models.CriterionWinRateAll,
		models.CriterionWinRateLocal,
		models.CriterionMotorRate,
		models.CriterionBoatRate,
		models.CriterionAvgStart,
		models.CriterionCourseRate,
		models.CriterionCurrentSeries,
	}
	for _, k := range keys {
		assert.Contains(t, result.Scores[0].Details, k)
	}
	assert.Equal(t, "1", result.Pick)
}

func TestFormScore(t *testing.T) {
	tests := []struct {
		series string
		want   float64
	}{
		{"", 50},
		{"xyz", 50},
		{"1", 100},
		{"12", 90},
		{"6F1", 55},
		{"123456", 310.0 / 6},
	}
	for _, tt := range tests {
		t.Run(tt.series, func(t *testing.T) {
			assert.InDelta(t, tt.want, FormScore(tt.series), 1e-9)
		})
	}
}

func TestCourseWinRate(t *testing.T) {
	assert.Equal(t, 55.0, CourseWinRate(1))
	assert.Equal(t, 2.0, CourseWinRate(6))
	assert.Equal(t, 10.0, CourseWinRate(7))
}

func TestRoundAndJoinPick(t *testing.T) {
	assert.Equal(t, 1.24, Round(1.235, 2))
	assert.Equal(t, 0.3333, Round(1.0/3, 4))
	assert.Equal(t, "3-1-2", JoinPick([]int{3, 1, 2, 4}))
	assert.Equal(t, "", JoinPick(nil))
	assert.Equal(t, 1.0, NormalizeProbability(1.7))
	assert.Equal(t, 0.0, NormalizeProbability(-0.2))
}
