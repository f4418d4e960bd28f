package ml

import (
	"github.com/yourusername/boat-oracle/internal/models"
)

// FeatureSetVersion identifies the feature layout below. Bump it whenever
// FeatureNames changes so stale artifacts are rejected at load time.
const FeatureSetVersion = "v2"

// FeatureNames is the fixed column order of every encoded feature vector
var FeatureNames = []string{
	"position",
	"win_rate_all",
	"place_rate_2_all",
	"win_rate_local",
	"place_rate_2_local",
	"motor_rate_2",
	"boat_rate_2",
	"avg_start_timing",
	"rank_numeric",
	"weight",
	"course_advantage",
	"relative_win_rate",
	"motor_boat_combined",
}

// courseAdvantage is the relative lane advantage used as a model input
var courseAdvantage = map[int]float64{
	1: 1.0,
	2: 0.4,
	3: 0.35,
	4: 0.3,
	5: 0.2,
	6: 0.1,
}

const defaultCourseAdvantage = 0.2

// CourseAdvantage returns the lane advantage constant for a position
func CourseAdvantage(position int) float64 {
	if v, ok := courseAdvantage[position]; ok {
		return v
	}
	return defaultCourseAdvantage
}

// FeatureEncoder turns an entrant list into model input rows
type FeatureEncoder struct{}

// NewFeatureEncoder creates a new feature encoder
func NewFeatureEncoder() *FeatureEncoder {
	return &FeatureEncoder{}
}

// Names returns a copy of the feature column names
func (f *FeatureEncoder) Names() []string {
	out := make([]string, len(FeatureNames))
	copy(out, FeatureNames)
	return out
}

// Encode returns one feature vector per entrant, in input order
func (f *FeatureEncoder) Encode(entrants []models.Entrant) [][]float64 {
	meanWin := 0.0
	for i := range entrants {
		meanWin += entrants[i].WinRateAll
	}
	if len(entrants) > 0 {
		meanWin /= float64(len(entrants))
	}

	rows := make([][]float64, len(entrants))
	for i := range entrants {
		rows[i] = f.encodeOne(&entrants[i], meanWin)
	}
	return rows
}

func (f *FeatureEncoder) encodeOne(e *models.Entrant, meanWin float64) []float64 {
	return []float64{
		float64(e.Position),
		e.WinRateAll,
		e.PlaceRate2All,
		e.WinRateLocal,
		e.PlaceRate2Local,
		e.MotorRate2,
		e.BoatRate2,
		e.GetStartTiming(models.DefaultStartTiming),
		float64(e.Rank.Numeric()),
		e.GetWeight(),
		CourseAdvantage(e.Position),
		e.WinRateAll - meanWin,
		e.EquipmentRate(),
	}
}
