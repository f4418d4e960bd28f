package models

// RacerRank is the racer's skill tier, ordered B2 < B1 < A2 < A1.
type RacerRank string

const (
	RankA1 RacerRank = "A1"
	RankA2 RacerRank = "A2"
	RankB1 RacerRank = "B1"
	RankB2 RacerRank = "B2"
)

// Default values applied when an entrant field is not recorded
const (
	DefaultWeight      = 52.0
	DefaultStartTiming = 0.15
	MaxPosition        = 8
)

// Numeric maps the tier onto 4..1 (A1..B2). Unknown tiers count as B1.
func (r RacerRank) Numeric() int {
	switch r {
	case RankA1:
		return 4
	case RankA2:
		return 3
	case RankB1:
		return 2
	case RankB2:
		return 1
	default:
		return 2
	}
}

// Valid reports whether r is one of the four known tiers
func (r RacerRank) Valid() bool {
	switch r {
	case RankA1, RankA2, RankB1, RankB2:
		return true
	default:
		return false
	}
}

// Entrant is one competitor's performance profile for a single race.
//
// Rates are on a 0-100 scale and default to 0 when unknown. AvgStartTiming
// and Weight are optional; use the getters to read them with defaults applied.
type Entrant struct {
	Position        int       `json:"position" validate:"min=1,max=8"`
	Name            string    `json:"name,omitempty"`
	RegistrationNo  string    `json:"registration_no,omitempty"`
	Rank            RacerRank `json:"rank,omitempty"`
	WinRateAll      float64   `json:"win_rate_all" validate:"gte=0"`
	PlaceRate2All   float64   `json:"place_rate_2_all" validate:"gte=0"`
	WinRateLocal    float64   `json:"win_rate_local" validate:"gte=0"`
	PlaceRate2Local float64   `json:"place_rate_2_local" validate:"gte=0"`
	MotorRate2      float64   `json:"motor_rate_2" validate:"gte=0"`
	BoatRate2       float64   `json:"boat_rate_2" validate:"gte=0"`
	AvgStartTiming  *float64  `json:"avg_start_timing,omitempty"`
	CurrentSeries   string    `json:"current_series,omitempty"`
	Weight          *float64  `json:"weight,omitempty"`
}

// HasStartTiming reports whether a usable average start timing was recorded.
// Zero and negative values come from unpopulated upstream rows and are ignored.
func (e *Entrant) HasStartTiming() bool {
	return e.AvgStartTiming != nil && *e.AvgStartTiming > 0
}

// GetStartTiming returns the recorded start timing or the supplied fallback
func (e *Entrant) GetStartTiming(fallback float64) float64 {
	if !e.HasStartTiming() {
		return fallback
	}
	return *e.AvgStartTiming
}

// GetWeight returns the racer weight or DefaultWeight if nil
func (e *Entrant) GetWeight() float64 {
	if e.Weight == nil || *e.Weight <= 0 {
		return DefaultWeight
	}
	return *e.Weight
}

// EquipmentRate returns the mean of the motor and hull 2-place rates
func (e *Entrant) EquipmentRate() float64 {
	return (e.MotorRate2 + e.BoatRate2) / 2
}
