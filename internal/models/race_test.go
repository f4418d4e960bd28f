package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRace() RaceInfo {
	return RaceInfo{
		VenueName:  "Suminoe",
		RaceDate:   "2024-03-01",
		RaceNumber: 12,
	}
}

func TestValidateEntrants(t *testing.T) {
	tests := []struct {
		name     string
		entrants []Entrant
		wantErr  error
	}{
		{
			name:     "empty list",
			entrants: nil,
			wantErr:  ErrNoEntrants,
		},
		{
			name:     "duplicate position",
			entrants: []Entrant{{Position: 1}, {Position: 2}, {Position: 1}},
			wantErr:  ErrDuplicatePosition,
		},
		{
			name:     "position out of range",
			entrants: []Entrant{{Position: 9}},
			wantErr:  ErrInvalidEntrant,
		},
		{
			name:     "negative rate",
			entrants: []Entrant{{Position: 1, WinRateAll: -1}},
			wantErr:  ErrInvalidEntrant,
		},
		{
			name:     "valid",
			entrants: []Entrant{{Position: 1}, {Position: 2}, {Position: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntrants(tt.entrants)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRaceCard(t *testing.T) {
	card := &RaceCard{
		Race:     validRace(),
		Entrants: []Entrant{{Position: 1}, {Position: 2}},
	}
	require.NoError(t, ValidateRaceCard(card))

	card.Race.RaceDate = "01/03/2024"
	assert.ErrorIs(t, ValidateRaceCard(card), ErrInvalidRace)
	assert.ErrorIs(t, ValidateRaceCard(nil), ErrInvalidRace)
}

func TestRaceInfoDisplayTitle(t *testing.T) {
	race := validRace()
	assert.Equal(t, "Race 12", race.DisplayTitle())

	race.Title = "Grand Final"
	assert.Equal(t, "Grand Final", race.DisplayTitle())
}

func TestEntrantDefaults(t *testing.T) {
	e := Entrant{Position: 1, MotorRate2: 40, BoatRate2: 30}
	assert.False(t, e.HasStartTiming())
	assert.Equal(t, DefaultStartTiming, e.GetStartTiming(DefaultStartTiming))
	assert.Equal(t, DefaultWeight, e.GetWeight())
	assert.Equal(t, 35.0, e.EquipmentRate())

	zero := 0.0
	e.AvgStartTiming = &zero
	assert.False(t, e.HasStartTiming())

	st, w := 0.12, 50.5
	e.AvgStartTiming = &st
	e.Weight = &w
	assert.True(t, e.HasStartTiming())
	assert.Equal(t, 0.12, e.GetStartTiming(DefaultStartTiming))
	assert.Equal(t, 50.5, e.GetWeight())
}

func TestRacerRankNumeric(t *testing.T) {
	assert.Equal(t, 4, RankA1.Numeric())
	assert.Equal(t, 3, RankA2.Numeric())
	assert.Equal(t, 2, RankB1.Numeric())
	assert.Equal(t, 1, RankB2.Numeric())
	assert.Equal(t, 2, RacerRank("").Numeric())
	assert.False(t, RacerRank("C1").Valid())
}

func TestPredictionWeightsValidate(t *testing.T) {
	w := DefaultPredictionWeights()
	require.NoError(t, w.Validate())

	w.AvgStart = -0.1
	assert.Error(t, w.Validate())
}
