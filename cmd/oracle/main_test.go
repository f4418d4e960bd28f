package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/boat-oracle/internal/agent"
	"github.com/yourusername/boat-oracle/internal/config"
	"github.com/yourusername/boat-oracle/internal/models"
)

func TestReadRaceCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.json")
	body := `{"race":{"venue_name":"Suminoe","race_date":"2024-03-01","race_number":12},
"entrants":[{"position":1,"name":"Alpha","win_rate_all":7.5,"avg_start_timing":0.14}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	card, err := readRaceCard(path)
	require.NoError(t, err)
	assert.Equal(t, "Suminoe", card.Race.VenueName)
	require.Len(t, card.Entrants, 1)
	assert.Equal(t, 0.14, *card.Entrants[0].AvgStartTiming)

	_, err = readRaceCard("")
	assert.Error(t, err)
	_, err = readRaceCard(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseWeights(t *testing.T) {
	cfg = &config.Config{Prediction: config.PredictionConfig{Weights: models.DefaultPredictionWeights()}}

	w, err := parseWeights(nil)
	require.NoError(t, err)
	assert.Nil(t, w)

	w, err = parseWeights(map[string]string{"win_rate_all": "0.5", "avg_st": "0"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, w.WinRateAll)
	assert.Equal(t, 0.0, w.AvgStart)
	assert.Equal(t, 0.15, w.MotorRate)

	_, err = parseWeights(map[string]string{"odds": "1"})
	assert.Error(t, err)
	_, err = parseWeights(map[string]string{"win_rate_all": "high"})
	assert.Error(t, err)
}

func TestRestrictAgents(t *testing.T) {
	all := map[string]agent.Settings{
		agent.ProviderClaude: {Enabled: true, APIKey: "a"},
		agent.ProviderOpenAI: {Enabled: true, APIKey: "b"},
		agent.ProviderGemini: {Enabled: true, APIKey: "c"},
	}

	got := restrictAgents(all, []string{" Claude", "gemini"})
	assert.Len(t, got, 2)
	assert.Contains(t, got, agent.ProviderClaude)
	assert.Contains(t, got, agent.ProviderGemini)
	assert.NotContains(t, got, agent.ProviderOpenAI)
}
