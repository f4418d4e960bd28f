package magi

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/boat-oracle/internal/agent"
	"github.com/yourusername/boat-oracle/internal/models"
	"github.com/yourusername/boat-oracle/internal/prompt"
)

// MockFactory is a mock implementation of agent.Factory
type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) New(s agent.Settings) (agent.Agent, error) {
	args := m.Called(s.Provider)
	a, _ := args.Get(0).(agent.Agent)
	return a, args.Error(1)
}

type stubAgent struct {
	provider string
	text     string
	tokens   int
	err      error
	delay    time.Duration
	panics   bool
	prompts  int32
}

func (s *stubAgent) Provider() string { return s.provider }
func (s *stubAgent) Model() string    { return s.provider + "-test" }

func (s *stubAgent) Complete(ctx context.Context, req agent.Request) (*agent.Completion, error) {
	atomic.AddInt32(&s.prompts, 1)
	if s.panics {
		panic("decoder exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &agent.Completion{Text: s.text, Model: s.Model(), TokensUsed: s.tokens}, nil
}

func testCard() *models.RaceCard {
	return &models.RaceCard{
		Race: models.RaceInfo{VenueName: "Suminoe", RaceDate: "2024-03-01", RaceNumber: 12},
		Entrants: []models.Entrant{
			{Position: 1, Name: "Alpha", Rank: models.RankA1, WinRateAll: 7.2},
			{Position: 2, Name: "Bravo", Rank: models.RankB1, WinRateAll: 4.1},
		},
	}
}

func enabled(providers ...string) AgentSet {
	set := AgentSet{}
	for _, p := range providers {
		set[p] = agent.Settings{Enabled: true, APIKey: "key-" + p}
	}
	return set
}

func TestRunAllDisabled(t *testing.T) {
	factory := new(MockFactory)
	o := NewOrchestrator(factory, prompt.NewBuilder(), Options{})

	agents := AgentSet{
		agent.ProviderClaude: {Enabled: true},
		agent.ProviderOpenAI: {APIKey: "sk"},
	}
	report, err := o.Run(context.Background(), testCard(), agents)
	require.NoError(t, err)

	require.Len(t, report.Agents, 4)
	for i, r := range report.Agents {
		assert.Equal(t, models.AgentStatusDisabled, r.Status)
		assert.Equal(t, agent.Providers[i], r.Provider)
		assert.Nil(t, r.Pick)
	}
	assert.Nil(t, report.Consensus)
	assert.Equal(t, 0.0, report.AgreementRate)
	assert.Empty(t, report.Votes)
	assert.Equal(t, 0, report.SuccessCount)
	assert.NotEqual(t, "", report.RunID.String())

	factory.AssertNotCalled(t, "New", mock.Anything)
}

func TestRunMixedOutcomes(t *testing.T) {
	claude := &stubAgent{provider: agent.ProviderClaude, text: "■ PICK (trifecta)\n1-2-3\n■ CONFIDENCE\nhigh\n■ ANALYSIS\nInside wins.", tokens: 80}
	openai := &stubAgent{provider: agent.ProviderOpenAI, text: "Pick: 1-2-3\nConfidence: medium", tokens: 150}
	gemini := &stubAgent{provider: agent.ProviderGemini, text: "I expect 4-5-6.", tokens: 90}
	grok := &stubAgent{provider: agent.ProviderGrok, err: errors.New("upstream 502")}

	factory := new(MockFactory)
	factory.On("New", agent.ProviderClaude).Return(claude, nil)
	factory.On("New", agent.ProviderOpenAI).Return(openai, nil)
	factory.On("New", agent.ProviderGemini).Return(gemini, nil)
	factory.On("New", agent.ProviderGrok).Return(grok, nil)

	o := NewOrchestrator(factory, nil, Options{AgentTimeout: time.Second})
	report, err := o.Run(context.Background(), testCard(), enabled(agent.Providers...))
	require.NoError(t, err)

	require.Len(t, report.Agents, 4)
	assert.Equal(t, "MELCHIOR", report.Agents[0].Name)
	assert.Equal(t, "BALTHASAR", report.Agents[1].Name)
	assert.Equal(t, "CASPER", report.Agents[2].Name)
	assert.Equal(t, "RAMIEL", report.Agents[3].Name)

	first := report.Agents[0]
	assert.Equal(t, models.AgentStatusSuccess, first.Status)
	require.NotNil(t, first.Pick)
	assert.Equal(t, "1-2-3", *first.Pick)
	require.NotNil(t, first.Confidence)
	assert.Equal(t, "high", *first.Confidence)
	require.NotNil(t, first.Analysis)
	assert.Contains(t, *first.Analysis, "Inside wins.")
	assert.Equal(t, 80, first.TokensUsed)
	assert.Equal(t, "claude-test", first.Model)

	failed := report.Agents[3]
	assert.Equal(t, models.AgentStatusError, failed.Status)
	assert.Nil(t, failed.Pick)
	require.NotNil(t, failed.Error)
	assert.Contains(t, *failed.Error, "upstream 502")
	assert.Contains(t, *failed.Error, agent.CodeAPI)

	require.NotNil(t, report.Consensus)
	assert.Equal(t, "1-2-3", *report.Consensus)
	assert.InDelta(t, 2.0/3.0, report.AgreementRate, 1e-9)
	assert.Equal(t, map[string]int{"1-2-3": 2, "4-5-6": 1}, report.Votes)
	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, "Suminoe", report.Race.VenueName)

	factory.AssertExpectations(t)
}

func TestRunTimeoutIsIsolated(t *testing.T) {
	slow := &stubAgent{provider: agent.ProviderOpenAI, text: "1-2-3", delay: 5 * time.Second}
	fast := &stubAgent{provider: agent.ProviderClaude, text: "■ PICK\n3-2-1"}

	factory := new(MockFactory)
	factory.On("New", agent.ProviderClaude).Return(fast, nil)
	factory.On("New", agent.ProviderOpenAI).Return(slow, nil)

	o := NewOrchestrator(factory, nil, Options{AgentTimeout: 50 * time.Millisecond})

	start := time.Now()
	report, err := o.Run(context.Background(), testCard(), enabled(agent.ProviderClaude, agent.ProviderOpenAI))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Equal(t, models.AgentStatusSuccess, report.Agents[0].Status)
	assert.Equal(t, models.AgentStatusError, report.Agents[1].Status)
	require.NotNil(t, report.Agents[1].Error)
	assert.Contains(t, *report.Agents[1].Error, agent.CodeTimeout)
	assert.Equal(t, models.AgentStatusDisabled, report.Agents[2].Status)
	assert.Equal(t, models.AgentStatusDisabled, report.Agents[3].Status)

	require.NotNil(t, report.Consensus)
	assert.Equal(t, "3-2-1", *report.Consensus)
	assert.Equal(t, 1.0, report.AgreementRate)
}

func TestRunUnparseableAnswerIsSuccess(t *testing.T) {
	vague := &stubAgent{provider: agent.ProviderGemini, text: "The inside boat looks strong today."}

	factory := new(MockFactory)
	factory.On("New", agent.ProviderGemini).Return(vague, nil)

	o := NewOrchestrator(factory, nil, Options{})
	report, err := o.Run(context.Background(), testCard(), enabled(agent.ProviderGemini))
	require.NoError(t, err)

	r := report.Agents[2]
	assert.Equal(t, models.AgentStatusSuccess, r.Status)
	assert.Nil(t, r.Pick)
	assert.Nil(t, r.Error)
	assert.Nil(t, report.Consensus)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Empty(t, report.Votes)
}

func TestRunPanicAndFactoryFailure(t *testing.T) {
	broken := &stubAgent{provider: agent.ProviderClaude, panics: true}
	good := &stubAgent{provider: agent.ProviderGrok, text: "pick: 2-4-6"}

	factory := new(MockFactory)
	factory.On("New", agent.ProviderClaude).Return(broken, nil)
	factory.On("New", agent.ProviderOpenAI).Return(nil, agent.ErrMissingCredentials)
	factory.On("New", agent.ProviderGrok).Return(good, nil)

	o := NewOrchestrator(factory, nil, Options{})
	report, err := o.Run(context.Background(), testCard(),
		enabled(agent.ProviderClaude, agent.ProviderOpenAI, agent.ProviderGrok))
	require.NoError(t, err)

	assert.Equal(t, models.AgentStatusError, report.Agents[0].Status)
	require.NotNil(t, report.Agents[0].Error)
	assert.Contains(t, *report.Agents[0].Error, "panicked")

	assert.Equal(t, models.AgentStatusError, report.Agents[1].Status)
	require.NotNil(t, report.Agents[1].Error)
	assert.Contains(t, *report.Agents[1].Error, "credentials")

	require.NotNil(t, report.Consensus)
	assert.Equal(t, "2-4-6", *report.Consensus)
	assert.Equal(t, 1, report.SuccessCount)
}

func TestRunSendsMagiPrompt(t *testing.T) {
	var captured agent.Request
	recorder := &recordingAgent{onComplete: func(req agent.Request) { captured = req }}

	factory := new(MockFactory)
	factory.On("New", agent.ProviderClaude).Return(recorder, nil)

	o := NewOrchestrator(factory, nil, Options{})
	_, err := o.Run(context.Background(), testCard(), enabled(agent.ProviderClaude))
	require.NoError(t, err)

	assert.Contains(t, captured.Prompt, "Venue: Suminoe")
	assert.Contains(t, captured.Prompt, "Boat 1: Alpha (A1)")
	assert.Equal(t, prompt.DefaultSystemPrompt, captured.System)
	assert.Equal(t, agent.DefaultMaxTokens, captured.MaxTokens)
}

func TestAgentSetKey(t *testing.T) {
	set := AgentSet{
		agent.ProviderGrok:   {Enabled: true, APIKey: "x", Model: "grok-2"},
		agent.ProviderClaude: {Enabled: true, APIKey: "secret"},
		agent.ProviderOpenAI: {Enabled: false, APIKey: "sk"},
	}
	key := set.Key()
	assert.Equal(t, "claude=claude-sonnet-4-20250514;grok=grok-2;", key)
	assert.NotContains(t, key, "secret")
}

type recordingAgent struct {
	onComplete func(agent.Request)
}

func (r *recordingAgent) Provider() string { return agent.ProviderClaude }
func (r *recordingAgent) Model() string    { return "claude-test" }

func (r *recordingAgent) Complete(ctx context.Context, req agent.Request) (*agent.Completion, error) {
	r.onComplete(req)
	return &agent.Completion{Text: "1-2-3"}, nil
}
