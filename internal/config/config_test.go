package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/boat-oracle/internal/agent"
)

const validConfig = `
app:
  name: boat-oracle
  environment: development
  log_level: debug
prediction:
  weights:
    win_rate_all: 0.3
    win_rate_local: 0.1
    motor_rate: 0.15
    boat_rate: 0.1
    avg_st: 0.15
    course_rate: 0.15
    current_series: 0.05
ml:
  model_path: models/boat_v2.json
  reload_schedule: "*/15 * * * *"
  confidence_threshold: 0.25
magi:
  agent_timeout_seconds: 45
  cache_ttl_seconds: 120
  cache_max_size: 100
  claude:
    enabled: true
    api_key: ${TEST_CLAUDE_KEY}
  grok:
    enabled: true
    api_key: xai-key
    model: grok-2
transport:
  timeout_seconds: 60
  max_retries: 1
  retry_wait_min_ms: 200
  retry_wait_max_ms: 2000
  rate_limit: 1.5
  circuit_breaker_max: 3
  circuit_cooldown_seconds: 20
metrics:
  enabled: true
  port: 9100
  path: /metrics
health:
  enabled: true
  port: "8081"
events:
  enabled: true
  url: nats://nats:4222
  prefix: tokyo
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigSuccess(t *testing.T) {
	t.Setenv("TEST_CLAUDE_KEY", "expanded_secret_value")

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "boat-oracle", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 0.3, cfg.Prediction.Weights.WinRateAll)
	assert.Equal(t, 0.05, cfg.Prediction.Weights.CurrentSeries)
	assert.Equal(t, "models/boat_v2.json", cfg.ML.ModelPath)
	assert.Equal(t, "expanded_secret_value", cfg.Magi.Claude.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Magi.AgentTimeout())
	assert.Equal(t, 2*time.Minute, cfg.Magi.CacheTTL())
	assert.Equal(t, "tokyo", cfg.Events.Prefix)
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent_config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "app: [unclosed"))
	assert.Error(t, err)
}

func TestLoadWithDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "boat-oracle", cfg.App.Name)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 0.20, cfg.Prediction.Weights.WinRateAll)
	assert.Equal(t, 60, cfg.Magi.AgentTimeoutSeconds)
	assert.False(t, cfg.Magi.Claude.Enabled)
	assert.Equal(t, "8080", cfg.Health.Port)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadWithDefaultsEnvOverride(t *testing.T) {
	t.Setenv("BOAT_ORACLE_MAGI_OPENAI_ENABLED", "true")
	t.Setenv("BOAT_ORACLE_MAGI_OPENAI_API_KEY", "sk-from-env")
	t.Setenv("BOAT_ORACLE_APP_LOG_LEVEL", "warn")

	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Magi.OpenAI.Enabled)
	assert.Equal(t, "sk-from-env", cfg.Magi.OpenAI.APIKey)
	assert.Equal(t, "warn", cfg.App.LogLevel)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "invalid environment", mutate: func(c *Config) { c.App.Environment = "invalid" }, wantErr: "development, staging, production"},
		{name: "invalid log level", mutate: func(c *Config) { c.App.LogLevel = "trace" }, wantErr: "debug, info, warn, error"},
		{name: "negative weight", mutate: func(c *Config) { c.Prediction.Weights.BoatRate = -0.1 }, wantErr: "BoatRate"},
		{name: "bad cron", mutate: func(c *Config) { c.ML.ReloadSchedule = "every day" }, wantErr: "cron expression"},
		{name: "zero agent timeout", mutate: func(c *Config) { c.Magi.AgentTimeoutSeconds = 0 }, wantErr: "AgentTimeoutSeconds"},
		{name: "bad base url", mutate: func(c *Config) { c.Magi.Gemini.BaseURL = "not a url" }, wantErr: "valid URL"},
		{name: "retry window", mutate: func(c *Config) { c.Transport.RetryWaitMinMs = 9000 }, wantErr: "retry_wait_min_ms"},
		{name: "events without url", mutate: func(c *Config) { c.Events.Enabled = true; c.Events.URL = "" }, wantErr: "events url"},
		{name: "serving without events", mutate: func(c *Config) { c.Events.ServeRequests = true }, wantErr: "serve_requests"},
		{name: "secrets without name", mutate: func(c *Config) { c.AWS.SecretsEnabled = true }, wantErr: "secret_name"},
		{name: "cache reset without cache", mutate: func(c *Config) {
			c.Magi.CacheResetSchedule = "@hourly"
			c.Magi.CacheTTLSeconds = 0
		}, wantErr: "cache_reset_schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewValidatorRegistersCustomRules(t *testing.T) {
	var cv *CustomValidator
	require.NotPanics(t, func() { cv = NewValidator() })

	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cv.Validate(cfg))

	cfg.App.LogLevel = "verbose"
	err = cv.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}

func TestNewValidatorSurfacesRegistrationErrors(t *testing.T) {
	_, err := newValidator(map[string]validator.Func{"": validateLogLevel})
	require.Error(t, err)

	_, err = newValidator(map[string]validator.Func{"loglevel": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `register "loglevel" validation`)
}

func TestValidateEnvironment(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.App.Environment = "production"
	cfg.Magi.Claude = AgentConfig{Enabled: true, APIKey: "sk-ant-real"}
	assert.NoError(t, ValidateEnvironment(cfg))

	cfg.Magi.OpenAI = AgentConfig{Enabled: true, APIKey: "YOUR_OPENAI_KEY"}
	assert.Error(t, ValidateEnvironment(cfg))

	cfg.Magi.OpenAI.Enabled = false
	cfg.App.LogLevel = "debug"
	assert.Error(t, ValidateEnvironment(cfg))
}

func TestAgentSettings(t *testing.T) {
	m := MagiConfig{
		Claude: AgentConfig{Enabled: true, APIKey: "k", Model: "claude-3-5-haiku-20241022"},
		Grok:   AgentConfig{Enabled: true, APIKey: "x", BaseURL: "https://proxy.local/v1"},
	}

	settings := m.AgentSettings()
	require.Len(t, settings, 4)
	assert.True(t, settings[agent.ProviderClaude].Usable())
	assert.Equal(t, "claude-3-5-haiku-20241022", settings[agent.ProviderClaude].Model)
	assert.Equal(t, agent.ProviderGrok, settings[agent.ProviderGrok].Provider)
	assert.Equal(t, "https://proxy.local/v1", settings[agent.ProviderGrok].BaseURL)
	assert.False(t, settings[agent.ProviderGemini].Usable())
}

func TestConversions(t *testing.T) {
	tr := TransportConfig{TimeoutSeconds: 30, MaxRetries: 2, RetryWaitMinMs: 100, RetryWaitMaxMs: 900, RateLimit: 3, CircuitBreakerMax: 4, CircuitCooldownSeconds: 10}
	hc := tr.HTTPClientConfig()
	assert.Equal(t, 30*time.Second, hc.Timeout)
	assert.Equal(t, 100*time.Millisecond, hc.RetryWaitMin)
	assert.Equal(t, 900*time.Millisecond, hc.RetryWaitMax)
	assert.Equal(t, 10*time.Second, hc.CircuitCooldown)

	ev := EventsConfig{URL: "nats://x:4222", Prefix: "p", ReconnectWaitSeconds: 3, RequestTimeoutSeconds: 40, MaxConcurrent: 4}
	bc := ev.BusConfig()
	assert.Equal(t, "p", bc.Prefix)
	assert.Equal(t, 3*time.Second, bc.ReconnectWait)
	assert.Equal(t, 40*time.Second, bc.RequestTimeout)
	assert.Equal(t, 4, bc.MaxConcurrent)
}

type fakeSecrets struct {
	out *secretsmanager.GetSecretValueOutput
	err error
}

func (f fakeSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return f.out, f.err
}

func TestLoadSecretsWithClient(t *testing.T) {
	cfg := &Config{}
	cfg.Magi.Grok.APIKey = "keep-me"

	client := fakeSecrets{out: &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"claude_api_key":"sk-ant","gemini_api_key":"g-key","nats_url":"nats://secure:4222"}`),
	}}
	require.NoError(t, LoadSecretsWithClient(context.Background(), cfg, client, "boat-oracle/prod"))

	assert.Equal(t, "sk-ant", cfg.Magi.Claude.APIKey)
	assert.Equal(t, "g-key", cfg.Magi.Gemini.APIKey)
	assert.Equal(t, "keep-me", cfg.Magi.Grok.APIKey)
	assert.Equal(t, "nats://secure:4222", cfg.Events.URL)
}

func TestLoadSecretsErrors(t *testing.T) {
	cfg := &Config{}

	err := LoadSecretsWithClient(context.Background(), cfg, fakeSecrets{err: errors.New("access denied")}, "s")
	assert.ErrorContains(t, err, "access denied")

	err = LoadSecretsWithClient(context.Background(), cfg, fakeSecrets{out: &secretsmanager.GetSecretValueOutput{}}, "s")
	assert.ErrorContains(t, err, "no secret data")

	err = LoadSecretsWithClient(context.Background(), cfg, fakeSecrets{out: &secretsmanager.GetSecretValueOutput{SecretBinary: []byte("{bad")}}, "s")
	assert.ErrorContains(t, err, "secret binary")
}
