// Package config provides configuration management for the Boat Oracle engine.
package config

import (
	"time"

	"github.com/yourusername/boat-oracle/internal/agent"
	"github.com/yourusername/boat-oracle/internal/events"
	"github.com/yourusername/boat-oracle/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	ML         MLConfig         `mapstructure:"ml"`
	Magi       MagiConfig       `mapstructure:"magi"`
	Transport  TransportConfig  `mapstructure:"transport"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Health     HealthConfig     `mapstructure:"health"`
	Events     EventsConfig     `mapstructure:"events"`
	AWS        AWSConfig        `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// PredictionConfig holds the statistical scorer defaults
type PredictionConfig struct {
	Weights models.PredictionWeights `mapstructure:"weights"`
}

// MLConfig represents the probability estimator configuration
type MLConfig struct {
	ModelPath           string  `mapstructure:"model_path"`
	ReloadSchedule      string  `mapstructure:"reload_schedule" validate:"omitempty,cronspec"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" validate:"gte=0,lte=1"`
}

// MagiConfig represents the multi-agent consensus configuration
type MagiConfig struct {
	AgentTimeoutSeconds int         `mapstructure:"agent_timeout_seconds" validate:"gt=0"`
	CacheTTLSeconds     int         `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize        int         `mapstructure:"cache_max_size" validate:"gte=0"`
	CacheResetSchedule  string      `mapstructure:"cache_reset_schedule" validate:"omitempty,cronspec"`
	PromptFile          string      `mapstructure:"prompt_file"`
	Claude              AgentConfig `mapstructure:"claude"`
	OpenAI              AgentConfig `mapstructure:"openai"`
	Gemini              AgentConfig `mapstructure:"gemini"`
	Grok                AgentConfig `mapstructure:"grok"`
}

// AgentConfig represents one external agent
type AgentConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// TransportConfig represents the outbound HTTP policy for agent calls
type TransportConfig struct {
	TimeoutSeconds         int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	MaxRetries             int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryWaitMinMs         int     `mapstructure:"retry_wait_min_ms" validate:"gt=0"`
	RetryWaitMaxMs         int     `mapstructure:"retry_wait_max_ms" validate:"gt=0"`
	RateLimit              float64 `mapstructure:"rate_limit" validate:"gt=0"`
	CircuitBreakerMax      int     `mapstructure:"circuit_breaker_max" validate:"gte=0"`
	CircuitCooldownSeconds int     `mapstructure:"circuit_cooldown_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health server configuration
type HealthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port" validate:"required,numeric"`
}

// EventsConfig represents NATS publishing and request serving
type EventsConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	URL                   string `mapstructure:"url"`
	Prefix                string `mapstructure:"prefix" validate:"required"`
	QueueGroup            string `mapstructure:"queue_group"`
	MaxReconnects         int    `mapstructure:"max_reconnects"`
	ReconnectWaitSeconds  int    `mapstructure:"reconnect_wait_seconds" validate:"gte=0"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gte=0"`
	MaxConcurrent         int    `mapstructure:"max_concurrent" validate:"gte=0"`
	ServeRequests         bool   `mapstructure:"serve_requests"`
}

// AWSConfig locates the optional secrets overlay
type AWSConfig struct {
	SecretsEnabled bool   `mapstructure:"secrets_enabled"`
	Region         string `mapstructure:"region"`
	SecretName     string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// AgentSettings returns the agent settings keyed by provider
func (m *MagiConfig) AgentSettings() map[string]agent.Settings {
	blocks := map[string]AgentConfig{
		agent.ProviderClaude: m.Claude,
		agent.ProviderOpenAI: m.OpenAI,
		agent.ProviderGemini: m.Gemini,
		agent.ProviderGrok:   m.Grok,
	}

	out := make(map[string]agent.Settings, len(blocks))
	for provider, b := range blocks {
		out[provider] = agent.Settings{
			Provider: provider,
			Enabled:  b.Enabled,
			APIKey:   b.APIKey,
			Model:    b.Model,
			BaseURL:  b.BaseURL,
		}
	}
	return out
}

// AgentTimeout returns the per-agent call bound
func (m *MagiConfig) AgentTimeout() time.Duration {
	return time.Duration(m.AgentTimeoutSeconds) * time.Second
}

// CacheTTL returns the consensus cache lifetime; zero disables caching
func (m *MagiConfig) CacheTTL() time.Duration {
	return time.Duration(m.CacheTTLSeconds) * time.Second
}

// HTTPClientConfig converts the transport section for the agent package
func (t *TransportConfig) HTTPClientConfig() agent.HTTPClientConfig {
	return agent.HTTPClientConfig{
		Timeout:           time.Duration(t.TimeoutSeconds) * time.Second,
		MaxRetries:        t.MaxRetries,
		RetryWaitMin:      time.Duration(t.RetryWaitMinMs) * time.Millisecond,
		RetryWaitMax:      time.Duration(t.RetryWaitMaxMs) * time.Millisecond,
		RateLimit:         t.RateLimit,
		CircuitBreakerMax: t.CircuitBreakerMax,
		CircuitCooldown:   time.Duration(t.CircuitCooldownSeconds) * time.Second,
	}
}

// BusConfig converts the events section for the events package
func (e *EventsConfig) BusConfig() events.Config {
	return events.Config{
		URL:            e.URL,
		Prefix:         e.Prefix,
		QueueGroup:     e.QueueGroup,
		MaxReconnects:  e.MaxReconnects,
		ReconnectWait:  time.Duration(e.ReconnectWaitSeconds) * time.Second,
		RequestTimeout: time.Duration(e.RequestTimeoutSeconds) * time.Second,
		MaxConcurrent:  e.MaxConcurrent,
	}
}
