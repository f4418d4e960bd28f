// Package config provides configuration management for the Boat Oracle engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/boat-oracle/internal/models"
)

// EnvPrefix is the prefix of environment variable overrides
const EnvPrefix = "BOAT_ORACLE"

// DefaultConfigPath is used when no path is given
const DefaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(EnvPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so that environment overrides reach
// settings the file leaves out.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "boat-oracle")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	w := models.DefaultPredictionWeights()
	v.SetDefault("prediction.weights.win_rate_all", w.WinRateAll)
	v.SetDefault("prediction.weights.win_rate_local", w.WinRateLocal)
	v.SetDefault("prediction.weights.motor_rate", w.MotorRate)
	v.SetDefault("prediction.weights.boat_rate", w.BoatRate)
	v.SetDefault("prediction.weights.avg_st", w.AvgStart)
	v.SetDefault("prediction.weights.course_rate", w.CourseRate)
	v.SetDefault("prediction.weights.current_series", w.CurrentSeries)

	v.SetDefault("ml.model_path", "")
	v.SetDefault("ml.reload_schedule", "")
	v.SetDefault("ml.confidence_threshold", 0.3)

	v.SetDefault("magi.agent_timeout_seconds", 60)
	v.SetDefault("magi.cache_ttl_seconds", 300)
	v.SetDefault("magi.cache_max_size", 500)
	v.SetDefault("magi.cache_reset_schedule", "")
	v.SetDefault("magi.prompt_file", "")
	for _, provider := range []string{"claude", "openai", "gemini", "grok"} {
		v.SetDefault("magi."+provider+".enabled", false)
		v.SetDefault("magi."+provider+".api_key", "")
		v.SetDefault("magi."+provider+".model", "")
		v.SetDefault("magi."+provider+".base_url", "")
	}

	v.SetDefault("transport.timeout_seconds", 90)
	v.SetDefault("transport.max_retries", 2)
	v.SetDefault("transport.retry_wait_min_ms", 500)
	v.SetDefault("transport.retry_wait_max_ms", 5000)
	v.SetDefault("transport.rate_limit", 2.0)
	v.SetDefault("transport.circuit_breaker_max", 5)
	v.SetDefault("transport.circuit_cooldown_seconds", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", "8080")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.url", "nats://127.0.0.1:4222")
	v.SetDefault("events.prefix", "boat_oracle")
	v.SetDefault("events.queue_group", "boat-oracle")
	v.SetDefault("events.max_reconnects", 60)
	v.SetDefault("events.reconnect_wait_seconds", 2)
	v.SetDefault("events.request_timeout_seconds", 90)
	v.SetDefault("events.max_concurrent", 8)
	v.SetDefault("events.serve_requests", false)

	v.SetDefault("aws.secrets_enabled", false)
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.secret_name", "")
}
