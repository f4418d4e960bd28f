// Package main provides the boat-oracle command line: one-shot predictions
// against a race card file and a long-running prediction service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/boat-oracle/internal/agent"
	"github.com/yourusername/boat-oracle/internal/config"
	"github.com/yourusername/boat-oracle/internal/events"
	"github.com/yourusername/boat-oracle/internal/logger"
	"github.com/yourusername/boat-oracle/internal/magi"
	"github.com/yourusername/boat-oracle/internal/metrics"
	"github.com/yourusername/boat-oracle/internal/ml"
	"github.com/yourusername/boat-oracle/internal/models"
	"github.com/yourusername/boat-oracle/internal/prediction"
	"github.com/yourusername/boat-oracle/internal/prompt"
	"github.com/yourusername/boat-oracle/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
	raceFile   string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the configuration")
}

var rootCmd = &cobra.Command{
	Use:     "oracle",
	Short:   "Boat race prediction and consensus engine",
	Long:    `Ranks boat race entrants statistically, estimates placement probabilities and asks several AI agents for a majority-vote pick.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupLogger(cmd.Name() == serveCmd.Name())
		return nil
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read env file: %w", err)
		}
	}

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if cfg.AWS.SecretsEnabled {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := config.LoadSecretsFromAWS(ctx, cfg, cfg.AWS.Region, cfg.AWS.SecretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return config.ValidateEnvironment(cfg)
}

// setupLogger sends one-shot command logs to stderr so stdout carries only the result
func setupLogger(service bool) {
	if service {
		appLog = logger.NewLogger(cfg.App.LogLevel)
		return
	}
	format := "text"
	if cfg.IsProduction() {
		format = "json"
	}
	appLog = logger.NewLoggerWithOutput(cfg.App.LogLevel, format, os.Stderr)
}

// components is everything a prediction command needs
type components struct {
	service   *service.PredictionService
	estimator *ml.EstimatorHolder
	cache     *magi.ConsensusCache
	agents    *agent.ClientFactory
}

func buildComponents(publisher events.Publisher, subjects events.Subjects) (*components, error) {
	metrics.InitRegistry()

	builder, err := prompt.LoadBuilder(cfg.Magi.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	plog := logger.NewPredictionLogger(appLog)
	alog := logger.NewAgentLogger(appLog)

	estimator := ml.NewEstimatorHolder(cfg.ML.ModelPath, plog)
	factory := agent.NewFactory(cfg.Transport.HTTPClientConfig(), appLog)

	var runner magi.Runner = magi.NewOrchestrator(factory, builder, magi.Options{
		AgentTimeout: cfg.Magi.AgentTimeout(),
		Logger:       alog,
	})
	var cache *magi.ConsensusCache
	if cfg.Magi.CacheTTLSeconds > 0 {
		cache = magi.NewConsensusCache(cfg.Magi.CacheTTL(), cfg.Magi.CacheMaxSize)
		runner = magi.NewCachedOrchestrator(runner, cache, alog)
	}

	svc := service.NewPredictionService(service.Options{
		Scorer:              prediction.NewScorer(),
		Estimator:           estimator,
		Consensus:           runner,
		Agents:              factory,
		Prompts:             builder,
		Weights:             cfg.Prediction.Weights,
		AgentSet:            magi.AgentSet(cfg.Magi.AgentSettings()),
		Publisher:           publisher,
		Subjects:            subjects,
		Logger:              appLog,
		ConfidenceThreshold: cfg.ML.ConfidenceThreshold,
	})

	return &components{service: svc, estimator: estimator, cache: cache, agents: factory}, nil
}

// setupComponents connects the publisher and builds the prediction components.
// The returned func releases the connection.
func setupComponents() (*components, func(), error) {
	publisher, subjects, closeFn, err := connectPublisher()
	if err != nil {
		return nil, nil, err
	}
	c, err := buildComponents(publisher, subjects)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return c, closeFn, nil
}

// connectPublisher connects to NATS when events are enabled
func connectPublisher() (events.Publisher, events.Subjects, func(), error) {
	subjects := events.Subjects{Prefix: cfg.Events.Prefix}
	if !cfg.Events.Enabled {
		return events.Noop{}, subjects, func() {}, nil
	}

	bus, err := events.Connect(cfg.Events.BusConfig(), appLog)
	if err != nil {
		return nil, subjects, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return bus, bus.Subjects(), bus.Close, nil
}

func readRaceCard(path string) (*models.RaceCard, error) {
	if path == "" {
		return nil, fmt.Errorf("--race is required")
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open race card: %w", err)
		}
		defer f.Close()
		r = f
	}

	var card models.RaceCard
	if err := json.NewDecoder(r).Decode(&card); err != nil {
		return nil, fmt.Errorf("failed to decode race card: %w", err)
	}
	return &card, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
