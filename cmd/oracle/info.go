package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yourusername/boat-oracle/internal/agent"
	"github.com/yourusername/boat-oracle/internal/logger"
	"github.com/yourusername/boat-oracle/internal/magi"
	"github.com/yourusername/boat-oracle/internal/ml"
)

func init() {
	rootCmd.AddCommand(modelsCmd, modelStatusCmd)
}

// memberInfo is one row of the consensus system description
type memberInfo struct {
	magi.Member
	Enabled bool   `json:"enabled"`
	Model   string `json:"model"`
}

var magiInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the consensus system and its configured members",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := cfg.Magi.AgentSettings()

		rows := make([]memberInfo, 0, len(agent.Providers))
		for _, m := range magi.Members() {
			s := settings[m.Provider]
			s.Provider = m.Provider
			rows = append(rows, memberInfo{Member: m, Enabled: s.Usable(), Model: s.ModelOrDefault()})
		}

		return printJSON(map[string]interface{}{
			"name":        magi.SystemName,
			"version":     magi.SystemVersion,
			"description": magi.SystemDescription,
			"members":     rows,
		})
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List selectable models per provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := agent.Catalog()
		providers := make([]string, 0, len(catalog))
		for p := range catalog {
			providers = append(providers, p)
		}
		sort.Strings(providers)

		for _, p := range providers {
			fmt.Printf("%s (%s)\n", p, magi.NameFor(p))
			for _, m := range catalog[p] {
				marker := " "
				if m.Recommended {
					marker = "*"
				}
				fmt.Printf("  %s %-28s %s\n", marker, m.ID, m.Name)
			}
		}
		return nil
	},
}

var modelStatusCmd = &cobra.Command{
	Use:   "model-status",
	Short: "Show whether the trained model artifact is loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := ml.NewEstimator(cfg.ML.ModelPath, logger.NewPredictionLogger(appLog))

		status := map[string]interface{}{
			"mode":                 e.Mode(),
			"model_path":           e.ModelPath(),
			"model_version":        e.ModelVersion(),
			"confidence_threshold": cfg.ML.ConfidenceThreshold,
			"features":             ml.NewFeatureEncoder().Names(),
		}
		if err := e.LoadError(); err != nil {
			status["load_error"] = err.Error()
		}
		if cfg.ML.ReloadSchedule != "" {
			status["reload_schedule"] = cfg.ML.ReloadSchedule
		}
		return printJSON(status)
	},
}
