package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/boat-oracle/internal/agent"
	"github.com/yourusername/boat-oracle/internal/models"
	"github.com/yourusername/boat-oracle/internal/prompt"
	"github.com/yourusername/boat-oracle/internal/service"
)

var (
	weightFlags  map[string]string
	analyzeAgent string
	analyzeKind  string
	analyzeText  string
	agentsFlag   []string
)

func init() {
	for _, cmd := range []*cobra.Command{statisticalCmd, mlCmd, magiCmd, analyzeCmd} {
		cmd.Flags().StringVarP(&raceFile, "race", "r", "", "Race card JSON file, or - for stdin")
	}

	statisticalCmd.Flags().StringToStringVar(&weightFlags, "weight", nil, "Override criterion weights, e.g. --weight win_rate_all=0.3,avg_st=0.2")
	magiCmd.Flags().StringSliceVar(&agentsFlag, "agents", nil, "Restrict the run to these providers (default: every enabled provider)")

	analyzeCmd.Flags().StringVarP(&analyzeAgent, "agent", "a", agent.ProviderClaude, "Provider to ask: claude, openai, gemini or grok")
	analyzeCmd.Flags().StringVarP(&analyzeKind, "kind", "k", string(prompt.KindAnalysis), "Prompt kind: prediction, analysis or custom")
	analyzeCmd.Flags().StringVarP(&analyzeText, "prompt", "p", "", "Prompt text for --kind custom")

	magiCmd.AddCommand(magiInfoCmd)
	rootCmd.AddCommand(statisticalCmd, mlCmd, magiCmd, analyzeCmd)
}

var statisticalCmd = &cobra.Command{
	Use:   "statistical",
	Short: "Rank entrants with the weighted statistical scorer",
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := readRaceCard(raceFile)
		if err != nil {
			return err
		}
		weights, err := parseWeights(weightFlags)
		if err != nil {
			return err
		}

		c, closeFn, err := setupComponents()
		if err != nil {
			return err
		}
		defer closeFn()
		result, err := c.service.Statistical(commandContext(cmd), card, weights)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var mlCmd = &cobra.Command{
	Use:   "ml",
	Short: "Estimate placement probabilities with the trained model or heuristic fallback",
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := readRaceCard(raceFile)
		if err != nil {
			return err
		}

		c, closeFn, err := setupComponents()
		if err != nil {
			return err
		}
		defer closeFn()
		result, err := c.service.ML(commandContext(cmd), card)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var magiCmd = &cobra.Command{
	Use:   "magi",
	Short: "Ask every enabled agent for a pick and report the majority consensus",
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := readRaceCard(raceFile)
		if err != nil {
			return err
		}

		c, closeFn, err := setupComponents()
		if err != nil {
			return err
		}
		defer closeFn()

		agents := c.service.AgentSet()
		if len(agentsFlag) > 0 {
			agents = restrictAgents(agents, agentsFlag)
		}

		ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.Magi.AgentTimeout()+10*time.Second)
		defer cancel()

		report, err := c.service.Consensus(ctx, card, agents)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Ask one agent for a free-text analysis of a race",
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := readRaceCard(raceFile)
		if err != nil {
			return err
		}

		c, closeFn, err := setupComponents()
		if err != nil {
			return err
		}
		defer closeFn()

		result, err := c.service.Analyze(commandContext(cmd), service.AnalysisRequest{
			Card:         card,
			Provider:     strings.ToLower(analyzeAgent),
			Kind:         prompt.Kind(analyzeKind),
			CustomPrompt: analyzeText,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "%s (%s), %d tokens\n", result.Provider, result.Model, result.TokensUsed)
		fmt.Println(result.Analysis)
		return nil
	},
}

// parseWeights overlays --weight flags on the configured weights
func parseWeights(flags map[string]string) (*models.PredictionWeights, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	w := cfg.Prediction.Weights
	fields := map[string]*float64{
		models.CriterionWinRateAll:    &w.WinRateAll,
		models.CriterionWinRateLocal:  &w.WinRateLocal,
		models.CriterionMotorRate:     &w.MotorRate,
		models.CriterionBoatRate:      &w.BoatRate,
		models.CriterionAvgStart:      &w.AvgStart,
		models.CriterionCourseRate:    &w.CourseRate,
		models.CriterionCurrentSeries: &w.CurrentSeries,
	}
	for name, raw := range flags {
		field, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("unknown weight %q", name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("weight %s: %w", name, err)
		}
		*field = v
	}
	return &w, nil
}

// restrictAgents keeps only the named providers; the rest are reported as disabled
func restrictAgents(all map[string]agent.Settings, names []string) map[string]agent.Settings {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[strings.ToLower(strings.TrimSpace(n))] = true
	}

	out := make(map[string]agent.Settings, len(all))
	for provider, s := range all {
		if keep[provider] {
			out[provider] = s
		}
	}
	return out
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
