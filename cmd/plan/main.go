package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/metropolisapp/metropolis/internal/config"
	"github.com/metropolisapp/metropolis/internal/events"
	"github.com/metropolisapp/metropolis/internal/export"
	"github.com/metropolisapp/metropolis/internal/logger"
	"github.com/metropolisapp/metropolis/internal/models"
	"github.com/metropolisapp/metropolis/internal/services/itinerary"
	"github.com/metropolisapp/metropolis/internal/services/planner"
	"github.com/metropolisapp/metropolis/internal/services/serpapi"
	"github.com/metropolisapp/metropolis/internal/store"
	"github.com/metropolisapp/metropolis/internal/validation"
)

var rootCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a trip itinerary from the command line",
	Long: `Generate a single itinerary without running the API server.

Searches live events for the destination, filters them to the budget
tier, and asks the configured model for a day-by-day plan.

Examples:
  # A free weekend in Austin
  plan --city Austin --state TX --dates 2025-06-01,2025-06-02 --budget '$0'

  # Preferences and calendar output
  plan --city Denver --state CO --dates 2025-07-04 --budget '$51-$100' \
       --preferences 'live music, outdoor food' --format ics`,
	RunE: runPlan,
}

func init() {
	f := rootCmd.Flags()
	f.String("city", "", "destination city (required)")
	f.String("state", "", "destination state (required)")
	f.String("dates", "", "comma-separated trip dates, YYYY-MM-DD (required)")
	f.String("budget", "", "budget tier: $0, $1-$50, $51-$100, $101-$250, $251-$500, $500+ (required)")
	f.String("preferences", "", "free-text preferences")
	f.String("format", "json", "output format: json or ics")
	f.Bool("debug", false, "enable debug logging of model requests")

	_ = rootCmd.MarkFlagRequired("city")
	_ = rootCmd.MarkFlagRequired("state")
	_ = rootCmd.MarkFlagRequired("dates")
	_ = rootCmd.MarkFlagRequired("budget")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	city, _ := f.GetString("city")
	state, _ := f.GetString("state")
	datesFlag, _ := f.GetString("dates")
	budget, _ := f.GetString("budget")
	preferences, _ := f.GetString("preferences")
	format, _ := f.GetString("format")
	debugMode, _ := f.GetBool("debug")

	if err := validation.ValidateBudgetTier(budget); err != nil {
		return err
	}
	var dates []string
	for _, d := range strings.Split(datesFlag, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if err := validation.ValidateTripDate(d); err != nil {
			return err
		}
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return fmt.Errorf("at least one trip date is required")
	}
	if format != "json" && format != "ics" {
		return fmt.Errorf("invalid format: %s (must be 'json' or 'ics')", format)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLogger, err := logger.NewDevelopmentLogger(debugMode || cfg.ServerDebugMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	generator := planner.NewOpenAIGenerator(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
	var source serpapi.Source
	if cfg.SerpAPIKey != "" {
		source = serpapi.NewClient(cfg.SerpAPIKey, zapLogger)
	} else {
		zapLogger.Warn("serpapi_key_not_configured_using_curated_fallback")
		source = serpapi.NoSource{}
	}
	service := itinerary.NewService(
		source,
		events.NewNormalizer(zapLogger),
		planner.NewBuilder(generator, zapLogger),
		store.NewRegistry(),
		zapLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.RequestTimeout)*time.Second)
	defer cancel()

	it, err := service.Generate(ctx, models.SearchParams{
		City:        validation.SanitizeText(city),
		State:       validation.SanitizeText(state),
		Dates:       dates,
		Budget:      models.BudgetTier(budget),
		Preferences: validation.SanitizeText(preferences),
	})
	if err != nil {
		return fmt.Errorf("generate itinerary: %w", err)
	}

	if format == "ics" {
		fmt.Fprint(os.Stdout, export.ICS(it))
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(it)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
