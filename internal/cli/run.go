package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OliwiaLewandowska/som-monitor/internal/analyzer"
	"github.com/OliwiaLewandowska/som-monitor/internal/logger"
	"github.com/OliwiaLewandowska/som-monitor/internal/models"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
	"github.com/OliwiaLewandowska/som-monitor/internal/survey"
)

var (
	runProvider   string
	runModels     []string
	runCategories []string
	runBrands     []string
	runRuns       int
	runReportOnly bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a survey across the configured queries and models",
	Long: `Dispatch every (category, template, run, model) combination against the
selected provider, extract brand mentions from each response, persist the
results and print the ranked share-of-model report.

With --report-only, skip querying and rebuild the report from the most
recently saved survey.`,
	RunE: runSurvey,
}

func init() {
	runCmd.Flags().StringVar(&runProvider, "provider", "openai", "LLM provider (openai, anthropic, google, perplexity)")
	runCmd.Flags().StringSliceVar(&runModels, "models", nil, "models to survey (required unless --report-only)")
	runCmd.Flags().StringSliceVar(&runCategories, "categories", nil, "template categories to include (default: all)")
	runCmd.Flags().StringSliceVar(&runBrands, "brands", nil, "brands to track (default: from config)")
	runCmd.Flags().IntVar(&runRuns, "runs", 0, "repetitions per query (default: from config)")
	runCmd.Flags().BoolVar(&runReportOnly, "report-only", false, "rebuild the report from the latest saved survey")
}

func runSurvey(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	brands := cfg.Brands
	if len(runBrands) > 0 {
		brands = runBrands
	}

	if runReportOnly {
		return reportFromLatest(ctx, brands)
	}

	if len(runModels) == 0 {
		return fmt.Errorf("--models is required (or use --report-only)")
	}

	an, err := analyzer.New(brands)
	if err != nil {
		return err
	}

	provider, err := newProvider(runProvider)
	if err != nil {
		return err
	}

	categories := runCategories
	if len(categories) == 0 {
		categories = cfg.Categories()
	}

	runs := runRuns
	if runs <= 0 {
		runs = cfg.RunsPerQuery
	}

	runner := survey.NewRunner(provider, an, survey.NewTokenBucketGate(cfg.RateLimitDelay))
	report, results, failures, surveyErr := runner.Run(ctx, survey.Config{
		Categories:   categories,
		Models:       runModels,
		Templates:    cfg.QueryTemplates,
		RunsPerQuery: runs,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RateLimitDelay,
		QueryTimeout: cfg.RequestTimeout,
		Workers:      cfg.Workers,
	})
	if surveyErr != nil && report == nil {
		return surveyErr
	}

	if len(results) > 0 {
		if err := persistSurvey(ctx, results, brands); err != nil {
			logger.Error("Failed to persist survey: %v", err)
		}
	}

	printFailures(failures)
	printReport(report, cfg.ConfidenceLevel)

	switch {
	case surveyErr != nil && errors.Is(surveyErr, survey.ErrNoResults):
		return fmt.Errorf("survey produced no results: %w", surveyErr)
	case surveyErr != nil:
		return fmt.Errorf("survey aborted: %w", surveyErr)
	}
	return nil
}

// reportFromLatest rebuilds the report from the newest saved survey without
// dispatching any queries.
func reportFromLatest(ctx context.Context, brands []string) error {
	store, err := openResultStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	results, err := store.LoadLatest(ctx)
	if err != nil {
		return err
	}

	report, err := analyzer.BuildReport(results, brands, len(results), 0)
	if err != nil {
		return err
	}

	printReport(report, cfg.ConfidenceLevel)
	return nil
}

func persistSurvey(ctx context.Context, results []models.QueryResult, brands []string) error {
	resultStore, err := openResultStore(ctx)
	if err != nil {
		return err
	}
	defer resultStore.Close(ctx)

	if err := resultStore.SaveResults(ctx, results); err != nil {
		return err
	}

	historyStore, err := openHistoryStore(ctx)
	if err != nil {
		return err
	}
	defer historyStore.Close(ctx)

	return historyStore.Append(ctx, storage.Flatten(results, brands))
}

func printFailures(failures []models.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Printf("\n%s⚠️  %d queries failed%s\n", WarningStyle, len(failures), Reset)
	for _, f := range failures {
		fmt.Printf("  %s[%s]%s %s (%s): %s\n", MetaStyle, f.Kind, Reset, f.Query, f.Model, f.Error)
	}
}
