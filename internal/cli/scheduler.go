package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OliwiaLewandowska/som-monitor/internal/analyzer"
	"github.com/OliwiaLewandowska/som-monitor/internal/logger"
	"github.com/OliwiaLewandowska/som-monitor/internal/scheduler"
	"github.com/OliwiaLewandowska/som-monitor/internal/survey"
)

var (
	schedProvider string
	schedModels   []string
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run recurring surveys on the configured cron schedule",
	Long: `Start a long-running process that executes a full survey on the cron
expression from the schedule section of the config and persists each run.`,
	RunE: runScheduler,
}

func runScheduler(cmd *cobra.Command, args []string) error {
	if cfg.Schedule.Cron == "" {
		return fmt.Errorf("no cron expression configured: set schedule.cron in the config")
	}
	if len(schedModels) == 0 {
		return fmt.Errorf("--models is required")
	}

	providerName := cfg.Schedule.Provider
	if providerName == "" {
		providerName = schedProvider
	}

	an, err := analyzer.New(cfg.Brands)
	if err != nil {
		return err
	}

	provider, err := newProvider(providerName)
	if err != nil {
		return err
	}

	runner := survey.NewRunner(provider, an, survey.NewTokenBucketGate(cfg.RateLimitDelay))

	sched := scheduler.New(func(ctx context.Context) error {
		_, results, _, surveyErr := runner.Run(ctx, survey.Config{
			Categories:   cfg.Categories(),
			Models:       schedModels,
			Templates:    cfg.QueryTemplates,
			RunsPerQuery: cfg.RunsPerQuery,
			Temperature:  cfg.Temperature,
			MaxTokens:    cfg.MaxTokens,
			MaxRetries:   cfg.MaxRetries,
			RetryDelay:   cfg.RateLimitDelay,
			QueryTimeout: cfg.RequestTimeout,
			Workers:      cfg.Workers,
		})
		if len(results) > 0 {
			if err := persistSurvey(ctx, results, cfg.Brands); err != nil {
				return err
			}
		}
		return surveyErr
	})

	ctx := context.Background()
	if err := sched.Start(ctx, cfg.Schedule.Cron); err != nil {
		return err
	}

	logger.Info("✅ Scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("⏸️  Stopping scheduler...")
	sched.Stop()

	logger.Info("✅ Scheduler stopped. Goodbye!")
	return nil
}

func init() {
	schedulerCmd.Flags().StringVar(&schedProvider, "provider", "openai", "LLM provider for scheduled surveys")
	schedulerCmd.Flags().StringSliceVar(&schedModels, "models", nil, "models to survey")
}
