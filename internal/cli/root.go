package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OliwiaLewandowska/som-monitor/internal/config"
	"github.com/OliwiaLewandowska/som-monitor/internal/llm"
	"github.com/OliwiaLewandowska/som-monitor/internal/llm/anthropic"
	"github.com/OliwiaLewandowska/som-monitor/internal/llm/google"
	"github.com/OliwiaLewandowska/som-monitor/internal/llm/openai"
	"github.com/OliwiaLewandowska/som-monitor/internal/llm/perplexity"
	"github.com/OliwiaLewandowska/som-monitor/internal/logger"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage/jsonfile"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage/mongodb"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage/sqlite"
)

var (
	cfgFile     string
	logLevel    string
	cfg         *config.Config
	llmRegistry *llm.Registry
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "som-monitor",
	Short: "Share-of-model tracker for LLM responses",
	Long: `som-monitor surveys LLM providers with brand-related prompts and measures
how often each tracked brand appears in the responses.

Run recurring surveys, rank brands by mention rate, test whether two brands
differ significantly, and detect trends in a brand's visibility over time.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logger.ParseLogLevel(logLevel), os.Stdout)

		// Skip config loading for the init command itself
		if cmd.Name() == "init" {
			return nil
		}

		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}

		if !config.Exists(cfgFile) {
			return fmt.Errorf("configuration file not found. Run 'som-monitor init' to create one")
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		llmRegistry = llm.NewRegistry()
		llmRegistry.Register("openai", openai.New)
		llmRegistry.Register("anthropic", anthropic.New)
		llmRegistry.Register("google", google.New)
		llmRegistry.Register("perplexity", perplexity.New)

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.som-monitor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level (DEBUG, INFO, WARNING, ERROR)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(schedulerCmd)
}

// newProvider builds the named provider with credentials from the environment.
func newProvider(name string) (llm.Provider, error) {
	apiKey := config.APIKey(name)
	if apiKey == "" {
		return nil, fmt.Errorf("no API key found for provider %q: set the corresponding environment variable", name)
	}
	return llmRegistry.New(name, llm.Credentials{APIKey: apiKey})
}

// openResultStore builds the configured results backend.
func openResultStore(ctx context.Context) (storage.ResultStore, error) {
	switch cfg.Storage.Results {
	case "", "jsonfile":
		return jsonfile.NewResultStore(cfg.Storage.ResultsDir)
	case "mongodb":
		return mongodb.NewResultStore(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDB)
	}
	return nil, fmt.Errorf("unsupported results backend: %s", cfg.Storage.Results)
}

// openHistoryStore builds the configured history backend.
func openHistoryStore(ctx context.Context) (storage.HistoryStore, error) {
	switch cfg.Storage.History {
	case "", "csv":
		return jsonfile.NewHistoryStore(cfg.Storage.HistoryFile)
	case "sqlite":
		return sqlite.NewHistoryStore(ctx, cfg.Storage.SQLitePath)
	}
	return nil, fmt.Errorf("unsupported history backend: %s", cfg.Storage.History)
}
