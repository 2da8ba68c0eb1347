package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/OliwiaLewandowska/som-monitor/internal/api"
)

var (
	apiHost string
	apiPort int
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the read-only HTTP API",
	Long: `Serve survey analytics over HTTP: the latest ranked report with confidence
intervals, pairwise brand comparisons and per-brand trend detection. The API
never triggers surveys.`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&apiHost, "host", "", "host to bind (default: from config)")
	apiCmd.Flags().IntVar(&apiPort, "port", 0, "port to bind (default: from config)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	resultStore, err := openResultStore(ctx)
	if err != nil {
		return err
	}
	defer resultStore.Close(ctx)

	historyStore, err := openHistoryStore(ctx)
	if err != nil {
		return err
	}
	defer historyStore.Close(ctx)

	host := apiHost
	if host == "" {
		host = cfg.API.Host
	}
	port := apiPort
	if port == 0 {
		port = cfg.API.Port
	}
	if port == 0 {
		port = 8080
	}

	server := api.NewServer(resultStore, historyStore, api.Config{
		Brands:          cfg.Brands,
		ConfidenceLevel: cfg.ConfidenceLevel,
		Alpha:           cfg.SignificanceAlpha,
	})
	return server.Start(host, port)
}
