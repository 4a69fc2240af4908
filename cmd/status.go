package cmd

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the similarity backend, supported formats and session store",
	Run: func(_ *cobra.Command, _ []string) {
		status()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func status() {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	deps, err := newApplication(ctx, config, logger)
	if err != nil {
		logger.Fatal("initializing", zap.Error(err))
	}

	if err := writeJSON(os.Stdout, map[string]any{
		"version":      resolvedVersion(),
		"status":       "ok",
		"capabilities": deps.screener.Capabilities(),
	}); err != nil {
		logger.Fatal("printing status", zap.Error(err))
	}
}
