package cmd

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show SESSION_ID",
	Short: "Print a stored screening session",
	Long: "Print a stored screening session. Sessions outlive the screening process " +
		"only with the redis session store.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		show(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().String("candidate", "", "print the details of one candidate")
	showCmd.Flags().StringP("output", "o", OutputTable, "output format: table or json")
}

func show(cmd *cobra.Command, id string) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	sessions, err := store.New(ctx, config.Store)
	if err != nil {
		logger.Fatal("building session store", zap.Error(err))
	}

	session, err := sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) && sessions.Kind() == store.KindMemory {
			logger.Fatal("session not found",
				zap.String("session_id", id),
				zap.String("hint", "the memory store does not keep sessions between runs, set store.kind to redis"),
			)
		}
		logger.Fatal("getting session", zap.String("session_id", id), zap.Error(err))
	}

	output, _ := cmd.Flags().GetString("output")
	candidate, _ := cmd.Flags().GetString("candidate")

	if candidate == "" {
		if err := printSession(os.Stdout, session, output); err != nil {
			logger.Fatal("printing session", zap.Error(err))
		}
		return
	}

	res, ok := session.Candidate(candidate)
	if !ok {
		logger.Fatal("candidate not found in session",
			zap.String("candidate", candidate),
			zap.Strings("candidates", session.Names()),
		)
	}

	if output == OutputJSON {
		err = writeJSON(os.Stdout, res)
	} else {
		err = printCandidate(os.Stdout, res)
	}
	if err != nil {
		logger.Fatal("printing candidate", zap.Error(err))
	}
}
