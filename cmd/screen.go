package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/screening"
)

const (
	PromptRanking     = "Show ranking"
	PromptDetails     = "Show candidate details"
	PromptSessionJSON = "Print session as JSON"
	PromptSessionFile = "Dump session to file"
	PromptExit        = "Exit"
	PromptBack        = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptRanking, PromptDetails, PromptSessionJSON, PromptSessionFile, PromptExit},
}

var screenCmd = &cobra.Command{
	Use:   "screen [CV files...]",
	Short: "Score CVs against a job description and rank the candidates",
	Run: func(cmd *cobra.Command, args []string) {
		screen(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().String("jd", "", "job description file")
	screenCmd.Flags().StringSliceP("cv", "c", nil, "CV file, may be repeated")
	screenCmd.Flags().StringSliceP("must-have", "m", nil, "skill every candidate must have, may be repeated")
	screenCmd.Flags().String("manifest", "", "YAML or JSON file listing the job description and candidates")
	screenCmd.Flags().BoolP("auto-approve", "y", false, "print the ranking and exit without the interactive menu")
	screenCmd.Flags().StringP("output", "o", OutputTable, "output format: table or json")
}

// screen is the main command for the cli.
func screen(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the cv-screener", zap.String("version", resolvedVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	flags := cmd.Flags()
	cvs, _ := flags.GetStringSlice("cv")
	mustHave, _ := flags.GetStringSlice("must-have")
	jd, _ := flags.GetString("jd")
	manifest, _ := flags.GetString("manifest")
	output, _ := flags.GetString("output")

	req, err := buildRequest(screenInput{
		jd:       jd,
		cvs:      append(cvs, args...),
		mustHave: mustHave,
		manifest: manifest,
	})
	if err != nil {
		logger.Fatal("preparing the screening request", zap.Error(err))
	}

	deps, err := newApplication(ctx, config, logger)
	if err != nil {
		logger.Fatal("initializing", zap.Error(err))
	}
	defer deps.exportMetrics()

	session, err := deps.screener.Run(ctx, req)
	if err != nil {
		deps.exportMetrics()
		logger.Fatal("screening failed", zap.Error(err))
	}

	if err := printSession(os.Stdout, session, output); err != nil {
		logger.Fatal("printing results", zap.Error(err))
	}

	if auto, _ := flags.GetBool("auto-approve"); auto || output == OutputJSON {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, session); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, session *screening.Session) error {
	switch action {
	case PromptRanking:
		return printRanking(os.Stdout, session)
	case PromptDetails:
		return candidateDetails(session)
	case PromptSessionJSON:
		return writeJSON(os.Stdout, session)
	case PromptSessionFile:
		filename, err := session.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump session to file: %w", err)
		}
		logger.Info("dumping session to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func candidateDetails(session *screening.Session) error {
	for {
		candidatePrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: append(session.Names(), PromptBack),
		}

		_, selected, err := candidatePrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		res, ok := session.Candidate(selected)
		if !ok {
			return fmt.Errorf("there is no such candidate %s", selected)
		}
		if err := printCandidate(os.Stdout, res); err != nil {
			return err
		}
	}
}

// redacted hides the inline api key before the config is logged.
func redacted(config *Config) *Config {
	out := *config
	if config.AI != nil && config.AI.Gemini != nil && config.AI.Gemini.APIKey != "" {
		ai := *config.AI
		gemini := *config.AI.Gemini
		gemini.APIKey = "***"
		ai.Gemini = &gemini
		out.AI = &ai
	}
	if out.Store.Redis.Password != "" {
		out.Store.Redis.Password = "***"
	}
	return &out
}
