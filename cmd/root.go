package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cv-screener/internal/screening"
	"github.com/spigell/cv-screener/internal/signals"
	"github.com/spigell/cv-screener/internal/store"
)

const (
	app       = "cv-screener"
	envPrefix = "CV_SCREENER"
)

type Config struct {
	Similarity *SimilarityConfig `mapstructure:"similarity"`
	Screening  screening.Config  `mapstructure:"screening"`
	Store      store.Config      `mapstructure:"store"`
	Metrics    *MetricsConfig    `mapstructure:"metrics"`
	AI         *AIConfig         `mapstructure:"ai"`
}

type SimilarityConfig struct {
	// Backend is one of auto, embedding or lexical.
	Backend string `mapstructure:"backend"`
}

type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path. Empty disables export.
	Textfile string `mapstructure:"textfile"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-screener scores CVs against a job description and ranks the candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("backend", "", "similarity backend: auto, embedding or lexical")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("similarity.backend", rootCmd.PersistentFlags().Lookup("backend"))
}

// setDefaults registers every key so that CV_SCREENER_* variables can override it.
func setDefaults() {
	rf := signals.DefaultConfig()

	viper.SetDefault("log-output", "stderr")
	viper.SetDefault("similarity.backend", "auto")
	viper.SetDefault("screening.workers", 4)
	viper.SetDefault("screening.signals.max-experience-years", rf.MaxExperienceYears)
	viper.SetDefault("screening.signals.red-flags.gap-months", rf.RedFlags.GapMonths)
	viper.SetDefault("screening.signals.red-flags.job-change-count", rf.RedFlags.JobChangeCount)
	viper.SetDefault("screening.signals.red-flags.job-change-window-years", rf.RedFlags.JobChangeWindowYears)
	viper.SetDefault("screening.signals.red-flags.short-tenure-months", rf.RedFlags.ShortTenureMonths)
	viper.SetDefault("store.kind", store.KindMemory)
	viper.SetDefault("store.capacity", 0)
	viper.SetDefault("store.redis.address", "localhost:6379")
	viper.SetDefault("store.redis.password", "")
	viper.SetDefault("store.redis.db", 0)
	viper.SetDefault("store.redis.prefix", "")
	viper.SetDefault("store.redis.ttl", "0s")
	viper.SetDefault("metrics.textfile", "")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.model", "gemini-embedding-001")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless it was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
