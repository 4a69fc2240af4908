package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/ai/gemini"
	"github.com/spigell/cv-screener/internal/extract"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/metrics"
	"github.com/spigell/cv-screener/internal/scoring"
	"github.com/spigell/cv-screener/internal/screening"
	"github.com/spigell/cv-screener/internal/secrets"
	"github.com/spigell/cv-screener/internal/similarity"
	"github.com/spigell/cv-screener/internal/store"
)

func newLogger() (*zap.Logger, error) {
	return logger.New(logger.Config{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: viper.GetString("log-output"),
	})
}

// application holds everything a command needs for one screening process.
type application struct {
	config   *Config
	logger   *zap.Logger
	store    store.Store
	metrics  *metrics.Metrics
	screener *screening.Screener
}

func newApplication(ctx context.Context, config *Config, log *zap.Logger) (*application, error) {
	backend, err := newBackend(ctx, config, log)
	if err != nil {
		return nil, err
	}

	sessions, err := store.New(ctx, config.Store)
	if err != nil {
		return nil, fmt.Errorf("building session store: %w", err)
	}

	m := metrics.New()

	screener := screening.New(&config.Screening, &screening.Deps{
		Extractor: extract.NewRegistry(extract.PlainText{}),
		Engine:    scoring.New(backend),
		Store:     sessions,
		Metrics:   m,
		Logger:    log.Named("screening"),
	})

	return &application{
		config:   config,
		logger:   log,
		store:    sessions,
		metrics:  m,
		screener: screener,
	}, nil
}

// exportMetrics writes the textfile when it is configured.
func (a *application) exportMetrics() {
	if a.config.Metrics == nil || strings.TrimSpace(a.config.Metrics.Textfile) == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.config.Metrics.Textfile); err != nil {
		a.logger.Warn("writing metrics textfile", zap.Error(err))
		return
	}
	a.logger.Debug("metrics written", zap.String("filename", a.config.Metrics.Textfile))
}

func newBackend(ctx context.Context, config *Config, log *zap.Logger) (similarity.Backend, error) {
	raw := ""
	if config.Similarity != nil {
		raw = config.Similarity.Backend
	}
	mode, err := similarity.ParseMode(raw)
	if err != nil {
		return nil, err
	}

	if mode == similarity.ModeLexical {
		return similarity.Select(ctx, mode, nil, log)
	}

	embedder, err := newEmbedder(ctx, config.AI, log)
	if err != nil {
		if mode == similarity.ModeEmbedding {
			return nil, fmt.Errorf("%w: %v", similarity.ErrBackendUnavailable, err)
		}
		log.Warn("embedding provider is not available", zap.Error(err))
	}

	return similarity.Select(ctx, mode, embedder, log.Named("similarity"))
}

func newEmbedder(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Embedder, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("ai.gemini section is not configured")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	embedLogger := logger.WithFields(log, zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	embedder, err := gemini.NewEmbedder(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, cfg.Gemini.MaxLogLength, embedLogger)
	if err != nil {
		return nil, err
	}

	return embedder, nil
}
