package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/ai"
	"github.com/spigell/fit-scorer/internal/ai/gemini"
	"github.com/spigell/fit-scorer/internal/ai/openai"
	"github.com/spigell/fit-scorer/internal/cache"
	"github.com/spigell/fit-scorer/internal/logger"
	"github.com/spigell/fit-scorer/internal/ranking"
	"github.com/spigell/fit-scorer/internal/scoring"
	"github.com/spigell/fit-scorer/internal/secrets"
)

// engine holds everything a command needs to score.
type engine struct {
	cache    *cache.Cache
	composer *scoring.Composer
	ranker   *ranking.Ranker
}

func (e *engine) Close() error {
	return e.cache.Close()
}

// setup creates the logger and reads the configuration. Failures are fatal.
func setup() (*Config, *zap.Logger) {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return config, logger
}

func buildEngine(ctx context.Context, config *Config, zlog *zap.Logger) (*engine, error) {
	embedder, model, err := newEmbedder(ctx, config.Embedding, zlog)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	embedder = ai.NewRateLimited(embedder, config.Embedding.RateLimit, config.Embedding.RateBurst)

	store, err := newStore(ctx, config.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache store: %w", err)
	}

	vectors := cache.New(store, embedder, cache.Config{
		Model:       model,
		TTL:         config.Cache.TTL,
		Concurrency: config.Embedding.Concurrency,
	}, zlog)

	composer, err := scoring.NewComposer(vectors, config.Scoring, zlog)
	if err != nil {
		vectors.Close()
		return nil, err
	}

	ranker, err := ranking.New(composer, config.Ranking, zlog)
	if err != nil {
		vectors.Close()
		return nil, fmt.Errorf("ranking: %w", err)
	}

	zlog.Info("engine ready",
		zap.String(logger.FieldProvider, config.Embedding.Provider),
		zap.String(logger.FieldModel, model),
		zap.String("cache_backend", config.Cache.Backend),
		zap.Duration("cache_ttl", config.Cache.TTL),
	)
	return &engine{cache: vectors, composer: composer, ranker: ranker}, nil
}

func newEmbedder(ctx context.Context, cfg *EmbeddingConfig, log *zap.Logger) (ai.Embedder, string, error) {
	retry := ai.DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		retry.Attempts = cfg.MaxRetries
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", ai.ProviderGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:    "gemini api key",
			File:    cfg.Gemini.APIKeyFile,
			EnvFile: "GEMINI_API_KEY_FILE",
			Env:     "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set embedding.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
		}
		embedder, err := gemini.New(ctx, apiKey, cfg.Model, retry, log)
		if err != nil {
			return nil, "", err
		}
		return embedder, embedder.Model(), nil

	case ai.ProviderOpenAI:
		apiKey, err := secrets.Load(secrets.Source{
			Name:    "openai api key",
			File:    cfg.OpenAI.APIKeyFile,
			EnvFile: "OPENAI_API_KEY_FILE",
			Env:     "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set embedding.openai.api-key-file, OPENAI_API_KEY_FILE or OPENAI_API_KEY)", err)
		}
		embedder, err := openai.New(apiKey, cfg.OpenAI.BaseURL, cfg.Model, retry, log)
		if err != nil {
			return nil, "", err
		}
		return embedder, embedder.Model(), nil
	}

	return nil, "", fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
}

func newStore(ctx context.Context, cfg *CacheConfig) (cache.Store, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Backend)) {
	case "", cache.BackendMemory:
		return cache.NewMemoryStore(cfg.Capacity), nil
	case cache.BackendPostgres:
		dsn, err := secrets.Load(secrets.Source{
			Name:    "postgres dsn",
			File:    cfg.Postgres.DSNFile,
			EnvFile: "FIT_SCORER_POSTGRES_DSN_FILE",
			Env:     "FIT_SCORER_POSTGRES_DSN",
		})
		if err != nil {
			return nil, err
		}
		return cache.NewPostgresStore(ctx, dsn, cfg.Postgres.Table)
	}
	return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
}
