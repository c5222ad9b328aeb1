package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/fit-scorer/internal/ai"
	"github.com/spigell/fit-scorer/internal/cache"
	"github.com/spigell/fit-scorer/internal/ranking"
	"github.com/spigell/fit-scorer/internal/scoring"
	"github.com/spigell/fit-scorer/internal/server"
)

const (
	app = "fit-scorer"
)

type Config struct {
	Embedding *EmbeddingConfig `mapstructure:"embedding"`
	Cache     *CacheConfig     `mapstructure:"cache"`
	Scoring   scoring.Config   `mapstructure:"scoring"`
	Ranking   ranking.Config   `mapstructure:"ranking"`
	Server    server.Config    `mapstructure:"server"`
}

type EmbeddingConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	MaxRetries  int           `mapstructure:"max-retries"`
	Concurrency int           `mapstructure:"concurrency"`
	RateLimit   float64       `mapstructure:"rate-limit"`
	RateBurst   int           `mapstructure:"rate-burst"`
	Gemini      *GeminiConfig `mapstructure:"gemini"`
	OpenAI      *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
}

type OpenAIConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
}

type CacheConfig struct {
	Backend  string          `mapstructure:"backend"`
	TTL      time.Duration   `mapstructure:"ttl"`
	Capacity int             `mapstructure:"capacity"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSNFile string `mapstructure:"dsn-file"`
	Table   string `mapstructure:"table"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "fit-scorer scores how well a candidate profile fits job requirements",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fit-scorer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env is optional; real environment variables still win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %s", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without a config file every setting keeps its default.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func defaultConfig() *Config {
	retry := ai.DefaultRetryPolicy()
	return &Config{
		Embedding: &EmbeddingConfig{
			Provider:    ai.ProviderGemini,
			MaxRetries:  retry.Attempts,
			Concurrency: 4,
			Gemini:      &GeminiConfig{},
			OpenAI:      &OpenAIConfig{},
		},
		Cache: &CacheConfig{
			Backend:  cache.BackendMemory,
			TTL:      7 * 24 * time.Hour,
			Postgres: &PostgresConfig{Table: cache.DefaultTable},
		},
		Scoring: scoring.DefaultConfig(),
		Server: server.Config{
			Listen:         ":8080",
			RequestTimeout: 30 * time.Second,
			BodyLimit:      1 << 20,
		},
	}
}

// getConfig layers the config file over the defaults.
func getConfig() (*Config, error) {
	config := defaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	if config.Embedding.Gemini == nil {
		config.Embedding.Gemini = &GeminiConfig{}
	}
	if config.Embedding.OpenAI == nil {
		config.Embedding.OpenAI = &OpenAIConfig{}
	}
	if config.Cache.Postgres == nil {
		config.Cache.Postgres = &PostgresConfig{Table: cache.DefaultTable}
	}
	return config, nil
}
