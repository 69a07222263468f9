// Package config loads process configuration from an optional .env file, an
// optional YAML file named by MOODLE_RAG_CONFIG and the environment, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// Run modes
const (
	RunModeAll    = "all"    // HTTP API and scheduler
	RunModeAPI    = "api"    // load the index once, serve HTTP
	RunModeWorker = "worker" // scheduler only
	RunModeIndex  = "index"  // build or open the index once, then exit
)

// ConfigFileEnv names the environment variable holding the YAML file path
const ConfigFileEnv = "MOODLE_RAG_CONFIG"

// Config is the complete process configuration
type Config struct {
	Port     int    `yaml:"port"`
	RunMode  string `yaml:"run_mode"`
	LogLevel string `yaml:"log_level"`

	Moodle    MoodleConfig             `yaml:"moodle"`
	Index     IndexConfig              `yaml:"index"`
	Embedding domain.EmbeddingSettings `yaml:"embedding"`
	LLM       domain.LLMSettings       `yaml:"llm"`
	MiniLLM   domain.LLMSettings       `yaml:"mini_llm"`
	Chat      ChatConfig               `yaml:"chat"`

	DatabaseURL        string   `yaml:"-"`
	RedisURL           string   `yaml:"-"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// MoodleConfig configures the Moodle web service client
type MoodleConfig struct {
	URL       string  `yaml:"url"`
	Token     string  `yaml:"-"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 = unlimited
	FetchPDF  bool    `yaml:"fetch_pdf"`
}

// IndexConfig configures the vector index and its refresh job
type IndexConfig struct {
	Dir             string        `yaml:"dir"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	LockTTL         time.Duration `yaml:"lock_ttl"`
	BatchSize       int           `yaml:"batch_size"`
	QueryCacheSize  int           `yaml:"query_cache_size"`
	MaxEmbedChars   int           `yaml:"max_embed_chars"` // 0 = no truncation
}

// ChatConfig holds prompts and sampling parameters. Empty prompts use the built-in German defaults.
type ChatConfig struct {
	PlatformName     string         `yaml:"platform_name"`
	SystemPrompt     string         `yaml:"system_prompt"`
	UserPrompt       string         `yaml:"user_prompt"`
	ClassifierPrompt string         `yaml:"classifier_prompt"`
	Fallback         string         `yaml:"fallback"`
	TopK             int            `yaml:"top_k"`
	Answer           SamplingConfig `yaml:"answer"`
	Classifier       SamplingConfig `yaml:"classifier"`
}

// SamplingConfig mirrors domain.GenerationOptions for the config file
type SamplingConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Seed        int     `yaml:"seed"`
}

// Options converts the sampling config to generation options
func (s SamplingConfig) Options() *domain.GenerationOptions {
	return &domain.GenerationOptions{
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		Seed:        s.Seed,
	}
}

// Default returns the configuration used before any file or environment is applied
func Default() *Config {
	return &Config{
		Port:     8000,
		RunMode:  RunModeAll,
		LogLevel: "info",
		Index: IndexConfig{
			Dir:             "data/stores/moodlestore",
			RefreshInterval: 24 * time.Hour,
			LockTTL:         time.Hour,
			BatchSize:       32,
			QueryCacheSize:  1024,
		},
		Embedding: domain.EmbeddingSettings{
			Provider:            domain.AIProviderOllama,
			Model:               "nomic-embed-text",
			QueryInstruction:    domain.DefaultQueryInstruction,
			DocumentInstruction: domain.DefaultDocumentInstruction,
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			Model:    "-",
			APIKey:   "lm-studio",
		},
		MiniLLM: domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			Model:    "-",
			APIKey:   "lm-studio",
		},
		Chat: ChatConfig{
			PlatformName: "FutureLearnLab",
			TopK:         domain.DefaultTopK,
			Answer:       SamplingConfig{MaxTokens: 512, Temperature: 0.1, Seed: 42},
			Classifier:   SamplingConfig{MaxTokens: 128, Temperature: 0.1, Seed: 42},
		},
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load reads .env, the optional YAML file and the environment, then validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: read .env: %v", domain.ErrConfiguration, err)
	}

	cfg := Default()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the YAML file onto cfg
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
	}
	return nil
}

// applyEnv overlays environment variables onto cfg
func (c *Config) applyEnv() error {
	var errs []error
	envInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	envFloat := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a number", key, v))
				return
			}
			*dst = f
		}
	}
	envDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a duration", key, v))
				return
			}
			*dst = d
		}
	}
	envString := func(key string, dst *string) {
		*dst = getEnv(key, *dst)
	}

	envInt("PORT", &c.Port)
	envString("RUN_MODE", &c.RunMode)
	envString("LOG_LEVEL", &c.LogLevel)

	envString("MOODLE_URL", &c.Moodle.URL)
	envString("MOODLE_API_TOKEN", &c.Moodle.Token)
	envFloat("MOODLE_RATE_LIMIT", &c.Moodle.RateLimit)
	c.Moodle.FetchPDF = getEnvBool("MOODLE_FETCH_PDF", c.Moodle.FetchPDF)

	envString("INDEX_DIR", &c.Index.Dir)
	envDuration("INDEX_REFRESH_INTERVAL", &c.Index.RefreshInterval)
	envDuration("INDEX_LOCK_TTL", &c.Index.LockTTL)
	envInt("EMBED_BATCH_SIZE", &c.Index.BatchSize)
	envInt("QUERY_CACHE_SIZE", &c.Index.QueryCacheSize)
	envInt("EMBED_MAX_CHARS", &c.Index.MaxEmbedChars)

	c.Embedding.Provider = domain.AIProvider(getEnv("EMBEDDING_PROVIDER", string(c.Embedding.Provider)))
	envString("EMBEDDING_MODEL", &c.Embedding.Model)
	envString("EMBEDDING_URL", &c.Embedding.BaseURL)
	envString("EMBEDDING_API_KEY", &c.Embedding.APIKey)

	// Both chat models share provider and key, only URL and model differ.
	provider := domain.AIProvider(getEnv("LLM_PROVIDER", string(c.LLM.Provider)))
	c.LLM.Provider, c.MiniLLM.Provider = provider, provider
	envString("LLM_API_KEY", &c.LLM.APIKey)
	envString("LLM_API_KEY", &c.MiniLLM.APIKey)
	envString("DEFAULT_CUSTOM_LLM_URL", &c.LLM.BaseURL)
	envString("MINI_CUSTOM_LLM_URL", &c.MiniLLM.BaseURL)
	envString("LLM_MODEL", &c.LLM.Model)
	envString("MINI_LLM_MODEL", &c.MiniLLM.Model)

	envString("PLATFORM_NAME", &c.Chat.PlatformName)

	envString("DATABASE_URL", &c.DatabaseURL)
	envString("REDIS_URL", &c.RedisURL)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// Validate checks required keys and value ranges. Every missing key is reported at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Moodle.URL == "" {
		missing = append(missing, "MOODLE_URL")
	}
	if c.Moodle.Token == "" {
		missing = append(missing, "MOODLE_API_TOKEN")
	}
	if c.LLM.BaseURL == "" {
		missing = append(missing, "DEFAULT_CUSTOM_LLM_URL")
	}
	if c.MiniLLM.BaseURL == "" {
		missing = append(missing, "MINI_CUSTOM_LLM_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required keys: %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}

	switch c.RunMode {
	case RunModeAll, RunModeAPI, RunModeWorker, RunModeIndex:
	default:
		return fmt.Errorf("%w: unknown RUN_MODE %q (use: all, api, worker or index)", domain.ErrConfiguration, c.RunMode)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: PORT %d out of range", domain.ErrConfiguration, c.Port)
	}
	if c.Index.Dir == "" {
		return fmt.Errorf("%w: INDEX_DIR must not be empty", domain.ErrConfiguration)
	}
	if c.Index.RefreshInterval <= 0 {
		return fmt.Errorf("%w: INDEX_REFRESH_INTERVAL must be positive", domain.ErrConfiguration)
	}
	if c.Moodle.RateLimit < 0 {
		return fmt.Errorf("%w: MOODLE_RATE_LIMIT must not be negative", domain.ErrConfiguration)
	}
	if c.Index.MaxEmbedChars < 0 {
		return fmt.Errorf("%w: EMBED_MAX_CHARS must not be negative", domain.ErrConfiguration)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if !c.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q with model %q is incomplete", domain.ErrConfiguration, c.Embedding.Provider, c.Embedding.Model)
	}
	if !c.LLM.IsConfigured() || !c.MiniLLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q needs a valid provider and API key", domain.ErrConfiguration, c.LLM.Provider)
	}
	return nil
}

// LockBackend names the distributed lock backend the configuration selects
func (c *Config) LockBackend() string {
	switch {
	case c.RedisURL != "":
		return "redis"
	case c.DatabaseURL != "":
		return "postgres"
	default:
		return "none"
	}
}

// ParseLogLevel maps debug|info|warn|error to a slog level
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("%w: unknown LOG_LEVEL %q", domain.ErrConfiguration, level)
	}
	return l, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
