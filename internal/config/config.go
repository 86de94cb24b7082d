package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrCredentialMissing is returned when the selected AI provider has no API key.
var ErrCredentialMissing = errors.New("credential missing")

// Config holds all configuration for the racetime server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Model    ModelConfig
	Langfuse LangfuseConfig
}

type ServerConfig struct {
	Port              int
	Env               string
	RequestsPerMinute int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type RedisConfig struct {
	URL           string
	ExtractionTTL time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	OpenAI           OpenAIConfig
	VLLM             OpenAIConfig
	Ollama           OpenAIConfig
	Gemini           GeminiConfig
}

// OpenAIConfig configures any OpenAI-compatible chat completions endpoint.
// BaseURL is optional for OpenAI itself.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// ModelConfig locates the trained regression artifact. When Bucket is empty the
// artifact is read from LocalPath only.
type ModelConfig struct {
	Bucket       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Region       string
	ObjectKey    string
	LocalPath    string
	FetchRetries int
}

// LangfuseConfig configures the optional trace sink.
type LangfuseConfig struct {
	PublicKey string
	SecretKey string
	Host      string
	Timeout   time.Duration
}

// Enabled reports whether both Langfuse keys are set.
func (c LangfuseConfig) Enabled() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

var validProviders = map[string]bool{
	"openai": true,
	"vllm":   true,
	"ollama": true,
	"gemini": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              envInt("RACETIME_PORT", 8080),
			Env:               envString("RACETIME_ENV", "development"),
			RequestsPerMinute: envInt("RACETIME_REQUESTS_PER_MINUTE", 30),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsDir:   envString("DATABASE_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL:           os.Getenv("REDIS_URL"),
			ExtractionTTL: envDuration("EXTRACTION_CACHE_TTL", 24*time.Hour),
		},
		AI: AIConfig{
			Provider:         envString("AI_PROVIDER", "openai"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
				Model:   envString("OPENAI_MODEL", "gpt-3.5-turbo"),
			},
			VLLM: OpenAIConfig{
				APIKey:  os.Getenv("VLLM_API_KEY"),
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000/v1"),
				Model:   envString("VLLM_MODEL", ""),
			},
			Ollama: OpenAIConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			Gemini: GeminiConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  envString("GEMINI_MODEL", "gemini-1.5-flash"),
			},
		},
		Model: ModelConfig{
			Bucket:       os.Getenv("DO_SPACES_BUCKET_NAME"),
			Endpoint:     os.Getenv("DO_SPACES_ENDPOINT_URL"),
			AccessKey:    os.Getenv("DO_SPACES_ACCESS_KEY"),
			SecretKey:    os.Getenv("DO_SPACES_SECRET_KEY"),
			Region:       os.Getenv("DO_SPACES_REGION"),
			ObjectKey:    envString("MODEL_OBJECT_KEY", "marathon_model.json"),
			LocalPath:    envString("MODEL_LOCAL_PATH", "/tmp/marathon_model.json"),
			FetchRetries: envInt("MODEL_FETCH_RETRIES", 3),
		},
		Langfuse: LangfuseConfig{
			PublicKey: os.Getenv("LANGFUSE_PUBLIC_KEY"),
			SecretKey: os.Getenv("LANGFUSE_SECRET_KEY"),
			Host:      envString("LANGFUSE_HOST", "https://cloud.langfuse.com"),
			Timeout:   envDuration("LANGFUSE_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, vllm, ollama, gemini; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is required when AI_PROVIDER is openai", ErrCredentialMissing)
	}
	if c.AI.Provider == "gemini" && c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is required when AI_PROVIDER is gemini", ErrCredentialMissing)
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}

	if c.Model.Bucket != "" {
		if c.Model.Endpoint == "" {
			return fmt.Errorf("DO_SPACES_ENDPOINT_URL is required when DO_SPACES_BUCKET_NAME is set")
		}
		if !strings.HasPrefix(c.Model.Endpoint, "http://") && !strings.HasPrefix(c.Model.Endpoint, "https://") {
			return fmt.Errorf("DO_SPACES_ENDPOINT_URL must start with http:// or https://, got %q", c.Model.Endpoint)
		}
	}
	if c.Model.LocalPath == "" {
		return fmt.Errorf("MODEL_LOCAL_PATH must not be empty")
	}

	if c.Langfuse.Enabled() {
		if !strings.HasPrefix(c.Langfuse.Host, "http://") && !strings.HasPrefix(c.Langfuse.Host, "https://") {
			return fmt.Errorf("LANGFUSE_HOST must start with http:// or https://, got %q", c.Langfuse.Host)
		}
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
