package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"

	RetentionKeep  = "keep"
	RetentionClear = "clear"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Store    StoreConfig
	Research ResearchConfig
}

type AppConfig struct {
	Environment string
	LogsDir     string
	LogConsole  bool
	NatsURL     string // empty disables NATS fan-out
	RedisURL    string
	OtelEnabled bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Moonshot string
	Tavily   string
}

type AIConfig struct {
	LLMProvider     string // "moonshot" or "ollama"
	LLMModel        string
	MoonshotBaseURL string
	OllamaBaseURL   string
	Temperature     float64
	Timeout         time.Duration // per completion call, 0 disables
	TavilyDepth     string
}

type StoreConfig struct {
	Backend        string // file | postgres | redis | memory
	FilesDir       string
	NotesRetention string // keep | clear
}

type ResearchConfig struct {
	Concurrency int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogsDir:     getEnv("LOGS_DIR", "logs"),
			LogConsole:  getEnvAsBool("LOG_CONSOLE", false),
			NatsURL:     getEnv("NATS_URL", ""),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled: getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Moonshot: getEnv("MOONSHOT_API_KEY", ""),
			Tavily:   getEnv("TAVILY_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "moonshot")),
			LLMModel:        getEnv("LLM_MODEL", ""),
			MoonshotBaseURL: getEnv("MOONSHOT_BASE_URL", "https://api.moonshot.cn/v1"),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			Timeout:         time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
			TavilyDepth:     getEnv("TAVILY_DEPTH", "basic"),
		},
		Store: StoreConfig{
			Backend:        strings.ToLower(getEnv("STORE_BACKEND", StoreFile)),
			FilesDir:       getEnv("FILES_DIR", "files"),
			NotesRetention: strings.ToLower(getEnv("NOTES_RETENTION", RetentionKeep)),
		},
		Research: ResearchConfig{
			Concurrency: getEnvAsInt("RESEARCH_CONCURRENCY", 1),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate reports configuration that must stop the process before any pipeline run.
func (c *Config) Validate() error {
	var errs []error

	switch c.Ai.LLMProvider {
	case "moonshot", "kimi":
		if c.Keys.Moonshot == "" {
			errs = append(errs, errors.New("MOONSHOT_API_KEY not found; set it in a .env file or export it in your shell (get a key at https://platform.moonshot.cn/console/api-keys)"))
		}
	case "ollama":
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", c.Ai.LLMProvider))
	}

	switch c.Store.Backend {
	case StoreFile, StoreMemory, StoreRedis:
	case StorePostgres:
		if c.Database.Connection == "" {
			errs = append(errs, errors.New("DB_CONNECTION_STRING is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend))
	}

	switch c.Store.NotesRetention {
	case RetentionKeep, RetentionClear:
	default:
		errs = append(errs, fmt.Errorf("unsupported NOTES_RETENTION %q", c.Store.NotesRetention))
	}

	if c.Research.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("RESEARCH_CONCURRENCY must be >= 1, got %d", c.Research.Concurrency))
	}
	if c.Ai.Timeout < 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT_SECONDS must not be negative"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
