package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	AI       AIConfig
	Cache    CacheConfig
	Retrieve RetrieveConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	BaseUrl            string
	CorsAllowedOrigins []string
	TrustedProxies     []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB name for Postgres

	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type AIConfig struct {
	Provider     string // "gemini" or "openai"
	GeminiAPIKey string
	OpenAIAPIKey string

	ChatModel  string
	EmbedModel string

	// SystemInstruction is the fallback used when no active prompt template
	// exists in the database.
	SystemInstruction string

	// ContextCacheTTL is the requested lifetime for provider-side context
	// caches. The provider's reported expiration is authoritative.
	ContextCacheTTL time.Duration

	RequestTimeout time.Duration
}

type CacheConfig struct {
	ResponseTTL        time.Duration
	ConversationTTL    time.Duration
	SummarizeThreshold int
}

type RetrieveConfig struct {
	MatchThreshold float32
	MatchCount     int
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()

	appCfg := AppConfig{
		Version:            "v1.3.0",
		Port:               getEnv("APP_PORT", "8000"),
		Debug:              getEnvBool("APP_DEBUG", false),
		Environment:        getEnv("APP_ENV", "development"),
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:8000"),
		CorsAllowedOrigins: getEnvList("APP_CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		TrustedProxies:     getEnvList("APP_TRUSTED_PROXIES", nil),
	}

	dbCfg := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "storages/kbchat.db"),

		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "kbchat"),
	}

	aiCfg := AIConfig{
		Provider:          strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		ChatModel:         getEnv("AI_CHAT_MODEL", "gemini-2.0-flash-001"),
		EmbedModel:        getEnv("AI_EMBED_MODEL", "text-embedding-004"),
		SystemInstruction: getEnv("AI_SYSTEM_INSTRUCTION", "You are a helpful AI assistant."),
		ContextCacheTTL:   time.Duration(getEnvInt("AI_CONTEXT_CACHE_TTL_HOURS", 1)) * time.Hour,
		RequestTimeout:    time.Duration(getEnvInt("AI_REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	cacheCfg := CacheConfig{
		ResponseTTL:        time.Duration(getEnvInt("CACHE_RESPONSE_TTL_SECONDS", 3600)) * time.Second,
		ConversationTTL:    time.Duration(getEnvInt("CACHE_CONVERSATION_TTL_SECONDS", 86400)) * time.Second,
		SummarizeThreshold: getEnvInt("CACHE_SUMMARIZE_THRESHOLD", 5),
	}

	retrieveCfg := RetrieveConfig{
		MatchThreshold: float32(getEnvFloat("RETRIEVE_MATCH_THRESHOLD", 0.5)),
		MatchCount:     getEnvInt("RETRIEVE_MATCH_COUNT", 5),
	}

	ingestCfg := IngestConfig{
		ChunkSize:    getEnvInt("INGEST_CHUNK_SIZE", 900),
		ChunkOverlap: getEnvInt("INGEST_CHUNK_OVERLAP", 200),
	}

	cfg := &Config{
		App:      appCfg,
		Database: dbCfg,
		AI:       aiCfg,
		Cache:    cacheCfg,
		Retrieve: retrieveCfg,
		Ingest:   ingestCfg,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	Global = cfg
	return cfg, nil
}

// validate catches configuration errors that must be fatal at startup.
// Missing provider credentials fall into this class; everything else is
// handled per-request by the degraded-mode policies of the cache layer.
func (c *Config) validate() error {
	switch c.AI.Provider {
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case "openai":
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unsupported AI_PROVIDER: %s", c.AI.Provider)
	}

	if c.Cache.SummarizeThreshold < 1 {
		return fmt.Errorf("CACHE_SUMMARIZE_THRESHOLD must be at least 1")
	}

	return nil
}
