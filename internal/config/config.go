package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Whisper   WhisperConfig
	Audio     AudioConfig
	Bria      BriaConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Images    ImagesConfig
	Prompts   PromptsConfig
	Notify    NotifyConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	JWTSecret string
	TTL       time.Duration
}

type WhisperConfig struct {
	BaseURL          string // default: "http://localhost:8178"
	CPUBaseURL       string // empty means same host as BaseURL
	Device           string // default: "cuda:0"
	DefaultModelSize string
	Timeout          time.Duration
}

type AudioConfig struct {
	FFmpegBin string
}

type BriaConfig struct {
	APIKey       string
	BaseURL      string
	ModelVersion string
}

type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type ImagesConfig struct {
	DefaultProvider string // "bria" or "openai"
}

type PromptsConfig struct {
	RewriteBackend string // "bria" or "anthropic"
}

type NotifyConfig struct {
	SigningSecret string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionTTL, err := getEnvInt("SESSION_TTL_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	whisperTimeout, err := getEnvInt("WHISPER_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid WHISPER_TIMEOUT_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Session: SessionConfig{
			JWTSecret: getEnv("SESSION_JWT_SECRET", ""),
			TTL:       time.Duration(sessionTTL) * time.Hour,
		},
		Whisper: WhisperConfig{
			BaseURL:          getEnv("WHISPER_BASE_URL", "http://localhost:8178"),
			CPUBaseURL:       getEnv("WHISPER_CPU_BASE_URL", ""),
			Device:           getEnv("WHISPER_DEVICE", "cuda:0"),
			DefaultModelSize: getEnv("WHISPER_DEFAULT_MODEL", "base"),
			Timeout:          time.Duration(whisperTimeout) * time.Second,
		},
		Audio: AudioConfig{
			FFmpegBin: getEnv("FFMPEG_BIN", "ffmpeg"),
		},
		Bria: BriaConfig{
			APIKey:       getEnv("BRIA_API_KEY", ""),
			BaseURL:      getEnv("BRIA_BASE_URL", "https://engine.prod.bria-api.com"),
			ModelVersion: getEnv("BRIA_MODEL_VERSION", "2.2"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Anthropic: AnthropicConfig{
			APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		},
		Images: ImagesConfig{
			DefaultProvider: getEnv("IMAGE_DEFAULT_PROVIDER", "bria"),
		},
		Prompts: PromptsConfig{
			RewriteBackend: getEnv("PROMPT_REWRITE_BACKEND", "bria"),
		},
		Notify: NotifyConfig{
			SigningSecret: getEnv("CALLBACK_SIGNING_SECRET", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Session.JWTSecret == "" {
		missing = append(missing, "SESSION_JWT_SECRET")
	}
	if c.Bria.APIKey == "" {
		missing = append(missing, "BRIA_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
