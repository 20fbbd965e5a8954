package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	GenAI     GenAIConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Emissions EmissionsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
}

// GenAIConfig holds generative model configuration
type GenAIConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	BaseURL           string        `mapstructure:"base_url"`
	Language          string        `mapstructure:"language"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"` // 0 keeps entries until evicted
	MaxEntries int           `mapstructure:"max_entries"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// EmissionsConfig holds Climate TRACE configuration
type EmissionsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Country string        `mapstructure:"country"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/verdeai/")

	// VERDEAI_CACHE_REDIS_URL -> cache.redis_url
	v.SetEnvPrefix("VERDEAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load(".env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:9002"})
	v.SetDefault("server.max_body_bytes", 8<<20)

	// GenAI defaults
	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.model", "gemini-2.0-flash")
	v.SetDefault("genai.base_url", "")
	v.SetDefault("genai.language", "Brazilian Portuguese")
	v.SetDefault("genai.timeout", "30s")
	v.SetDefault("genai.requests_per_minute", 60)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "0s")
	v.SetDefault("cache.max_entries", 10000)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)

	// Emissions defaults
	v.SetDefault("emissions.base_url", "https://api.climatetrace.org")
	v.SetDefault("emissions.country", "BRA")
	v.SetDefault("emissions.ttl", "24h")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.GenAI.APIKey == "" {
		return fmt.Errorf("GenAI API key is required (set VERDEAI_GENAI_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache max_entries must not be negative, got: %d", config.Cache.MaxEntries)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max_body_bytes must be positive, got: %d", config.Server.MaxBodyBytes)
	}

	return nil
}
