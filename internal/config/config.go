package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingAPIKey   = errors.New("TAVILY_API_KEY is required")
	ErrInvalidTimeouts = errors.New("overall timeout must exceed per-attempt timeout")
)

type Config struct {
	Tavily    TavilyConfig
	RateLimit RateLimitConfig
	Retry     RetryConfig
	Health    HealthConfig
	Search    SearchConfig
	Cache     CacheConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

type TavilyConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration // на одну попытку
}

type RateLimitConfig struct {
	Capacity      float64
	RefillPerSec  float64
	MinTokens     float64
	MaxConcurrent int
}

type RetryConfig struct {
	MaxAttempts  int
	BaseBackoff  time.Duration
	GrowthFactor float64
}

type HealthConfig struct {
	MaxErrors           int
	MaxRecoveryAttempts int
	RecoveryDecrement   int
	CheckInterval       time.Duration
}

type SearchConfig struct {
	OverallTimeout     time.Duration // на весь поиск со всеми ретраями
	MinCombinedResults int
	MaxCombinedResults int
}

type CacheConfig struct {
	TTL time.Duration
}

type MetricsConfig struct {
	Addr string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Tavily: TavilyConfig{
			APIKey:  os.Getenv("TAVILY_API_KEY"),
			BaseURL: getEnvOrDefault("TAVILY_BASE_URL", "https://api.tavily.com"),
			Timeout: time.Duration(getEnvIntOrDefault("TAVILY_TIMEOUT_SEC", 15)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Capacity:      getEnvFloatOrDefault("RATE_LIMIT_CAPACITY", 10),
			RefillPerSec:  getEnvFloatOrDefault("RATE_LIMIT_REFILL_PER_SEC", 1),
			MinTokens:     getEnvFloatOrDefault("RATE_LIMIT_MIN_TOKENS", 1),
			MaxConcurrent: getEnvIntOrDefault("MAX_CONCURRENT_REQUESTS", 0),
		},
		Retry: RetryConfig{
			MaxAttempts:  getEnvIntOrDefault("RETRY_MAX_ATTEMPTS", 3),
			BaseBackoff:  time.Duration(getEnvIntOrDefault("RETRY_BASE_BACKOFF_MS", 1000)) * time.Millisecond,
			GrowthFactor: getEnvFloatOrDefault("RETRY_GROWTH_FACTOR", 2.0),
		},
		Health: HealthConfig{
			MaxErrors:           getEnvIntOrDefault("HEALTH_MAX_ERRORS", 3),
			MaxRecoveryAttempts: getEnvIntOrDefault("HEALTH_MAX_RECOVERY_ATTEMPTS", 3),
			RecoveryDecrement:   getEnvIntOrDefault("HEALTH_RECOVERY_DECREMENT", 1),
			CheckInterval:       time.Duration(getEnvIntOrDefault("HEALTH_CHECK_INTERVAL_SEC", 30)) * time.Second,
		},
		Search: SearchConfig{
			OverallTimeout:     time.Duration(getEnvIntOrDefault("OVERALL_TIMEOUT_SEC", 60)) * time.Second,
			MinCombinedResults: getEnvIntOrDefault("MIN_SEARCH_RESULTS", 8),
			MaxCombinedResults: getEnvIntOrDefault("MAX_COMBINED_RESULTS", 0),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 3600)) * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Tavily.APIKey == "" {
		return ErrMissingAPIKey
	}
	// иначе ретраи никогда не уложатся в общий бюджет
	if c.Search.OverallTimeout <= c.Tavily.Timeout {
		return ErrInvalidTimeouts
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
