package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Credentials CredentialsConfig
	Scraper     ScraperConfig
	Browser     BrowserConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Server      ServerConfig
	Logging     LoggingConfig
}

// CredentialsConfig carries the wholesale-account login. Sourced once per run
// from the environment; never written anywhere.
type CredentialsConfig struct {
	Email    string
	Password string
}

type ScraperConfig struct {
	BaseURL              string
	RateLimitMin         time.Duration
	RateLimitMax         time.Duration
	LoadTimeout          time.Duration
	FormTimeout          time.Duration
	VerifyTimeout        time.Duration
	MaxConsecutiveFaults int
	Sessions             int
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type ServerConfig struct {
	Enabled bool
	Host    string
	Port    string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Credentials: CredentialsConfig{
			Email:    os.Getenv("PACIFIC_EMAIL"),
			Password: os.Getenv("PACIFIC_PASSWORD"),
		},
		Scraper: ScraperConfig{
			BaseURL:              getEnvOrDefault("SCRAPER_BASE_URL", "https://www.pacificgiftware.com"),
			RateLimitMin:         getDurationOrDefault("SCRAPER_RATE_LIMIT_MIN", 2*time.Second),
			RateLimitMax:         getDurationOrDefault("SCRAPER_RATE_LIMIT_MAX", 5*time.Second),
			LoadTimeout:          getDurationOrDefault("SCRAPER_LOAD_TIMEOUT", 10*time.Second),
			FormTimeout:          getDurationOrDefault("SCRAPER_FORM_TIMEOUT", 12*time.Second),
			VerifyTimeout:        getDurationOrDefault("SCRAPER_VERIFY_TIMEOUT", 20*time.Second),
			MaxConsecutiveFaults: getIntOrDefault("SCRAPER_MAX_CONSECUTIVE_FAULTS", 3),
			Sessions:             getIntOrDefault("SCRAPER_SESSIONS", 1),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1280),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 960),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			Name:     getEnvOrDefault("DB_NAME", "giftware_scraper"),
			MaxConns: getIntOrDefault("DB_MAX_CONNS", 4),
		},
		Redis: RedisConfig{
			Enabled:  getBoolOrDefault("REDIS_ENABLED", false),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			CacheTTL: getDurationOrDefault("REDIS_CACHE_TTL", 7*24*time.Hour),
		},
		Server: ServerConfig{
			Enabled: getBoolOrDefault("SERVER_ENABLED", false),
			Host:    getEnvOrDefault("SERVER_HOST", "127.0.0.1"),
			Port:    getEnvOrDefault("SERVER_PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Credentials.Email == "" || c.Credentials.Password == "" {
		return fmt.Errorf("PACIFIC_EMAIL and PACIFIC_PASSWORD must be set")
	}

	if c.Scraper.RateLimitMin > c.Scraper.RateLimitMax {
		return fmt.Errorf("SCRAPER_RATE_LIMIT_MIN cannot be greater than SCRAPER_RATE_LIMIT_MAX")
	}

	if c.Scraper.Sessions < 1 {
		return fmt.Errorf("SCRAPER_SESSIONS must be at least 1")
	}

	if c.Scraper.MaxConsecutiveFaults < 1 {
		return fmt.Errorf("SCRAPER_MAX_CONSECUTIVE_FAULTS must be at least 1")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
