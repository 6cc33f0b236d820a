package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is built once at startup and passed into the collector and the API server;
// nothing reads the environment after Load returns.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	OutputDir       string
	MaxProducts     int
	PageLoadTimeout time.Duration
	Headless        bool
	KRWUSDRate      float64
	MaxRetries      int
	ChromeBin       string

	ServerAddr      string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// Load reads the .env file and environment variables and returns a populated
// Config. A variable that is set but cannot be parsed, or parses to an
// out-of-range value, is a startup error naming the variable; unset variables
// take their documented defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "tracker"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "tracker123"),
		PostgresDB:       getEnv("POSTGRES_DB", "tracker_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		OutputDir:  getEnv("SCRAPER_OUTPUT_DIR", "output"),
		ChromeBin:  getEnv("CHROME_BIN", ""),
		ServerAddr: getEnv("SERVER_ADDR", ":8000"),
	}

	var err error
	if cfg.MaxProducts, err = getEnvInt("SCRAPER_MAX_PRODUCTS", 30, 1); err != nil {
		return nil, err
	}

	timeoutSec, err := getEnvInt("SCRAPER_TIMEOUT", 20, 1)
	if err != nil {
		return nil, err
	}
	cfg.PageLoadTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.Headless, err = getEnvBool("SCRAPER_HEADLESS", true); err != nil {
		return nil, err
	}
	if cfg.KRWUSDRate, err = getEnvFloat("KRW_USD_RATE", 1450); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getEnvInt("MAX_RETRIES", 3, 1); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = getEnvInt("RATE_LIMIT_MAX", 60, 1); err != nil {
		return nil, err
	}

	windowSec, err := getEnvInt("RATE_LIMIT_WINDOW_SEC", 60, 1)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(windowSec) * time.Second

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string in URL form, which is
// accepted by lib/pq, pgxpool and golang-migrate alike.
func (c *Config) DatabaseURL() string {
	return "postgres://" + c.PostgresUser + ":" + c.PostgresPassword +
		"@" + c.PostgresHost + ":" + c.PostgresPort +
		"/" + c.PostgresDB + "?sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback, min int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, val)
	}
	if n < min {
		return 0, fmt.Errorf("config: %s=%d must be at least %d", key, n, min)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number", key, val)
	}
	if f <= 0 {
		return 0, fmt.Errorf("config: %s=%v must be positive", key, f)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean", key, val)
	}
	return b, nil
}
